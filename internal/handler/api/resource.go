// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-pages/internal/service"
)

// CRUD is the operation set a Resource delegates to. Implementations may
// reject individual operations with service.ErrUnsupportedOperation.
type CRUD[T any] interface {
	Create(ctx context.Context, v *T) (*T, error)
	Get(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, id string, v *T) (*T, error)
	Delete(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, query url.Values) ([]T, error)
}

// Resource exposes a CRUD operation set as HTTP handlers. It holds no state
// of its own; each handler makes exactly one call into ops.
type Resource[T any] struct {
	name string
	ops  CRUD[T]
}

// NewResource creates a Resource named name (used in error messages).
func NewResource[T any](name string, ops CRUD[T]) *Resource[T] {
	return &Resource[T]{name: name, ops: ops}
}

// Create decodes and validates the body, then answers 201 with the created value.
func (res *Resource[T]) Create(w http.ResponseWriter, r *http.Request) {
	var v T
	if !decodeJSON(w, r, &v) {
		return
	}
	if err := service.Validate(&v); err != nil {
		WriteServiceError(w, r, err)
		return
	}

	created, err := res.ops.Create(r.Context(), &v)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteCreated(w, created)
}

// Get returns a handler reading the id from the named URL parameter.
func (res *Resource[T]) Get(param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := res.requireID(w, r, param)
		if !ok {
			return
		}
		v, err := res.ops.Get(r.Context(), id)
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		WriteSuccess(w, v)
	}
}

// Update returns a handler applying a partial update. Field validation is
// left to ops since absent fields mean "unchanged".
func (res *Resource[T]) Update(param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := res.requireID(w, r, param)
		if !ok {
			return
		}
		var v T
		if !decodeJSON(w, r, &v) {
			return
		}
		updated, err := res.ops.Update(r.Context(), id, &v)
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		WriteSuccess(w, updated)
	}
}

// Delete returns a handler answering 200 with the deleted value.
func (res *Resource[T]) Delete(param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := res.requireID(w, r, param)
		if !ok {
			return
		}
		v, err := res.ops.Delete(r.Context(), id)
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		WriteSuccess(w, v)
	}
}

// List passes the query string through to ops.
func (res *Resource[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := res.ops.List(r.Context(), r.URL.Query())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, items)
}

func (res *Resource[T]) requireID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	id := chi.URLParam(r, param)
	if id == "" {
		WriteBadRequest(w, "Missing "+res.name+" id", nil)
		return "", false
	}
	return id, true
}
