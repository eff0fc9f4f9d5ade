// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Route binds one method and path pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Mount registers every route of each table on r.
func Mount(r chi.Router, tables ...[]Route) {
	for _, table := range tables {
		for _, rt := range table {
			r.Method(rt.Method, rt.Pattern, rt.Handler)
		}
	}
}

// withOrigin logs the caller's Origin header at debug level before
// delegating. The header has no other effect.
func withOrigin(operation string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			slog.Debug("api request", "operation", operation, "origin", origin)
		}
		next(w, r)
	}
}
