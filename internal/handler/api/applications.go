// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/olegiv/ocms-pages/internal/model"
)

// ApplicationService manages applications.
type ApplicationService interface {
	Create(ctx context.Context, app *model.Application) (*model.Application, error)
	Get(ctx context.Context, id string) (*model.Application, error)
	Update(ctx context.Context, id string, app *model.Application) (*model.Application, error)
	Delete(ctx context.Context, id string) (*model.Application, error)
	List(ctx context.Context) ([]model.Application, error)
}

type applicationOperations struct {
	ApplicationService
}

func (o applicationOperations) List(ctx context.Context, _ url.Values) ([]model.Application, error) {
	return o.ApplicationService.List(ctx)
}

// ApplicationHandler serves the /application routes.
type ApplicationHandler struct {
	resource *Resource[model.Application]
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(apps ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		resource: NewResource[model.Application]("application", applicationOperations{apps}),
	}
}

// Routes returns the application route table.
func (h *ApplicationHandler) Routes() []Route {
	return []Route{
		{http.MethodPost, "/application", h.resource.Create},
		{http.MethodGet, "/application", h.resource.List},
		{http.MethodGet, "/application/{id}", h.resource.Get("id")},
		{http.MethodPut, "/application/{id}", h.resource.Update("id")},
		{http.MethodDelete, "/application/{id}", h.resource.Delete("id")},
	}
}
