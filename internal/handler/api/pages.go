// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/service"
)

// PageService answers page-name lookups and updates or deletes pages.
type PageService interface {
	FindNamesByApplicationID(ctx context.Context, applicationID string) (*model.ApplicationPagesSummary, error)
	FindNamesByApplicationName(ctx context.Context, applicationName string) (*model.ApplicationPagesSummary, error)
	Update(ctx context.Context, id string, page *model.Page) (*model.Page, error)
	Delete(ctx context.Context, id string) (*model.Page, error)
}

// ApplicationPageService creates, reads, clones and publishes pages.
type ApplicationPageService interface {
	CreatePage(ctx context.Context, page *model.Page) (*model.Page, error)
	GetPage(ctx context.Context, id string, viewMode bool) (*model.Page, error)
	GetPageByName(ctx context.Context, applicationName, pageName string, viewMode bool) (*model.Page, error)
	ClonePage(ctx context.Context, id string) (*model.Page, error)
	PublishPage(ctx context.Context, id string) (*model.Page, error)
}

// pageOperations composes both page collaborators into CRUD[model.Page].
type pageOperations struct {
	pages    PageService
	appPages ApplicationPageService
}

func (o pageOperations) Create(ctx context.Context, p *model.Page) (*model.Page, error) {
	return o.appPages.CreatePage(ctx, p)
}

func (o pageOperations) Get(ctx context.Context, id string) (*model.Page, error) {
	return o.appPages.GetPage(ctx, id, false)
}

func (o pageOperations) Update(ctx context.Context, id string, p *model.Page) (*model.Page, error) {
	return o.pages.Update(ctx, id, p)
}

func (o pageOperations) Delete(ctx context.Context, id string) (*model.Page, error) {
	return o.pages.Delete(ctx, id)
}

// List is rejected whatever the query: pages are only listed per application.
func (o pageOperations) List(context.Context, url.Values) ([]model.Page, error) {
	return nil, fmt.Errorf("%w: pages can only be listed per application, use /page/application/name/{applicationName}",
		service.ErrUnsupportedOperation)
}

// PageHandler serves the /page routes.
type PageHandler struct {
	resource *Resource[model.Page]
	pages    PageService
	appPages ApplicationPageService
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(pages PageService, appPages ApplicationPageService) *PageHandler {
	return &PageHandler{
		resource: NewResource[model.Page]("page", pageOperations{pages: pages, appPages: appPages}),
		pages:    pages,
		appPages: appPages,
	}
}

// Routes returns the page route table.
func (h *PageHandler) Routes() []Route {
	return []Route{
		{http.MethodPost, "/page", withOrigin("create page", h.resource.Create)},
		{http.MethodGet, "/page", withOrigin("list pages", h.resource.List)},
		{http.MethodGet, "/page/application/{applicationId}", withOrigin("page names by application id", h.NamesByApplicationID)},
		{http.MethodGet, "/page/application/name/{applicationName}", withOrigin("page names by application name", h.NamesByApplicationName)},
		{http.MethodGet, "/page/{pageId}", withOrigin("get page", h.resource.Get("pageId"))},
		{http.MethodGet, "/page/{pageId}/view", withOrigin("get page view", h.GetView)},
		{http.MethodGet, "/page/{pageName}/application/{applicationName}/view", withOrigin("get page view by name", h.GetViewByName)},
		{http.MethodPut, "/page/{id}", withOrigin("update page", h.resource.Update("id"))},
		{http.MethodDelete, "/page/{id}", withOrigin("delete page", h.resource.Delete("id"))},
		{http.MethodPost, "/page/clone/{pageId}", withOrigin("clone page", h.Clone)},
		{http.MethodPost, "/page/{pageId}/publish", withOrigin("publish page", h.Publish)},
	}
}

// NamesByApplicationID handles GET /page/application/{applicationId}.
//
// Deprecated: use NamesByApplicationName. Kept for existing clients.
func (h *PageHandler) NamesByApplicationID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Deprecation", "true")
	summary, err := h.pages.FindNamesByApplicationID(r.Context(), chi.URLParam(r, "applicationId"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, summary)
}

// NamesByApplicationName handles GET /page/application/name/{applicationName}.
func (h *PageHandler) NamesByApplicationName(w http.ResponseWriter, r *http.Request) {
	summary, err := h.pages.FindNamesByApplicationName(r.Context(), pathParam(r, "applicationName"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, summary)
}

// GetView handles GET /page/{pageId}/view.
func (h *PageHandler) GetView(w http.ResponseWriter, r *http.Request) {
	page, err := h.appPages.GetPage(r.Context(), chi.URLParam(r, "pageId"), true)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, page)
}

// GetViewByName handles GET /page/{pageName}/application/{applicationName}/view.
func (h *PageHandler) GetViewByName(w http.ResponseWriter, r *http.Request) {
	page, err := h.appPages.GetPageByName(r.Context(),
		pathParam(r, "applicationName"),
		pathParam(r, "pageName"),
		true)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, page)
}

// Clone handles POST /page/clone/{pageId}.
func (h *PageHandler) Clone(w http.ResponseWriter, r *http.Request) {
	page, err := h.appPages.ClonePage(r.Context(), chi.URLParam(r, "pageId"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteCreated(w, page)
}

// Publish handles POST /page/{pageId}/publish.
func (h *PageHandler) Publish(w http.ResponseWriter, r *http.Request) {
	page, err := h.appPages.PublishPage(r.Context(), chi.URLParam(r, "pageId"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, page)
}
