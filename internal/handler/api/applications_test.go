// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-pages/internal/cache"
	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/service"
	"github.com/olegiv/ocms-pages/internal/testutil"
)

// integrationRouter wires the handlers to real services over a temp database.
func integrationRouter(t *testing.T) http.Handler {
	t.Helper()

	db := testutil.TestDB(t)
	mem := testutil.TestMemoryCache(t)

	deps := service.Deps{DB: db, Summaries: service.NewSummaryCache(mem, time.Minute)}
	r := chi.NewRouter()
	Mount(r,
		NewPageHandler(service.NewPageService(deps), service.NewApplicationPageService(deps)).Routes(),
		NewApplicationHandler(service.NewApplicationService(deps)).Routes(),
		NewHealthHandler(map[string]CheckFunc{"database": db.PingContext, "cache": mem.Ping}).Routes(),
	)
	return r
}

func TestApplicationRoutes(t *testing.T) {
	h := integrationRouter(t)

	w := do(t, h, http.MethodPost, "/application", `{"name":"Shop"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	app := decode[model.Application](t, w).Data

	w = do(t, h, http.MethodPost, "/application", `{"name":"Shop"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/application", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodGet, "/application", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.Application](t, w).Data
	require.Len(t, *list, 1)

	w = do(t, h, http.MethodPut, "/application/"+app.ID, `{"name":"Store"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Store", decode[model.Application](t, w).Data.Name)

	w = do(t, h, http.MethodDelete, "/application/"+app.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/application/"+app.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPageLifecycle_Integration(t *testing.T) {
	h := integrationRouter(t)

	w := do(t, h, http.MethodPost, "/application", `{"name":"Shop"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	app := decode[model.Application](t, w).Data

	w = do(t, h, http.MethodPost, "/page", `{"name":"Home","applicationId":"`+app.ID+`","layout":{"v":1}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	home := decode[model.Page](t, w).Data
	assert.True(t, home.IsDefault)

	w = do(t, h, http.MethodPost, "/page/clone/"+home.ID, "")
	require.Equal(t, http.StatusCreated, w.Code)
	clone := decode[model.Page](t, w).Data
	assert.NotEqual(t, home.ID, clone.ID)
	assert.Equal(t, app.ID, clone.ApplicationID)
	assert.Equal(t, "Home Copy", clone.Name)

	w = do(t, h, http.MethodGet, "/page/application/name/Shop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[model.ApplicationPagesSummary](t, w).Data.Pages, 2)

	w = do(t, h, http.MethodGet, "/page/Home/application/Shop/view", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `null`, string(decode[model.Page](t, w).Data.Layout))

	w = do(t, h, http.MethodPost, "/page/"+home.ID+"/publish", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/page/"+home.ID+"/view", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"v":1}`, string(decode[model.Page](t, w).Data.Layout))

	w = do(t, h, http.MethodDelete, "/page/"+home.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/page/"+home.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/page/application/"+app.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[model.ApplicationPagesSummary](t, w).Data
	require.Len(t, summary.Pages, 1)
	assert.Equal(t, clone.ID, summary.Pages[0].ID)
	assert.True(t, summary.Pages[0].IsDefault, "clone promoted to default")
}

func TestHealth(t *testing.T) {
	h := integrationRouter(t)

	w := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode[HealthStatus](t, w)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Checks["database"].Status)
	assert.Equal(t, "healthy", env.Data.Checks["cache"].Status)
}

func TestHealth_Degraded(t *testing.T) {
	r := chi.NewRouter()
	Mount(r, NewHealthHandler(map[string]CheckFunc{
		"cache": func(context.Context) error { return cache.ErrCacheClosed },
	}).Routes())

	w := do(t, r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	env := decode[HealthStatus](t, w)
	assert.False(t, env.ResponseMeta.Success)
	assert.Equal(t, "degraded", env.Data.Status)
	assert.Equal(t, "cache closed", env.Data.Checks["cache"].Message)
}
