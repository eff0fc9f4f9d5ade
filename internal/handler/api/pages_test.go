// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/service"
)

func TestCreatePage(t *testing.T) {
	h, _ := testRouter(t)

	w := do(t, h, http.MethodPost, "/page", `{"name":"Home","applicationId":"app-1","layout":{"widgets":[]}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decode[model.Page](t, w)
	assert.True(t, env.ResponseMeta.Success)
	assert.NotEmpty(t, env.Data.ID)
	assert.Equal(t, "Home", env.Data.Name)
	assert.Equal(t, "app-1", env.Data.ApplicationID)
	assert.JSONEq(t, `{"widgets":[]}`, string(env.Data.Layout))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestCreatePage_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
		field  string
	}{
		{name: "malformed json", body: `{"name":`, status: http.StatusBadRequest, code: "bad_request"},
		{name: "missing name", body: `{"applicationId":"app-1"}`, status: http.StatusUnprocessableEntity, code: "validation_error", field: "name"},
		{name: "missing application", body: `{"name":"Home"}`, status: http.StatusUnprocessableEntity, code: "validation_error", field: "applicationId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fake := testRouter(t)

			w := do(t, h, http.MethodPost, "/page", tt.body)
			require.Equal(t, tt.status, w.Code)

			env := decode[model.Page](t, w)
			assert.False(t, env.ResponseMeta.Success)
			assert.Equal(t, tt.code, env.Errors.Code)
			if tt.field != "" {
				assert.Contains(t, env.Errors.Details, tt.field)
			}
			assert.Empty(t, fake.pages, "collaborator must not be called")
		})
	}
}

func TestCreatePage_CollaboratorErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{service.NewValidationError("layout", "must be valid JSON"), http.StatusUnprocessableEntity, "validation_error"},
		{service.ErrConflict, http.StatusConflict, "conflict"},
		{service.ErrNotFound, http.StatusNotFound, "not_found"},
		{service.ErrForbidden, http.StatusForbidden, "forbidden"},
		{service.ErrInvalidInput, http.StatusBadRequest, "bad_request"},
		{errors.New("database is locked"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			h, fake := testRouter(t)
			fake.err = tt.err

			w := do(t, h, http.MethodPost, "/page", `{"name":"Home","applicationId":"app-1"}`)
			require.Equal(t, tt.status, w.Code)
			env := decode[model.Page](t, w)
			assert.Equal(t, tt.code, env.Errors.Code)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, env.Errors.Message, "database")
			}
		})
	}
}

func TestListPages_AlwaysUnsupported(t *testing.T) {
	for _, path := range []string{"/page", "/page?applicationId=app-1", "/page?name=Home&limit=10"} {
		t.Run(path, func(t *testing.T) {
			h, fake := testRouter(t)
			fake.add(model.Page{Name: "Home", ApplicationID: "app-1"})

			w := do(t, h, http.MethodGet, path, "")
			require.Equal(t, http.StatusBadRequest, w.Code)
			env := decode[[]model.Page](t, w)
			assert.Equal(t, "unsupported_operation", env.Errors.Code)
		})
	}
}

func TestGetPage_EditAndView(t *testing.T) {
	h, fake := testRouter(t)
	p := fake.add(model.Page{Name: "Home", ApplicationID: "app-1", Layout: []byte(`{"draft":true}`), PublishedLayout: []byte(`{"draft":false}`)})

	w := do(t, h, http.MethodGet, "/page/"+p.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	edit := decode[model.Page](t, w)

	w = do(t, h, http.MethodGet, "/page/"+p.ID+"/view", "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[model.Page](t, w)

	assert.Equal(t, p.ID, edit.Data.ID)
	assert.Equal(t, p.ID, view.Data.ID)
	assert.False(t, edit.Data.ViewMode)
	assert.True(t, view.Data.ViewMode)
	assert.JSONEq(t, `{"draft":true}`, string(edit.Data.Layout))
	assert.JSONEq(t, `{"draft":false}`, string(view.Data.Layout))
	assert.Equal(t, []bool{false, true}, fake.viewModes)
}

func TestGetPageViewByName(t *testing.T) {
	h, fake := testRouter(t)
	p := fake.add(model.Page{Name: "Home", ApplicationID: "Shop"})

	w := do(t, h, http.MethodGet, "/page/Home/application/Shop/view", "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode[model.Page](t, w)
	assert.Equal(t, p.ID, env.Data.ID)
	assert.True(t, env.Data.ViewMode)

	w = do(t, h, http.MethodGet, "/page/Nope/application/Shop/view", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPageViewByName_EscapedSegments(t *testing.T) {
	h, _ := testRouter(t)

	w := do(t, h, http.MethodPost, "/page", `{"name":"A/B","applicationId":"My Shop","layout":{}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Page](t, w)

	w = do(t, h, http.MethodGet, "/page/A%2FB/application/My%20Shop/view", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode[model.Page](t, w)
	assert.Equal(t, created.Data.ID, env.Data.ID)
	assert.Equal(t, "A/B", env.Data.Name)
}

func TestPageNames_EscapedApplicationName(t *testing.T) {
	h, _ := testRouter(t)

	w := do(t, h, http.MethodGet, "/page/application/name/North%2FSouth", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode[model.ApplicationPagesSummary](t, w)
	assert.Equal(t, "id-of-North/South", env.Data.ApplicationID)
}

func TestPageNames(t *testing.T) {
	h, _ := testRouter(t)

	w := do(t, h, http.MethodGet, "/page/application/app-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("Deprecation"))
	byID := decode[model.ApplicationPagesSummary](t, w)
	assert.Equal(t, "app-1", byID.Data.ApplicationID)
	require.Len(t, byID.Data.Pages, 1)

	w = do(t, h, http.MethodGet, "/page/application/name/Shop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Deprecation"))
	byName := decode[model.ApplicationPagesSummary](t, w)
	assert.Equal(t, "id-of-Shop", byName.Data.ApplicationID)

	for _, path := range []string{"/page/application/missing", "/page/application/name/missing"} {
		w = do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestUnknownIDs_NotFound(t *testing.T) {
	h, _ := testRouter(t)

	cases := []struct{ method, path string }{
		{http.MethodGet, "/page/nope"},
		{http.MethodGet, "/page/nope/view"},
		{http.MethodDelete, "/page/nope"},
		{http.MethodPost, "/page/clone/nope"},
		{http.MethodPost, "/page/nope/publish"},
	}
	for _, c := range cases {
		w := do(t, h, c.method, c.path, "")
		require.Equal(t, http.StatusNotFound, w.Code, "%s %s", c.method, c.path)
		env := decode[model.Page](t, w)
		assert.Equal(t, "not_found", env.Errors.Code)
		assert.Contains(t, env.Errors.Message, "nope")
	}
}

func TestDeleteThenGet(t *testing.T) {
	h, fake := testRouter(t)
	p := fake.add(model.Page{Name: "Home", ApplicationID: "app-1"})

	w := do(t, h, http.MethodDelete, "/page/"+p.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	deleted := decode[model.Page](t, w)
	assert.Equal(t, p.ID, deleted.Data.ID)

	w = do(t, h, http.MethodGet, "/page/"+p.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClonePage(t *testing.T) {
	h, fake := testRouter(t)
	p := fake.add(model.Page{Name: "Home", ApplicationID: "app-1", IsDefault: true})

	w := do(t, h, http.MethodPost, "/page/clone/"+p.ID, "")
	require.Equal(t, http.StatusCreated, w.Code)
	env := decode[model.Page](t, w)
	assert.NotEqual(t, p.ID, env.Data.ID)
	assert.Equal(t, "app-1", env.Data.ApplicationID)
	assert.Equal(t, "Home Copy", env.Data.Name)
	assert.False(t, env.Data.IsDefault)
}

func TestUpdateAndPublishPage(t *testing.T) {
	h, fake := testRouter(t)
	p := fake.add(model.Page{Name: "Home", ApplicationID: "app-1"})

	w := do(t, h, http.MethodPut, "/page/"+p.ID, `{"name":"Start"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Start", decode[model.Page](t, w).Data.Name)

	w = do(t, h, http.MethodPut, "/page/"+p.ID, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/page/"+p.ID+"/publish", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode[model.Page](t, w).Data.PublishedAt)
}

func TestPageJSONDoesNotLeakPublishedLayout(t *testing.T) {
	h, fake := testRouter(t)
	p := fake.add(model.Page{Name: "Home", ApplicationID: "app-1", PublishedLayout: []byte(`{"secret":1}`)})

	w := do(t, h, http.MethodGet, "/page/"+p.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.NotContains(t, w.Body.String(), "publishedLayout")
}
