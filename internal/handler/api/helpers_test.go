// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/service"
)

// fakePages implements PageService and ApplicationPageService in memory.
type fakePages struct {
	mu        sync.Mutex
	pages     map[string]model.Page
	nextID    int
	viewModes []bool
	err       error
}

func newFakePages() *fakePages {
	return &fakePages{pages: make(map[string]model.Page)}
}

func (f *fakePages) add(p model.Page) model.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		f.nextID++
		p.ID = "page-" + strconv.Itoa(f.nextID)
	}
	f.pages[p.ID] = p
	return p
}

func (f *fakePages) get(id string) (model.Page, error) {
	p, ok := f.pages[id]
	if !ok {
		return model.Page{}, notFound("page", id)
	}
	return p, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, service.ErrNotFound)
}

func (f *fakePages) CreatePage(_ context.Context, p *model.Page) (*model.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	p.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	created := f.add(*p)
	return &created, nil
}

func (f *fakePages) GetPage(_ context.Context, id string, viewMode bool) (*model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewModes = append(f.viewModes, viewMode)
	p, err := f.get(id)
	if err != nil {
		return nil, err
	}
	p = p.ForMode(viewMode)
	return &p, nil
}

func (f *fakePages) GetPageByName(_ context.Context, appName, pageName string, viewMode bool) (*model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pages {
		if p.ApplicationID == appName && p.Name == pageName {
			p = p.ForMode(viewMode)
			return &p, nil
		}
	}
	return nil, notFound("page", pageName)
}

func (f *fakePages) ClonePage(_ context.Context, id string) (*model.Page, error) {
	f.mu.Lock()
	src, err := f.get(id)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	src.ID = ""
	src.Name += " Copy"
	src.IsDefault = false
	clone := f.add(src)
	return &clone, nil
}

func (f *fakePages) PublishPage(_ context.Context, id string) (*model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.get(id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p.PublishedAt = &now
	p.PublishedLayout = p.Layout
	f.pages[id] = p
	return &p, nil
}

func (f *fakePages) FindNamesByApplicationID(_ context.Context, appID string) (*model.ApplicationPagesSummary, error) {
	if appID == "missing" {
		return nil, notFound("application", appID)
	}
	return &model.ApplicationPagesSummary{ApplicationID: appID, Pages: []model.PageNameID{{ID: "p1", Name: "Home", Slug: "home", IsDefault: true}}}, nil
}

func (f *fakePages) FindNamesByApplicationName(_ context.Context, name string) (*model.ApplicationPagesSummary, error) {
	if name == "missing" {
		return nil, notFound("application", name)
	}
	return &model.ApplicationPagesSummary{ApplicationID: "id-of-" + name, Pages: []model.PageNameID{}}, nil
}

func (f *fakePages) Update(_ context.Context, id string, patch *model.Page) (*model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.get(id)
	if err != nil {
		return nil, err
	}
	if patch.Name != "" {
		p.Name = patch.Name
	}
	f.pages[id] = p
	return &p, nil
}

func (f *fakePages) Delete(_ context.Context, id string) (*model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.get(id)
	if err != nil {
		return nil, err
	}
	delete(f.pages, id)
	return &p, nil
}

// testRouter mounts the page routes of a fresh fake on a chi router.
func testRouter(t *testing.T) (http.Handler, *fakePages) {
	t.Helper()
	fake := newFakePages()
	r := chi.NewRouter()
	Mount(r, NewPageHandler(fake, fake).Routes())
	return r, fake
}

// envelope mirrors Envelope with a typed payload.
type envelope[T any] struct {
	ResponseMeta ResponseMeta `json:"responseMeta"`
	Data         *T           `json:"data"`
	Errors       *ErrorDetail `json:"errors"`
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	if env.ResponseMeta.Status != w.Code {
		t.Errorf("responseMeta.status = %d, HTTP status = %d", env.ResponseMeta.Status, w.Code)
	}
	if (env.Data != nil) == (env.Errors != nil) {
		t.Errorf("exactly one of data/errors must be set: %s", w.Body.String())
	}
	return env
}
