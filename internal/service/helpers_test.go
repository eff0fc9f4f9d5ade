// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/ocms-pages/internal/cache"
	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/testutil"
)

type recordedEvent struct {
	Type string
	Data any
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingDispatcher) DispatchEvent(_ context.Context, eventType string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: eventType, Data: data})
	return nil
}

func (r *recordingDispatcher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	db         *sql.DB
	cache      *cache.MemoryCache
	dispatcher *recordingDispatcher
	pages      *PageService
	appPages   *ApplicationPageService
	apps       *ApplicationService
	events     *EventService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	mem := testutil.TestMemoryCache(t)

	env := &testEnv{
		db:         db,
		cache:      mem,
		dispatcher: &recordingDispatcher{},
		events:     NewEventService(db),
	}
	deps := Deps{
		DB:         db,
		Summaries:  NewSummaryCache(mem, time.Minute),
		Dispatcher: env.dispatcher,
		Events:     env.events,
	}
	env.pages = NewPageService(deps)
	env.appPages = NewApplicationPageService(deps)
	env.apps = NewApplicationService(deps)
	return env
}

func (e *testEnv) createApp(t *testing.T, name string) *model.Application {
	t.Helper()
	app, err := e.apps.Create(context.Background(), &model.Application{Name: name})
	if err != nil {
		t.Fatalf("Create application %q: %v", name, err)
	}
	return app
}

func (e *testEnv) createPage(t *testing.T, appID, name, layout string) *model.Page {
	t.Helper()
	p := &model.Page{ApplicationID: appID, Name: name}
	if layout != "" {
		p.Layout = []byte(layout)
	}
	page, err := e.appPages.CreatePage(context.Background(), p)
	if err != nil {
		t.Fatalf("CreatePage %q: %v", name, err)
	}
	return page
}
