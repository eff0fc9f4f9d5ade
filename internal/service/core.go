// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"unicode/utf8"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/store"
	"github.com/olegiv/ocms-pages/internal/util"
	"github.com/olegiv/ocms-pages/internal/webhook"
)

// EventDispatcher receives page lifecycle events. *webhook.Dispatcher satisfies it.
type EventDispatcher interface {
	DispatchEvent(ctx context.Context, eventType string, data any) error
}

// Deps are the collaborators shared by the page and application services.
// Only DB is required.
type Deps struct {
	DB         *sql.DB
	Summaries  *SummaryCache
	Dispatcher EventDispatcher
	Events     *EventService
}

// core holds the plumbing common to every service in this package.
type core struct {
	db         *sql.DB
	queries    *store.Queries
	summaries  *SummaryCache
	dispatcher EventDispatcher
	events     *EventService
}

func newCore(d Deps) *core {
	return &core{
		db:         d.DB,
		queries:    store.New(d.DB),
		summaries:  d.Summaries,
		dispatcher: d.Dispatcher,
		events:     d.Events,
	}
}

// afterPageMutation invalidates the summary of the page's application,
// notifies webhooks and records an audit entry.
func (c *core) afterPageMutation(ctx context.Context, eventType string, p model.Page, sourceID string) {
	c.summaries.Invalidate(ctx, p.ApplicationID)

	data := webhook.PageEventData{
		ID:            p.ID,
		ApplicationID: p.ApplicationID,
		Name:          p.Name,
		Slug:          p.Slug,
		IsDefault:     p.IsDefault,
		SourceID:      sourceID,
		PublishedAt:   p.PublishedAt,
	}
	if c.dispatcher != nil {
		if err := c.dispatcher.DispatchEvent(ctx, eventType, data); err != nil {
			slog.Warn("failed to dispatch webhook event",
				"event_type", eventType,
				"page_id", p.ID,
				"error", err,
				"category", model.EventCategoryWebhook)
		}
	}

	_ = c.events.LogPageEvent(ctx, eventType, map[string]any{
		"page_id":        p.ID,
		"application_id": p.ApplicationID,
		"name":           p.Name,
	})
}

func pageFromRow(r store.Page) model.Page {
	p := model.Page{
		ID:            r.ID,
		ApplicationID: r.ApplicationID,
		Name:          r.Name,
		Slug:          r.Slug,
		IsDefault:     r.IsDefault,
		Layout:        json.RawMessage(r.Layout),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.PublishedLayout.Valid {
		p.PublishedLayout = json.RawMessage(r.PublishedLayout.String)
	}
	if r.PublishedAt.Valid {
		t := r.PublishedAt.Time
		p.PublishedAt = &t
	}
	return p
}

func applicationFromRow(r store.Application) model.Application {
	return model.Application{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// cleanName sanitises a user supplied name and checks it is non-empty and
// within MaxPageNameLength characters.
func cleanName(raw string) (string, error) {
	name := util.SanitizeName(raw)
	if name == "" {
		return "", NewValidationError("name", "is required")
	}
	if utf8.RuneCountInString(name) > model.MaxPageNameLength {
		return "", NewValidationError("name", "must be at most 255 characters")
	}
	return name, nil
}

// normalizeLayout returns the layout to store. An absent or null layout
// becomes an empty object.
func normalizeLayout(layout json.RawMessage) (string, error) {
	if len(layout) == 0 || string(layout) == "null" {
		return string(model.EmptyLayout), nil
	}
	if !json.Valid(layout) {
		return "", NewValidationError("layout", "must be valid JSON")
	}
	return string(layout), nil
}

// hasLayout reports whether layout carries a value. Absent and null
// layouts both count as unset.
func hasLayout(layout json.RawMessage) bool {
	trimmed := bytes.TrimSpace(layout)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func pageSlug(name string) string {
	return util.SlugOrFallback(name, "page")
}
