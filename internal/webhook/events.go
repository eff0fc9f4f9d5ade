// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook delivers page lifecycle events to configured HTTP endpoints.
package webhook

import (
	"time"

	"github.com/google/uuid"
)

// Page lifecycle event types.
const (
	EventPageCreated   = "page.created"
	EventPageUpdated   = "page.updated"
	EventPageDeleted   = "page.deleted"
	EventPageCloned    = "page.cloned"
	EventPagePublished = "page.published"
)

// AllEvents lists every event type the service emits.
var AllEvents = []string{
	EventPageCreated,
	EventPageUpdated,
	EventPageDeleted,
	EventPageCloned,
	EventPagePublished,
}

// Event represents a webhook event to be dispatched.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent creates a new webhook event.
func NewEvent(eventType string, data any) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// PageEventData contains data for page-related events.
type PageEventData struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"applicationId"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	IsDefault     bool       `json:"isDefault"`
	SourceID      string     `json:"sourceId,omitempty"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
}
