// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the page and application collaborators behind
// the REST adapter: persistence through the store, page-name summary caching,
// webhook notification and the audit event log.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/store"
)

// EventService writes audit entries to the event log.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// LogEvent creates a new event log entry. A nil receiver discards the event.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, metadata map[string]any) error {
	if s == nil {
		return nil
	}

	metadataJSON := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		Metadata:  metadataJSON,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Debug("failed to log event", "error", err, "message", message)
		return err
	}
	return nil
}

// LogPageEvent logs an info-level page event.
func (s *EventService) LogPageEvent(ctx context.Context, message string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryPage, message, metadata)
}

// LogApplicationEvent logs an info-level application event.
func (s *EventService) LogApplicationEvent(ctx context.Context, message string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryApplication, message, metadata)
}

// DeleteOldEvents removes events older than olderThan and returns the number removed.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	n, err := s.queries.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting events before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return n, nil
}

// RecentEvents returns up to limit events, newest first.
func (s *EventService) RecentEvents(ctx context.Context, limit int64) ([]store.Event, error) {
	return s.queries.ListRecentEvents(ctx, limit)
}
