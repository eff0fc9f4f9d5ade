// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/ocms-pages/internal/cache"
	"github.com/olegiv/ocms-pages/internal/model"
)

const summaryKeyPrefix = "pages:names:"

// SummaryCache caches ApplicationPagesSummary values per application id.
// A nil *SummaryCache disables caching.
//
// Every invalidation bumps a generation counter. A loaded summary is only
// stored if no invalidation of its application happened while it was being
// loaded. Invalidations made by other instances sharing a Redis backend
// are not seen, so their staleness is bounded by the TTL.
type SummaryCache struct {
	typed *cache.TypedCache[model.ApplicationPagesSummary]
	raw   cache.Cache

	mu    sync.Mutex
	epoch uint64
	gens  map[string]uint64
}

type generation struct {
	epoch uint64
	app   uint64
}

// NewSummaryCache wraps c for page-name summaries.
func NewSummaryCache(c cache.Cache, ttl time.Duration) *SummaryCache {
	return &SummaryCache{
		typed: cache.NewTypedCache[model.ApplicationPagesSummary](c, ttl),
		raw:   c,
		gens:  make(map[string]uint64),
	}
}

// generationLocked returns the current generation of applicationID. s.mu must be held.
func (s *SummaryCache) generationLocked(applicationID string) generation {
	return generation{epoch: s.epoch, app: s.gens[applicationID]}
}

func summaryKey(applicationID string) string {
	return summaryKeyPrefix + applicationID
}

// Get returns the cached summary or loads and caches it.
func (s *SummaryCache) Get(ctx context.Context, applicationID string, load func() (*model.ApplicationPagesSummary, error)) (*model.ApplicationPagesSummary, error) {
	if s == nil {
		return load()
	}
	key := summaryKey(applicationID)
	if summary, ok := s.typed.Get(ctx, key); ok {
		return summary, nil
	}

	s.mu.Lock()
	before := s.generationLocked(applicationID)
	s.mu.Unlock()

	summary, err := load()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generationLocked(applicationID) != before {
		return summary, nil
	}
	if err := s.typed.Set(ctx, key, summary); err != nil {
		slog.Warn("failed to cache page summary",
			"application_id", applicationID,
			"error", err,
			"category", model.EventCategoryCache)
	}
	return summary, nil
}

// Invalidate drops the summary of one application.
func (s *SummaryCache) Invalidate(ctx context.Context, applicationID string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.gens[applicationID]++
	s.mu.Unlock()
	if err := s.typed.Delete(ctx, summaryKey(applicationID)); err != nil {
		slog.Warn("failed to invalidate page summary cache",
			"application_id", applicationID,
			"error", err,
			"category", model.EventCategoryCache)
	}
}

// InvalidateAll drops every cached summary.
func (s *SummaryCache) InvalidateAll(ctx context.Context) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
	if err := s.raw.DeleteByPrefix(ctx, summaryKeyPrefix); err != nil {
		slog.Warn("failed to clear page summary cache", "error", err, "category", model.EventCategoryCache)
	}
}
