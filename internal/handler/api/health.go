// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/olegiv/ocms-pages/internal/version"
)

// CheckFunc reports whether one dependency is reachable, e.g. (*sql.DB).PingContext.
type CheckFunc func(ctx context.Context) error

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks    map[string]CheckFunc
	startTime time.Time
	timeout   time.Duration
}

// NewHealthHandler creates a health handler running each named check.
func NewHealthHandler(checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{
		checks:    checks,
		startTime: time.Now(),
		timeout:   2 * time.Second,
	}
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /health. Any failing check turns the answer into 503 degraded.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   version.Version,
		Checks:    make(map[string]Check, len(h.checks)),
	}

	for name, ping := range h.checks {
		start := time.Now()
		check := Check{Status: "healthy"}
		if err := ping(ctx); err != nil {
			check.Status = "unhealthy"
			check.Message = err.Error()
			status.Status = "degraded"
		}
		check.Latency = time.Since(start).Round(time.Microsecond).String()
		status.Checks[name] = check
	}

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, Envelope{
		ResponseMeta: ResponseMeta{Status: code, Success: code == http.StatusOK},
		Data:         status,
	})
}

// Routes returns the health route table.
func (h *HealthHandler) Routes() []Route {
	return []Route{
		{http.MethodGet, "/health", h.Health},
	}
}
