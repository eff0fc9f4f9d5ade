// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/olegiv/ocms-pages/internal/version"
)

// Delivery defaults.
const (
	MaxAttempts    = 5
	InitialBackoff = 1 * time.Second
	MaxBackoff     = 1 * time.Minute
	RequestTimeout = 10 * time.Second
	MaxResponseLen = 10 * 1024
)

const (
	resultDelivered = "delivered"
	resultRetried   = "retried"
	resultFailed    = "failed"
	resultDropped   = "dropped"
)

var deliveriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ocms_pages_webhook_deliveries_total",
		Help: "Webhook delivery attempts by result",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(deliveriesTotal)
}

// DeliveryResult represents the result of a delivery attempt.
type DeliveryResult struct {
	Success      bool
	StatusCode   int
	ResponseBody string
	Error        error
	ShouldRetry  bool
}

// deliver attempts qd until it succeeds, fails permanently, runs out of
// attempts or the dispatcher stops.
func (d *Dispatcher) deliver(ctx context.Context, qd *queuedDelivery) {
	for attempt := 1; ; attempt++ {
		result := d.attemptDelivery(ctx, qd)
		if result.Success {
			deliveriesTotal.WithLabelValues(resultDelivered).Inc()
			d.logger.Info("webhook delivered",
				"event_id", qd.EventID,
				"event_type", qd.Event,
				"url", qd.URL,
				"status_code", result.StatusCode,
				"attempt", attempt)
			return
		}

		if !result.ShouldRetry || attempt >= d.cfg.MaxAttempts {
			deliveriesTotal.WithLabelValues(resultFailed).Inc()
			d.logger.Warn("webhook delivery failed",
				"event_id", qd.EventID,
				"event_type", qd.Event,
				"url", qd.URL,
				"attempts", attempt,
				"error", result.Error)
			return
		}

		deliveriesTotal.WithLabelValues(resultRetried).Inc()
		backoff := calculateBackoff(attempt, d.cfg.InitialBackoff, d.cfg.MaxBackoff)
		d.logger.Debug("webhook delivery scheduled for retry",
			"event_id", qd.EventID,
			"url", qd.URL,
			"attempt", attempt,
			"backoff", backoff.String(),
			"error", result.Error)

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-d.done:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// attemptDelivery performs a single signed HTTP POST.
func (d *Dispatcher) attemptDelivery(ctx context.Context, qd *queuedDelivery) DeliveryResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, qd.URL, bytes.NewReader(qd.Payload))
	if err != nil {
		return DeliveryResult{
			Error: fmt.Errorf("failed to create request: %w", err),
		}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ocms-pages/"+version.Version)
	req.Header.Set("X-Webhook-Event", qd.Event)
	req.Header.Set("X-Webhook-ID", qd.EventID)
	if d.cfg.Secret != "" {
		req.Header.Set("X-Webhook-Signature", SignaturePrefix+GenerateSignature(qd.Payload, d.cfg.Secret))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("request failed: %w", err),
			ShouldRetry: ctx.Err() == nil,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	result := DeliveryResult{
		StatusCode:   resp.StatusCode,
		ResponseBody: string(body),
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		result.Success = true
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		result.Error = fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		result.ShouldRetry = resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests
	default:
		result.Error = fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		result.ShouldRetry = resp.StatusCode >= 500
	}
	return result
}

// calculateBackoff doubles initial for every attempt after the first,
// capped at max.
func calculateBackoff(attempt int, initial, max time.Duration) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	backoff := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
	if backoff > max || backoff <= 0 {
		backoff = max
	}
	return backoff
}
