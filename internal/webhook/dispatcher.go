// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/ocms-pages/internal/util"
)

// SignaturePrefix precedes the hex digest in the X-Webhook-Signature header.
const SignaturePrefix = "sha256="

// Config holds dispatcher configuration.
type Config struct {
	Endpoints      []string      // Target URLs; empty disables dispatching
	Secret         string        // HMAC secret for payload signatures
	Workers        int           // Number of concurrent delivery workers
	QueueSize      int           // Buffered deliveries before events are dropped
	AllowPrivate   bool          // Permit delivery to private or loopback addresses
	Timeout        time.Duration // Per-attempt HTTP timeout
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultConfig returns default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers:        3,
		QueueSize:      100,
		Timeout:        RequestTimeout,
		MaxAttempts:    MaxAttempts,
		InitialBackoff: InitialBackoff,
		MaxBackoff:     MaxBackoff,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = def.QueueSize
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = def.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = def.MaxBackoff
	}
	return c
}

// Dispatcher fans page events out to the configured endpoints through a
// pool of delivery workers.
type Dispatcher struct {
	cfg     Config
	client  *http.Client
	logger  *slog.Logger
	queue   chan *queuedDelivery
	wg      sync.WaitGroup
	done    chan struct{}
	mu      sync.RWMutex
	running bool
}

// queuedDelivery is one event bound for one endpoint.
type queuedDelivery struct {
	EventID string
	Event   string
	URL     string
	Payload []byte
}

// NewDispatcher creates a new webhook dispatcher.
func NewDispatcher(cfg Config, logger *slog.Logger) *Dispatcher {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		cfg:    cfg,
		client: newHTTPClient(cfg),
		logger: logger,
		queue:  make(chan *queuedDelivery, cfg.QueueSize),
		done:   make(chan struct{}),
	}
}

// newHTTPClient returns a client whose dialer refuses private addresses
// unless cfg.AllowPrivate is set.
func newHTTPClient(cfg Config) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	if !cfg.AllowPrivate {
		dialer.Control = util.DialControl
	}
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Start starts the dispatcher workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("starting webhook dispatcher",
		"workers", d.cfg.Workers,
		"endpoints", len(d.cfg.Endpoints))

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop stops the dispatcher and waits for in-flight deliveries to finish.
// Queued deliveries that were not picked up are discarded.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info("stopping webhook dispatcher")
	close(d.done)
	d.wg.Wait()
	d.logger.Info("webhook dispatcher stopped", "discarded", len(d.queue))
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	d.logger.Debug("webhook worker started", "worker_id", id)

	for {
		select {
		case <-d.done:
			return
		case <-ctx.Done():
			return
		case qd := <-d.queue:
			d.deliver(ctx, qd)
		}
	}
}

// Dispatch queues event for every configured endpoint. It never blocks: when
// the queue is full the delivery is dropped with a warning.
func (d *Dispatcher) Dispatch(_ context.Context, event *Event) error {
	if len(d.cfg.Endpoints) == 0 {
		return nil
	}

	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()
	if !running {
		d.logger.Warn("webhook dispatcher not running, event dropped", "event_type", event.Type)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Error("failed to marshal webhook payload", "error", err, "event_type", event.Type)
		return err
	}

	for _, endpoint := range d.cfg.Endpoints {
		qd := &queuedDelivery{
			EventID: event.ID,
			Event:   event.Type,
			URL:     endpoint,
			Payload: payload,
		}
		select {
		case d.queue <- qd:
			d.logger.Debug("webhook delivery queued", "event_id", event.ID, "url", endpoint)
		default:
			deliveriesTotal.WithLabelValues(resultDropped).Inc()
			d.logger.Warn("webhook queue full, event dropped",
				"event_id", event.ID,
				"event_type", event.Type,
				"url", endpoint)
		}
	}
	return nil
}

// DispatchEvent builds an Event from eventType and data and dispatches it.
func (d *Dispatcher) DispatchEvent(ctx context.Context, eventType string, data any) error {
	return d.Dispatch(ctx, NewEvent(eventType, data))
}

// GenerateSignature returns the hex HMAC-SHA256 of payload keyed by secret.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches payload. The
// "sha256=" prefix is optional.
func VerifySignature(payload []byte, signature, secret string) bool {
	signature = strings.TrimPrefix(signature, SignaturePrefix)
	return hmac.Equal([]byte(signature), []byte(GenerateSignature(payload, secret)))
}
