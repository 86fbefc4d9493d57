// Package hub fans a message out to the platform adapters and turns every
// outcome, panics included, into a Result.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/benaskins/socialhub/internal/credentials"
	"github.com/benaskins/socialhub/internal/metrics"
	"github.com/benaskins/socialhub/internal/platform"
	"github.com/benaskins/socialhub/internal/platform/bluesky"
	"github.com/benaskins/socialhub/internal/platform/threads"
	"github.com/benaskins/socialhub/internal/platform/x"
)

// CredentialLoader supplies the bundle for a post request.
type CredentialLoader interface {
	Load(ctx context.Context) (credentials.Bundle, error)
}

type posterSet map[platform.Name]platform.Poster

// Hub posts messages through a swappable set of adapters.
type Hub struct {
	creds   CredentialLoader
	posters atomic.Pointer[posterSet]
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Hub.
type Option func(*Hub)

// WithPosters sets the initial adapters. Without it the hub uses the stock
// adapters against their production endpoints.
func WithPosters(posters ...platform.Poster) Option {
	return func(h *Hub) { h.SetPosters(posters...) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// WithMetrics records post outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) { h.metrics = m }
}

// WithTracer sets the tracer used for per-platform spans.
func WithTracer(t trace.Tracer) Option {
	return func(h *Hub) { h.tracer = t }
}

// New creates a Hub that loads credentials from creds on every request.
func New(creds CredentialLoader, opts ...Option) *Hub {
	h := &Hub{
		creds:  creds,
		logger: slog.With("component", "hub"),
		tracer: otel.Tracer("github.com/benaskins/socialhub/internal/hub"),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.posters.Load() == nil {
		h.SetPosters(bluesky.New(), x.New(), threads.New())
	}
	return h
}

// SetPosters replaces the adapter set. Requests already running keep the
// set they started with.
func (h *Hub) SetPosters(posters ...platform.Poster) {
	set := make(posterSet, len(posters))
	for _, p := range posters {
		set[p.Name()] = p
	}
	h.posters.Store(&set)
}

func (h *Hub) snapshot() posterSet {
	if set := h.posters.Load(); set != nil {
		return *set
	}
	return nil
}

func (h *Hub) PostToBluesky(ctx context.Context, message string) (Result, error) {
	return h.Post(ctx, platform.Bluesky, message)
}

func (h *Hub) PostToX(ctx context.Context, message string) (Result, error) {
	return h.Post(ctx, platform.X, message)
}

func (h *Hub) PostToThreads(ctx context.Context, message string) (Result, error) {
	return h.Post(ctx, platform.Threads, message)
}

// Post sends message to a single platform. The error is non-nil only when
// credentials cannot be loaded or the platform is unknown; adapter failures
// come back as a failed Result.
//
// Cancelling ctx does not abort a post; only its values are used.
func (h *Hub) Post(ctx context.Context, name platform.Name, message string) (Result, error) {
	ctx = context.WithoutCancel(ctx)
	if !known(name) {
		return Result{}, fmt.Errorf("unknown platform %q", name)
	}
	posters := h.snapshot()
	runID := uuid.NewString()

	bundle, err := h.creds.Load(ctx)
	if err != nil {
		h.metrics.IncrementCredentialLoadFailures()
		h.logger.Warn("credentials unavailable", "run_id", runID, "platform", string(name), "error", err)
		return Result{}, err
	}

	return h.run(ctx, runID, name, posters[name], message, bundle), nil
}

// PostToAll sends message to every platform concurrently and returns one
// Result per platform in platform.Order. If credentials cannot be loaded no
// platform is attempted and the single returned Result is tagged
// platform.All. As with Post, cancelling ctx does not stop running tasks.
func (h *Hub) PostToAll(ctx context.Context, message string) []Result {
	ctx = context.WithoutCancel(ctx)
	posters := h.snapshot()
	runID := uuid.NewString()

	bundle, err := h.creds.Load(ctx)
	if err != nil {
		h.metrics.IncrementCredentialLoadFailures()
		h.logger.Warn("credentials unavailable", "run_id", runID, "platform", string(platform.All), "error", err)
		return []Result{{
			Platform: platform.All,
			Error:    "Failed to load credentials: " + err.Error(),
		}}
	}

	h.logger.Info("posting to all platforms", "run_id", runID, "message_len", len(message))

	results := make([]Result, len(platform.Order))
	var g errgroup.Group
	g.SetLimit(len(platform.Order))
	for i, name := range platform.Order {
		p := posters[name]
		g.Go(func() error {
			results[i] = h.run(ctx, runID, name, p, message, bundle)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// run makes one adapter call. It never panics.
func (h *Hub) run(ctx context.Context, runID string, name platform.Name, p platform.Poster, message string, creds credentials.Bundle) (res Result) {
	start := time.Now()
	ctx, span := h.tracer.Start(ctx, "hub.post/"+name.Slug(), trace.WithAttributes(
		attribute.String("platform", string(name)),
		attribute.String("run_id", runID),
	))

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskAborted, r)
			res = Failed(name, err)
		}

		elapsed := time.Since(start)
		kind := outcome(err)
		h.metrics.ObservePost(string(name), kind, elapsed)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			h.logger.Warn("post failed", "run_id", runID, "platform", string(name), "outcome", kind, "duration", elapsed, "error", err)
		} else {
			h.logger.Info("posted", "run_id", runID, "platform", string(name), "duration", elapsed, "url", res.URL)
		}
		span.End()
	}()

	if p == nil {
		err = fmt.Errorf("no %s adapter configured", name)
		return Failed(name, err)
	}

	var url string
	url, err = p.Post(ctx, message, creds)
	if err != nil {
		return Failed(name, err)
	}
	return Succeeded(name, url)
}

func outcome(err error) string {
	if errors.Is(err, ErrTaskAborted) {
		return "aborted"
	}
	return platform.Kind(err)
}

func known(name platform.Name) bool {
	return slices.Contains(platform.Order, name)
}
