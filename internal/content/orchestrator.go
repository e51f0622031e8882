// Package content owns the site's post collection and home-page widgets.
package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fengwz.me/garden/internal/cms"
)

const (
	instrumentationName = "fengwz.me/garden/internal/content"

	tagReadingNow   = "reading-now"
	tagMicroThought = "micro-thought"
	tagDigitalSetup = "digital-setup"
	tagGeek         = "geek"

	defaultPageTTL = 5 * time.Minute
)

// Source is the subset of the CMS client the orchestrator depends on.
type Source interface {
	FetchPosts(ctx context.Context) ([]cms.Post, error)
	FetchStickyPosts(ctx context.Context) ([]cms.Post, error)
	FetchPostsByTag(ctx context.Context, tag string, limit int) ([]cms.Post, error)
	GetPage(ctx context.Context, slug string) (cms.Page, error)
}

// Widgets are the single-post highlights shown on the home page. A nil entry means the
// corresponding fetch failed or returned nothing.
type Widgets struct {
	Featured     *cms.Post
	Reading      *cms.Post
	MicroThought *cms.Post
	Geek         *cms.Post
}

// Snapshot is an immutable copy of the orchestrator state.
type Snapshot struct {
	Posts      []cms.Post
	Loading    bool
	Live       bool
	Widgets    Widgets
	Generation uint64
	LoadedAt   time.Time
}

// Orchestrator loads posts and widgets concurrently, falls back to the seed collection
// when the CMS is unavailable, and hands out copies of its state to readers.
type Orchestrator struct {
	source  Source
	logger  *zap.Logger
	pageTTL time.Duration
	now     func() time.Time

	loadMu sync.Mutex

	mu     sync.RWMutex
	state  Snapshot
	closed bool

	pagesMu sync.Mutex
	pages   map[string]pageEntry

	tracer          trace.Tracer
	loads           metric.Int64Counter
	loadsEnabled    bool
	failures        metric.Int64Counter
	failuresEnabled bool
	latency         metric.Float64Histogram
	latencyEnabled  bool
}

type pageEntry struct {
	page    cms.Page
	expires time.Time
}

type options struct {
	logger  *zap.Logger
	pageTTL time.Duration
	now     func() time.Time
	meter   metric.Meter
}

// Option customises Orchestrator construction.
type Option func(*options)

// WithLogger sets the logger used for fallback and failure diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPageTTL sets how long fetched pages stay cached.
func WithPageTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.pageTTL = ttl
	}
}

// WithClock overrides the time source (primarily for tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithMeter overrides the meter used for load metrics.
func WithMeter(meter metric.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// New constructs an Orchestrator in the loading state.
func New(source Source, opts ...Option) *Orchestrator {
	cfg := options{
		logger:  zap.NewNop(),
		pageTTL: defaultPageTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.pageTTL <= 0 {
		cfg.pageTTL = defaultPageTTL
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	meter := cfg.meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(instrumentationName)
	}

	loads, loadsErr := meter.Int64Counter(
		"content.loads",
		metric.WithDescription("Completed content loads, by source"),
	)
	if loadsErr != nil {
		cfg.logger.Warn("content: unable to register load metric", zap.Error(loadsErr))
	}
	failures, failuresErr := meter.Int64Counter(
		"content.branch_failures",
		metric.WithDescription("Failed fetch branches during a content load"),
	)
	if failuresErr != nil {
		cfg.logger.Warn("content: unable to register failure metric", zap.Error(failuresErr))
	}
	latency, latencyErr := meter.Float64Histogram(
		"content.load.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds for a full content load"),
	)
	if latencyErr != nil {
		cfg.logger.Warn("content: unable to register latency metric", zap.Error(latencyErr))
	}

	return &Orchestrator{
		source:          source,
		logger:          cfg.logger,
		pageTTL:         cfg.pageTTL,
		now:             cfg.now,
		state:           Snapshot{Loading: true},
		pages:           make(map[string]pageEntry),
		tracer:          otel.Tracer(instrumentationName),
		loads:           loads,
		loadsEnabled:    loadsErr == nil,
		failures:        failures,
		failuresEnabled: failuresErr == nil,
		latency:         latency,
		latencyEnabled:  latencyErr == nil,
	}
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return copySnapshot(o.state)
}

// Close marks the orchestrator as unmounted. Loads that complete afterwards are discarded.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
}

func (o *Orchestrator) isClosed() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.closed
}

// Load fetches all posts, sticky posts, the tagged widgets and the geek widget chain in
// parallel. Loading remains true until every branch has settled. A failed or empty
// primary fetch installs the seed collection, unless a live collection is already
// installed: then the previous posts are kept, along with any widget that came back
// empty. A failed widget fetch otherwise leaves only that widget empty.
func (o *Orchestrator) Load(ctx context.Context) Snapshot {
	o.loadMu.Lock()
	defer o.loadMu.Unlock()

	start := o.now()
	ctx, span := o.tracer.Start(ctx, "content.Load")
	defer span.End()

	var (
		posts    []cms.Post
		postsErr error
		sticky   []cms.Post
		reading  []cms.Post
		thoughts []cms.Post
		geek     []cms.Post
	)

	var g errgroup.Group
	g.Go(func() error {
		posts, postsErr = o.fetch(ctx, "posts", func(ctx context.Context) ([]cms.Post, error) {
			return o.source.FetchPosts(ctx)
		})
		return nil
	})
	g.Go(func() error {
		sticky, _ = o.fetch(ctx, "sticky", func(ctx context.Context) ([]cms.Post, error) {
			return o.source.FetchStickyPosts(ctx)
		})
		return nil
	})
	g.Go(func() error {
		reading, _ = o.fetch(ctx, tagReadingNow, func(ctx context.Context) ([]cms.Post, error) {
			return o.source.FetchPostsByTag(ctx, tagReadingNow, 0)
		})
		return nil
	})
	g.Go(func() error {
		thoughts, _ = o.fetch(ctx, tagMicroThought, func(ctx context.Context) ([]cms.Post, error) {
			return o.source.FetchPostsByTag(ctx, tagMicroThought, 0)
		})
		return nil
	})
	g.Go(func() error {
		geek = o.fetchGeekWidget(ctx)
		return nil
	})
	// Branches never return errors; Wait only marks the point where all have settled.
	_ = g.Wait()

	fresh := postsErr == nil && len(posts) > 0
	next := Snapshot{
		Loading: false,
		Live:    fresh,
		Posts:   posts,
		Widgets: Widgets{
			Featured:     first(sticky),
			Reading:      first(reading),
			MicroThought: first(thoughts),
			Geek:         first(geek),
		},
		LoadedAt: o.now(),
	}

	o.mu.Lock()
	if o.closed {
		current := copySnapshot(o.state)
		o.mu.Unlock()
		o.logger.Debug("content: discarding load after close")
		return current
	}
	source := "live"
	switch {
	case fresh:
	case o.state.Live:
		source = "stale"
		next.Live = true
		next.Posts = o.state.Posts
		next.Widgets = keepWidgets(next.Widgets, o.state.Widgets)
	default:
		source = "seed"
		next.Posts = cms.SeedPosts()
	}
	next.Generation = o.state.Generation + 1
	o.state = next
	result := copySnapshot(o.state)
	o.mu.Unlock()

	if !fresh {
		fields := []zap.Field{zap.String("source", source), zap.Int("posts", len(posts))}
		if postsErr != nil {
			fields = append(fields, zap.Error(postsErr))
		}
		if source == "stale" {
			o.logger.Warn("content: refresh failed, keeping previous collection", fields...)
		} else {
			o.logger.Warn("content: no posts from cms, using seed collection", fields...)
		}
		span.SetStatus(codes.Error, "primary fetch unavailable")
	}
	span.SetAttributes(
		attribute.String("content.source", source),
		attribute.Int("content.posts", len(result.Posts)),
	)

	if o.loadsEnabled {
		o.loads.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
	}
	if o.latencyEnabled {
		elapsed := float64(o.now().Sub(start)) / float64(time.Millisecond)
		o.latency.Record(ctx, elapsed, metric.WithAttributes(attribute.String("source", source)))
	}
	o.logger.Info("content: load complete",
		zap.String("source", source),
		zap.Int("posts", len(result.Posts)),
		zap.Uint64("generation", result.Generation),
	)
	return result
}

// keepWidgets fills the empty slots of fresh from prev.
func keepWidgets(fresh, prev Widgets) Widgets {
	if fresh.Featured == nil {
		fresh.Featured = prev.Featured
	}
	if fresh.Reading == nil {
		fresh.Reading = prev.Reading
	}
	if fresh.MicroThought == nil {
		fresh.MicroThought = prev.MicroThought
	}
	if fresh.Geek == nil {
		fresh.Geek = prev.Geek
	}
	return fresh
}

// fetchGeekWidget tries the digital-setup tag first and only then the geek tag.
func (o *Orchestrator) fetchGeekWidget(ctx context.Context) []cms.Post {
	setup, _ := o.fetch(ctx, tagDigitalSetup, func(ctx context.Context) ([]cms.Post, error) {
		return o.source.FetchPostsByTag(ctx, tagDigitalSetup, 1)
	})
	if len(setup) > 0 {
		return setup
	}
	geek, _ := o.fetch(ctx, tagGeek, func(ctx context.Context) ([]cms.Post, error) {
		return o.source.FetchPostsByTag(ctx, tagGeek, 1)
	})
	return geek
}

// fetch runs one branch, converting panics into errors and recording failures.
func (o *Orchestrator) fetch(ctx context.Context, branch string, fn func(context.Context) ([]cms.Post, error)) (posts []cms.Post, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			posts, err = nil, fmt.Errorf("content: %s branch panicked: %v", branch, rec)
		}
		if err != nil {
			o.recordFailure(ctx, branch, err)
		}
	}()
	if o.source == nil {
		return nil, errors.New("content: no source configured")
	}
	return fn(ctx)
}

func (o *Orchestrator) recordFailure(ctx context.Context, branch string, err error) {
	if errors.Is(err, cms.ErrNotConfigured) {
		o.logger.Debug("content: cms not configured", zap.String("branch", branch))
	} else {
		o.logger.Warn("content: fetch failed", zap.String("branch", branch), zap.Error(err))
	}
	if o.failuresEnabled {
		o.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("branch", branch)))
	}
}

// Run reloads the content every interval until ctx is cancelled or the orchestrator is
// closed. A non-positive interval returns immediately.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if o.isClosed() {
				return
			}
			o.Load(ctx)
		}
	}
}

// Page returns a standalone CMS page, cached for the configured TTL.
func (o *Orchestrator) Page(ctx context.Context, slug string) (cms.Page, error) {
	now := o.now()
	o.pagesMu.Lock()
	if entry, ok := o.pages[slug]; ok && now.Before(entry.expires) {
		o.pagesMu.Unlock()
		return entry.page, nil
	}
	o.pagesMu.Unlock()

	if o.source == nil {
		return cms.Page{}, cms.ErrNotFound
	}
	page, err := o.source.GetPage(ctx, slug)
	if err != nil {
		return cms.Page{}, err
	}

	o.pagesMu.Lock()
	o.pages[slug] = pageEntry{page: page, expires: now.Add(o.pageTTL)}
	o.pagesMu.Unlock()
	return page, nil
}

func first(posts []cms.Post) *cms.Post {
	if len(posts) == 0 {
		return nil
	}
	p := posts[0]
	return &p
}

func copySnapshot(s Snapshot) Snapshot {
	out := s
	if s.Posts != nil {
		out.Posts = make([]cms.Post, len(s.Posts))
		copy(out.Posts, s.Posts)
	}
	out.Widgets = Widgets{
		Featured:     clonePost(s.Widgets.Featured),
		Reading:      clonePost(s.Widgets.Reading),
		MicroThought: clonePost(s.Widgets.MicroThought),
		Geek:         clonePost(s.Widgets.Geek),
	}
	return out
}

func clonePost(p *cms.Post) *cms.Post {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
