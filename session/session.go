package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/geocache"
	"github.com/gogpu/geocache/batch"
	"github.com/gogpu/geocache/cache"
	"github.com/gogpu/geocache/config"
	"github.com/gogpu/geocache/identity"
	"github.com/gogpu/geocache/model"
	"github.com/gogpu/geocache/tessellate"
)

// DrawItem is one instance ready for submission.
type DrawItem struct {
	// Index is the instance's position in the frame's traversal order.
	Index int
	// ID is the identity the buffer was resolved under.
	ID identity.Identity
	// Buffer is model-local geometry with orientation applied. It is
	// shared with every other instance of the same identity.
	Buffer *tessellate.Buffer
	// Position is the world translation to apply at draw time.
	Position model.Vertex
}

// Submitter is the graphics-submission collaborator. Buffers passed to
// Submit stay valid at least until EndFrame returns.
type Submitter interface {
	Submit(item DrawItem) error
	EndFrame() error
}

// Diagnostics receives per-instance tessellation failures.
type Diagnostics interface {
	TessellationFailed(index int, inst *model.Instance, err error)
}

// FrameReport summarizes one RenderFrame call.
type FrameReport struct {
	// Frame is the 1-based frame number within the session.
	Frame uint64
	// Drawn is the number of submitted instances.
	Drawn int
	// Skipped is the number of instances dropped because tessellation failed.
	Skipped int
	// Batch holds the batcher's counters for the frame.
	Batch batch.FrameStats
}

// Option configures a Session.
type Option func(*Session)

// WithTessellator replaces the reference tessellator.
func WithTessellator(t tessellate.Tessellator) Option {
	return func(s *Session) {
		s.tess = t
	}
}

// WithDiagnostics sets the collaborator notified of tessellation failures.
func WithDiagnostics(d Diagnostics) Option {
	return func(s *Session) {
		s.diag = d
	}
}

// WithLogger sets the logger used by this session instead of the module
// logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithWorkers overrides the settings' tessellation worker count.
func WithWorkers(n int) Option {
	return func(s *Session) {
		s.workers = n
	}
}

// WithResolverOptions configures the identity resolver.
func WithResolverOptions(opts ...identity.Option) Option {
	return func(s *Session) {
		s.resolverOpts = append(s.resolverOpts, opts...)
	}
}

// Session owns the geometry cache state of one renderer session.
//
// RenderFrame, Reload and Close must be called from the render goroutine.
// ApplySettings and Stats may be called from any goroutine.
type Session struct {
	mu       sync.Mutex
	settings config.Settings

	tess         tessellate.Tessellator
	diag         Diagnostics
	resolverOpts []identity.Option
	log          *slog.Logger
	workers      int

	cache    *cache.Cache
	batcher  *batch.Batcher
	resolver *identity.Resolver

	frames uint64
	closed bool

	// Per-frame scratch reused across frames.
	ids  []identity.Identity
	reqs []batch.Request
}

// New starts a session with the given settings.
func New(settings config.Settings, opts ...Option) *Session {
	settings = settings.Normalize()
	s := &Session{
		settings: settings,
		tess:     tessellate.Reference{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers > 0 {
		settings.Workers = s.workers
		s.settings = settings
	}

	s.cache = cache.New(settings.BudgetBytes())
	s.batcher = batch.New(s.cache, s.tess, batchOptions(settings))
	s.resolver = identity.NewResolver(s.resolverOpts...)

	s.logger().Info("geometry cache session started",
		slog.Bool("batching", settings.ModelBatching),
		slog.Bool("caching", settings.ModelCaching),
		slog.Int64("budget", settings.BudgetBytes()),
		slog.Int("workers", settings.Workers))
	return s
}

func (s *Session) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return geocache.ComponentLogger("session")
}

func batchOptions(s config.Settings) batch.Options {
	return batch.Options{
		Batching: s.ModelBatching,
		Caching:  s.ModelCaching && s.BudgetBytes() > 0,
		Workers:  s.Workers,
	}
}

// Settings returns the settings currently in effect.
func (s *Session) Settings() config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// ApplySettings changes the session's settings. A changed cache budget
// clears the cache and resizes it; disabling caching clears it as well.
// Toggles take effect from the next frame.
func (s *Session) ApplySettings(next config.Settings) {
	next = next.Normalize()
	if s.workers > 0 {
		next.Workers = s.workers
	}

	s.mu.Lock()
	prev := s.settings
	s.settings = next
	s.mu.Unlock()

	switch {
	case next.BudgetBytes() != prev.BudgetBytes():
		s.cache.Resize(next.BudgetBytes())
	case prev.ModelCaching && !next.ModelCaching:
		s.cache.Clear()
		s.logger().Info("geometry cache disabled, entries dropped")
	}
	s.batcher.SetOptions(batchOptions(next))
}

// Reload drops every cached buffer. Call it whenever the scene is reloaded,
// since shape IDs may be reused for different geometry.
func (s *Session) Reload() {
	entries := s.cache.Len()
	s.cache.Clear()
	s.logger().Info("scene reloaded, geometry cache cleared",
		slog.Int("entries", entries))
}

// Close tears the session down, releasing all cached buffers.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cache.Clear()
}

// Stats returns the cross-frame cache statistics.
func (s *Session) Stats() cache.Stats {
	return s.cache.Stats()
}

// Cache exposes the session's cross-frame cache.
func (s *Session) Cache() *cache.Cache {
	return s.cache
}

// RenderFrame resolves, batches and submits one frame of instances in
// traversal order. sub may be nil to resolve buffers without submitting.
//
// RenderFrame returns an error only when ctx is canceled, the session is
// closed or the submitter fails; tessellation failures are reported to
// Diagnostics and counted in the report.
func (s *Session) RenderFrame(ctx context.Context, instances []model.Instance, sub Submitter) (report FrameReport, err error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return FrameReport{}, ErrClosed
	}

	s.frames++
	report.Frame = s.frames
	log := s.logger()

	frame := s.batcher.Begin()
	defer func() {
		report.Batch = frame.End()
	}()

	s.ids = s.ids[:0]
	s.reqs = s.reqs[:0]
	for i := range instances {
		id := s.resolver.Resolve(&instances[i])
		s.ids = append(s.ids, id)
		s.reqs = append(s.reqs, batch.Request{ID: id, Instance: &instances[i]})
	}

	if err := frame.Prepare(ctx, s.reqs); err != nil {
		return report, fmt.Errorf("session: prepare frame %d: %w", report.Frame, err)
	}

	for i := range instances {
		buf, err := frame.GetOrTessellate(s.ids[i], &instances[i])
		if err != nil {
			report.Skipped++
			log.Warn("tessellation failed, instance skipped",
				slog.Uint64("frame", report.Frame),
				slog.Int("index", i),
				slog.String("id", s.ids[i].String()),
				slog.Any("error", err))
			if s.diag != nil {
				s.diag.TessellationFailed(i, &instances[i], err)
			}
			continue
		}
		if sub == nil {
			report.Drawn++
			continue
		}
		item := DrawItem{Index: i, ID: s.ids[i], Buffer: buf, Position: instances[i].Position}
		if err := sub.Submit(item); err != nil {
			return report, fmt.Errorf("session: submit instance %d: %w", i, err)
		}
		report.Drawn++
	}

	if sub != nil {
		if err := sub.EndFrame(); err != nil {
			return report, fmt.Errorf("session: end frame %d: %w", report.Frame, err)
		}
	}

	if log.Enabled(ctx, slog.LevelDebug) {
		st := frame.Stats()
		log.Debug("frame processed",
			slog.Uint64("frame", report.Frame),
			slog.Int("drawn", report.Drawn),
			slog.Int("skipped", report.Skipped),
			slog.Int("frame_hits", st.FrameHits),
			slog.Int("cache_hits", st.CacheHits),
			slog.Int("tessellations", st.Tessellations))
	}
	return report, nil
}
