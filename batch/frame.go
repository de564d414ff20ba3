package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/geocache/cache"
	"github.com/gogpu/geocache/identity"
	"github.com/gogpu/geocache/model"
	"github.com/gogpu/geocache/tessellate"
)

// FrameStats counts what a frame did.
type FrameStats struct {
	// Requests is the number of GetOrTessellate calls.
	Requests int
	// FrameHits were served from the frame's own map, including keys
	// resolved ahead of time by Prepare.
	FrameHits int
	// CacheHits were served from the cross-frame cache.
	CacheHits int
	// Misses consulted the cache and found nothing.
	Misses int
	// Tessellations is the number of Tessellator invocations.
	Tessellations int
	// Uncacheable requests bypassed both layers.
	Uncacheable int
	// Failures is the number of requests that returned an error.
	Failures int
	// RefusedInserts were tessellated but not stored by the cache.
	RefusedInserts int
}

// Request is one instance to draw in a frame.
type Request struct {
	ID       identity.Identity
	Instance *model.Instance
}

// Frame is the batching state of a single frame. A Frame must only be
// used from the goroutine that began it, and not after End.
type Frame struct {
	cache *cache.Cache // nil when caching is disabled
	tess  tessellate.Tessellator
	opts  Options

	resolved map[identity.Key]*tessellate.Buffer // nil when batching is disabled
	failed   map[identity.Key]error
	held     []*tessellate.Buffer // strong references for the rest of the frame
	stats    FrameStats
	ended    bool
}

// GetOrTessellate returns the buffer for an instance with identity id.
//
// NotCacheable instances are tessellated unconditionally and never stored.
// A key already resolved this frame is returned without further work.
// Otherwise the cache is consulted, and on a miss the instance is
// tessellated and offered to the cache. A buffer the cache refuses is still
// returned for this frame.
//
// On error nothing is recorded; the instance should be skipped.
func (f *Frame) GetOrTessellate(id identity.Identity, inst *model.Instance) (*tessellate.Buffer, error) {
	f.mustBeLive()
	f.stats.Requests++

	key, ok := id.Key()
	if !ok {
		f.stats.Uncacheable++
		buf, err := f.tessellate(inst)
		if err != nil {
			return nil, err
		}
		f.held = append(f.held, buf)
		return buf, nil
	}

	if f.resolved != nil {
		if buf, ok := f.resolved[key]; ok {
			f.stats.FrameHits++
			return buf, nil
		}
		if err, ok := f.failed[key]; ok {
			f.stats.Failures++
			return nil, err
		}
	}

	if f.cache != nil {
		if buf, ok := f.cache.Get(key); ok {
			f.stats.CacheHits++
			f.record(key, buf)
			return buf, nil
		}
		f.stats.Misses++
	}

	buf, err := f.tessellate(inst)
	if err != nil {
		if f.failed != nil {
			f.failed[key] = err
		}
		return nil, err
	}
	f.store(key, buf)
	return buf, nil
}

// Prepare tessellates the distinct cache misses among reqs concurrently,
// using up to Options.Workers goroutines, so that the GetOrTessellate calls
// that follow are all hits. Cache lookups and inserts stay on the calling
// goroutine and happen in traversal order, so the first occurrence of each
// key wins exactly as in the serial path.
//
// Prepare does nothing unless batching is enabled and more than one worker
// is configured. It returns an error only if ctx is canceled; tessellation
// failures are reported by GetOrTessellate.
func (f *Frame) Prepare(ctx context.Context, reqs []Request) error {
	f.mustBeLive()
	if f.resolved == nil || f.opts.Workers < 2 {
		return nil
	}

	type job struct {
		key  identity.Key
		inst *model.Instance
		buf  *tessellate.Buffer
		err  error
	}
	var jobs []*job
	pending := make(map[identity.Key]bool)

	for _, req := range reqs {
		key, ok := req.ID.Key()
		if !ok || pending[key] {
			continue
		}
		if _, done := f.resolved[key]; done {
			continue
		}
		if _, done := f.failed[key]; done {
			continue
		}
		// Touch hits now, in traversal order, like the serial path would.
		if f.cache != nil {
			if buf, hit := f.cache.Get(key); hit {
				f.stats.CacheHits++
				f.record(key, buf)
				continue
			}
		}
		pending[key] = true
		jobs = append(jobs, &job{key: key, inst: req.Instance})
	}
	if len(jobs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			j.buf, j.err = f.tess.Tessellate(j.inst)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, j := range jobs {
		f.stats.Tessellations++
		if f.cache != nil {
			f.stats.Misses++
		}
		if j.err != nil {
			f.failed[j.key] = j.err
			continue
		}
		f.store(j.key, j.buf)
	}
	return nil
}

// Stats returns the counters accumulated so far.
func (f *Frame) Stats() FrameStats {
	return f.stats
}

// End finishes the frame, releasing its references, and returns its stats.
// Buffers handed out by the frame must not be used by the caller after End
// unless it holds its own reference.
func (f *Frame) End() FrameStats {
	f.mustBeLive()
	f.ended = true
	f.resolved = nil
	f.failed = nil
	f.held = nil
	return f.stats
}

func (f *Frame) tessellate(inst *model.Instance) (*tessellate.Buffer, error) {
	f.stats.Tessellations++
	buf, err := f.tess.Tessellate(inst)
	if err != nil {
		f.stats.Failures++
		return nil, err
	}
	return buf, nil
}

// store offers a freshly tessellated buffer to the cache and records it.
func (f *Frame) store(key identity.Key, buf *tessellate.Buffer) {
	if f.cache != nil && !f.cache.Insert(key, buf, buf.Size()) {
		f.stats.RefusedInserts++
	}
	f.record(key, buf)
}

// record keeps buf alive for the rest of the frame and, when batching,
// makes it the answer for key.
func (f *Frame) record(key identity.Key, buf *tessellate.Buffer) {
	f.held = append(f.held, buf)
	if f.resolved != nil {
		f.resolved[key] = buf
	}
}

func (f *Frame) mustBeLive() {
	if f.ended {
		panic("batch: frame used after End")
	}
}
