package batch

import (
	"sync"

	"github.com/gogpu/geocache/cache"
	"github.com/gogpu/geocache/identity"
	"github.com/gogpu/geocache/tessellate"
)

// Options selects which reuse layers are active.
type Options struct {
	// Batching enables intra-frame deduplication.
	Batching bool
	// Caching enables the cross-frame cache.
	Caching bool
	// Workers is the number of goroutines Frame.Prepare tessellates with.
	// Values below 1 mean 1.
	Workers int
}

// DefaultOptions enables both layers with a single worker.
func DefaultOptions() Options {
	return Options{Batching: true, Caching: true, Workers: 1}
}

// Batcher creates frames over a shared cache and tessellator.
type Batcher struct {
	mu    sync.Mutex
	cache *cache.Cache
	tess  tessellate.Tessellator
	opts  Options
}

// New creates a batcher. c may be nil, which behaves like a disabled cache.
func New(c *cache.Cache, tess tessellate.Tessellator, opts Options) *Batcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Batcher{cache: c, tess: tess, opts: opts}
}

// SetOptions changes the options used by frames begun afterwards.
func (b *Batcher) SetOptions(opts Options) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	b.mu.Lock()
	b.opts = opts
	b.mu.Unlock()
}

// Options returns the current options.
func (b *Batcher) Options() Options {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts
}

// Begin starts a new frame. Options are captured at this point and stay
// fixed for the frame.
func (b *Batcher) Begin() *Frame {
	opts := b.Options()
	f := &Frame{
		cache: b.cache,
		tess:  b.tess,
		opts:  opts,
	}
	if !opts.Caching {
		f.cache = nil
	}
	if opts.Batching {
		f.resolved = make(map[identity.Key]*tessellate.Buffer)
		f.failed = make(map[identity.Key]error)
	}
	return f
}
