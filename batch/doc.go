// Package batch implements frame batching: within one frame, every
// distinct identity key is tessellated at most once and its buffer is
// reused for every instance sharing the key.
//
// A Frame sits in front of the cross-frame cache. The first request for a
// key in a frame consults the cache (which refreshes the entry's recency);
// later requests for the same key are served from the frame's own map and
// never touch the cache. The frame also keeps a strong reference to every
// buffer it handed out, so an entry evicted from the cache mid-frame stays
// valid until the frame ends.
//
// Basic usage:
//
//	f := batcher.Begin()
//	for i := range instances {
//	    buf, err := f.GetOrTessellate(resolver.Resolve(&instances[i]), &instances[i])
//	    ...
//	}
//	stats := f.End()
package batch
