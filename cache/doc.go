// Package cache provides the cross-frame geometry cache: a byte-budgeted
// store mapping identity keys to finished vertex buffers.
//
// # Eviction
//
// Eviction is strict least-recently-used. Every Get, Touch and Insert stamps
// the entry with the next value of a monotonic sequence counter, so no two
// entries ever share a recency marker and ties are resolved by insertion
// order. Entries are evicted whole; a buffer is never partially reclaimed.
//
// # Budget
//
// The sum of stored entry sizes never exceeds the budget once an Insert
// returns. An entry larger than the whole budget is refused without
// disturbing anything already cached. A budget of zero or less refuses
// every insert, which behaves exactly like a disabled cache.
//
// # Ownership
//
// Evicting an entry only drops the cache's reference to its buffer. Callers
// that received the buffer earlier (the frame batcher keeps one for the rest
// of the frame) can keep using it; buffers are immutable.
//
// # Thread Safety
//
// Cache is safe for concurrent use. It must not be copied after creation.
package cache
