//go:build geocachedebug

package cache

import "fmt"

// checkInvariants panics if the cache bookkeeping is inconsistent.
// Caller must hold c.mu.
func checkInvariants(c *Cache) {
	if c.lru.Len() != len(c.entries) {
		panic(fmt.Sprintf("cache: list holds %d entries, map holds %d", c.lru.Len(), len(c.entries)))
	}
	var sum int64
	var prev uint64
	for e := c.lru.head; e != nil; e = e.next {
		if c.entries[e.key] != e {
			panic(fmt.Sprintf("cache: entry %s in list but not in map", e.key))
		}
		if e.recency == 0 {
			panic(fmt.Sprintf("cache: entry %s has no recency marker", e.key))
		}
		if prev != 0 && e.recency >= prev {
			panic(fmt.Sprintf("cache: recency out of order at %s", e.key))
		}
		prev = e.recency
		sum += e.size
	}
	if sum != c.used {
		panic(fmt.Sprintf("cache: used %d bytes, entries sum to %d", c.used, sum))
	}
	if c.used > c.budget {
		panic(fmt.Sprintf("cache: used %d bytes exceeds budget %d", c.used, c.budget))
	}
}
