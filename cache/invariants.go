//go:build !geocachedebug

package cache

// checkInvariants is compiled out of release builds.
// Build with -tags geocachedebug to verify bookkeeping on every insert.
func checkInvariants(*Cache) {}
