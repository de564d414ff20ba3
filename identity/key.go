package identity

import (
	"encoding/binary"
	"encoding/hex"
)

// Key is a fixed-width content hash of an instance's tessellation inputs.
// Keys are plain values: compare them with == and use them as map keys.
type Key struct {
	hi, lo uint64
}

// keyFromSum builds a Key from a 16-byte big-endian hash sum.
func keyFromSum(sum []byte) Key {
	return Key{
		hi: binary.BigEndian.Uint64(sum[0:8]),
		lo: binary.BigEndian.Uint64(sum[8:16]),
	}
}

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool {
	return k.hi == 0 && k.lo == 0
}

// Uint64 folds the key into 64 bits, e.g. for shard selection.
func (k Key) Uint64() uint64 {
	return k.hi ^ k.lo
}

// String returns the key as 32 hex digits.
func (k Key) String() string {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], k.hi)
	binary.BigEndian.PutUint64(b[8:16], k.lo)
	return hex.EncodeToString(b[:])
}

// Identity is the result of resolving an instance: either a cacheable Key
// or NotCacheable.
type Identity struct {
	key       Key
	cacheable bool
}

// NotCacheable is the identity of instances that must be tessellated fresh
// every time they are drawn.
var NotCacheable = Identity{}

// Of returns the cacheable identity for k.
func Of(k Key) Identity {
	return Identity{key: k, cacheable: true}
}

// Key returns the key and true for cacheable identities.
func (id Identity) Key() (Key, bool) {
	return id.key, id.cacheable
}

// Cacheable reports whether the identity carries a key.
func (id Identity) Cacheable() bool {
	return id.cacheable
}

// String returns the key string or "not-cacheable".
func (id Identity) String() string {
	if !id.cacheable {
		return "not-cacheable"
	}
	return id.key.String()
}
