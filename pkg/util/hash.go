package util

import (
	"encoding/binary"

	"github.com/cespare/xxhash"
)

// HashKey produces a `xxhash` hash from a given byte slice
// NOTE: https://github.com/cespare/xxhash for more details
func HashKey(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}

// HashKeyString is a convenience wrapper that returns the hash
// as a fixed-width byte representation, usable as a cache key
func HashKeyString(payload []byte) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], xxhash.Sum64(payload))
	return string(buf[:])
}
