package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// keyVersion is mixed into every key. Bump it when the encoding of a cached
// diagram or artifact changes so old entries stop matching.
const keyVersion = "flowgen/1"

// hashKey returns "kind:<sha256>" over the JSON encoding of parts.
func hashKey(kind string, parts ...any) string {
	h := sha256.New()
	h.Write([]byte(keyVersion))
	enc := json.NewEncoder(h)
	for _, p := range parts {
		// Key parts are strings and option structs; they always encode.
		_ = enc.Encode(p)
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. The pipeline hashes diagrams over
// their flow.Marshal encoding, which is stable for equal diagrams.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// shard maps a key to a two-level file location: the first byte of its
// hash names the subdirectory.
func shard(key string) (dir, name string) {
	h := Hash([]byte(key))
	return h[:2], h[2:]
}
