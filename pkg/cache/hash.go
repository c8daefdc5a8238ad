package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 digest of data. Flow inputs and layouts are
// identified by it, and FileCache shards its directory on its first bytes.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// stageKey derives the key of one pipeline stage ("layout" or "artifact")
// from the upstream hash and the options that affect the stage's output.
// Options are JSON encoded, so struct field order fixes the key.
func stageKey(stage, upstream string, opts any) string {
	data, _ := json.Marshal(opts)
	return stage + ":" + Hash(append([]byte(upstream+"\x00"), data...))
}
