// Package cache stores rendered markdown in BoltDB so unchanged records
// skip the markdown pass on the next build.
package cache

import (
	"encoding/hex"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"

	"github.com/Kush-Singh-26/koshgraph/builder/models"
)

// RenderEntry is the cached phase 2 output of one record.
type RenderEntry struct {
	Content     string          `msgpack:"content"`
	Summary     string          `msgpack:"summary,omitempty"`
	Toc         []models.Header `msgpack:"toc"`
	WordCount   int             `msgpack:"word_count"`
	BrokenLinks []string        `msgpack:"broken_links,omitempty"`
	CreatedAt   int64           `msgpack:"created_at"`
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries       int   `msgpack:"entries"`
	Compressed    int   `msgpack:"compressed"`
	StoredBytes   int64 `msgpack:"stored_bytes"`
	BuildCount    int   `msgpack:"build_count"`
	LastBuildTime int64 `msgpack:"last_build_time"`
	SchemaVersion int   `msgpack:"schema_version"`
}

// CompressionType indicates how an entry is stored
type CompressionType byte

const (
	CompressionNone CompressionType = iota
	CompressionZstd
)

const (
	RawThreshold  = 8 * 1024 // < 8KB stored raw
	SchemaVersion = 1
)

// HashContent computes BLAKE3 hash of content and returns hex string
func HashContent(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashString computes BLAKE3 hash of a string
func HashString(s string) string {
	return HashContent([]byte(s))
}

// RenderKey derives the cache key of a record render from everything
// that feeds the markdown pass.
func RenderKey(parts ...string) string {
	return HashString(strings.Join(parts, "\x00"))
}

// Encode serializes a value to msgpack bytes
func Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode deserializes msgpack bytes to a value
func Decode(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
