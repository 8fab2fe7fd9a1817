package cache

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zstd"
	bolt "go.etcd.io/bbolt"
)

// Manager provides the main cache interface. It is safe for concurrent use.
type Manager struct {
	db       *bolt.DB
	basePath string
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
	cacheID  string

	reads  atomic.Int64
	writes atomic.Int64
}

// Open opens or creates a cache at the given path
func Open(basePath string, timeout time.Duration) (*Manager, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := &bolt.Options{
		Timeout:         timeout,
		FreelistType:    bolt.FreelistArrayType,
		PageSize:        16384,
		InitialMmapSize: 10 * 1024 * 1024,
	}

	db, err := bolt.Open(filepath.Join(basePath, "render.db"), 0644, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	m := &Manager{
		db:       db,
		basePath: basePath,
		encoder:  encoder,
		decoder:  decoder,
	}

	if err := m.initSchema(); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return m, nil
}

// Close closes the cache
func (m *Manager) Close() error {
	if m.encoder != nil {
		_ = m.encoder.Close()
	}
	if m.decoder != nil {
		m.decoder.Close()
	}
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// initSchema creates all buckets if they don't exist
func (m *Manager) initSchema() error {
	return m.db.Update(func(tx *bolt.Tx) error {
		for _, name := range AllBuckets() {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket([]byte(BucketMeta))
		if meta.Get([]byte(KeySchemaVersion)) == nil {
			if err := meta.Put([]byte(KeySchemaVersion), uint32Bytes(SchemaVersion)); err != nil {
				return err
			}
		}
		return nil
	})
}

// VerifyCacheID reports whether the stored cache ID differs from expectedID.
func (m *Manager) VerifyCacheID(expectedID string) (needsRebuild bool, err error) {
	var storedID []byte
	err = m.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(BucketMeta)).Get([]byte(KeyCacheID)); v != nil {
			storedID = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	m.cacheID = expectedID
	return storedID == nil || string(storedID) != expectedID, nil
}

// SetCacheID updates the cache ID
func (m *Manager) SetCacheID(id string) error {
	m.cacheID = id
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketMeta)).Put([]byte(KeyCacheID), []byte(id))
	})
}

// DB returns the underlying BoltDB instance
func (m *Manager) DB() *bolt.DB {
	return m.db
}

// Path returns the cache directory.
func (m *Manager) Path() string {
	return m.basePath
}

func uint32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
