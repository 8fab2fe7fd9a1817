package cache

import (
	"encoding/binary"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
)

// PutRender stores entry under key. Concurrent callers are coalesced
// into shared transactions.
func (m *Manager) PutRender(key string, entry *RenderEntry) error {
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}
	data, err := Encode(entry)
	if err != nil {
		return err
	}
	stored := m.pack(data)

	m.writes.Add(1)
	return m.db.Batch(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketRenders)).Put([]byte(key), stored)
	})
}

// Reset drops every cached render.
func (m *Manager) Reset() error {
	return m.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(BucketRenders)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket([]byte(BucketRenders))
		return err
	})
}

// MarkBuild records a completed build.
func (m *Manager) MarkBuild(at time.Time) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		stats := tx.Bucket([]byte(BucketStats))
		var count uint64
		if v := stats.Get([]byte(KeyBuildCount)); len(v) == 8 {
			count = binary.BigEndian.Uint64(v)
		}
		if err := stats.Put([]byte(KeyBuildCount), uint64Bytes(count+1)); err != nil {
			return err
		}
		return stats.Put([]byte(KeyLastBuild), uint64Bytes(uint64(at.Unix())))
	})
}
