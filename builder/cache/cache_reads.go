package cache

import (
	"encoding/binary"

	bolt "go.etcd.io/bbolt"
)

// GetRender returns the entry for key, or nil when absent.
func (m *Manager) GetRender(key string) (*RenderEntry, error) {
	m.reads.Add(1)

	var stored []byte
	err := m.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(BucketRenders)).Get([]byte(key)); v != nil {
			// bolt values are only valid inside the transaction
			stored = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || stored == nil {
		return nil, err
	}

	data, err := m.unpack(stored)
	if err != nil {
		return nil, err
	}
	var entry RenderEntry
	if err := Decode(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Stats walks the cache and reports its size.
func (m *Manager) Stats() (*Stats, error) {
	s := &Stats{}
	err := m.db.View(func(tx *bolt.Tx) error {
		err := tx.Bucket([]byte(BucketRenders)).ForEach(func(k, v []byte) error {
			s.Entries++
			s.StoredBytes += int64(len(v))
			if len(v) > 0 && CompressionType(v[0]) == CompressionZstd {
				s.Compressed++
			}
			return nil
		})
		if err != nil {
			return err
		}

		if v := tx.Bucket([]byte(BucketMeta)).Get([]byte(KeySchemaVersion)); len(v) == 4 {
			s.SchemaVersion = int(binary.BigEndian.Uint32(v))
		}
		stats := tx.Bucket([]byte(BucketStats))
		if v := stats.Get([]byte(KeyBuildCount)); len(v) == 8 {
			s.BuildCount = int(binary.BigEndian.Uint64(v))
		}
		if v := stats.Get([]byte(KeyLastBuild)); len(v) == 8 {
			s.LastBuildTime = int64(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	return s, err
}

// Counters returns the number of reads and writes since Open.
func (m *Manager) Counters() (reads, writes int64) {
	return m.reads.Load(), m.writes.Load()
}
