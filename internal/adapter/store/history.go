package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
	"kbrag/internal/domain"
)

var bucketHistory = []byte("history")

// BoltHistory persists chat turns in a bbolt bucket keyed by a big-endian
// sequence number, so cursor order is insertion order.
type BoltHistory struct {
	db         *bbolt.DB
	maxEntries int
}

func NewBoltHistory(path string, maxEntries int) (*BoltHistory, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketHistory); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketHistory, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltHistory{db: db, maxEntries: maxEntries}, nil
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func (s *BoltHistory) Append(entry domain.ChatEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketHistory)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(seqKey(seq), data); err != nil {
			return err
		}
		if s.maxEntries <= 0 {
			return nil
		}

		first, n := span(b)
		for i := 0; i < n-s.maxEntries; i++ {
			if err := b.Delete(seqKey(first + uint64(i))); err != nil {
				return err
			}
		}
		return nil
	})
}

// span returns the first key and the number of entries. Keys are
// contiguous because appends take the next sequence and trims only remove
// the oldest, so the count comes from the two cursor ends.
func span(b *bbolt.Bucket) (uint64, int) {
	c := b.Cursor()
	firstKey, _ := c.First()
	if firstKey == nil {
		return 0, 0
	}
	lastKey, _ := c.Last()
	first := binary.BigEndian.Uint64(firstKey)
	last := binary.BigEndian.Uint64(lastKey)
	return first, int(last-first) + 1
}

func (s *BoltHistory) List(limit int) ([]domain.ChatEntry, error) {
	var entries []domain.ChatEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketHistory).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var entry domain.ChatEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("corrupt history entry: %w", err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (s *BoltHistory) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		_, n = span(tx.Bucket(bucketHistory))
		return nil
	})
	return n, err
}

func (s *BoltHistory) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketHistory); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketHistory)
		return err
	})
}

func (s *BoltHistory) Close() error {
	return s.db.Close()
}
