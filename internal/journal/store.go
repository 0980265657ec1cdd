// Package journal keeps a local record of built and broadcast spends in a bbolt file.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goodnatureofminers/chainspend/internal/model"
	bolt "go.etcd.io/bbolt"
)

var spendsBucket = []byte("spends")

// ErrNotFound reports a txid with no record.
var ErrNotFound = errors.New("spend record not found")

// Store is a bbolt-backed spend journal. It is safe for concurrent use.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the journal file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(spendsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the journal file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts rec or replaces the record with the same TxID.
func (s *Store) Record(ctx context.Context, rec model.SpendRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.TxID == "" {
		return errors.New("spend record without txid")
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode spend record %s: %w", rec.TxID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(spendsBucket).Put([]byte(rec.TxID), value)
	})
}

// Get returns the record for txid.
func (s *Store) Get(txid string) (model.SpendRecord, error) {
	var rec model.SpendRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(spendsBucket).Get([]byte(txid))
		if v == nil {
			return fmt.Errorf("txid %s: %w", txid, ErrNotFound)
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return model.SpendRecord{}, err
	}
	return rec, nil
}

// List returns every record ordered by creation time.
func (s *Store) List() ([]model.SpendRecord, error) {
	var recs []model.SpendRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(spendsBucket).ForEach(func(k, v []byte) error {
			var rec model.SpendRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode spend record %s: %w", k, err)
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
	return recs, nil
}
