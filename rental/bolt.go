package rental

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var bucketRentals = []byte("rentals")

// BoltStore persists rental records in a bbolt database file.
type BoltStore struct {
	db *bbolt.DB
}

var _ ExclusiveStore = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("rental: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("rental: open bolt db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRentals)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("rental: create bucket %q: %w", bucketRentals, err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Put records rec for propertyID.
func (s *BoltStore) Put(_ context.Context, propertyID uint64, rec Record) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRentals).Put([]byte(Key(propertyID)), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	return nil
}

// Get returns the record for propertyID, or Absent().
func (s *BoltStore) Get(_ context.Context, propertyID uint64) (Record, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketRentals).Get([]byte(Key(propertyID))); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	if data == nil {
		return Absent(), nil
	}
	return decode(data)
}

// List returns every record ordered by property id.
func (s *BoltStore) List(_ context.Context) ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRentals).ForEach(func(k, v []byte) error {
			if _, ok := ParseKey(string(k)); !ok {
				return nil
			}
			rec, err := decode(v)
			if err != nil {
				return fmt.Errorf("key %s: %w", k, err)
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortByProperty(out)
	return out, nil
}

// PutIfVacant checks and writes inside a single bbolt transaction.
func (s *BoltStore) PutIfVacant(_ context.Context, propertyID uint64, rec Record, now int64) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	key := []byte(Key(propertyID))
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRentals)
		if v := b.Get(key); v != nil {
			cur, err := decode(v)
			if err != nil {
				return err
			}
			if cur.Occupied(now) {
				return ErrRentalActive
			}
		}
		if err := b.Put(key, data); err != nil {
			return fmt.Errorf("%w: %w", ErrStoreWrite, err)
		}
		return nil
	})
}
