package rental

import (
	"context"
	"sort"
	"sync"

	"github.com/bitfsorg/estateshare-go/metrics"
)

// Store persists one rental record per property.
type Store interface {
	// Put records rec for propertyID, replacing any existing record.
	Put(ctx context.Context, propertyID uint64, rec Record) error

	// Get returns the record for propertyID, or Absent() if none exists.
	Get(ctx context.Context, propertyID uint64) (Record, error)

	// List returns every stored record ordered by property id.
	List(ctx context.Context) ([]Record, error)
}

// ExclusiveStore is a Store that can refuse to replace a rental that is
// still running.
type ExclusiveStore interface {
	Store

	// PutIfVacant records rec unless the existing record is active with
	// an end date after now, in which case it returns ErrRentalActive.
	PutIfVacant(ctx context.Context, propertyID uint64, rec Record, now int64) error
}

func sortByProperty(recs []Record) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].PropertyID < recs[j].PropertyID })
}

// MemoryStore keeps encoded records in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ ExclusiveStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, propertyID uint64, rec Record) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[Key(propertyID)] = data
	return nil
}

func (s *MemoryStore) Get(_ context.Context, propertyID uint64) (Record, error) {
	s.mu.RLock()
	data, ok := s.data[Key(propertyID)]
	s.mu.RUnlock()
	if !ok {
		return Absent(), nil
	}
	return decode(data)
}

func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.data))
	for _, data := range s.data {
		rec, err := decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sortByProperty(out)
	return out, nil
}

func (s *MemoryStore) PutIfVacant(_ context.Context, propertyID uint64, rec Record, now int64) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.data[Key(propertyID)]; ok {
		cur, err := decode(existing)
		if err != nil {
			return err
		}
		if cur.Occupied(now) {
			return ErrRentalActive
		}
	}
	s.data[Key(propertyID)] = data
	return nil
}

// Instrumented wraps a Store and counts its writes under backend.
type Instrumented struct {
	Store
	backend string
	metrics *metrics.Metrics
}

// Instrument returns s with write metrics recorded under backend.
func Instrument(s Store, backend string, m *metrics.Metrics) *Instrumented {
	return &Instrumented{Store: s, backend: backend, metrics: m}
}

func (s *Instrumented) Put(ctx context.Context, propertyID uint64, rec Record) error {
	err := s.Store.Put(ctx, propertyID, rec)
	s.metrics.RecordStoreWrite(s.backend, err)
	return err
}

// PutIfVacant forwards to the wrapped store. Stores without conditional
// writes fall back to a read followed by Put.
func (s *Instrumented) PutIfVacant(ctx context.Context, propertyID uint64, rec Record, now int64) error {
	var err error
	if ex, ok := s.Store.(ExclusiveStore); ok {
		err = ex.PutIfVacant(ctx, propertyID, rec, now)
	} else {
		err = putIfVacantUnlocked(ctx, s.Store, propertyID, rec, now)
	}
	s.metrics.RecordStoreWrite(s.backend, err)
	return err
}

func putIfVacantUnlocked(ctx context.Context, s Store, propertyID uint64, rec Record, now int64) error {
	cur, err := s.Get(ctx, propertyID)
	if err != nil {
		return err
	}
	if cur.Occupied(now) {
		return ErrRentalActive
	}
	return s.Put(ctx, propertyID, rec)
}
