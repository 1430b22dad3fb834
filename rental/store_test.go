package rental

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bitfsorg/estateshare-go/metrics"
)

type storeFactory func(t *testing.T) ExclusiveStore

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) ExclusiveStore { return NewMemoryStore() },
		"bolt": func(t *testing.T) ExclusiveStore {
			s, err := OpenBoltStore(filepath.Join(t.TempDir(), "nested", "rentals.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"redis": func(t *testing.T) ExclusiveStore {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			s := NewRedisStoreFromClient(client, zaptest.NewLogger(t))
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"postgres": func(t *testing.T) ExclusiveStore {
			dsn := os.Getenv("ESTATE_TEST_POSTGRES_DSN")
			if dsn == "" {
				t.Skip("ESTATE_TEST_POSTGRES_DSN not set")
			}
			s, err := OpenPostgresStore(context.Background(), dsn)
			require.NoError(t, err)
			_, err = s.pool.Exec(context.Background(), `TRUNCATE rentals`)
			require.NoError(t, err)
			t.Cleanup(s.Close)
			return s
		},
	}
}

func sampleRecord(id uint64, tenant string, start int64, years int64, rent int64) Record {
	return Record{
		PropertyID: id,
		Tenant:     tenant,
		StartDate:  start,
		EndDate:    start + years*SecondsPerYear,
		YearlyRent: big.NewInt(rent),
		IsActive:   true,
	}
}

func TestStores(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Run("get missing returns absent", func(t *testing.T) {
				s := factory(t)
				rec, err := s.Get(context.Background(), 99)
				require.NoError(t, err)
				assert.True(t, rec.Equal(Absent()))
			})

			t.Run("put then get round trips", func(t *testing.T) {
				s := factory(t)
				rent, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
				want := sampleRecord(7, "tenant", 1_700_000_000, 2, 0)
				want.YearlyRent = rent
				require.NoError(t, s.Put(context.Background(), 7, want))

				got, err := s.Get(context.Background(), 7)
				require.NoError(t, err)
				assert.True(t, want.Equal(got), "got %+v", got)
			})

			t.Run("last write wins", func(t *testing.T) {
				s := factory(t)
				ctx := context.Background()
				require.NoError(t, s.Put(ctx, 1, sampleRecord(1, "first", 10, 1, 5)))
				require.NoError(t, s.Put(ctx, 1, sampleRecord(1, "second", 20, 1, 6)))

				got, err := s.Get(ctx, 1)
				require.NoError(t, err)
				assert.Equal(t, "second", got.Tenant)
				assert.Equal(t, "6", got.YearlyRent.String())
			})

			t.Run("list is ordered by property", func(t *testing.T) {
				s := factory(t)
				ctx := context.Background()
				for _, id := range []uint64{12, 3, 7} {
					require.NoError(t, s.Put(ctx, id, sampleRecord(id, "t", 0, 1, 1)))
				}
				recs, err := s.List(ctx)
				require.NoError(t, err)
				require.Len(t, recs, 3)
				assert.Equal(t, uint64(3), recs[0].PropertyID)
				assert.Equal(t, uint64(7), recs[1].PropertyID)
				assert.Equal(t, uint64(12), recs[2].PropertyID)
			})

			t.Run("put if vacant", func(t *testing.T) {
				s := factory(t)
				ctx := context.Background()
				active := sampleRecord(5, "first", 1000, 1, 10)
				require.NoError(t, s.PutIfVacant(ctx, 5, active, 1000))

				err := s.PutIfVacant(ctx, 5, sampleRecord(5, "second", 2000, 1, 10), 2000)
				assert.ErrorIs(t, err, ErrRentalActive)

				// Once the first rental has ended the property is free again.
				after := active.EndDate
				require.NoError(t, s.PutIfVacant(ctx, 5, sampleRecord(5, "third", after, 1, 10), after))
				got, err := s.Get(ctx, 5)
				require.NoError(t, err)
				assert.Equal(t, "third", got.Tenant)
			})
		})
	}
}

func TestPutIfVacantConcurrent(t *testing.T) {
	for _, name := range []string{"memory", "bolt", "redis"} {
		t.Run(name, func(t *testing.T) {
			s := backends()[name](t)
			ctx := context.Background()

			const writers = 8
			var wg sync.WaitGroup
			errs := make([]error, writers)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					errs[i] = s.PutIfVacant(ctx, 1, sampleRecord(1, string(rune('a'+i)), 100, 1, 1), 100)
				}(i)
			}
			wg.Wait()

			won := 0
			for _, err := range errs {
				if err == nil {
					won++
				} else {
					assert.ErrorIs(t, err, ErrRentalActive)
				}
			}
			assert.Equal(t, 1, won)
		})
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rentals.db")
	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), 4, sampleRecord(4, "t", 1, 3, 9)))
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "t", got.Tenant)
	assert.Equal(t, int64(1+3*SecondsPerYear), got.EndDate)
}

func TestRedisStoreRawLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	defer s.Close()

	require.NoError(t, s.Put(context.Background(), 3, sampleRecord(3, "t", 10, 1, 50)))
	raw, err := mr.Get("rental_3")
	require.NoError(t, err)
	assert.JSONEq(t, `{"propertyId":3,"tenant":"t","startDate":10,"endDate":31536010,"yearlyRent":"50","isActive":true}`, raw)

	// Foreign keys in the same database are ignored by List.
	mr.Set("session_1", "x")
	recs, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRedisStoreCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	defer s.Close()

	mr.Set("rental_1", "{not json")
	_, err := s.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), nil)
	defer s.Close()
	mr.Close()

	err := s.Put(context.Background(), 1, sampleRecord(1, "t", 0, 1, 1))
	assert.ErrorIs(t, err, ErrStoreWrite)
}

// getOnlyStore hides PutIfVacant from Instrumented.
type getOnlyStore struct{ Store }

func TestInstrumented(t *testing.T) {
	m := metrics.NewMetrics(nil)
	s := Instrument(getOnlyStore{NewMemoryStore()}, "memory", m)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, 1, sampleRecord(1, "a", 0, 1, 1)))
	assert.ErrorIs(t, s.PutIfVacant(ctx, 1, sampleRecord(1, "b", 0, 1, 1), 0), ErrRentalActive)
	require.NoError(t, s.PutIfVacant(ctx, 2, sampleRecord(2, "b", 0, 1, 1), 0))

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Tenant)
}
