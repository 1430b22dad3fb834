package rental

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// maxWatchRetries bounds optimistic-lock retries in PutIfVacant.
const maxWatchRetries = 8

// RedisStore keeps rental records in Redis so every front-end sees the
// same rentals.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

var _ ExclusiveStore = (*RedisStore)(nil)

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("rental: connect to redis %s: %w", addr, err)
	}
	return NewRedisStoreFromClient(client, logger), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, logger: logger}
}

// Put records rec for propertyID.
func (s *RedisStore) Put(ctx context.Context, propertyID uint64, rec Record) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, Key(propertyID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	return nil
}

// Get returns the record for propertyID, or Absent().
func (s *RedisStore) Get(ctx context.Context, propertyID uint64) (Record, error) {
	data, err := s.client.Get(ctx, Key(propertyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Absent(), nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	return decode(data)
}

// List scans every rental key and returns the records ordered by property id.
func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if _, ok := ParseKey(iter.Val()); ok {
			keys = append(keys, iter.Val())
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan: %w", ErrStoreRead, err)
	}
	if len(keys) == 0 {
		return []Record{}, nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: mget: %w", ErrStoreRead, err)
	}
	out := make([]Record, 0, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// Deleted between SCAN and MGET.
			continue
		}
		rec, err := decode([]byte(str))
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", keys[i], err)
		}
		out = append(out, rec)
	}
	sortByProperty(out)
	return out, nil
}

// PutIfVacant writes rec under WATCH so a concurrent writer either sees
// this rental or aborts the transaction.
func (s *RedisStore) PutIfVacant(ctx context.Context, propertyID uint64, rec Record, now int64) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	key := Key(propertyID)

	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("%w: %w", ErrStoreRead, err)
		default:
			existing, err := decode(cur)
			if err != nil {
				return err
			}
			if existing.Occupied(now) {
				return ErrRentalActive
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStoreWrite, err)
		}
		return nil
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		s.logger.Debug("rental write raced, retrying", zap.String("key", key), zap.Int("attempt", attempt+1))
	}
	return fmt.Errorf("%w: %s: too many concurrent writers", ErrStoreWrite, key)
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
