// Package redisstore persists quota state in Redis for deployments that
// already run Redis and do not want PostgreSQL for a single table.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"poagate/internal/quota/models"
	id "poagate/pkg/domain"
	"poagate/pkg/platform/sentinel"
)

const keyPrefix = "poagate:quota:"

// RedisStore stores each user's state as a JSON value. Conditional writes
// use WATCH/MULTI: the version check happens inside the watched section, so
// a concurrent write aborts the transaction.
type RedisStore struct {
	client redis.UniversalClient
}

func New(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func stateKey(userID id.UserID) string {
	return keyPrefix + userID.String()
}

func (s *RedisStore) Get(ctx context.Context, userID id.UserID) (*models.State, error) {
	raw, err := s.client.Get(ctx, stateKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quota state: %w", err)
	}
	return decodeState(raw)
}

func (s *RedisStore) Create(ctx context.Context, state *models.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode quota state: %w", err)
	}

	set, err := s.client.SetNX(ctx, stateKey(state.UserID), raw, 0).Result()
	if err != nil {
		return fmt.Errorf("create quota state: %w", err)
	}
	if !set {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, next *models.State) error {
	key := stateKey(next.UserID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read quota state: %w", err)
		}

		current, err := decodeState(raw)
		if err != nil {
			return err
		}
		if current.Version != next.Version-1 {
			return sentinel.ErrConflict
		}

		encoded, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode quota state: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return sentinel.ErrConflict
	}
	return err
}

func decodeState(raw []byte) (*models.State, error) {
	var state models.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode quota state: %w", err)
	}
	return &state, nil
}
