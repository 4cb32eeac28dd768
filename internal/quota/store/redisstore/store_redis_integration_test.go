//go:build integration

package redisstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"poagate/internal/quota/models"
	"poagate/internal/quota/store/redisstore"
	id "poagate/pkg/domain"
	"poagate/pkg/platform/sentinel"
	"poagate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *redisstore.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = redisstore.New(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) newState() *models.State {
	state, err := models.NewState(id.NewUserID(), models.TierFree, models.RoleUser, time.Now())
	s.Require().NoError(err)
	return state
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	state := s.newState()
	state.Tier = models.TierProfessional
	state.ValidationsThisMonth = 7

	s.Require().NoError(s.store.Create(ctx, state))

	got, err := s.store.Get(ctx, state.UserID)
	s.Require().NoError(err)
	s.Equal(state, got)
}

func (s *RedisStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestCreateConflict() {
	ctx := context.Background()
	state := s.newState()

	s.Require().NoError(s.store.Create(ctx, state))
	s.ErrorIs(s.store.Create(ctx, state), sentinel.ErrConflict)
}

func (s *RedisStoreSuite) TestConditionalUpdate() {
	ctx := context.Background()
	state := s.newState()
	s.Require().NoError(s.store.Create(ctx, state))

	s.Run("matching expected version commits", func() {
		next := state.Clone()
		next.ValidationsThisMonth = 1
		next.Version++
		s.Require().NoError(s.store.Update(ctx, next))

		got, err := s.store.Get(ctx, state.UserID)
		s.Require().NoError(err)
		s.Equal(1, got.ValidationsThisMonth)
		s.Equal(int64(1), got.Version)
	})

	s.Run("stale expected version loses", func() {
		stale := state.Clone()
		stale.Version++
		s.ErrorIs(s.store.Update(ctx, stale), sentinel.ErrConflict)
	})

	s.Run("missing user returns not found", func() {
		missing := s.newState()
		missing.Version++
		s.ErrorIs(s.store.Update(ctx, missing), sentinel.ErrNotFound)
	})
}

// TestConcurrentConditionalWrites verifies the WATCH/MULTI guard: every
// committed write bumps the version by exactly one.
func (s *RedisStoreSuite) TestConcurrentConditionalWrites() {
	ctx := context.Background()
	state := s.newState()
	s.Require().NoError(s.store.Create(ctx, state))

	const goroutines = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	committed := 0

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			cur, err := s.store.Get(ctx, state.UserID)
			if err != nil {
				return
			}
			cur.ValidationsThisMonth++
			cur.Version++
			if err := s.store.Update(ctx, cur); err == nil {
				mu.Lock()
				committed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	final, err := s.store.Get(ctx, state.UserID)
	s.Require().NoError(err)
	s.Equal(int64(committed), final.Version)
	s.Equal(committed, final.ValidationsThisMonth)
}
