//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"poagate/internal/quota/models"
	"poagate/internal/quota/store/postgres"
	id "poagate/pkg/domain"
	"poagate/pkg/platform/sentinel"
	"poagate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = postgres.New(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "quota_states"))
}

func (s *PostgresStoreSuite) newState() *models.State {
	state, err := models.NewState(id.NewUserID(), models.TierFree, models.RoleUser, time.Now())
	s.Require().NoError(err)
	return state
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	state := s.newState()
	state.ValidationsThisMonth = 3

	s.Require().NoError(s.store.Create(ctx, state))

	got, err := s.store.Get(ctx, state.UserID)
	s.Require().NoError(err)
	s.Equal(state.UserID, got.UserID)
	s.Equal(models.TierFree, got.Tier)
	s.Equal(models.RoleUser, got.Role)
	s.Equal(3, got.ValidationsThisMonth)
	s.Equal(state.LastResetMonth, got.LastResetMonth)
	s.Equal(state.LastResetYear, got.LastResetYear)
	s.Equal(int64(0), got.Version)
}

func (s *PostgresStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCreateConflict() {
	ctx := context.Background()
	state := s.newState()

	s.Require().NoError(s.store.Create(ctx, state))
	s.ErrorIs(s.store.Create(ctx, state), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestConditionalUpdate() {
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
		stale.Version++ // targets version 1, already taken
		s.ErrorIs(s.store.Update(ctx, stale), sentinel.ErrConflict)
	})

	s.Run("missing user returns not found", func() {
		missing := s.newState()
		missing.Version++
		s.ErrorIs(s.store.Update(ctx, missing), sentinel.ErrNotFound)
	})
}

// TestConcurrentConditionalWrites verifies the version guard under real
// database concurrency: each committed write bumps the version by exactly
// one, so final version equals the number of winners.
func (s *PostgresStoreSuite) TestConcurrentConditionalWrites() {
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
