package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"poagate/internal/quota/models"
	id "poagate/pkg/domain"
	"poagate/pkg/platform/sentinel"
)

// Schema creates the quota table. Applied by EnsureSchema on startup.
const Schema = `
CREATE TABLE IF NOT EXISTS quota_states (
	user_id                UUID PRIMARY KEY,
	tier                   TEXT NOT NULL,
	role                   TEXT NOT NULL,
	validations_this_month INT NOT NULL,
	last_reset_month       INT NOT NULL,
	last_reset_year        INT NOT NULL,
	version                BIGINT NOT NULL
)`

// PostgresStore persists quota state in PostgreSQL. The store is pure I/O;
// rollover and limit decisions belong in the gate. Optimistic concurrency
// rides on the version column: updates are conditional on the expected
// prior version.
type PostgresStore struct {
	db *sql.DB
}

func New(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the quota table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure quota schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID id.UserID) (*models.State, error) {
	query := `
		SELECT user_id, tier, role, validations_this_month, last_reset_month, last_reset_year, version
		FROM quota_states
		WHERE user_id = $1
	`
	state, err := scanState(s.db.QueryRowContext(ctx, query, userID.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get quota state: %w", err)
	}
	return state, nil
}

func (s *PostgresStore) Create(ctx context.Context, state *models.State) error {
	query := `
		INSERT INTO quota_states (user_id, tier, role, validations_this_month, last_reset_month, last_reset_year, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		state.UserID.String(),
		string(state.Tier),
		string(state.Role),
		state.ValidationsThisMonth,
		int(state.LastResetMonth),
		state.LastResetYear,
		state.Version,
	)
	if err != nil {
		return fmt.Errorf("create quota state: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("create quota state rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, next *models.State) error {
	query := `
		UPDATE quota_states
		SET tier = $2,
		    role = $3,
		    validations_this_month = $4,
		    last_reset_month = $5,
		    last_reset_year = $6,
		    version = $7
		WHERE user_id = $1
		  AND version = $8
	`
	result, err := s.db.ExecContext(ctx, query,
		next.UserID.String(),
		string(next.Tier),
		string(next.Role),
		next.ValidationsThisMonth,
		int(next.LastResetMonth),
		next.LastResetYear,
		next.Version,
		next.Version-1,
	)
	if err != nil {
		return fmt.Errorf("update quota state: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quota state rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// Zero rows means either the record is missing or the conditional write
	// lost. Disambiguate so the gate can retry only on conflicts.
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM quota_states WHERE user_id = $1)`,
		next.UserID.String(),
	).Scan(&exists); err != nil {
		return fmt.Errorf("update quota state existence check: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

type stateRow interface {
	Scan(dest ...any) error
}

func scanState(row stateRow) (*models.State, error) {
	var state models.State
	var rawUserID string
	var tier, role string
	var month int
	if err := row.Scan(&rawUserID, &tier, &role, &state.ValidationsThisMonth, &month, &state.LastResetYear, &state.Version); err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(rawUserID)
	if err != nil {
		return nil, fmt.Errorf("scan quota state user_id: %w", err)
	}
	state.UserID = userID
	state.Tier = models.Tier(tier)
	state.Role = models.Role(role)
	state.LastResetMonth = time.Month(month)
	return &state, nil
}
