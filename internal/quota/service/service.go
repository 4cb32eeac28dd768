package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"poagate/internal/quota/metrics"
	"poagate/internal/quota/models"
	"poagate/internal/quota/ports"
	id "poagate/pkg/domain"
	dErrors "poagate/pkg/domain-errors"
	audit "poagate/pkg/platform/audit"
	"poagate/pkg/platform/sentinel"
	"poagate/pkg/requestcontext"
)

// Type aliases for shared interfaces.
type (
	Store          = ports.Store
	AuditPublisher = ports.AuditPublisher
)

// maxCommitRetries bounds the optimistic-concurrency loop. Contention scope
// is a single user's record, so conflicts are rare and short-lived.
const maxCommitRetries = 5

// Gate is the per-user admission control for validation attempts.
//
// Admins and paid tiers are always admitted (their usage is still metered
// for reporting). Free-tier users are admitted while under the monthly cap;
// the month rollover, the limit check and the increment commit as one
// conditional write so two concurrent requests can never both take the
// last slot.
type Gate struct {
	store          Store
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(g *Gate) {
		g.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func New(store Store, opts ...Option) (*Gate, error) {
	if store == nil {
		return nil, fmt.Errorf("quota store is required")
	}

	g := &Gate{
		store:  store,
		tracer: otel.Tracer("poagate/quota"),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// CheckAndConsume admits or rejects one validation attempt for userID and,
// on admission, consumes one slot. First use seeds a free-tier state.
//
// Rejection is returned as *models.QuotaExceededError so the boundary layer
// can render tier, limit and used count.
func (g *Gate) CheckAndConsume(ctx context.Context, userID id.UserID) (*models.State, error) {
	ctx, span := g.tracer.Start(ctx, "quota.check_and_consume")
	defer span.End()

	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user_id is required")
	}

	now := requestcontext.Now(ctx)

	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		state, seeded, err := g.load(ctx, userID)
		if err != nil {
			return nil, err
		}

		// Rollover commits together with the check-and-increment, never as
		// a separate write. A reset zeroes the counter, so a rolled-over
		// request is always under the cap.
		reset := state.NeedsReset(now)
		if reset {
			state.ApplyReset(now)
		}

		if !state.Exempt() && state.ValidationsThisMonth >= models.FreeTierMonthlyLimit {
			return nil, g.reject(ctx, state)
		}

		state.ValidationsThisMonth++
		ok, err := g.commit(ctx, state, seeded)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if reset && g.metrics != nil {
			g.metrics.IncMonthlyReset()
		}
		if g.metrics != nil {
			g.metrics.IncAdmission(string(state.Tier))
		}
		span.SetAttributes(
			attribute.String("quota.tier", string(state.Tier)),
			attribute.Int("quota.used", state.ValidationsThisMonth),
		)
		if g.logger != nil {
			g.logger.DebugContext(ctx, "validation admitted",
				"user_id", userID, "tier", state.Tier, "used", state.ValidationsThisMonth)
		}
		return state, nil
	}

	return nil, dErrors.New(dErrors.CodeConflict, "quota commit contention: retries exhausted")
}

// Get returns the current quota state for a user.
func (g *Gate) Get(ctx context.Context, userID id.UserID) (*models.State, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user_id is required")
	}

	state, err := g.store.Get(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "quota state not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get quota state")
	}
	return state, nil
}

// Reset zeroes a user's monthly counter (admin operation).
func (g *Gate) Reset(ctx context.Context, userID id.UserID) error {
	now := requestcontext.Now(ctx)

	return g.adminUpdate(ctx, userID, audit.EventQuotaReset, func(state *models.State) error {
		state.ApplyReset(now)
		return nil
	})
}

// UpdateTier changes a user's tier (admin operation, driven by billing).
func (g *Gate) UpdateTier(ctx context.Context, userID id.UserID, tier models.Tier) error {
	if !tier.IsValid() {
		return dErrors.New(dErrors.CodeBadRequest, "invalid tier")
	}

	return g.adminUpdate(ctx, userID, audit.EventQuotaTierUpdated, func(state *models.State) error {
		state.Tier = tier
		return nil
	})
}

// adminUpdate runs a read-mutate-commit loop for administrative changes.
func (g *Gate) adminUpdate(ctx context.Context, userID id.UserID, action audit.AuditEvent, mutate func(*models.State) error) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "user_id is required")
	}

	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		state, err := g.Get(ctx, userID)
		if err != nil {
			return err
		}
		if err := mutate(state); err != nil {
			return err
		}
		state.Version++

		err = g.store.Update(ctx, state)
		if errors.Is(err, sentinel.ErrConflict) {
			if g.metrics != nil {
				g.metrics.IncCommitConflict()
			}
			continue
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update quota state")
		}

		g.logAudit(ctx, action, state)
		return nil
	}
	return dErrors.New(dErrors.CodeConflict, "quota commit contention: retries exhausted")
}

// load fetches the state or seeds a fresh free-tier record on first use.
func (g *Gate) load(ctx context.Context, userID id.UserID) (state *models.State, seeded bool, err error) {
	state, err = g.store.Get(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		state, err = models.NewState(userID, models.TierFree, models.RoleUser, requestcontext.Now(ctx))
		if err != nil {
			return nil, false, err
		}
		return state, true, nil
	}
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get quota state")
	}
	return state, false, nil
}

// commit persists the mutated state. ok=false with nil error means the
// conditional write lost a race and the caller should reload and retry.
func (g *Gate) commit(ctx context.Context, state *models.State, seeded bool) (bool, error) {
	var err error
	if seeded {
		err = g.store.Create(ctx, state)
	} else {
		state.Version++
		err = g.store.Update(ctx, state)
	}
	if errors.Is(err, sentinel.ErrConflict) {
		if g.metrics != nil {
			g.metrics.IncCommitConflict()
		}
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit quota state")
	}
	return true, nil
}

func (g *Gate) reject(ctx context.Context, state *models.State) error {
	if g.metrics != nil {
		g.metrics.IncRejection()
	}

	g.logAudit(ctx, audit.EventQuotaExceeded, state)

	return &models.QuotaExceededError{
		Tier:  state.Tier,
		Limit: models.FreeTierMonthlyLimit,
		Used:  state.ValidationsThisMonth,
	}
}

func (g *Gate) logAudit(ctx context.Context, action audit.AuditEvent, state *models.State) {
	ports.LogAudit(ctx, g.logger, g.auditPublisher, audit.Event{
		Category: audit.CategoryOperations,
		UserID:   state.UserID,
		Action:   string(action),
	},
		"user_id", state.UserID,
		"tier", state.Tier,
		"used", state.ValidationsThisMonth,
	)
}
