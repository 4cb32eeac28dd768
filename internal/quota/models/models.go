package models

import (
	"fmt"
	"time"

	id "poagate/pkg/domain"
	dErrors "poagate/pkg/domain-errors"
)

// Tier is the subscription level governing the validation quota.
type Tier string

const (
	TierFree         Tier = "free"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// IsValid checks if the tier is one of the supported enum values.
func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierProfessional, TierEnterprise:
		return true
	}
	return false
}

// Unlimited reports whether the tier bypasses the monthly cap.
func (t Tier) Unlimited() bool {
	return t == TierProfessional || t == TierEnterprise
}

// Role distinguishes regular users from administrators, who are never gated.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// FreeTierMonthlyLimit is the validations-per-calendar-month cap on the
// free tier.
const FreeTierMonthlyLimit = 5

// State is the durable per-user quota record. It is mutated only by the
// quota gate; every mutation goes through a conditional write keyed on
// Version so concurrent check-and-increment races cannot both win.
type State struct {
	UserID               id.UserID  `json:"user_id"`
	Tier                 Tier       `json:"tier"`
	Role                 Role       `json:"role"`
	ValidationsThisMonth int        `json:"validations_this_month"`
	LastResetMonth       time.Month `json:"last_reset_month"`
	LastResetYear        int        `json:"last_reset_year"`
	// Version increments on every committed write; stores reject commits
	// whose expected prior version does not match.
	Version int64 `json:"version"`
}

// NewState creates a fresh quota state with domain invariant validation.
// The reset stamp is initialized to the current calendar month.
func NewState(userID id.UserID, tier Tier, role Role, now time.Time) (*State, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user_id cannot be nil")
	}
	if !tier.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid quota tier")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}

	return &State{
		UserID:               userID,
		Tier:                 tier,
		Role:                 role,
		ValidationsThisMonth: 0,
		LastResetMonth:       now.Month(),
		LastResetYear:        now.Year(),
		Version:              0,
	}, nil
}

// Clone returns an independent copy, so stores can hand out state without
// aliasing their internals.
func (s *State) Clone() *State {
	c := *s
	return &c
}

// NeedsReset reports whether the calendar month has rolled over since the
// last reset stamp.
func (s *State) NeedsReset(now time.Time) bool {
	return s.LastResetMonth != now.Month() || s.LastResetYear != now.Year()
}

// ApplyReset zeroes the monthly counter and updates the stamp. Callers
// commit the result atomically with whatever check follows.
func (s *State) ApplyReset(now time.Time) {
	s.ValidationsThisMonth = 0
	s.LastResetMonth = now.Month()
	s.LastResetYear = now.Year()
}

// Exempt reports whether this user bypasses the monthly cap entirely.
func (s *State) Exempt() bool {
	return s.Role == RoleAdmin || s.Tier.Unlimited()
}

// QuotaExceededError is the distinct rejection outcome of the gate. It is
// not an internal failure: it carries what the boundary layer needs to
// render an upgrade prompt.
type QuotaExceededError struct {
	Tier  Tier
	Limit int
	Used  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("validation quota exceeded: %d of %d used on %s tier", e.Used, e.Limit, e.Tier)
}

// Code classifies the rejection for boundary-layer handling.
func (e *QuotaExceededError) Code() dErrors.Code { return dErrors.CodeQuotaExceeded }
