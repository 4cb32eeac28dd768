// Package domain holds typed identifiers shared across modules.
//
// Each ID is a distinct UUID-backed type so the compiler rejects
// cross-assignment (a UserID can never be passed where a DocumentID is
// expected). Parse functions enforce the invariant that IDs are valid,
// non-empty, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "poagate/pkg/domain-errors"
)

// UserID identifies an account holder whose quota is being gated.
type UserID uuid.UUID

// DocumentID identifies an uploaded document under validation.
type DocumentID uuid.UUID

// ValidationID identifies one persisted validation result.
type ValidationID uuid.UUID

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewDocumentID returns a fresh random DocumentID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewValidationID returns a fresh random ValidationID.
func NewValidationID() ValidationID { return ValidationID(uuid.New()) }

// ParseUserID parses and validates a user ID string.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

// ParseDocumentID parses and validates a document ID string.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document_id")
	return DocumentID(u), err
}

// ParseValidationID parses and validates a validation ID string.
func ParseValidationID(s string) (ValidationID, error) {
	u, err := parseUUID(s, "validation_id")
	return ValidationID(u), err
}

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id DocumentID) String() string   { return uuid.UUID(id).String() }
func (id ValidationID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero UUID.
func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ValidationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps the canonical string form in JSON and logs.
func (id UserID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id DocumentID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id ValidationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(data []byte) error {
	u, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

func (id *DocumentID) UnmarshalText(data []byte) error {
	u, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = DocumentID(u)
	return nil
}

func (id *ValidationID) UnmarshalText(data []byte) error {
	u, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = ValidationID(u)
	return nil
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", field)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", field)
	}
	return u, nil
}
