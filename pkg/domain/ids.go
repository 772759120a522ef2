// Package domain provides type-safe identifiers shared across modules.
package domain

import (
	"github.com/google/uuid"

	dErrors "statusreg/pkg/domain-errors"
)

// OwnerID identifies the controller of a status list. Exactly one list exists
// per owner.
type OwnerID uuid.UUID

// NewOwnerID returns a random owner identity.
func NewOwnerID() OwnerID { return OwnerID(uuid.New()) }

// ParseOwnerID is used at trust boundaries (token claims, path and CLI input).
func ParseOwnerID(s string) (OwnerID, error) {
	id, err := parseUUID(s, "owner ID")
	return OwnerID(id), err
}

func (id OwnerID) String() string { return uuid.UUID(id).String() }

func (id OwnerID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id OwnerID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *OwnerID) UnmarshalText(data []byte) error {
	parsed, err := ParseOwnerID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
