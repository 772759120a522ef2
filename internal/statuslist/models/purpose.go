package models

import (
	"fmt"

	dErrors "statusreg/pkg/domain-errors"
)

// Purpose classifies what a set bit means for every entry of a list.
type Purpose string

const (
	PurposeRevocation Purpose = "revocation"
	PurposeSuspension Purpose = "suspension"
)

// Purposes lists every known purpose in a stable order.
func Purposes() []Purpose {
	return []Purpose{PurposeRevocation, PurposeSuspension}
}

func (p Purpose) IsValid() bool {
	switch p {
	case PurposeRevocation, PurposeSuspension:
		return true
	default:
		return false
	}
}

func (p Purpose) String() string { return string(p) }

// ParsePurpose converts persisted or user supplied input into a Purpose.
func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(s)
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid purpose: %q", s))
	}
	return p, nil
}
