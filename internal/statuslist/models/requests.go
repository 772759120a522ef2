package models

import (
	"strings"

	"statusreg/pkg/validation"
)

// CreateRequest is the body of POST /status-list.
type CreateRequest struct {
	Size    uint16  `json:"size" validate:"required"`
	Purpose Purpose `json:"purpose" validate:"required,oneof=revocation suspension"`
}

func (r *CreateRequest) Normalize() {
	r.Purpose = Purpose(strings.ToLower(strings.TrimSpace(string(r.Purpose))))
}

func (r *CreateRequest) Validate() error {
	return validation.Validate(r)
}

// ToggleRequest is the body of POST /status-list/toggle. Location is a pointer
// so that entry 0 passes the required check.
type ToggleRequest struct {
	Location *uint32 `json:"location" validate:"required"`
}

func (r *ToggleRequest) Validate() error {
	return validation.Validate(r)
}
