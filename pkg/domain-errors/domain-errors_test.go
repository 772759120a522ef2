package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite covers the error primitives every layer relies on to carry
// stable codes across the store, service and transport boundaries.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeOutOfBounds, Message: "entry out of bounds"}
		s.Equal("entry out of bounds", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeSizeTooLarge}
		s.Equal("size_too_large", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeOutOfBounds, Message: "entry out of bounds"}
		err2 := &Error{Code: CodeOutOfBounds, Message: "other message"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		s.False((&Error{Code: CodeOutOfBounds}).Is(&Error{Code: CodeSizeTooLarge}))
	})

	s.Run("does not match non-domain errors", func() {
		s.False((&Error{Code: CodeNotFound}).Is(errors.New("not_found")))
	})

	s.Run("works with errors.Is through fmt wrapping", func() {
		inner := New(CodeOutOfBounds, "entry out of bounds")
		wrapped := fmt.Errorf("toggle: %w", inner)
		s.True(errors.Is(wrapped, &Error{Code: CodeOutOfBounds}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves original domain code when wrapping domain error", func() {
		original := New(CodeNotFound, "status list not found")
		wrapped := Wrap(original, CodeInternal, "service layer error")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeNotFound, domainErr.Code)
		s.Equal("service layer error", domainErr.Message)
	})

	s.Run("uses provided code when wrapping non-domain error", func() {
		wrapped := Wrap(errors.New("database timeout"), CodeInternal, "service error")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeInternal, domainErr.Code)
	})

	s.Run("keeps details of the wrapped domain error", func() {
		original := NewWithDetails(CodeSizeTooLarge, "too big", map[string]string{"max_size": "512"})
		wrapped := Wrap(original, CodeInternal, "create failed")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(map[string]string{"max_size": "512"}, domainErr.Details)
	})

	s.Run("unwraps to the original error", func() {
		original := errors.New("root cause")
		s.ErrorIs(Wrap(original, CodeInternal, "wrapped"), original)
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.Run("returns true for matching code", func() {
		s.True(HasCode(New(CodeConflict, "exists"), CodeConflict))
	})

	s.Run("returns false for non-domain error", func() {
		s.False(HasCode(errors.New("regular error"), CodeConflict))
	})

	s.Run("returns false for nil error", func() {
		s.False(HasCode(nil, CodeNotFound))
	})
}
