package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "statusreg/pkg/domain-errors"
)

type StatusListSuite struct {
	suite.Suite
}

func TestStatusListSuite(t *testing.T) {
	suite.Run(t, new(StatusListSuite))
}

func fixture() *StatusList {
	return &StatusList{
		List:    []byte{0b00001000, 0b00010000},
		Size:    2,
		Purpose: PurposeRevocation,
	}
}

func (s *StatusListSuite) TestNew() {
	s.Run("allocates a zeroed buffer of size bytes", func() {
		list, err := New(6, PurposeRevocation)
		s.Require().NoError(err)
		s.Equal(uint16(6), list.Size)
		s.Equal(make([]byte, 6), list.List)
		s.Equal(PurposeRevocation, list.Purpose)
		s.Equal(uint32(48), list.Capacity())
	})

	s.Run("accepts the largest size below the limit", func() {
		list, err := New(MaxSize-1, PurposeSuspension)
		s.Require().NoError(err)
		s.Len(list.List, int(MaxSize-1))
	})

	s.Run("rejects the limit itself", func() {
		_, err := New(MaxSize, PurposeSuspension)
		s.ErrorIs(err, ErrSizeTooLarge)
		s.Equal("status list size must be below 512", err.Error())
	})

	s.Run("rejects sizes above the limit", func() {
		_, err := New(600, PurposeRevocation)
		s.True(dErrors.HasCode(err, dErrors.CodeSizeTooLarge))

		var domainErr *dErrors.Error
		s.Require().True(errors.As(err, &domainErr))
		s.Equal("512", domainErr.Details["max_size"])
	})

	s.Run("rejects an empty list", func() {
		_, err := New(0, PurposeRevocation)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects an unknown purpose", func() {
		_, err := New(8, Purpose("expiry"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *StatusListSuite) TestGet() {
	list := fixture()

	for _, tc := range []struct {
		location uint32
		want     bool
	}{
		{3, true},
		{12, true},
		{4, false},
		{13, false},
	} {
		got, err := list.Get(tc.location)
		s.Require().NoError(err)
		s.Equal(tc.want, got, "location %d", tc.location)
	}
}

func (s *StatusListSuite) TestGetOutOfBounds() {
	list := fixture()

	for _, location := range []uint32{16, 50, 1 << 20} {
		_, err := list.Get(location)
		s.ErrorIs(err, ErrOutOfBounds)
	}
}

func (s *StatusListSuite) TestToggle() {
	list := fixture()

	s.Require().NoError(list.Toggle(8))
	s.Equal([]byte{0b00001000, 0b00010001}, list.List)

	s.Require().NoError(list.Toggle(15))
	s.Equal([]byte{0b00001000, 0b10010001}, list.List)

	s.Require().NoError(list.Toggle(3))
	s.Equal([]byte{0b00000000, 0b10010001}, list.List)

	s.Require().NoError(list.Toggle(8))
	s.Equal([]byte{0b00000000, 0b10010000}, list.List)
}

func (s *StatusListSuite) TestToggleOutOfBoundsLeavesBufferUnchanged() {
	list := fixture()

	s.ErrorIs(list.Toggle(16), ErrOutOfBounds)
	s.ErrorIs(list.Toggle(50), ErrOutOfBounds)
	s.Equal([]byte{0b00001000, 0b00010000}, list.List)
}

func (s *StatusListSuite) TestToggleOnShortBuffer() {
	// declared size larger than the stored buffer must not panic
	list := &StatusList{Size: 4, List: []byte{0}, Purpose: PurposeSuspension}
	s.ErrorIs(list.Toggle(9), ErrOutOfBounds)
}

func (s *StatusListSuite) TestClone() {
	list := fixture()
	cp := list.Clone()
	cp.List[0] = 0xFF

	s.Equal(byte(0b00001000), list.List[0])
	s.Nil((*StatusList)(nil).Clone())
}

func TestAddressingIsLSBFirst(t *testing.T) {
	list, err := New(8, PurposeSuspension)
	require.NoError(t, err)

	steps := []struct {
		location uint32
		expected []byte
	}{
		{0, []byte{0b00000001, 0, 0, 0, 0, 0, 0, 0}},
		{50, []byte{0b00000001, 0, 0, 0, 0, 0, 0b00000100, 0}},
		{52, []byte{0b00000001, 0, 0, 0, 0, 0, 0b00010100, 0}},
		{50, []byte{0b00000001, 0, 0, 0, 0, 0, 0b00010000, 0}},
	}
	for _, step := range steps {
		require.NoError(t, list.Toggle(step.location))
		assert.Equal(t, step.expected, list.List, "after toggling %d", step.location)
	}

	reads := map[uint32]byte{0: 1, 52: 1, 24: 0, 37: 0, 50: 0}
	for location, want := range reads {
		result, err := list.Read(location)
		require.NoError(t, err)
		assert.Equal(t, want, result.Value, "location %d", location)
		assert.Equal(t, []byte{want}, result.ReturnData())
	}

	_, err = list.Read(130)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.ErrorIs(t, list.Toggle(130), ErrOutOfBounds)
}

func TestToggleIsAnInvolution(t *testing.T) {
	list, err := New(MaxSize-1, PurposeRevocation)
	require.NoError(t, err)

	for location := uint32(0); location < list.Capacity(); location += 7 {
		before, err := list.Read(location)
		require.NoError(t, err)

		require.NoError(t, list.Toggle(location))
		flipped, err := list.Read(location)
		require.NoError(t, err)
		assert.NotEqual(t, before.Value, flipped.Value)

		require.NoError(t, list.Toggle(location))
		restored, err := list.Read(location)
		require.NoError(t, err)
		assert.Equal(t, before.Value, restored.Value)
	}
	assert.Equal(t, make([]byte, MaxSize-1), list.List)
}

func TestPurpose(t *testing.T) {
	for _, p := range Purposes() {
		parsed, err := ParsePurpose(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := ParsePurpose("Revocation")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestCreateRequest(t *testing.T) {
	t.Run("normalizes purpose", func(t *testing.T) {
		req := &CreateRequest{Size: 8, Purpose: " Suspension "}
		req.Normalize()
		require.NoError(t, req.Validate())
		assert.Equal(t, PurposeSuspension, req.Purpose)
	})

	t.Run("requires size", func(t *testing.T) {
		req := &CreateRequest{Purpose: PurposeSuspension}
		err := req.Validate()
		require.Error(t, err)
		assert.Equal(t, "size is required", err.Error())
	})

	t.Run("leaves the size limit to the core", func(t *testing.T) {
		req := &CreateRequest{Size: 600, Purpose: PurposeSuspension}
		require.NoError(t, req.Validate())
	})

	t.Run("toggle accepts location zero", func(t *testing.T) {
		zero := uint32(0)
		require.NoError(t, (&ToggleRequest{Location: &zero}).Validate())
		require.Error(t, (&ToggleRequest{}).Validate())
	})
}
