package models

import (
	"time"

	id "statusreg/pkg/domain"
)

// StatusList is the persisted bit array of one owner. Size is the buffer length
// in bytes; every byte holds eight entries, least significant bit first.
type StatusList struct {
	OwnerID   id.OwnerID
	Purpose   Purpose
	Size      uint16
	List      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New allocates a zeroed list of size bytes.
func New(size uint16, purpose Purpose) (*StatusList, error) {
	if size >= MaxSize {
		return nil, ErrSizeTooLarge
	}
	if size == 0 {
		return nil, ErrSizeTooSmall
	}
	if !purpose.IsValid() {
		_, err := ParsePurpose(string(purpose))
		return nil, err
	}
	return &StatusList{
		Purpose: purpose,
		Size:    size,
		List:    make([]byte, size),
	}, nil
}

// Capacity is the number of addressable entries.
func (l *StatusList) Capacity() uint32 {
	return uint32(l.Size) << 3
}

// Get reports whether the entry at location is set.
func (l *StatusList) Get(location uint32) (bool, error) {
	if err := l.requireInBounds(location); err != nil {
		return false, err
	}
	position, flag := address(location)
	return l.List[position]&flag != 0, nil
}

// Read is Get with the result encoded as a single byte.
func (l *StatusList) Read(location uint32) (ReadResult, error) {
	set, err := l.Get(location)
	if err != nil {
		return ReadResult{}, err
	}
	result := ReadResult{Location: location}
	if set {
		result.Value = 1
	}
	return result, nil
}

// Toggle flips exactly one entry. On error the buffer is untouched.
func (l *StatusList) Toggle(location uint32) error {
	if err := l.requireInBounds(location); err != nil {
		return err
	}
	position, flag := address(location)
	l.List[position] ^= flag
	return nil
}

// Clone returns a deep copy so callers cannot alias a store's buffer.
func (l *StatusList) Clone() *StatusList {
	if l == nil {
		return nil
	}
	cp := *l
	cp.List = append([]byte(nil), l.List...)
	return &cp
}

func (l *StatusList) requireInBounds(location uint32) error {
	// a list loaded from storage may be shorter than its declared size
	if location >= l.Capacity() || int(location>>3) >= len(l.List) {
		return ErrOutOfBounds
	}
	return nil
}

func address(location uint32) (position uint32, flag byte) {
	return location >> 3, 1 << (location & 0b111)
}

// ReadResult carries the one-byte return value of a read, separate from the
// call's own success or failure.
type ReadResult struct {
	Location uint32
	Value    byte
}

// ReturnData is the raw return payload: one byte, 0 or 1.
func (r ReadResult) ReturnData() []byte {
	return []byte{r.Value}
}

func (r ReadResult) IsSet() bool { return r.Value == 1 }
