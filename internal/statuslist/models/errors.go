package models

import (
	"fmt"
	"strconv"

	dErrors "statusreg/pkg/domain-errors"
)

// MaxSize is the exclusive upper bound on a list's size in bytes.
const MaxSize uint16 = 512

// Domain errors are matched by code, so errors.Is(err, ErrOutOfBounds) holds
// for any out_of_bounds error regardless of message.
var (
	ErrOutOfBounds         = dErrors.New(dErrors.CodeOutOfBounds, "entry out of bounds")
	ErrStatusNotReversible = dErrors.New(dErrors.CodeStatusNotReversible, "status not reversible")
	ErrSizeTooSmall        = dErrors.New(dErrors.CodeInvalidInput, "status list size must be at least 1")
)

// ErrSizeTooLarge reports the limit as the max_size detail.
var ErrSizeTooLarge = dErrors.NewWithDetails(
	dErrors.CodeSizeTooLarge,
	fmt.Sprintf("status list size must be below %d", MaxSize),
	map[string]string{"max_size": strconv.Itoa(int(MaxSize))},
)
