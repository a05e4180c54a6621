package cubego

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema is the sentinel wrapped by every unknown-name error.
	// Unknown predicate *values* are deliberately not schema errors: they
	// resolve to an empty selection instead.
	ErrSchema = errors.New("unknown schema name")

	// ErrShape is the sentinel wrapped by build-time shape errors.
	ErrShape = errors.New("column shape mismatch")

	// ErrEmptyName is returned when a column is added with an empty name.
	ErrEmptyName = errors.New("column name must not be empty")

	// ErrTooManyRows is returned when the input exceeds the 32-bit row
	// position domain of the posting bitmaps.
	ErrTooManyRows = errors.New("row count exceeds bitmap position domain")
)

// ErrUnknownDimension indicates a query referenced a dimension name the
// cube does not have.
type ErrUnknownDimension struct {
	Name string
}

func (e *ErrUnknownDimension) Error() string {
	return fmt.Sprintf("unknown dimension %q", e.Name)
}

func (e *ErrUnknownDimension) Unwrap() error { return ErrSchema }

// ErrUnknownMeasure indicates a query referenced a measure name the cube
// does not have.
type ErrUnknownMeasure struct {
	Name string
}

func (e *ErrUnknownMeasure) Error() string {
	return fmt.Sprintf("unknown measure %q", e.Name)
}

func (e *ErrUnknownMeasure) Unwrap() error { return ErrSchema }

// ErrColumnLength indicates a column passed to Build whose length differs
// from the cube's row count. Fatal: the build aborts.
type ErrColumnLength struct {
	Column string
	Got    int
	Want   int
}

func (e *ErrColumnLength) Error() string {
	return fmt.Sprintf("column %q has %d rows, want %d", e.Column, e.Got, e.Want)
}

func (e *ErrColumnLength) Unwrap() error { return ErrShape }

// ErrDuplicateName indicates two columns share a name. Dimension and
// measure names live in one case-sensitive namespace.
type ErrDuplicateName struct {
	Name string
}

func (e *ErrDuplicateName) Error() string {
	return fmt.Sprintf("duplicate column name %q", e.Name)
}

func (e *ErrDuplicateName) Unwrap() error { return ErrSchema }
