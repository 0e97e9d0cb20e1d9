package palette

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for error type checking
var (
	// ErrInvalidPalette indicates a palette entry that cannot be used
	ErrInvalidPalette = errors.New("invalid palette")

	// ErrCircularReference indicates palette variables that reference each other in a loop
	ErrCircularReference = errors.New("circular reference detected")

	// ErrUnknownFormat indicates a palette file whose format cannot be determined
	ErrUnknownFormat = errors.New("unknown palette format")
)

// PaletteError describes one invalid palette entry
type PaletteError struct {
	Index    int
	Variable string
	Reason   string
}

func (e *PaletteError) Error() string {
	return fmt.Sprintf("invalid palette entry %d (%q): %s", e.Index, e.Variable, e.Reason)
}

func (e *PaletteError) Unwrap() error {
	return ErrInvalidPalette
}

// NewPaletteError creates a new palette entry error
func NewPaletteError(index int, variable, reason string) error {
	return &PaletteError{
		Index:    index,
		Variable: variable,
		Reason:   reason,
	}
}

// CircularReferenceError represents a reference loop between variables
type CircularReferenceError struct {
	ReferenceChain []string
}

func (e *CircularReferenceError) Error() string {
	chain := strings.Join(e.ReferenceChain, " → ")
	return fmt.Sprintf("circular reference detected in palette: %s\nSuggestion: Break the circular dependency chain", chain)
}

func (e *CircularReferenceError) Unwrap() error {
	return ErrCircularReference
}

// NewCircularReferenceError creates a new circular reference error
func NewCircularReferenceError(chain []string) error {
	return &CircularReferenceError{ReferenceChain: chain}
}
