package ltv

import "errors"

var (
	// ErrContactNotFound is returned by ContactDirectory implementations
	// when a contact ID has no directory entry.
	ErrContactNotFound = errors.New("contact not found")
)
