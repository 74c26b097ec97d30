package journal

import "errors"

var (
	// ErrNoBoots is returned by LastBoot on an empty journal.
	ErrNoBoots = errors.New("no boots recorded")

	// ErrInvalidEntry is returned when a required field is empty.
	ErrInvalidEntry = errors.New("invalid journal entry")
)
