package services

import "errors"

// Error taxonomy shared by the interaction subsystem. Handlers translate
// these to HTTP statuses; everything else is a storage failure and becomes a
// generic 500.
var (
	ErrNotFound             = errors.New("subject not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrDuplicateInteraction = errors.New("duplicate interaction")
)
