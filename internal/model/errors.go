package model

import "errors"

// ErrInvalidArgument is returned when a trip is constructed with a
// non-positive capacity or ticket price.  No trip or seat exists after
// such a failure.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrEmptyID is returned when a trip is created without an identifier.
var ErrEmptyID = errors.New("empty trip id")

// ErrDuplicateID is returned when a trip identifier is already registered.
// Handlers should translate this into an HTTP 409 response.
var ErrDuplicateID = errors.New("duplicate trip id")
