// Package repository holds the in-memory registry of trips.  The errors a
// caller can receive from trip creation are the model sentinels, re-exported
// here so callers of the registry need a single import to test them with
// errors.Is.
package repository

import "github.com/iliyamo/bus-seat-reservation/internal/model"

var (
    // ErrInvalidArgument wraps a bad capacity or ticket price.
    ErrInvalidArgument = model.ErrInvalidArgument
    // ErrEmptyID is returned when CreateTrip receives an empty id.
    ErrEmptyID = model.ErrEmptyID
    // ErrDuplicateID is returned when CreateTrip receives an id that is
    // already registered.
    ErrDuplicateID = model.ErrDuplicateID
)
