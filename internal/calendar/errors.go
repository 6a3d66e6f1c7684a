package calendar

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no partition holds the requested id.
	ErrNotFound = errors.New("calendar: entry not found")
	// ErrEmptyName is returned when an entry would be created or renamed to "".
	ErrEmptyName = errors.New("calendar: task/event name cannot be empty")
	// ErrStartNotBeforeEnd is returned when a start would not precede its end.
	ErrStartNotBeforeEnd = errors.New("calendar: start must be before end")
	// ErrIllegalTypeChange is returned when a plain update would change the kind of an entry.
	ErrIllegalTypeChange = errors.New("calendar: cannot add a start time to a task, convert it to an event instead")
	// ErrConversionLoss is returned when a conversion would discard fields and was not forced.
	ErrConversionLoss = errors.New("calendar: conversion discards information and was not forced")
	// ErrEmptyDeadline is returned when a conversion needs a deadline that cannot be resolved.
	ErrEmptyDeadline = errors.New("calendar: deadline cannot be empty")
	// ErrEmptyStart is returned when a conversion needs a start time that cannot be resolved.
	ErrEmptyStart = errors.New("calendar: start time cannot be empty")
	// ErrEmptyPeriod is returned when a recurring conversion has no period.
	ErrEmptyPeriod = errors.New("calendar: recurring period cannot be empty")
	// ErrInvalidLimit is returned for non-positive occurrence limits.
	ErrInvalidLimit = errors.New("calendar: occurrence limit must be positive")
	// ErrConflictingLimits is returned when both an occurrence limit and a limit date are given.
	ErrConflictingLimits = errors.New("calendar: occurrence limit and limit date are mutually exclusive")
	// ErrNotRecurring is returned when a limit is attached to an entry without a period.
	ErrNotRecurring = errors.New("calendar: entry is not recurring")
)

func notFound(id int) error {
	return fmt.Errorf("entry %d: %w", id, ErrNotFound)
}

// IsInvalidArgument reports whether err belongs to the family of caller
// mistakes the boundary reports back without retrying.
func IsInvalidArgument(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrEmptyName,
		ErrStartNotBeforeEnd,
		ErrIllegalTypeChange,
		ErrConversionLoss,
		ErrEmptyDeadline,
		ErrEmptyStart,
		ErrEmptyPeriod,
		ErrInvalidLimit,
		ErrConflictingLimits,
		ErrNotRecurring,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
