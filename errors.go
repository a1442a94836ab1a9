package krholiday

import (
	"errors"

	"github.com/rabitt1ove/kr-holidays/lunar"
)

var (
	// ErrInvalidDateFormat is returned when a date-like value cannot be
	// coerced to a calendar date.
	ErrInvalidDateFormat = errors.New("krholiday: invalid date format")

	// ErrUnsupportedLunarDate is returned by a lunar converter for dates it
	// cannot resolve. The engine skips the affected rule for that year.
	ErrUnsupportedLunarDate = lunar.ErrUnsupportedDate

	// ErrPopulationInProgress is returned to a caller that waited on another
	// caller's population of the same year when that population failed.
	// The operation may be retried.
	ErrPopulationInProgress = errors.New("krholiday: population in progress")

	// ErrUnknownJurisdiction is returned by New for an unregistered code.
	ErrUnknownJurisdiction = errors.New("krholiday: unknown jurisdiction")

	// ErrUnknownSubdivision is returned by New for a subdivision the
	// jurisdiction does not define.
	ErrUnknownSubdivision = errors.New("krholiday: unknown subdivision")

	// ErrInvalidRule is returned when a rule table or override file fails
	// validation.
	ErrInvalidRule = errors.New("krholiday: invalid rule")
)
