package domain

import (
	"fmt"
	"time"
)

// TripFilter narrows a trip listing. Nil fields match everything.
// From and To are inclusive bounds on the trip's start time.
type TripFilter struct {
	Status  *TripStatus
	Mode    *TransportMode
	Purpose *TripPurpose
	From    *time.Time
	To      *time.Time
}

// Validate rejects unknown enum values and inverted date ranges.
func (f TripFilter) Validate() error {
	if f.Status != nil && !f.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *f.Status)
	}
	if f.Mode != nil && !f.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, *f.Mode)
	}
	if f.Purpose != nil && !f.Purpose.Valid() {
		return fmt.Errorf("%w: unknown purpose %q", ErrValidation, *f.Purpose)
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return fmt.Errorf("%w: date range end is before its start", ErrValidation)
	}
	return nil
}
