// Package domain contains the core data types for the Travel Diary backend.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, kvstore, service, handler).
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	// StatusPlanned exists for forward compatibility with trip planning.
	// No code path currently produces it and no transition reaches it.
	StatusPlanned TripStatus = "planned"

	// StatusActive is the state every trip is created in. At most one trip
	// per owner may be active at any time.
	StatusActive TripStatus = "active"

	StatusCompleted TripStatus = "completed"
	StatusCancelled TripStatus = "cancelled"
)

// Valid reports whether s is a known trip status.
func (s TripStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s is a final state. No status transition may
// leave a terminal state.
func (s TripStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TransportMode is how the trip was made.
type TransportMode string

const (
	ModeWalk       TransportMode = "walk"
	ModeBicycle    TransportMode = "bicycle"
	ModeMotorcycle TransportMode = "motorcycle"
	ModeCar        TransportMode = "car"
	ModeBus        TransportMode = "bus"
	ModeTrain      TransportMode = "train"
	ModeAuto       TransportMode = "auto"
	ModeOther      TransportMode = "other"
)

// Valid reports whether m is a known transport mode.
func (m TransportMode) Valid() bool {
	switch m {
	case ModeWalk, ModeBicycle, ModeMotorcycle, ModeCar, ModeBus, ModeTrain, ModeAuto, ModeOther:
		return true
	}
	return false
}

// TripPurpose is why the trip was made.
type TripPurpose string

const (
	PurposeWork      TripPurpose = "work"
	PurposeEducation TripPurpose = "education"
	PurposeShopping  TripPurpose = "shopping"
	PurposeLeisure   TripPurpose = "leisure"
	PurposeMedical   TripPurpose = "medical"
	PurposeSocial    TripPurpose = "social"
	PurposeHome      TripPurpose = "home"
	PurposeOther     TripPurpose = "other"
)

// Valid reports whether p is a known trip purpose.
func (p TripPurpose) Valid() bool {
	switch p {
	case PurposeWork, PurposeEducation, PurposeShopping, PurposeLeisure,
		PurposeMedical, PurposeSocial, PurposeHome, PurposeOther:
		return true
	}
	return false
}

// Trip is one recorded journey by an owner, from origin to an optional
// destination. A trip is the top-level aggregate; companions reference
// travelers by ID but travelers are not owned by the trip.
type Trip struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	TripNumber  int        `json:"trip_number"`
	Status      TripStatus `json:"status"`
	Origin      Location   `json:"origin"`
	Destination *Location  `json:"destination,omitempty"` // nil until the trip is completed
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	// DurationMinutes is set when the trip completes: the start-to-end span
	// in minutes, rounded half away from zero. Cancellations leave it nil.
	DurationMinutes    *int          `json:"duration_minutes,omitempty"`
	Mode               TransportMode `json:"mode"`
	Purpose            TripPurpose   `json:"purpose"`
	PurposeDetail      string        `json:"purpose_detail,omitempty"`
	CompanionIDs       []uuid.UUID   `json:"accompanying_travelers"`
	TotalTravelers     int           `json:"total_travelers"`
	SatisfactionRating *int          `json:"satisfaction_rating,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// NewTrip carries the caller-supplied fields for trip creation.
// Everything else (number, status, start time, totals) is assigned by the
// lifecycle engine.
type NewTrip struct {
	Origin        Location
	Mode          TransportMode
	Purpose       TripPurpose
	PurposeDetail string
	CompanionIDs  []uuid.UUID
	Notes         string
}

// Validate checks the required fields and value ranges of a new trip.
func (n NewTrip) Validate() error {
	if err := n.Origin.Validate(); err != nil {
		return fmt.Errorf("%w: origin: %s", ErrValidation, trimSentinel(err))
	}
	if n.Mode == "" {
		return fmt.Errorf("%w: mode is required", ErrValidation)
	}
	if !n.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, n.Mode)
	}
	if n.Purpose == "" {
		return fmt.Errorf("%w: purpose is required", ErrValidation)
	}
	if !n.Purpose.Valid() {
		return fmt.Errorf("%w: unknown purpose %q", ErrValidation, n.Purpose)
	}
	return nil
}

// TripPatch is the explicit set of fields a trip update may change.
// A nil field means "leave as is". Free-form merge objects are deliberately
// not accepted; every field here is validated individually.
type TripPatch struct {
	Status             *TripStatus
	Destination        *Location
	EndTime            *time.Time
	DurationMinutes    *int
	Mode               *TransportMode
	Purpose            *TripPurpose
	PurposeDetail      *string
	CompanionIDs       *[]uuid.UUID
	SatisfactionRating *int
	Notes              *string
}

// Validate checks every supplied field against its value constraints.
// Transition legality is checked by the lifecycle engine, which knows the
// trip's current state.
func (p TripPatch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
	}
	if p.Status != nil && *p.Status == StatusPlanned {
		return fmt.Errorf("%w: trips cannot transition to planned", ErrValidation)
	}
	if p.Destination != nil {
		if err := p.Destination.Validate(); err != nil {
			return fmt.Errorf("%w: destination: %s", ErrValidation, trimSentinel(err))
		}
	}
	if p.Mode != nil && !p.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, *p.Mode)
	}
	if p.Purpose != nil && !p.Purpose.Valid() {
		return fmt.Errorf("%w: unknown purpose %q", ErrValidation, *p.Purpose)
	}
	if p.DurationMinutes != nil && *p.DurationMinutes < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrValidation)
	}
	if p.SatisfactionRating != nil && (*p.SatisfactionRating < 1 || *p.SatisfactionRating > 5) {
		return fmt.Errorf("%w: satisfaction rating must be between 1 and 5", ErrValidation)
	}
	return nil
}

// trimSentinel strips the leading "validation error: " from a wrapped
// validation error so it can be re-wrapped without stuttering.
func trimSentinel(err error) string {
	return strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
}
