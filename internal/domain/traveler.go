package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AgeGroup is the coarse age bracket recorded for a traveler.
type AgeGroup string

const (
	AgeChild  AgeGroup = "child"
	AgeTeen   AgeGroup = "teen"
	AgeAdult  AgeGroup = "adult"
	AgeSenior AgeGroup = "senior"
)

// Valid reports whether a is a known age group.
func (a AgeGroup) Valid() bool {
	switch a {
	case AgeChild, AgeTeen, AgeAdult, AgeSenior:
		return true
	}
	return false
}

// Relationship is the traveler's relation to the diary owner.
type Relationship string

const (
	RelSelf      Relationship = "self"
	RelSpouse    Relationship = "spouse"
	RelChild     Relationship = "child"
	RelParent    Relationship = "parent"
	RelSibling   Relationship = "sibling"
	RelFriend    Relationship = "friend"
	RelColleague Relationship = "colleague"
	RelOther     Relationship = "other"
)

// Valid reports whether r is a known relationship.
func (r Relationship) Valid() bool {
	switch r {
	case RelSelf, RelSpouse, RelChild, RelParent, RelSibling, RelFriend, RelColleague, RelOther:
		return true
	}
	return false
}

// Traveler is a person who may accompany the owner on trips.
// Names are unique case-insensitively across the registry. HasConsent gates
// whether the traveler may be attached to trips and included in exports.
type Traveler struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	AgeGroup     AgeGroup     `json:"age_group"`
	Relationship Relationship `json:"relationship"`
	HasConsent   bool         `json:"has_consent"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewTraveler carries the caller-supplied fields for traveler registration.
type NewTraveler struct {
	Name         string
	AgeGroup     AgeGroup
	Relationship Relationship
	HasConsent   bool
}

// Validate checks required fields and enum membership. The name is compared
// and stored trimmed; whitespace-only names are rejected.
func (n NewTraveler) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !n.AgeGroup.Valid() {
		return fmt.Errorf("%w: unknown age group %q", ErrValidation, n.AgeGroup)
	}
	if !n.Relationship.Valid() {
		return fmt.Errorf("%w: unknown relationship %q", ErrValidation, n.Relationship)
	}
	return nil
}

// TravelerPatch is the explicit set of fields a traveler update may change.
// A nil field means "leave as is".
type TravelerPatch struct {
	Name         *string
	AgeGroup     *AgeGroup
	Relationship *Relationship
	HasConsent   *bool
}

// Validate checks every supplied field against its value constraints.
func (p TravelerPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if p.AgeGroup != nil && !p.AgeGroup.Valid() {
		return fmt.Errorf("%w: unknown age group %q", ErrValidation, *p.AgeGroup)
	}
	if p.Relationship != nil && !p.Relationship.Valid() {
		return fmt.Errorf("%w: unknown relationship %q", ErrValidation, *p.Relationship)
	}
	return nil
}
