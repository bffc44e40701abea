package domain

import (
	"fmt"
	"time"
)

// Location is a geographic point captured when a trip starts or ends.
// It is a value type: construct it once and never mutate it. Address is
// optional and may be filled in later by reverse geocoding.
type Location struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Address    string    `json:"address,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Validate checks that the coordinates are on the globe.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	}
	return nil
}
