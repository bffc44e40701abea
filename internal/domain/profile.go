package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the single implicit diary owner. It lives in the key-value
// store, not Postgres, because it is a whole-value snapshot with no relations.
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Settings are the app-level preferences stored alongside the profile.
type Settings struct {
	// DefaultPageSize is the listing page size used when a request does not
	// pass an explicit limit.
	DefaultPageSize int `json:"default_page_size"`
	// GeocodeEnabled toggles best-effort reverse geocoding of trip locations.
	GeocodeEnabled bool `json:"geocode_enabled"`
}

// DefaultSettings are written to the store on first boot.
func DefaultSettings() Settings {
	return Settings{DefaultPageSize: 20, GeocodeEnabled: true}
}
