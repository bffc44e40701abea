package domain

// TripStats are read-only aggregates over an owner's trip collection,
// recomputed on every request.
type TripStats struct {
	Total              int                   `json:"total"`
	ByStatus           map[TripStatus]int    `json:"by_status"`
	ByMode             map[TransportMode]int `json:"by_mode"`
	ByPurpose          map[TripPurpose]int   `json:"by_purpose"`
	AvgDurationMinutes float64               `json:"avg_duration_minutes"`
	TotalDistanceKM    float64               `json:"total_distance_km"`
}

// TravelerStats summarize the traveler registry, recomputed on every request.
type TravelerStats struct {
	Total          int                  `json:"total"`
	WithConsent    int                  `json:"with_consent"`
	WithoutConsent int                  `json:"without_consent"`
	ByAgeGroup     map[AgeGroup]int     `json:"by_age_group"`
	ByRelationship map[Relationship]int `json:"by_relationship"`
}
