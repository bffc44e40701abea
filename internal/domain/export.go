package domain

import "time"

// ExportRow is one flat line of the research export: a trip with the names
// of its consented companions. Travelers without consent never appear here.
type ExportRow struct {
	TripID             string     `json:"trip_id"`
	TripNumber         int        `json:"trip_number"`
	Status             string     `json:"status"`
	Mode               string     `json:"mode"`
	Purpose            string     `json:"purpose"`
	PurposeDetail      string     `json:"purpose_detail,omitempty"`
	OriginLatitude     float64    `json:"origin_latitude"`
	OriginLongitude    float64    `json:"origin_longitude"`
	OriginAddress      string     `json:"origin_address,omitempty"`
	DestLatitude       *float64   `json:"dest_latitude,omitempty"`
	DestLongitude      *float64   `json:"dest_longitude,omitempty"`
	DestAddress        string     `json:"dest_address,omitempty"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	DurationMinutes    *int       `json:"duration_minutes,omitempty"`
	TotalTravelers     int        `json:"total_travelers"`
	SatisfactionRating *int       `json:"satisfaction_rating,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	Companions         []string   `json:"companions"`
}
