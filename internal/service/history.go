package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/dmathew/travel-diary/internal/domain"
	"github.com/dmathew/travel-diary/internal/repo"
)

// HistoryService is the read-only query side of the trip collection:
// filtering, pagination, and per-request aggregate statistics. It never
// mutates anything.
type HistoryService struct {
	trips repo.TripRepo
}

// NewHistoryService constructs a HistoryService backed by the provided TripRepo.
func NewHistoryService(trips repo.TripRepo) *HistoryService {
	return &HistoryService{trips: trips}
}

// List returns one page of the owner's trips matching the filter, newest
// first, plus the derived page metadata.
func (s *HistoryService) List(ctx context.Context, ownerID uuid.UUID, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, domain.Pagination, error) {
	if err := f.Validate(); err != nil {
		return nil, domain.Pagination{}, err
	}
	trips, total, err := s.trips.ListPaged(ctx, ownerID, f, p)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("service.HistoryService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, domain.NewPagination(p, total), nil
}

// Stats recomputes the owner's trip aggregates on every call.
// AvgDurationMinutes covers completed trips only and is 0 when none exist.
// TotalDistanceKM sums the great-circle origin-to-destination distance of
// every trip that has a destination.
func (s *HistoryService) Stats(ctx context.Context, ownerID uuid.UUID) (domain.TripStats, error) {
	trips, err := s.trips.List(ctx, ownerID, domain.TripFilter{})
	if err != nil {
		return domain.TripStats{}, fmt.Errorf("service.HistoryService.Stats: %w", err)
	}

	stats := domain.TripStats{
		ByStatus:  map[domain.TripStatus]int{},
		ByMode:    map[domain.TransportMode]int{},
		ByPurpose: map[domain.TripPurpose]int{},
	}

	var durationSum, completed int
	for _, t := range trips {
		stats.Total++
		stats.ByStatus[t.Status]++
		stats.ByMode[t.Mode]++
		stats.ByPurpose[t.Purpose]++

		if t.Status == domain.StatusCompleted && t.DurationMinutes != nil {
			durationSum += *t.DurationMinutes
			completed++
		}
		if t.Destination != nil {
			stats.TotalDistanceKM += haversineKM(
				t.Origin.Latitude, t.Origin.Longitude,
				t.Destination.Latitude, t.Destination.Longitude,
			)
		}
	}
	if completed > 0 {
		stats.AvgDurationMinutes = float64(durationSum) / float64(completed)
	}
	return stats, nil
}

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371.0

// haversineKM is the great-circle distance between two coordinates in km.
func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
