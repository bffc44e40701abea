package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmathew/travel-diary/internal/domain"
	"github.com/dmathew/travel-diary/internal/repo"
)

// ExportService assembles the flat per-trip export ingested by the research
// backend. Consent is enforced here a second time: companion names only
// appear for travelers whose consent flag is currently true, so a traveler
// who revoked consent after a trip was recorded disappears from the export.
type ExportService struct {
	trips     repo.TripRepo
	travelers repo.TravelerRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, travelers repo.TravelerRepo) *ExportService {
	return &ExportService{trips: trips, travelers: travelers}
}

// Export returns one row per trip for the owner, newest first.
// Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context, ownerID uuid.UUID) ([]domain.ExportRow, error) {
	trips, err := s.trips.List(ctx, ownerID, domain.TripFilter{})
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	travelers, err := s.travelers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	byID := make(map[uuid.UUID]domain.Traveler, len(travelers))
	for _, tr := range travelers {
		byID[tr.ID] = tr
	}

	rows := make([]domain.ExportRow, 0, len(trips))
	for _, t := range trips {
		rows = append(rows, exportRow(t, byID))
	}
	return rows, nil
}

// exportRow flattens one trip, resolving companion IDs to consented names.
func exportRow(t domain.Trip, byID map[uuid.UUID]domain.Traveler) domain.ExportRow {
	companions := []string{}
	for _, id := range t.CompanionIDs {
		if tr, ok := byID[id]; ok && tr.HasConsent {
			companions = append(companions, tr.Name)
		}
	}

	row := domain.ExportRow{
		TripID:             t.ID.String(),
		TripNumber:         t.TripNumber,
		Status:             string(t.Status),
		Mode:               string(t.Mode),
		Purpose:            string(t.Purpose),
		PurposeDetail:      t.PurposeDetail,
		OriginLatitude:     t.Origin.Latitude,
		OriginLongitude:    t.Origin.Longitude,
		OriginAddress:      t.Origin.Address,
		StartTime:          t.StartTime,
		EndTime:            t.EndTime,
		DurationMinutes:    t.DurationMinutes,
		TotalTravelers:     t.TotalTravelers,
		SatisfactionRating: t.SatisfactionRating,
		Notes:              t.Notes,
		Companions:         companions,
	}
	if d := t.Destination; d != nil {
		lat, lng := d.Latitude, d.Longitude
		row.DestLatitude = &lat
		row.DestLongitude = &lng
		row.DestAddress = d.Address
	}
	return row
}
