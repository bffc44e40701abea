// Package service contains the business logic for the Travel Diary API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmathew/travel-diary/internal/domain"
	"github.com/dmathew/travel-diary/internal/repo"
)

// Geocoder resolves an address for a coordinate. Implemented by
// geocode.Client; nil disables address lookups entirely.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

// SettingsSource exposes the app settings that influence trip writes.
// Implemented by kvstore.Store; nil falls back to defaults.
type SettingsSource interface {
	Settings(ctx context.Context) (domain.Settings, error)
}

// TripService is the trip lifecycle engine. It enforces the single-active-trip
// rule, assigns monotonic trip numbers, guards status transitions, and
// computes derived fields on completion.
//
// Mutations are serialized per owner with an in-process mutex: the
// check-then-act sequences (active-trip existence, max+1 numbering) are not
// safe under concurrent writers otherwise. The lock is process-scoped; running
// multiple API replicas against one database needs the unique
// (owner_id, trip_number) and single-active partial indexes as the backstop.
type TripService struct {
	trips     repo.TripRepo
	travelers repo.TravelerRepo
	geo       Geocoder
	settings  SettingsSource

	mu     sync.Mutex
	owners map[uuid.UUID]*sync.Mutex
}

// NewTripService constructs a TripService. geo and settings may be nil.
func NewTripService(trips repo.TripRepo, travelers repo.TravelerRepo, geo Geocoder, settings SettingsSource) *TripService {
	return &TripService{
		trips:     trips,
		travelers: travelers,
		geo:       geo,
		settings:  settings,
		owners:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// ownerLock returns the mutex serializing mutations for one owner,
// creating it on first use.
func (s *TripService) ownerLock(ownerID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.owners[ownerID]
	if !ok {
		l = &sync.Mutex{}
		s.owners[ownerID] = l
	}
	return l
}

// Create validates and persists a new trip in active status.
// Returns domain.ErrValidation for bad input or non-consented companions,
// domain.ErrConflict when the owner already has an active trip.
func (s *TripService) Create(ctx context.Context, ownerID uuid.UUID, input domain.NewTrip) (domain.Trip, error) {
	if err := input.Validate(); err != nil {
		return domain.Trip{}, err
	}
	companions := dedupe(input.CompanionIDs)
	if err := s.requireConsent(ctx, companions); err != nil {
		return domain.Trip{}, err
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	_, err := s.trips.GetActive(ctx, ownerID)
	switch {
	case err == nil:
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: an active trip already exists", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	number, err := s.trips.NextTripNumber(ctx, ownerID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	origin := input.Origin
	if origin.RecordedAt.IsZero() {
		origin.RecordedAt = time.Now().UTC()
	}
	if origin.Address == "" {
		origin.Address = s.lookupAddress(ctx, origin.Latitude, origin.Longitude)
	}

	trip := domain.Trip{
		OwnerID:        ownerID,
		TripNumber:     number,
		Status:         domain.StatusActive,
		Origin:         origin,
		StartTime:      time.Now().UTC(),
		Mode:           input.Mode,
		Purpose:        input.Purpose,
		PurposeDetail:  input.PurposeDetail,
		CompanionIDs:   companions,
		TotalTravelers: 1 + len(companions),
		Notes:          input.Notes,
	}

	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// Active returns the owner's in-progress trip.
// Returns domain.ErrNotFound when no trip is active.
func (s *TripService) Active(ctx context.Context, ownerID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetActive(ctx, ownerID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Active: %w", err)
	}
	return trip, nil
}

// Update applies a validated patch to an existing trip. The whole patch is
// validated and merged before the single row write, so a failed update leaves
// the stored record untouched.
//
// Status rules: any status change on a trip already in a terminal state
// (completed, cancelled) fails with domain.ErrConflict. Transitioning to
// completed requires a destination and fills end time and duration;
// transitioning to cancelled fills end time only.
func (s *TripService) Update(ctx context.Context, tripID uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	if err := patch.Validate(); err != nil {
		return domain.Trip{}, err
	}

	cur, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	lock := s.ownerLock(cur.OwnerID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: the first read raced other writers.
	cur, err = s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	updated, err := s.merge(ctx, cur, patch)
	if err != nil {
		return domain.Trip{}, err
	}

	result, err := s.trips.Update(ctx, updated)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return result, nil
}

// Complete finishes the trip: status completed, destination set, end time and
// duration computed, optional satisfaction rating recorded.
func (s *TripService) Complete(ctx context.Context, tripID uuid.UUID, destination domain.Location, rating *int) (domain.Trip, error) {
	status := domain.StatusCompleted
	if destination.RecordedAt.IsZero() {
		destination.RecordedAt = time.Now().UTC()
	}
	if destination.Address == "" {
		if err := destination.Validate(); err == nil {
			destination.Address = s.lookupAddress(ctx, destination.Latitude, destination.Longitude)
		}
	}
	return s.Update(ctx, tripID, domain.TripPatch{
		Status:             &status,
		Destination:        &destination,
		SatisfactionRating: rating,
	})
}

// Cancel abandons the trip: status cancelled, end time set, no duration.
// Cancelling a trip that is already completed or cancelled fails with
// domain.ErrConflict.
func (s *TripService) Cancel(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	status := domain.StatusCancelled
	return s.Update(ctx, tripID, domain.TripPatch{Status: &status})
}

// Delete removes the trip permanently and returns the removed record.
// Travelers referenced by the trip are unaffected.
func (s *TripService) Delete(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.trips.Delete(ctx, tripID); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return trip, nil
}

// merge applies patch onto cur and derives status-transition side effects.
func (s *TripService) merge(ctx context.Context, cur domain.Trip, patch domain.TripPatch) (domain.Trip, error) {
	updated := cur

	if patch.Status != nil {
		if cur.Status.Terminal() {
			return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w: trip is already %s", domain.ErrConflict, cur.Status)
		}
		updated.Status = *patch.Status
	}
	if patch.Destination != nil {
		d := *patch.Destination
		if d.RecordedAt.IsZero() {
			d.RecordedAt = time.Now().UTC()
		}
		updated.Destination = &d
	}
	if patch.EndTime != nil {
		et := *patch.EndTime
		updated.EndTime = &et
	}
	if patch.DurationMinutes != nil {
		d := *patch.DurationMinutes
		updated.DurationMinutes = &d
	}
	if patch.Mode != nil {
		updated.Mode = *patch.Mode
	}
	if patch.Purpose != nil {
		updated.Purpose = *patch.Purpose
	}
	if patch.PurposeDetail != nil {
		updated.PurposeDetail = *patch.PurposeDetail
	}
	if patch.Notes != nil {
		updated.Notes = *patch.Notes
	}
	if patch.SatisfactionRating != nil {
		v := *patch.SatisfactionRating
		updated.SatisfactionRating = &v
	}
	if patch.CompanionIDs != nil {
		companions := dedupe(*patch.CompanionIDs)
		if err := s.requireConsent(ctx, companions); err != nil {
			return domain.Trip{}, err
		}
		updated.CompanionIDs = companions
		updated.TotalTravelers = 1 + len(companions)
	}

	transitioned := patch.Status != nil && *patch.Status != cur.Status
	if transitioned {
		switch updated.Status {
		case domain.StatusCompleted:
			if updated.Destination == nil {
				return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w: destination is required to complete a trip", domain.ErrValidation)
			}
			if updated.EndTime == nil {
				now := time.Now().UTC()
				updated.EndTime = &now
			}
			if patch.DurationMinutes == nil {
				d := durationMinutes(updated.StartTime, *updated.EndTime)
				updated.DurationMinutes = &d
			}
		case domain.StatusCancelled:
			if updated.EndTime == nil {
				now := time.Now().UTC()
				updated.EndTime = &now
			}
		}
	}

	return updated, nil
}

// requireConsent verifies every companion ID references a known traveler who
// has given consent. Consent is enforced here, at write time, not just in
// the selection UI.
func (s *TripService) requireConsent(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.travelers.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("service.TripService: companions: %w", err)
	}
	byID := make(map[uuid.UUID]domain.Traveler, len(found))
	for _, tr := range found {
		byID[tr.ID] = tr
	}
	for _, id := range ids {
		tr, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown traveler %s", domain.ErrValidation, id)
		}
		if !tr.HasConsent {
			return fmt.Errorf("%w: traveler %q has not given consent", domain.ErrValidation, tr.Name)
		}
	}
	return nil
}

// lookupAddress reverse geocodes best-effort: any failure logs and returns "".
func (s *TripService) lookupAddress(ctx context.Context, lat, lng float64) string {
	if s.geo == nil || !s.geocodeEnabled(ctx) {
		return ""
	}
	addr, err := s.geo.Reverse(ctx, lat, lng)
	if err != nil {
		slog.WarnContext(ctx, "reverse geocode failed", "error", err)
		return ""
	}
	return addr
}

// geocodeEnabled consults the stored settings, defaulting to enabled when no
// settings source is wired or the read fails.
func (s *TripService) geocodeEnabled(ctx context.Context) bool {
	if s.settings == nil {
		return true
	}
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return true
	}
	return settings.GeocodeEnabled
}

// durationMinutes is the start-to-end span in minutes, rounded half away
// from zero: 7m30s rounds to 8.
func durationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}

// dedupe removes duplicate IDs while preserving order.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
