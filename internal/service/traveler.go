package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmathew/travel-diary/internal/domain"
	"github.com/dmathew/travel-diary/internal/repo"
)

// TravelerService implements the traveler registry: registration, updates,
// consent management, and derived statistics. Its central rule is name
// uniqueness under case-insensitive comparison.
type TravelerService struct {
	travelers repo.TravelerRepo
}

// NewTravelerService constructs a TravelerService backed by the provided repo.
func NewTravelerService(travelers repo.TravelerRepo) *TravelerService {
	return &TravelerService{travelers: travelers}
}

// Create validates and registers a new traveler.
// Returns domain.ErrConflict when another traveler already has the same name
// (compared case-insensitively, trimmed).
func (s *TravelerService) Create(ctx context.Context, input domain.NewTraveler) (domain.Traveler, error) {
	if err := input.Validate(); err != nil {
		return domain.Traveler{}, err
	}
	name := strings.TrimSpace(input.Name)

	if err := s.checkNameFree(ctx, name, uuid.Nil); err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.Create: %w", err)
	}

	created, err := s.travelers.Create(ctx, domain.Traveler{
		Name:         name,
		AgeGroup:     input.AgeGroup,
		Relationship: input.Relationship,
		HasConsent:   input.HasConsent,
	})
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single traveler by ID.
func (s *TravelerService) GetByID(ctx context.Context, id uuid.UUID) (domain.Traveler, error) {
	tr, err := s.travelers.GetByID(ctx, id)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.GetByID: %w", err)
	}
	return tr, nil
}

// Update applies a validated patch to an existing traveler. A name change is
// re-checked for uniqueness, excluding the traveler being updated — renaming
// "Asha" to "asha" succeeds.
func (s *TravelerService) Update(ctx context.Context, id uuid.UUID, patch domain.TravelerPatch) (domain.Traveler, error) {
	if err := patch.Validate(); err != nil {
		return domain.Traveler{}, err
	}

	cur, err := s.travelers.GetByID(ctx, id)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.Update: %w", err)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := s.checkNameFree(ctx, name, id); err != nil {
			return domain.Traveler{}, fmt.Errorf("service.TravelerService.Update: %w", err)
		}
		cur.Name = name
	}
	if patch.AgeGroup != nil {
		cur.AgeGroup = *patch.AgeGroup
	}
	if patch.Relationship != nil {
		cur.Relationship = *patch.Relationship
	}
	if patch.HasConsent != nil {
		cur.HasConsent = *patch.HasConsent
	}

	updated, err := s.travelers.Update(ctx, cur)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.Update: %w", err)
	}
	return updated, nil
}

// SetConsent flips the traveler's consent flag. Sugar over Update.
func (s *TravelerService) SetConsent(ctx context.Context, id uuid.UUID, hasConsent bool) (domain.Traveler, error) {
	return s.Update(ctx, id, domain.TravelerPatch{HasConsent: &hasConsent})
}

// Delete removes a traveler permanently and returns the removed record.
// Trips that referenced the traveler keep their companion counts; there is
// no cascade in either direction.
func (s *TravelerService) Delete(ctx context.Context, id uuid.UUID) (domain.Traveler, error) {
	tr, err := s.travelers.GetByID(ctx, id)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.Delete: %w", err)
	}
	if err := s.travelers.Delete(ctx, id); err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.Delete: %w", err)
	}
	return tr, nil
}

// List returns all travelers ordered by name.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TravelerService) List(ctx context.Context) ([]domain.Traveler, error) {
	travelers, err := s.travelers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TravelerService.List: %w", err)
	}
	if travelers == nil {
		return []domain.Traveler{}, nil
	}
	return travelers, nil
}

// ListByConsent returns all travelers with the given consent flag.
func (s *TravelerService) ListByConsent(ctx context.Context, hasConsent bool) ([]domain.Traveler, error) {
	travelers, err := s.travelers.ListByConsent(ctx, hasConsent)
	if err != nil {
		return nil, fmt.Errorf("service.TravelerService.ListByConsent: %w", err)
	}
	if travelers == nil {
		return []domain.Traveler{}, nil
	}
	return travelers, nil
}

// Stats recomputes the registry aggregates from the full traveler list.
// Nothing is cached; the numbers are always consistent with the store.
func (s *TravelerService) Stats(ctx context.Context) (domain.TravelerStats, error) {
	travelers, err := s.travelers.List(ctx)
	if err != nil {
		return domain.TravelerStats{}, fmt.Errorf("service.TravelerService.Stats: %w", err)
	}

	stats := domain.TravelerStats{
		ByAgeGroup:     map[domain.AgeGroup]int{},
		ByRelationship: map[domain.Relationship]int{},
	}
	for _, tr := range travelers {
		stats.Total++
		if tr.HasConsent {
			stats.WithConsent++
		} else {
			stats.WithoutConsent++
		}
		stats.ByAgeGroup[tr.AgeGroup]++
		stats.ByRelationship[tr.Relationship]++
	}
	return stats, nil
}

// checkNameFree returns domain.ErrConflict when a different traveler already
// holds the name. Pass uuid.Nil as self on create.
func (s *TravelerService) checkNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.travelers.GetByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == self:
		return nil
	default:
		return fmt.Errorf("%w: a traveler named %q already exists", domain.ErrConflict, existing.Name)
	}
}
