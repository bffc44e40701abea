package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dmathew/travel-diary/internal/domain"
)

// TravelerRepo defines the persistence operations for Travelers.
type TravelerRepo interface {
	// Create inserts a new traveler and returns the persisted record.
	Create(ctx context.Context, tr domain.Traveler) (domain.Traveler, error)

	// GetByID retrieves a single traveler by its UUID primary key.
	// Returns domain.ErrNotFound if no traveler with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Traveler, error)

	// GetByName retrieves a traveler by case-insensitive name match.
	// Returns domain.ErrNotFound when no traveler has that name.
	GetByName(ctx context.Context, name string) (domain.Traveler, error)

	// List returns all travelers ordered by name.
	List(ctx context.Context) ([]domain.Traveler, error)

	// ListByConsent returns all travelers with the given consent flag, ordered by name.
	ListByConsent(ctx context.Context, hasConsent bool) ([]domain.Traveler, error)

	// ListByIDs returns the travelers matching the given IDs, in no
	// particular order. IDs with no matching row are silently absent from
	// the result; the caller decides whether that is an error.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Traveler, error)

	// Update overwrites the mutable fields of an existing traveler and
	// returns the updated record. Returns domain.ErrNotFound if absent.
	Update(ctx context.Context, tr domain.Traveler) (domain.Traveler, error)

	// Delete removes a traveler by ID. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

const travelerCols = `id, name, age_group, relationship, has_consent, created_at, updated_at`

// pgTravelerRepo is the Postgres implementation of TravelerRepo.
type pgTravelerRepo struct {
	db db
}

// NewTravelerRepo constructs a TravelerRepo backed by the provided db connection.
func NewTravelerRepo(db db) TravelerRepo {
	return &pgTravelerRepo{db: db}
}

// Create inserts a new traveler row and returns the full persisted record.
func (r *pgTravelerRepo) Create(ctx context.Context, tr domain.Traveler) (domain.Traveler, error) {
	q := `
		INSERT INTO travelers (name, age_group, relationship, has_consent)
		VALUES (@name, @age_group, @relationship, @has_consent)
		RETURNING ` + travelerCols

	args := pgx.NamedArgs{
		"name":         tr.Name,
		"age_group":    tr.AgeGroup,
		"relationship": tr.Relationship,
		"has_consent":  tr.HasConsent,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTraveler(row)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("repo.TravelerRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a traveler by primary key.
func (r *pgTravelerRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Traveler, error) {
	q := `SELECT ` + travelerCols + ` FROM travelers WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTraveler(row)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("repo.TravelerRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByName retrieves a traveler by name, compared case-insensitively.
// The unique index on lower(name) makes this an index lookup.
func (r *pgTravelerRepo) GetByName(ctx context.Context, name string) (domain.Traveler, error) {
	q := `SELECT ` + travelerCols + ` FROM travelers WHERE lower(name) = lower(@name)`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name})
	result, err := scanTraveler(row)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("repo.TravelerRepo.GetByName: %w", err)
	}
	return result, nil
}

// List returns all travelers ordered by name.
func (r *pgTravelerRepo) List(ctx context.Context) ([]domain.Traveler, error) {
	q := `SELECT ` + travelerCols + ` FROM travelers ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TravelerRepo.List: %w", err)
	}
	return collectTravelers(rows, "List")
}

// ListByConsent returns all travelers with the given consent flag.
func (r *pgTravelerRepo) ListByConsent(ctx context.Context, hasConsent bool) ([]domain.Traveler, error) {
	q := `SELECT ` + travelerCols + ` FROM travelers WHERE has_consent = @has_consent ORDER BY name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"has_consent": hasConsent})
	if err != nil {
		return nil, fmt.Errorf("repo.TravelerRepo.ListByConsent: %w", err)
	}
	return collectTravelers(rows, "ListByConsent")
}

// ListByIDs returns the travelers whose IDs are in ids.
func (r *pgTravelerRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Traveler, error) {
	if len(ids) == 0 {
		return []domain.Traveler{}, nil
	}
	q := `SELECT ` + travelerCols + ` FROM travelers WHERE id = ANY(@ids)`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": uuidsToPg(ids)})
	if err != nil {
		return nil, fmt.Errorf("repo.TravelerRepo.ListByIDs: %w", err)
	}
	return collectTravelers(rows, "ListByIDs")
}

// Update overwrites the mutable fields of a traveler and returns the updated record.
func (r *pgTravelerRepo) Update(ctx context.Context, tr domain.Traveler) (domain.Traveler, error) {
	q := `
		UPDATE travelers
		SET name         = @name,
		    age_group    = @age_group,
		    relationship = @relationship,
		    has_consent  = @has_consent,
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + travelerCols

	args := pgx.NamedArgs{
		"id":           tr.ID,
		"name":         tr.Name,
		"age_group":    tr.AgeGroup,
		"relationship": tr.Relationship,
		"has_consent":  tr.HasConsent,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTraveler(row)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("repo.TravelerRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a traveler by primary key.
func (r *pgTravelerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM travelers WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TravelerRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TravelerRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// collectTravelers drains rows into a non-nil slice.
func collectTravelers(rows pgx.Rows, op string) ([]domain.Traveler, error) {
	defer rows.Close()

	travelers := []domain.Traveler{}
	for rows.Next() {
		tr, err := scanTraveler(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TravelerRepo.%s: scan: %w", op, err)
		}
		travelers = append(travelers, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TravelerRepo.%s: rows: %w", op, err)
	}
	return travelers, nil
}

// scanTraveler maps a single database row into a domain.Traveler.
func scanTraveler(s scanner) (domain.Traveler, error) {
	var (
		tr domain.Traveler
		id pgtype.UUID
	)
	err := s.Scan(&id, &tr.Name, &tr.AgeGroup, &tr.Relationship, &tr.HasConsent, &tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Traveler{}, domain.ErrNotFound
		}
		return domain.Traveler{}, err
	}
	tr.ID = uuid.UUID(id.Bytes)
	return tr, nil
}
