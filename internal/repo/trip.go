// Package repo contains all database access logic for the Travel Diary API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dmathew/travel-diary/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// GetActive returns the owner's trip in active status, if any.
	// Returns domain.ErrNotFound when the owner has no active trip.
	GetActive(ctx context.Context, ownerID uuid.UUID) (domain.Trip, error)

	// NextTripNumber returns max(trip_number)+1 for the owner, or 1 when the
	// owner has no trips. The caller serializes assignment per owner.
	NextTripNumber(ctx context.Context, ownerID uuid.UUID) (int, error)

	// List returns all of the owner's trips matching the filter, ordered by
	// start_time descending.
	List(ctx context.Context, ownerID uuid.UUID, f domain.TripFilter) ([]domain.Trip, error)

	// ListPaged returns one page of the owner's trips matching the filter and
	// the total match count.
	ListPaged(ctx context.Context, ownerID uuid.UUID, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update overwrites the mutable fields of an existing trip and returns
	// the updated record. Returns domain.ErrNotFound if no trip with that ID
	// exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// tripCols is the full column list shared by every SELECT and RETURNING clause.
const tripCols = `id, owner_id, trip_number, status,
	origin_lat, origin_lng, origin_address, origin_recorded_at,
	dest_lat, dest_lng, dest_address, dest_recorded_at,
	start_time, end_time, duration_minutes,
	mode, purpose, purpose_detail, companions, total_travelers,
	satisfaction_rating, notes, created_at, updated_at`

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		INSERT INTO trips (owner_id, trip_number, status,
			origin_lat, origin_lng, origin_address, origin_recorded_at,
			dest_lat, dest_lng, dest_address, dest_recorded_at,
			start_time, end_time, duration_minutes,
			mode, purpose, purpose_detail, companions, total_travelers,
			satisfaction_rating, notes)
		VALUES (@owner_id, @trip_number, @status,
			@origin_lat, @origin_lng, @origin_address, @origin_recorded_at,
			@dest_lat, @dest_lng, @dest_address, @dest_recorded_at,
			@start_time, @end_time, @duration_minutes,
			@mode, @purpose, @purpose_detail, @companions, @total_travelers,
			@satisfaction_rating, @notes)
		RETURNING ` + tripCols

	row := r.db.QueryRow(ctx, q, tripArgs(trip))
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripCols + ` FROM trips WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetActive returns the owner's single active trip.
func (r *pgTripRepo) GetActive(ctx context.Context, ownerID uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripCols + ` FROM trips
		WHERE owner_id = @owner_id AND status = @status`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "status": domain.StatusActive})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetActive: %w", err)
	}
	return result, nil
}

// NextTripNumber computes max(trip_number)+1 for the owner.
func (r *pgTripRepo) NextTripNumber(ctx context.Context, ownerID uuid.UUID) (int, error) {
	const q = `SELECT COALESCE(MAX(trip_number), 0) + 1 FROM trips WHERE owner_id = @owner_id`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"owner_id": ownerID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.TripRepo.NextTripNumber: %w", err)
	}
	return n, nil
}

// List returns all matching trips ordered by start_time descending (most recent first).
func (r *pgTripRepo) List(ctx context.Context, ownerID uuid.UUID, f domain.TripFilter) ([]domain.Trip, error) {
	where, args := tripFilterSQL(ownerID, f)
	q := `SELECT ` + tripCols + ` FROM trips WHERE ` + where + ` ORDER BY start_time DESC`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}
	return trips, nil
}

// ListPaged returns one page of matching trips plus the total match count.
func (r *pgTripRepo) ListPaged(ctx context.Context, ownerID uuid.UUID, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	where, args := tripFilterSQL(ownerID, f)

	var total int64
	countQ := `SELECT COUNT(*) FROM trips WHERE ` + where
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
	}

	args["limit"] = p.Limit
	args["offset"] = p.Offset()
	q := `SELECT ` + tripCols + ` FROM trips WHERE ` + where + `
		ORDER BY start_time DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: rows: %w", err)
	}
	return trips, total, nil
}

// Update overwrites the mutable fields of a trip and returns the updated record.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		UPDATE trips
		SET status              = @status,
		    dest_lat            = @dest_lat,
		    dest_lng            = @dest_lng,
		    dest_address        = @dest_address,
		    dest_recorded_at    = @dest_recorded_at,
		    end_time            = @end_time,
		    duration_minutes    = @duration_minutes,
		    mode                = @mode,
		    purpose             = @purpose,
		    purpose_detail      = @purpose_detail,
		    companions          = @companions,
		    total_travelers     = @total_travelers,
		    satisfaction_rating = @satisfaction_rating,
		    notes               = @notes,
		    updated_at          = now()
		WHERE id = @id
		RETURNING ` + tripCols

	args := tripArgs(trip)
	args["id"] = trip.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// tripFilterSQL builds the WHERE clause and named args shared by List,
// ListPaged and the ListPaged count query.
func tripFilterSQL(ownerID uuid.UUID, f domain.TripFilter) (string, pgx.NamedArgs) {
	where := []string{"owner_id = @owner_id"}
	args := pgx.NamedArgs{"owner_id": ownerID}

	if f.Status != nil {
		where = append(where, "status = @f_status")
		args["f_status"] = *f.Status
	}
	if f.Mode != nil {
		where = append(where, "mode = @f_mode")
		args["f_mode"] = *f.Mode
	}
	if f.Purpose != nil {
		where = append(where, "purpose = @f_purpose")
		args["f_purpose"] = *f.Purpose
	}
	if f.From != nil {
		where = append(where, "start_time >= @f_from")
		args["f_from"] = *f.From
	}
	if f.To != nil {
		where = append(where, "start_time <= @f_to")
		args["f_to"] = *f.To
	}
	return strings.Join(where, " AND "), args
}

// tripArgs maps a domain.Trip onto the named args used by Create and Update.
func tripArgs(t domain.Trip) pgx.NamedArgs {
	args := pgx.NamedArgs{
		"owner_id":            t.OwnerID,
		"trip_number":         t.TripNumber,
		"status":              t.Status,
		"origin_lat":          t.Origin.Latitude,
		"origin_lng":          t.Origin.Longitude,
		"origin_address":      t.Origin.Address,
		"origin_recorded_at":  t.Origin.RecordedAt,
		"dest_lat":            nil,
		"dest_lng":            nil,
		"dest_address":        nil,
		"dest_recorded_at":    nil,
		"start_time":          t.StartTime,
		"end_time":            t.EndTime, // nil becomes NULL
		"duration_minutes":    t.DurationMinutes,
		"mode":                t.Mode,
		"purpose":             t.Purpose,
		"purpose_detail":      t.PurposeDetail,
		"companions":          uuidsToPg(t.CompanionIDs),
		"total_travelers":     t.TotalTravelers,
		"satisfaction_rating": t.SatisfactionRating,
		"notes":               t.Notes,
	}
	if d := t.Destination; d != nil {
		args["dest_lat"] = d.Latitude
		args["dest_lng"] = d.Longitude
		args["dest_address"] = d.Address
		args["dest_recorded_at"] = d.RecordedAt
	}
	return args
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID, uuid[] and nullable destination/end conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t          domain.Trip
		id, owner  pgtype.UUID
		destLat    pgtype.Float8
		destLng    pgtype.Float8
		destAddr   pgtype.Text
		destAt     pgtype.Timestamptz
		endTime    pgtype.Timestamptz
		duration   pgtype.Int4
		rating     pgtype.Int4
		companions []pgtype.UUID
	)

	err := s.Scan(
		&id, &owner, &t.TripNumber, &t.Status,
		&t.Origin.Latitude, &t.Origin.Longitude, &t.Origin.Address, &t.Origin.RecordedAt,
		&destLat, &destLng, &destAddr, &destAt,
		&t.StartTime, &endTime, &duration,
		&t.Mode, &t.Purpose, &t.PurposeDetail, &companions, &t.TotalTravelers,
		&rating, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = uuid.UUID(owner.Bytes)
	t.CompanionIDs = uuidsFromPg(companions)

	if destLat.Valid && destLng.Valid {
		d := domain.Location{
			Latitude:  destLat.Float64,
			Longitude: destLng.Float64,
			Address:   destAddr.String,
		}
		if destAt.Valid {
			d.RecordedAt = destAt.Time
		}
		t.Destination = &d
	}
	if endTime.Valid {
		et := endTime.Time
		t.EndTime = &et
	}
	if duration.Valid {
		d := int(duration.Int32)
		t.DurationMinutes = &d
	}
	if rating.Valid {
		v := int(rating.Int32)
		t.SatisfactionRating = &v
	}

	return t, nil
}

// uuidsToPg converts google/uuid values to pgtype for uuid[] encoding.
// An empty slice is stored as an empty array, never NULL.
func uuidsToPg(ids []uuid.UUID) []pgtype.UUID {
	out := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		out[i] = pgtype.UUID{Bytes: id, Valid: true}
	}
	return out
}

// uuidsFromPg converts a scanned uuid[] back to google/uuid values.
func uuidsFromPg(ids []pgtype.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		out[i] = uuid.UUID(id.Bytes)
	}
	return out
}
