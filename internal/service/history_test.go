package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmathew/travel-diary/internal/domain"
	"github.com/dmathew/travel-diary/internal/service"
)

func completedTrip(minutes int) domain.Trip {
	tr := activeTrip()
	tr.ID = uuid.New()
	tr.Status = domain.StatusCompleted
	tr.DurationMinutes = &minutes
	end := tr.StartTime.Add(time.Duration(minutes) * time.Minute)
	tr.EndTime = &end
	return tr
}

func TestHistoryService_List(t *testing.T) {
	page := []domain.Trip{activeTrip(), completedTrip(30)}
	trips := &mockTripRepo{
		listPaged: func(_ context.Context, _ uuid.UUID, _ domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
			assert.Equal(t, 2, p.Page)
			assert.Equal(t, 10, p.Limit)
			return page, 25, nil
		},
	}
	svc := service.NewHistoryService(trips)

	got, meta, err := svc.List(context.Background(), testOwner, domain.TripFilter{}, domain.PaginationParams{Page: 2, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(25), meta.Total)
	assert.True(t, meta.HasNext, "page 2 of 25 at limit 10 has a next page")
	assert.True(t, meta.HasPrev)
}

func TestHistoryService_List_LastPage(t *testing.T) {
	trips := &mockTripRepo{
		listPaged: func(_ context.Context, _ uuid.UUID, _ domain.TripFilter, _ domain.PaginationParams) ([]domain.Trip, int64, error) {
			return []domain.Trip{activeTrip()}, 25, nil
		},
	}
	svc := service.NewHistoryService(trips)

	_, meta, err := svc.List(context.Background(), testOwner, domain.TripFilter{}, domain.PaginationParams{Page: 3, Limit: 10})

	require.NoError(t, err)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}

func TestHistoryService_List_EmptyResultIsNotNil(t *testing.T) {
	trips := &mockTripRepo{
		listPaged: func(_ context.Context, _ uuid.UUID, _ domain.TripFilter, _ domain.PaginationParams) ([]domain.Trip, int64, error) {
			return nil, 0, nil
		},
	}
	svc := service.NewHistoryService(trips)

	got, meta, err := svc.List(context.Background(), testOwner, domain.TripFilter{}, domain.PaginationParams{Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}

func TestHistoryService_List_InvertedDateRange(t *testing.T) {
	svc := service.NewHistoryService(&mockTripRepo{})

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -5)
	f := domain.TripFilter{From: &from, To: &to}

	_, _, err := svc.List(context.Background(), testOwner, f, domain.PaginationParams{Page: 1, Limit: 20})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestHistoryService_Stats(t *testing.T) {
	cancelled := activeTrip()
	cancelled.ID = uuid.New()
	cancelled.Status = domain.StatusCancelled

	trips := &mockTripRepo{
		list: func(_ context.Context, _ uuid.UUID, _ domain.TripFilter) ([]domain.Trip, error) {
			return []domain.Trip{activeTrip(), completedTrip(30), completedTrip(60), cancelled}, nil
		},
	}
	svc := service.NewHistoryService(trips)

	got, err := svc.Stats(context.Background(), testOwner)

	require.NoError(t, err)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 1, got.ByStatus[domain.StatusActive])
	assert.Equal(t, 2, got.ByStatus[domain.StatusCompleted])
	assert.Equal(t, 1, got.ByStatus[domain.StatusCancelled])
	assert.Equal(t, 4, got.ByMode[domain.ModeBus])
	assert.InDelta(t, 45.0, got.AvgDurationMinutes, 0.001, "average over completed trips only")
}

func TestHistoryService_Stats_NoCompletedTrips(t *testing.T) {
	trips := &mockTripRepo{
		list: func(_ context.Context, _ uuid.UUID, _ domain.TripFilter) ([]domain.Trip, error) {
			return []domain.Trip{activeTrip()}, nil
		},
	}
	svc := service.NewHistoryService(trips)

	got, err := svc.Stats(context.Background(), testOwner)

	require.NoError(t, err)
	assert.Zero(t, got.AvgDurationMinutes, "no division by zero when nothing completed")
}

func TestHistoryService_Stats_Distance(t *testing.T) {
	// Bengaluru city center to the airport, roughly 28 km great-circle.
	tr := completedTrip(50)
	tr.Origin.Latitude, tr.Origin.Longitude = 12.9716, 77.5946
	tr.Destination = &domain.Location{Latitude: 13.1986, Longitude: 77.7066}

	trips := &mockTripRepo{
		list: func(_ context.Context, _ uuid.UUID, _ domain.TripFilter) ([]domain.Trip, error) {
			return []domain.Trip{tr}, nil
		},
	}
	svc := service.NewHistoryService(trips)

	got, err := svc.Stats(context.Background(), testOwner)

	require.NoError(t, err)
	assert.InDelta(t, 28.0, got.TotalDistanceKM, 2.5)
}
