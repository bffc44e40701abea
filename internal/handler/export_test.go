package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmathew/travel-diary/internal/domain"
	"github.com/dmathew/travel-diary/internal/handler"
)

// mockExportServicer is a test double for handler.ExportServicer.
type mockExportServicer struct {
	export func(ctx context.Context, ownerID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, ownerID uuid.UUID) ([]domain.ExportRow, error) {
	return m.export(ctx, ownerID)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

func newExportRouter(export handler.ExportServicer) http.Handler {
	profile := &mockProfileStore{profile: domain.UserProfile{ID: testOwner, DisplayName: "Traveler"}}
	srv := handler.NewServer(nil, nil, nil, export, profile)
	return srv.Router()
}

func exportRowFixture() domain.ExportRow {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	dur := 45
	lat, lng := 13.0, 77.6
	return domain.ExportRow{
		TripID:          uuid.NewString(),
		TripNumber:      7,
		Status:          "completed",
		Mode:            "bus",
		Purpose:         "work",
		OriginLatitude:  12.9716,
		OriginLongitude: 77.5946,
		OriginAddress:   "MG Road",
		DestLatitude:    &lat,
		DestLongitude:   &lng,
		DestAddress:     "Airport Road",
		StartTime:       start,
		EndTime:         &end,
		DurationMinutes: &dur,
		TotalTravelers:  2,
		Companions:      []string{"Asha"},
	}
}

func TestGetExport_JSON(t *testing.T) {
	fixture := exportRowFixture()
	svc := &mockExportServicer{
		export: func(_ context.Context, ownerID uuid.UUID) ([]domain.ExportRow, error) {
			assert.Equal(t, testOwner, ownerID)
			return []domain.ExportRow{fixture}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()

	newExportRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var rows []domain.ExportRow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, fixture.TripID, rows[0].TripID)
	assert.Equal(t, []string{"Asha"}, rows[0].Companions)
}

func TestGetExport_CSV(t *testing.T) {
	fixture := exportRowFixture()
	svc := &mockExportServicer{
		export: func(_ context.Context, _ uuid.UUID) ([]domain.ExportRow, error) {
			return []domain.ExportRow{fixture}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/export?format=csv", nil)
	rec := httptest.NewRecorder()

	newExportRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "trips.csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header row plus one data row")

	header, row := records[0], records[1]
	assert.Equal(t, "trip_id", header[0])
	assert.Equal(t, fixture.TripID, row[0])
	assert.Equal(t, "7", row[1])
	assert.Equal(t, "completed", row[2])
	assert.Equal(t, "45", row[14], "duration column")
	assert.Equal(t, "Asha", row[18], "companions column")
}

func TestGetExport_CSV_EmptyOptionalFields(t *testing.T) {
	fixture := exportRowFixture()
	fixture.DestLatitude = nil
	fixture.DestLongitude = nil
	fixture.DestAddress = ""
	fixture.EndTime = nil
	fixture.DurationMinutes = nil
	fixture.Companions = []string{}

	svc := &mockExportServicer{
		export: func(_ context.Context, _ uuid.UUID) ([]domain.ExportRow, error) {
			return []domain.ExportRow{fixture}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/export?format=csv", nil)
	rec := httptest.NewRecorder()

	newExportRouter(svc).ServeHTTP(rec, req)

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row := records[1]
	assert.Empty(t, row[9], "dest_lat")
	assert.Empty(t, row[13], "end_time")
	assert.Empty(t, row[14], "duration_minutes")
	assert.Empty(t, row[18], "companions")
}

func TestGetExport_Empty(t *testing.T) {
	svc := &mockExportServicer{
		export: func(_ context.Context, _ uuid.UUID) ([]domain.ExportRow, error) {
			return []domain.ExportRow{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()

	newExportRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
