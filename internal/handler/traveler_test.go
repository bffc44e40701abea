package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
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

// mockTravelerServicer is a test double for handler.TravelerServicer.
type mockTravelerServicer struct {
	create        func(ctx context.Context, input domain.NewTraveler) (domain.Traveler, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Traveler, error)
	update        func(ctx context.Context, id uuid.UUID, patch domain.TravelerPatch) (domain.Traveler, error)
	setConsent    func(ctx context.Context, id uuid.UUID, hasConsent bool) (domain.Traveler, error)
	delete        func(ctx context.Context, id uuid.UUID) (domain.Traveler, error)
	list          func(ctx context.Context) ([]domain.Traveler, error)
	listByConsent func(ctx context.Context, hasConsent bool) ([]domain.Traveler, error)
	stats         func(ctx context.Context) (domain.TravelerStats, error)
}

func (m *mockTravelerServicer) Create(ctx context.Context, input domain.NewTraveler) (domain.Traveler, error) {
	return m.create(ctx, input)
}
func (m *mockTravelerServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Traveler, error) {
	return m.getByID(ctx, id)
}
func (m *mockTravelerServicer) Update(ctx context.Context, id uuid.UUID, patch domain.TravelerPatch) (domain.Traveler, error) {
	return m.update(ctx, id, patch)
}
func (m *mockTravelerServicer) SetConsent(ctx context.Context, id uuid.UUID, hasConsent bool) (domain.Traveler, error) {
	return m.setConsent(ctx, id, hasConsent)
}
func (m *mockTravelerServicer) Delete(ctx context.Context, id uuid.UUID) (domain.Traveler, error) {
	return m.delete(ctx, id)
}
func (m *mockTravelerServicer) List(ctx context.Context) ([]domain.Traveler, error) {
	return m.list(ctx)
}
func (m *mockTravelerServicer) ListByConsent(ctx context.Context, hasConsent bool) ([]domain.Traveler, error) {
	return m.listByConsent(ctx, hasConsent)
}
func (m *mockTravelerServicer) Stats(ctx context.Context) (domain.TravelerStats, error) {
	return m.stats(ctx)
}

var _ handler.TravelerServicer = (*mockTravelerServicer)(nil)

func newTravelerRouter(travelers handler.TravelerServicer) http.Handler {
	profile := &mockProfileStore{profile: domain.UserProfile{ID: testOwner, DisplayName: "Traveler"}}
	srv := handler.NewServer(nil, travelers, nil, nil, profile)
	return srv.Router()
}

func travelerFixture() domain.Traveler {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return domain.Traveler{
		ID:           uuid.New(),
		Name:         "Asha",
		AgeGroup:     domain.AgeAdult,
		Relationship: domain.RelSpouse,
		HasConsent:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateTraveler_201(t *testing.T) {
	fixture := travelerFixture()
	svc := &mockTravelerServicer{
		create: func(_ context.Context, input domain.NewTraveler) (domain.Traveler, error) {
			assert.Equal(t, "Asha", input.Name)
			assert.Equal(t, domain.AgeAdult, input.AgeGroup)
			assert.True(t, input.HasConsent)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"name":         "Asha",
		"age_group":    "adult",
		"relationship": "spouse",
		"has_consent":  true,
	})
	req := httptest.NewRequest(http.MethodPost, "/travelers", body)
	rec := httptest.NewRecorder()

	newTravelerRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp domain.Traveler
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
}

func TestCreateTraveler_DuplicateName_409(t *testing.T) {
	svc := &mockTravelerServicer{
		create: func(_ context.Context, _ domain.NewTraveler) (domain.Traveler, error) {
			return domain.Traveler{}, fmt.Errorf("%w: a traveler named %q already exists", domain.ErrConflict, "Asha")
		},
	}

	body := jsonBody(t, map[string]any{
		"name":         "asha",
		"age_group":    "adult",
		"relationship": "spouse",
	})
	req := httptest.NewRequest(http.MethodPost, "/travelers", body)
	rec := httptest.NewRecorder()

	newTravelerRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeErrorCode(t, rec))
}

func TestListTravelers_200(t *testing.T) {
	svc := &mockTravelerServicer{
		list: func(_ context.Context) ([]domain.Traveler, error) {
			return []domain.Traveler{travelerFixture()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/travelers", nil)
	rec := httptest.NewRecorder()

	newTravelerRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []domain.Traveler
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 1)
}

func TestListTravelers_ConsentFilter(t *testing.T) {
	svc := &mockTravelerServicer{
		listByConsent: func(_ context.Context, hasConsent bool) ([]domain.Traveler, error) {
			assert.False(t, hasConsent)
			return []domain.Traveler{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/travelers?consent=false", nil)
	rec := httptest.NewRecorder()

	newTravelerRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListTravelers_BadConsentValue_400(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/travelers?consent=maybe", nil)
	rec := httptest.NewRecorder()

	newTravelerRouter(&mockTravelerServicer{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTraveler_404(t *testing.T) {
	svc := &mockTravelerServicer{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Traveler, error) {
			return domain.Traveler{}, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/travelers/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	newTravelerRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTraveler_200(t *testing.T) {
	fixture := travelerFixture()
	svc := &mockTravelerServicer{
		update: func(_ context.Context, id uuid.UUID, patch domain.TravelerPatch) (domain.Traveler, error) {
			assert.Equal(t, fixture.ID, id)
			require.NotNil(t, patch.Name)
			assert.Equal(t, "Ravi", *patch.Name)
			assert.Nil(t, patch.HasConsent)
			renamed := fixture
			renamed.Name = "Ravi"
			return renamed, nil
		},
	}

	body := jsonBody(t, map[string]any{"name": "Ravi"})
	req := httptest.NewRequest(http.MethodPut, "/travelers/"+fixture.ID.String(), body)
	rec := httptest.NewRecorder()

	newTravelerRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetTravelerConsent_200(t *testing.T) {
	fixture := travelerFixture()
	svc := &mockTravelerServicer{
		setConsent: func(_ context.Context, id uuid.UUID, hasConsent bool) (domain.Traveler, error) {
			assert.Equal(t, fixture.ID, id)
			assert.False(t, hasConsent)
			revoked := fixture
			revoked.HasConsent = false
			return revoked, nil
		},
	}

	body := jsonBody(t, map[string]any{"has_consent": false})
	req := httptest.NewRequest(http.MethodPut, "/travelers/"+fixture.ID.String()+"/consent", body)
	rec := httptest.NewRecorder()

	newTravelerRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Traveler
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.HasConsent)
}

func TestDeleteTraveler_EchoesRemovedRecord(t *testing.T) {
	fixture := travelerFixture()
	svc := &mockTravelerServicer{
		delete: func(_ context.Context, id uuid.UUID) (domain.Traveler, error) {
			assert.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/travelers/"+fixture.ID.String(), nil)
	rec := httptest.NewRecorder()

	newTravelerRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Traveler
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Asha", resp.Name)
}

func TestGetTravelerStats_200(t *testing.T) {
	svc := &mockTravelerServicer{
		stats: func(_ context.Context) (domain.TravelerStats, error) {
			return domain.TravelerStats{Total: 5, WithConsent: 3, WithoutConsent: 2}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/travelers/stats", nil)
	rec := httptest.NewRecorder()

	newTravelerRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.TravelerStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 5, resp.Total)
}
