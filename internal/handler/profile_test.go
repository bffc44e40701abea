package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmathew/travel-diary/internal/domain"
	"github.com/dmathew/travel-diary/internal/handler"
)

func newProfileRouter(profile handler.ProfileStore) http.Handler {
	srv := handler.NewServer(nil, nil, nil, nil, profile)
	return srv.Router()
}

func TestGetProfile_200(t *testing.T) {
	store := &mockProfileStore{profile: domain.UserProfile{ID: testOwner, DisplayName: "Dinesh"}}

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()

	newProfileRouter(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.UserProfile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, testOwner, resp.ID)
	assert.Equal(t, "Dinesh", resp.DisplayName)
}

func TestUpdateProfile_200(t *testing.T) {
	var saved domain.UserProfile
	store := &mockProfileStore{
		profile: domain.UserProfile{ID: testOwner, DisplayName: "Traveler"},
		saveUser: func(_ context.Context, p domain.UserProfile) error {
			saved = p
			return nil
		},
	}

	body := jsonBody(t, map[string]any{"display_name": "  Dinesh  "})
	req := httptest.NewRequest(http.MethodPut, "/profile", body)
	rec := httptest.NewRecorder()

	newProfileRouter(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dinesh", saved.DisplayName, "name is trimmed before saving")
	assert.Equal(t, testOwner, saved.ID, "owner ID never changes")
}

func TestUpdateProfile_EmptyName_400(t *testing.T) {
	store := &mockProfileStore{profile: domain.UserProfile{ID: testOwner}}

	body := jsonBody(t, map[string]any{"display_name": "   "})
	req := httptest.NewRequest(http.MethodPut, "/profile", body)
	rec := httptest.NewRecorder()

	newProfileRouter(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSettings_200(t *testing.T) {
	store := &mockProfileStore{settings: domain.Settings{DefaultPageSize: 50, GeocodeEnabled: true}}

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	rec := httptest.NewRecorder()

	newProfileRouter(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Settings
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 50, resp.DefaultPageSize)
}

func TestUpdateSettings_PartialUpdate(t *testing.T) {
	var saved domain.Settings
	store := &mockProfileStore{
		settings: domain.Settings{DefaultPageSize: 20, GeocodeEnabled: true},
		saveSettings: func(_ context.Context, s domain.Settings) error {
			saved = s
			return nil
		},
	}

	body := jsonBody(t, map[string]any{"geocode_enabled": false})
	req := httptest.NewRequest(http.MethodPut, "/settings", body)
	rec := httptest.NewRecorder()

	newProfileRouter(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, saved.GeocodeEnabled)
	assert.Equal(t, 20, saved.DefaultPageSize, "omitted field keeps its value")
}

func TestUpdateSettings_BadPageSize_400(t *testing.T) {
	store := &mockProfileStore{}

	body := jsonBody(t, map[string]any{"default_page_size": 0})
	req := httptest.NewRequest(http.MethodPut, "/settings", body)
	rec := httptest.NewRecorder()

	newProfileRouter(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
