package handler

import (
	"net/http"
	"strings"
)

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

type updateSettingsRequest struct {
	DefaultPageSize *int  `json:"default_page_size,omitempty"`
	GeocodeEnabled  *bool `json:"geocode_enabled,omitempty"`
}

// GetProfile handles GET /profile.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profile.CurrentUser(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /profile. Only the display name is mutable;
// the owner ID is fixed for the lifetime of the diary.
func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		writeError(w, r, errBadParam("display_name is required"))
		return
	}

	profile, err := s.profile.CurrentUser(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	profile.DisplayName = strings.TrimSpace(req.DisplayName)

	if err := s.profile.SaveUser(r.Context(), profile); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// GetSettings handles GET /settings.
func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.profile.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /settings. Omitted fields keep their value.
func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.DefaultPageSize != nil && *req.DefaultPageSize < 1 {
		writeError(w, r, errBadParam("default_page_size must be at least 1"))
		return
	}

	settings, err := s.profile.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.DefaultPageSize != nil {
		settings.DefaultPageSize = *req.DefaultPageSize
	}
	if req.GeocodeEnabled != nil {
		settings.GeocodeEnabled = *req.GeocodeEnabled
	}

	if err := s.profile.SaveSettings(r.Context(), settings); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
