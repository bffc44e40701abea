package handler

import (
	"net/http"

	"github.com/dmathew/travel-diary/internal/domain"
)

type createTravelerRequest struct {
	Name         string `json:"name"`
	AgeGroup     string `json:"age_group"`
	Relationship string `json:"relationship"`
	HasConsent   bool   `json:"has_consent"`
}

type updateTravelerRequest struct {
	Name         *string `json:"name,omitempty"`
	AgeGroup     *string `json:"age_group,omitempty"`
	Relationship *string `json:"relationship,omitempty"`
	HasConsent   *bool   `json:"has_consent,omitempty"`
}

type consentRequest struct {
	HasConsent bool `json:"has_consent"`
}

// CreateTraveler handles POST /travelers.
func (s *Server) CreateTraveler(w http.ResponseWriter, r *http.Request) {
	var req createTravelerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	traveler, err := s.travelers.Create(r.Context(), domain.NewTraveler{
		Name:         req.Name,
		AgeGroup:     domain.AgeGroup(req.AgeGroup),
		Relationship: domain.Relationship(req.Relationship),
		HasConsent:   req.HasConsent,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, traveler)
}

// ListTravelers handles GET /travelers.
// ?consent=true|false narrows the listing to one consent state.
func (s *Server) ListTravelers(w http.ResponseWriter, r *http.Request) {
	var (
		travelers []domain.Traveler
		err       error
	)
	switch r.URL.Query().Get("consent") {
	case "":
		travelers, err = s.travelers.List(r.Context())
	case "true":
		travelers, err = s.travelers.ListByConsent(r.Context(), true)
	case "false":
		travelers, err = s.travelers.ListByConsent(r.Context(), false)
	default:
		writeError(w, r, errBadParam("consent must be true or false"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, travelers)
}

// GetTraveler handles GET /travelers/{id}.
func (s *Server) GetTraveler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	traveler, err := s.travelers.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, traveler)
}

// UpdateTraveler handles PUT /travelers/{id}.
func (s *Server) UpdateTraveler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateTravelerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	patch := domain.TravelerPatch{Name: req.Name, HasConsent: req.HasConsent}
	if req.AgeGroup != nil {
		v := domain.AgeGroup(*req.AgeGroup)
		patch.AgeGroup = &v
	}
	if req.Relationship != nil {
		v := domain.Relationship(*req.Relationship)
		patch.Relationship = &v
	}

	traveler, err := s.travelers.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, traveler)
}

// SetTravelerConsent handles PUT /travelers/{id}/consent.
func (s *Server) SetTravelerConsent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req consentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	traveler, err := s.travelers.SetConsent(r.Context(), id, req.HasConsent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, traveler)
}

// DeleteTraveler handles DELETE /travelers/{id}. The removed record is echoed back.
func (s *Server) DeleteTraveler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	traveler, err := s.travelers.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, traveler)
}

// GetTravelerStats handles GET /travelers/stats.
func (s *Server) GetTravelerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.travelers.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
