package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmathew/travel-diary/internal/domain"
)

// locationPayload is the wire shape of a coordinate in request bodies.
// RecordedAt defaults to the server clock when omitted.
type locationPayload struct {
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Address    string     `json:"address,omitempty"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

func (l locationPayload) toDomain() domain.Location {
	loc := domain.Location{
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Address:   l.Address,
	}
	if l.RecordedAt != nil {
		loc.RecordedAt = *l.RecordedAt
	}
	return loc
}

type createTripRequest struct {
	Origin                *locationPayload `json:"origin"`
	Mode                  string           `json:"mode"`
	Purpose               string           `json:"purpose"`
	PurposeDetail         string           `json:"purpose_detail,omitempty"`
	AccompanyingTravelers []uuid.UUID      `json:"accompanying_travelers,omitempty"`
	Notes                 string           `json:"notes,omitempty"`
}

type updateTripRequest struct {
	Status                *string          `json:"status,omitempty"`
	Destination           *locationPayload `json:"destination,omitempty"`
	EndTime               *time.Time       `json:"end_time,omitempty"`
	DurationMinutes       *int             `json:"duration_minutes,omitempty"`
	Mode                  *string          `json:"mode,omitempty"`
	Purpose               *string          `json:"purpose,omitempty"`
	PurposeDetail         *string          `json:"purpose_detail,omitempty"`
	AccompanyingTravelers *[]uuid.UUID     `json:"accompanying_travelers,omitempty"`
	SatisfactionRating    *int             `json:"satisfaction_rating,omitempty"`
	Notes                 *string          `json:"notes,omitempty"`
}

type completeTripRequest struct {
	Destination        *locationPayload `json:"destination"`
	SatisfactionRating *int             `json:"satisfaction_rating,omitempty"`
}

// tripListResponse is the paginated listing envelope.
type tripListResponse struct {
	Data       []domain.Trip     `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Origin == nil {
		writeError(w, r, errBadParam("origin is required"))
		return
	}

	ownerID, err := s.resolveOwner(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	trip, err := s.trips.Create(r.Context(), ownerID, domain.NewTrip{
		Origin:        req.Origin.toDomain(),
		Mode:          domain.TransportMode(req.Mode),
		Purpose:       domain.TripPurpose(req.Purpose),
		PurposeDetail: req.PurposeDetail,
		CompanionIDs:  req.AccompanyingTravelers,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, trip)
}

// ListTrips handles GET /trips.
// Supports status/mode/purpose/from/to filters plus ?page= and ?limit=.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.resolveOwner(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter, err := tripFilterFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	trips, page, err := s.history.List(r.Context(), ownerID, filter, s.paginationParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tripListResponse{Data: trips, Pagination: page})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// GetActiveTrip handles GET /trips/active.
func (s *Server) GetActiveTrip(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.resolveOwner(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trip, err := s.trips.Active(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// UpdateTrip handles PUT /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateTripRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	trip, err := s.trips.Update(r.Context(), id, req.toPatch())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// CompleteTrip handles POST /trips/{id}/complete.
func (s *Server) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req completeTripRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Destination == nil {
		writeError(w, r, errBadParam("destination is required"))
		return
	}

	trip, err := s.trips.Complete(r.Context(), id, req.Destination.toDomain(), req.SatisfactionRating)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// CancelTrip handles POST /trips/{id}/cancel.
func (s *Server) CancelTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trip, err := s.trips.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// DeleteTrip handles DELETE /trips/{id}. The removed record is echoed back.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trip, err := s.trips.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// GetTripStats handles GET /trips/stats.
func (s *Server) GetTripStats(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.resolveOwner(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := s.history.Stats(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// --- mapping helpers --------------------------------------------------------

// decodeBody decodes the JSON request body, rejecting unknown fields so
// arbitrary extra fields cannot ride along with an update.
func decodeBody(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return errBadParam("malformed request body: " + err.Error())
	}
	return nil
}

// toPatch converts the wire update shape into the typed domain patch.
func (req updateTripRequest) toPatch() domain.TripPatch {
	patch := domain.TripPatch{
		EndTime:            req.EndTime,
		DurationMinutes:    req.DurationMinutes,
		PurposeDetail:      req.PurposeDetail,
		SatisfactionRating: req.SatisfactionRating,
		Notes:              req.Notes,
	}
	if req.Status != nil {
		v := domain.TripStatus(*req.Status)
		patch.Status = &v
	}
	if req.Destination != nil {
		v := req.Destination.toDomain()
		patch.Destination = &v
	}
	if req.Mode != nil {
		v := domain.TransportMode(*req.Mode)
		patch.Mode = &v
	}
	if req.Purpose != nil {
		v := domain.TripPurpose(*req.Purpose)
		patch.Purpose = &v
	}
	if req.AccompanyingTravelers != nil {
		ids := *req.AccompanyingTravelers
		patch.CompanionIDs = &ids
	}
	return patch
}

// tripFilterFromQuery parses the optional listing filters.
// from/to accept RFC 3339 timestamps or plain dates; the to date is
// inclusive, so a bare date extends to the end of that day.
func tripFilterFromQuery(r *http.Request) (domain.TripFilter, error) {
	var f domain.TripFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := domain.TripStatus(v)
		f.Status = &status
	}
	if v := q.Get("mode"); v != "" {
		mode := domain.TransportMode(v)
		f.Mode = &mode
	}
	if v := q.Get("purpose"); v != "" {
		purpose := domain.TripPurpose(v)
		f.Purpose = &purpose
	}
	if v := q.Get("from"); v != "" {
		t, _, err := parseTimeParam(v)
		if err != nil {
			return domain.TripFilter{}, errBadParam("from must be an RFC 3339 timestamp or YYYY-MM-DD date")
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, dateOnly, err := parseTimeParam(v)
		if err != nil {
			return domain.TripFilter{}, errBadParam("to must be an RFC 3339 timestamp or YYYY-MM-DD date")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = &t
	}
	return f, nil
}

// parseTimeParam accepts RFC 3339 or YYYY-MM-DD and reports which matched.
func parseTimeParam(raw string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	if t, err = time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, errors.New("unparseable time")
}
