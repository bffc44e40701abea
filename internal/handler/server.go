// Package handler implements the HTTP handlers for the Travel Diary API.
// All handlers are methods on Server; methods are split into domain-specific
// files (trip.go, traveler.go, etc.) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmathew/travel-diary/internal/domain"
)

// TripServicer defines the lifecycle operations the trip handler depends on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, ownerID uuid.UUID, input domain.NewTrip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	Active(ctx context.Context, ownerID uuid.UUID) (domain.Trip, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	Complete(ctx context.Context, id uuid.UUID, destination domain.Location, rating *int) (domain.Trip, error)
	Cancel(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) (domain.Trip, error)
}

// TravelerServicer defines the registry operations the traveler handler depends on.
type TravelerServicer interface {
	Create(ctx context.Context, input domain.NewTraveler) (domain.Traveler, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Traveler, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.TravelerPatch) (domain.Traveler, error)
	SetConsent(ctx context.Context, id uuid.UUID, hasConsent bool) (domain.Traveler, error)
	Delete(ctx context.Context, id uuid.UUID) (domain.Traveler, error)
	List(ctx context.Context) ([]domain.Traveler, error)
	ListByConsent(ctx context.Context, hasConsent bool) ([]domain.Traveler, error)
	Stats(ctx context.Context) (domain.TravelerStats, error)
}

// HistoryServicer defines the read-only query operations over trips.
type HistoryServicer interface {
	List(ctx context.Context, ownerID uuid.UUID, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, domain.Pagination, error)
	Stats(ctx context.Context, ownerID uuid.UUID) (domain.TripStats, error)
}

// ExportServicer produces the flat research export.
type ExportServicer interface {
	Export(ctx context.Context, ownerID uuid.UUID) ([]domain.ExportRow, error)
}

// ProfileStore exposes the user profile and app settings collections.
// Implemented by kvstore.Store.
type ProfileStore interface {
	CurrentUser(ctx context.Context) (domain.UserProfile, error)
	SaveUser(ctx context.Context, profile domain.UserProfile) error
	Settings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error
}

// Server holds all handler dependencies. Wire it in main.go via Router().
type Server struct {
	trips     TripServicer
	travelers TravelerServicer
	history   HistoryServicer
	export    ExportServicer
	profile   ProfileStore
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, travelers TravelerServicer, history HistoryServicer, export ExportServicer, profile ProfileStore) *Server {
	return &Server{
		trips:     trips,
		travelers: travelers,
		history:   history,
		export:    export,
		profile:   profile,
	}
}

// Router registers every route on a fresh chi router. Cross-cutting
// middleware (logging, CORS, body limits) is applied by the caller.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Get("/active", s.GetActiveTrip)
		r.Get("/stats", s.GetTripStats)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)
			r.Post("/complete", s.CompleteTrip)
			r.Post("/cancel", s.CancelTrip)
		})
	})

	r.Route("/travelers", func(r chi.Router) {
		r.Get("/", s.ListTravelers)
		r.Post("/", s.CreateTraveler)
		r.Get("/stats", s.GetTravelerStats)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTraveler)
			r.Put("/", s.UpdateTraveler)
			r.Delete("/", s.DeleteTraveler)
			r.Put("/consent", s.SetTravelerConsent)
		})
	})

	r.Get("/export", s.GetExport)

	r.Get("/profile", s.GetProfile)
	r.Put("/profile", s.UpdateProfile)
	r.Get("/settings", s.GetSettings)
	r.Put("/settings", s.UpdateSettings)

	return r
}

// resolveOwner returns the owner ID for the request: an explicit ?owner=
// query parameter wins, otherwise the stored profile's ID is the implicit
// current user.
func (s *Server) resolveOwner(r *http.Request) (uuid.UUID, error) {
	if raw := r.URL.Query().Get("owner"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, errBadParam("owner must be a UUID")
		}
		return id, nil
	}
	profile, err := s.profile.CurrentUser(r.Context())
	if err != nil {
		return uuid.Nil, err
	}
	return profile.ID, nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errBadParam("id must be a UUID")
	}
	return id, nil
}

// paginationParams builds PaginationParams from ?page= and ?limit=,
// falling back to the stored default page size.
func (s *Server) paginationParams(r *http.Request) domain.PaginationParams {
	defaultLimit := 20
	if settings, err := s.profile.Settings(r.Context()); err == nil && settings.DefaultPageSize > 0 {
		defaultLimit = settings.DefaultPageSize
	}
	return domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"), defaultLimit)
}

// queryInt returns the named query parameter as *int, or nil when absent or
// not a number.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
