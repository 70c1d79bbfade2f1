// Package handler implements the HTTP handlers for the subway lines API.
// All handlers are methods on Server. Methods are split into resource-specific
// files (health.go, station.go, line.go, ...) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/subway-lines/internal/domain"
)

// StationServicer defines the business operations the station handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type StationServicer interface {
	Create(ctx context.Context, station domain.Station) (domain.Station, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Station, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LineServicer defines the business operations the line and section handlers depend on.
type LineServicer interface {
	Create(ctx context.Context, line domain.Line, up, down uuid.UUID, distance int) (domain.LineView, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.LineView, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.LineView, int64, error)
	Update(ctx context.Context, line domain.Line) (domain.LineView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddSection(ctx context.Context, lineID, up, down uuid.UUID, distance int) (domain.LineView, error)
	RemoveStation(ctx context.Context, lineID, stationID uuid.UUID) (domain.LineView, error)
	Export(ctx context.Context, lineID uuid.UUID) ([]domain.SectionRow, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	stations StationServicer
	lines    LineServicer
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// Either servicer may be nil when a test only exercises the other.
func NewServer(stations StationServicer, lines LineServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{stations: stations, lines: lines, log: log}
}

// Routes returns a chi router with every API endpoint registered.
// main.go mounts it under "/" after the global middleware.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/stations", func(r chi.Router) {
		r.Post("/", s.CreateStation)
		r.Get("/", s.ListStations)
		r.Get("/{id}", s.GetStation)
		r.Delete("/{id}", s.DeleteStation)
	})

	r.Route("/lines", func(r chi.Router) {
		r.Post("/", s.CreateLine)
		r.Get("/", s.ListLines)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetLine)
			r.Put("/", s.UpdateLine)
			r.Delete("/", s.DeleteLine)
			r.Post("/sections", s.AddSection)
			r.Delete("/sections", s.RemoveSectionStation)
			r.Get("/export", s.ExportLine)
		})
	})

	return r
}
