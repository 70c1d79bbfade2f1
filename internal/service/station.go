// Package service contains the business logic for the subway lines API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/subway-lines/internal/domain"
	"github.com/pkordes/subway-lines/internal/repo"
)

// StationService implements business logic for Station operations.
type StationService struct {
	repo repo.StationRepo
}

// NewStationService constructs a StationService backed by the provided StationRepo.
func NewStationService(r repo.StationRepo) *StationService {
	return &StationService{repo: r}
}

// Create validates and persists a new station.
// Returns domain.ErrValidation if the name is blank and domain.ErrConflict
// if it is already taken.
func (s *StationService) Create(ctx context.Context, station domain.Station) (domain.Station, error) {
	station.Name = strings.TrimSpace(station.Name)
	if station.Name == "" {
		return domain.Station{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	result, err := s.repo.Create(ctx, station)
	if err != nil {
		return domain.Station{}, fmt.Errorf("service.StationService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single station by ID.
// Returns domain.ErrNotFound if it does not exist.
func (s *StationService) GetByID(ctx context.Context, id uuid.UUID) (domain.Station, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Station{}, fmt.Errorf("service.StationService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of stations and the total count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *StationService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error) {
	stations, total, err := s.repo.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.StationService.ListPaged: %w", err)
	}
	if stations == nil {
		stations = []domain.Station{}
	}
	return stations, total, nil
}

// Delete removes a station. Returns domain.ErrNotFound if it does not exist
// and domain.ErrConflict while any line still runs through it.
func (s *StationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.StationService.Delete: %w", err)
	}
	return nil
}
