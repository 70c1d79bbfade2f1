package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/subway-lines/internal/domain"
)

// StationRepo defines the persistence operations for Stations.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type StationRepo interface {
	// Create inserts a new station and returns the persisted record.
	// Returns domain.ErrConflict if the name is already taken.
	Create(ctx context.Context, station domain.Station) (domain.Station, error)

	// GetByID retrieves a single station by its UUID primary key.
	// Returns domain.ErrNotFound if no station with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Station, error)

	// ListByIDs returns the stations whose IDs are in ids, in no particular order.
	// Unknown IDs are silently skipped.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Station, error)

	// ListPaged returns one page of stations ordered by name and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error)

	// Delete removes a station by ID. Returns domain.ErrNotFound if it does not
	// exist and domain.ErrConflict if a line still runs through it.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgStationRepo is the Postgres implementation of StationRepo.
type pgStationRepo struct {
	db db
}

// NewStationRepo constructs a StationRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStationRepo(db db) StationRepo {
	return &pgStationRepo{db: db}
}

// Create inserts a new station row and returns the full persisted record.
func (r *pgStationRepo) Create(ctx context.Context, station domain.Station) (domain.Station, error) {
	const q = `
		INSERT INTO stations (name)
		VALUES (@name)
		RETURNING id, name, created_at, updated_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": station.Name})
	result, err := scanStation(row)
	if err != nil {
		return domain.Station{}, fmt.Errorf("repo.StationRepo.Create: %w", mapError(err))
	}
	return result, nil
}

// GetByID retrieves a station by primary key.
func (r *pgStationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Station, error) {
	const q = `
		SELECT id, name, created_at, updated_at
		FROM stations
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanStation(row)
	if err != nil {
		return domain.Station{}, fmt.Errorf("repo.StationRepo.GetByID: %w", mapError(err))
	}
	return result, nil
}

// ListByIDs resolves a batch of station IDs in a single round trip.
func (r *pgStationRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Station, error) {
	if len(ids) == 0 {
		return []domain.Station{}, nil
	}

	const q = `
		SELECT id, name, created_at, updated_at
		FROM stations
		WHERE id = ANY(@ids)`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.StationRepo.ListByIDs: %w", err)
	}
	defer rows.Close()

	stations := make([]domain.Station, 0, len(ids))
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StationRepo.ListByIDs: scan: %w", err)
		}
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StationRepo.ListByIDs: rows: %w", err)
	}
	return stations, nil
}

// ListPaged returns one page of stations ordered by name.
// The total is computed with a window function so one query serves both.
func (r *pgStationRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error) {
	const q = `
		SELECT id, name, created_at, updated_at, COUNT(*) OVER() AS total
		FROM stations
		ORDER BY name
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.StationRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	var (
		stations = []domain.Station{}
		total    int64
	)
	for rows.Next() {
		var (
			s  domain.Station
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &s.Name, &s.CreatedAt, &s.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("repo.StationRepo.ListPaged: scan: %w", err)
		}
		s.ID = uuid.UUID(id.Bytes)
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.StationRepo.ListPaged: rows: %w", err)
	}
	return stations, total, nil
}

// Delete removes a station by primary key.
func (r *pgStationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM stations WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.StationRepo.Delete: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.StationRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanStation maps a single database row into a domain.Station.
func scanStation(s scanner) (domain.Station, error) {
	var (
		st domain.Station
		id pgtype.UUID
	)
	if err := s.Scan(&id, &st.Name, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return domain.Station{}, err
	}
	st.ID = uuid.UUID(id.Bytes)
	return st, nil
}
