package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/subway-lines/internal/domain"
	"github.com/pkordes/subway-lines/internal/repo"
)

// ---- mock repos ------------------------------------------------------------

// mockStationRepo is a hand-written test double for repo.StationRepo.
// Set only the method fields your test needs.
type mockStationRepo struct {
	create    func(ctx context.Context, s domain.Station) (domain.Station, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Station, error)
	listByIDs func(ctx context.Context, ids []uuid.UUID) ([]domain.Station, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockStationRepo) Create(ctx context.Context, s domain.Station) (domain.Station, error) {
	return m.create(ctx, s)
}
func (m *mockStationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Station, error) {
	return m.getByID(ctx, id)
}
func (m *mockStationRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Station, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockStationRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockStationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockStationRepo must satisfy repo.StationRepo.
var _ repo.StationRepo = (*mockStationRepo)(nil)

// mockLineRepo is a hand-written test double for repo.LineRepo.
type mockLineRepo struct {
	create         func(ctx context.Context, l domain.Line) (domain.Line, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Line, error)
	listPaged      func(ctx context.Context, p domain.PaginationParams) ([]domain.Line, int64, error)
	update         func(ctx context.Context, l domain.Line) (domain.Line, error)
	delete         func(ctx context.Context, id uuid.UUID) error
	updateSections func(ctx context.Context, id uuid.UUID, fn func(*domain.Sections) error) (domain.Line, error)
}

func (m *mockLineRepo) Create(ctx context.Context, l domain.Line) (domain.Line, error) {
	return m.create(ctx, l)
}
func (m *mockLineRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Line, error) {
	return m.getByID(ctx, id)
}
func (m *mockLineRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Line, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockLineRepo) Update(ctx context.Context, l domain.Line) (domain.Line, error) {
	return m.update(ctx, l)
}
func (m *mockLineRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockLineRepo) UpdateSections(ctx context.Context, id uuid.UUID, fn func(*domain.Sections) error) (domain.Line, error) {
	return m.updateSections(ctx, id, fn)
}

// compile-time check: mockLineRepo must satisfy repo.LineRepo.
var _ repo.LineRepo = (*mockLineRepo)(nil)

// ---- in-memory helpers -----------------------------------------------------

// stationDirectory is an in-memory station store that backs the station
// lookups LineService makes.
type stationDirectory map[uuid.UUID]domain.Station

func newStationDirectory(names ...string) (stationDirectory, map[string]uuid.UUID) {
	dir := stationDirectory{}
	ids := map[string]uuid.UUID{}
	for _, n := range names {
		id := uuid.New()
		dir[id] = domain.Station{ID: id, Name: n}
		ids[n] = id
	}
	return dir, ids
}

func (d stationDirectory) repo() *mockStationRepo {
	return &mockStationRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Station, error) {
			s, ok := d[id]
			if !ok {
				return domain.Station{}, domain.ErrNotFound
			}
			return s, nil
		},
		listByIDs: func(_ context.Context, ids []uuid.UUID) ([]domain.Station, error) {
			out := []domain.Station{}
			for _, id := range ids {
				if s, ok := d[id]; ok {
					out = append(out, s)
				}
			}
			return out, nil
		},
	}
}

// lineStore holds a single line in memory. Its UpdateSections applies fn
// to a copy and only keeps it when fn succeeds, like the Postgres repo.
type lineStore struct {
	line  domain.Line
	reads int
}

func (s *lineStore) repo() *mockLineRepo {
	return &mockLineRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Line, error) {
			if id != s.line.ID {
				return domain.Line{}, domain.ErrNotFound
			}
			s.reads++
			return s.line, nil
		},
		updateSections: func(_ context.Context, id uuid.UUID, fn func(*domain.Sections) error) (domain.Line, error) {
			if id != s.line.ID {
				return domain.Line{}, domain.ErrNotFound
			}
			sections := domain.NewSections(s.line.Sections.All()...)
			if err := fn(&sections); err != nil {
				return domain.Line{}, err
			}
			s.line.Sections = sections
			return s.line, nil
		},
		update: func(_ context.Context, l domain.Line) (domain.Line, error) {
			if l.ID != s.line.ID {
				return domain.Line{}, domain.ErrNotFound
			}
			s.line.Name, s.line.Color = l.Name, l.Color
			return s.line, nil
		},
		delete: func(_ context.Context, id uuid.UUID) error {
			if id != s.line.ID {
				return domain.ErrNotFound
			}
			return nil
		},
	}
}
