package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/google/uuid"

	"github.com/pkordes/subway-lines/internal/domain"
	"github.com/pkordes/subway-lines/internal/metrics"
	"github.com/pkordes/subway-lines/internal/repo"
)

// LineService implements business logic for Line operations, including the
// section changes that reshape a line.
//
// Reads of a single line go through an optional LRU cache of LineViews. Every
// write through this service evicts the line's entry and bumps its generation;
// a read that started before the write never fills the cache with what it
// loaded. Writes made by other processes become visible once the entry expires.
type LineService struct {
	lines    repo.LineRepo
	stations repo.StationRepo
	cache    gcache.Cache
	metrics  *metrics.Metrics
	log      *slog.Logger

	mu  sync.Mutex
	gen map[uuid.UUID]uint64 // per-line write count, guarded by mu
}

// LineServiceOption customises a LineService.
type LineServiceOption func(*LineService)

// WithLineCache enables the LineView cache. Build one with NewLineCache.
func WithLineCache(c gcache.Cache) LineServiceOption {
	return func(s *LineService) { s.cache = c }
}

// WithMetrics records section changes and cache lookups on m.
func WithMetrics(m *metrics.Metrics) LineServiceOption {
	return func(s *LineService) { s.metrics = m }
}

// WithLogger sets the logger used for section change events.
func WithLogger(l *slog.Logger) LineServiceOption {
	return func(s *LineService) { s.log = l }
}

// NewLineCache builds an LRU cache holding at most size LineViews for ttl each.
func NewLineCache(size int, ttl time.Duration) gcache.Cache {
	return gcache.New(size).LRU().Expiration(ttl).Build()
}

// NewLineService constructs a LineService. The stations repo is used to check
// that section endpoints exist and to resolve station names for views.
func NewLineService(lines repo.LineRepo, stations repo.StationRepo, opts ...LineServiceOption) *LineService {
	s := &LineService{
		lines:    lines,
		stations: stations,
		log:      slog.Default(),
		gen:      map[uuid.UUID]uint64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a new line together with its first section
// running from up to down.
// Returns domain.ErrValidation for a blank name or color, domain.ErrNotFound
// if either station does not exist, and a section error if the section
// itself is invalid.
func (s *LineService) Create(ctx context.Context, line domain.Line, up, down uuid.UUID, distance int) (domain.LineView, error) {
	line, err := validateLine(line)
	if err != nil {
		return domain.LineView{}, err
	}
	if err := s.ensureStations(ctx, up, down); err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.Create: %w", err)
	}

	line.ID = uuid.New()
	var sections domain.Sections
	if err := sections.Add(domain.NewSection(line.ID, up, down, distance)); err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.Create: %w", err)
	}
	line.Sections = sections

	created, err := s.lines.Create(ctx, line)
	if err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.Create: %w", err)
	}
	view, err := s.view(ctx, created)
	if err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.Create: %w", err)
	}
	return view, nil
}

// GetByID returns a line with its stations in path order.
// Returns domain.ErrNotFound if the line does not exist.
func (s *LineService) GetByID(ctx context.Context, id uuid.UUID) (domain.LineView, error) {
	if view, ok := s.cached(id); ok {
		return view, nil
	}

	gen := s.generation(id)
	line, err := s.lines.GetByID(ctx, id)
	if err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.GetByID: %w", err)
	}
	view, err := s.view(ctx, line)
	if err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.GetByID: %w", err)
	}
	s.store(view, gen)
	return view, nil
}

// ListPaged returns one page of lines, each with its ordered stations, and
// the total count. Station names for the whole page are resolved at once.
func (s *LineService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.LineView, int64, error) {
	lines, total, err := s.lines.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.LineService.ListPaged: %w", err)
	}

	var ids []uuid.UUID
	for _, l := range lines {
		ids = append(ids, l.Sections.Stations()...)
	}
	byID, err := s.stationsByID(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("service.LineService.ListPaged: %w", err)
	}

	views := make([]domain.LineView, 0, len(lines))
	for _, l := range lines {
		views = append(views, buildView(l, byID))
	}
	return views, total, nil
}

// Update validates and persists a new name and color for a line.
// Returns domain.ErrValidation for invalid input and domain.ErrNotFound if
// the line does not exist.
func (s *LineService) Update(ctx context.Context, line domain.Line) (domain.LineView, error) {
	line, err := validateLine(line)
	if err != nil {
		return domain.LineView{}, err
	}

	updated, err := s.lines.Update(ctx, line)
	s.evict(line.ID)
	if err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.Update: %w", err)
	}
	view, err := s.view(ctx, updated)
	if err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.Update: %w", err)
	}
	return view, nil
}

// Delete removes a line and all of its sections.
// Returns domain.ErrNotFound if the line does not exist.
func (s *LineService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.lines.Delete(ctx, id)
	s.evict(id)
	if err != nil {
		return fmt.Errorf("service.LineService.Delete: %w", err)
	}
	return nil
}

// AddSection inserts a section from up to down into the line, extending it or
// splitting an existing section. See domain.Sections.Add for the rules.
// Returns domain.ErrNotFound if the line or either station does not exist,
// including a station deleted while the section was being saved.
func (s *LineService) AddSection(ctx context.Context, lineID, up, down uuid.UUID, distance int) (domain.LineView, error) {
	if err := s.ensureStations(ctx, up, down); err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.AddSection: %w", err)
	}

	line, err := s.lines.UpdateSections(ctx, lineID, func(sections *domain.Sections) error {
		return sections.Add(domain.NewSection(lineID, up, down, distance))
	})
	if errors.Is(err, domain.ErrConflict) {
		// The only foreign keys on a section are its stations, so a
		// conflict here means one was deleted after ensureStations.
		err = fmt.Errorf("station: %w", domain.ErrNotFound)
	}
	s.metrics.ObserveSectionChange(metrics.OpAdd, err)
	s.evict(lineID)
	if err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.AddSection: %w", err)
	}
	s.log.DebugContext(ctx, "section added",
		"line_id", lineID,
		"up_station_id", up,
		"down_station_id", down,
		"distance", distance,
		"sections", line.Sections.Len(),
	)

	view, err := s.view(ctx, line)
	if err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.AddSection: %w", err)
	}
	return view, nil
}

// RemoveStation takes a station off the line, merging its neighbouring
// sections when it sits in the middle. See domain.Sections.Remove.
// Returns domain.ErrNotFound if the line does not exist.
func (s *LineService) RemoveStation(ctx context.Context, lineID, stationID uuid.UUID) (domain.LineView, error) {
	line, err := s.lines.UpdateSections(ctx, lineID, func(sections *domain.Sections) error {
		return sections.Remove(stationID)
	})
	s.metrics.ObserveSectionChange(metrics.OpRemove, err)
	s.evict(lineID)
	if err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.RemoveStation: %w", err)
	}
	s.log.DebugContext(ctx, "station removed",
		"line_id", lineID,
		"station_id", stationID,
		"sections", line.Sections.Len(),
	)

	view, err := s.view(ctx, line)
	if err != nil {
		return domain.LineView{}, fmt.Errorf("service.LineService.RemoveStation: %w", err)
	}
	return view, nil
}

// Export returns the line's sections in path order with station names and
// the running distance from the head station.
// Returns domain.ErrNotFound if the line does not exist.
func (s *LineService) Export(ctx context.Context, lineID uuid.UUID) ([]domain.SectionRow, error) {
	line, err := s.lines.GetByID(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("service.LineService.Export: %w", err)
	}

	byID, err := s.stationsByID(ctx, line.Sections.Stations())
	if err != nil {
		return nil, fmt.Errorf("service.LineService.Export: %w", err)
	}

	ordered := line.Sections.Ordered()
	rows := make([]domain.SectionRow, 0, len(ordered))
	cumulative := 0
	for i, sec := range ordered {
		cumulative += sec.Distance()
		rows = append(rows, domain.SectionRow{
			Position:        i + 1,
			UpStationID:     sec.UpStation(),
			UpStationName:   byID[sec.UpStation()].Name,
			DownStationID:   sec.DownStation(),
			DownStationName: byID[sec.DownStation()].Name,
			Distance:        sec.Distance(),
			Cumulative:      cumulative,
		})
	}
	return rows, nil
}

// ensureStations returns domain.ErrNotFound if any of ids is not a known
// station. All ids are resolved in one query.
func (s *LineService) ensureStations(ctx context.Context, ids ...uuid.UUID) error {
	byID, err := s.stationsByID(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return fmt.Errorf("station %s: %w", id, domain.ErrNotFound)
		}
	}
	return nil
}

// view resolves the line's stations into a LineView.
func (s *LineService) view(ctx context.Context, line domain.Line) (domain.LineView, error) {
	byID, err := s.stationsByID(ctx, line.Sections.Stations())
	if err != nil {
		return domain.LineView{}, err
	}
	return buildView(line, byID), nil
}

func (s *LineService) stationsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Station, error) {
	stations, err := s.stations.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Station, len(stations))
	for _, st := range stations {
		byID[st.ID] = st
	}
	return byID, nil
}

// buildView orders the resolved stations head to tail. Stations missing from
// byID are skipped.
func buildView(line domain.Line, byID map[uuid.UUID]domain.Station) domain.LineView {
	ids := line.Sections.Stations()
	stations := make([]domain.Station, 0, len(ids))
	for _, id := range ids {
		if st, ok := byID[id]; ok {
			stations = append(stations, st)
		}
	}
	return domain.LineView{Line: line, Stations: stations}
}

func (s *LineService) cached(id uuid.UUID) (domain.LineView, bool) {
	if s.cache == nil {
		return domain.LineView{}, false
	}
	v, err := s.cache.Get(id)
	view, ok := v.(domain.LineView)
	hit := err == nil && ok
	s.metrics.ObserveLineCache(hit)
	return view, hit
}

// generation returns the line's write count, to be passed to store once the
// view loaded after this call is ready.
func (s *LineService) generation(id uuid.UUID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[id]
}

// store caches view unless the line was written since gen was taken.
func (s *LineService) store(view domain.LineView, gen uint64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[view.Line.ID] != gen {
		return
	}
	if err := s.cache.Set(view.Line.ID, view); err != nil {
		s.log.Warn("line cache set failed", "line_id", view.Line.ID, "error", err)
	}
}

// evict drops the cached view and bumps the generation so that reads already
// in flight do not store what they loaded.
func (s *LineService) evict(id uuid.UUID) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	s.gen[id]++
	s.mu.Unlock()
	s.cache.Remove(id)
}

// validateLine trims and checks the fields common to Create and Update.
//   - Name must be non-empty (whitespace-only names are rejected).
//   - Color must be non-empty.
func validateLine(line domain.Line) (domain.Line, error) {
	line.Name = strings.TrimSpace(line.Name)
	line.Color = strings.TrimSpace(line.Color)
	if line.Name == "" {
		return domain.Line{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if line.Color == "" {
		return domain.Line{}, fmt.Errorf("%w: color is required", domain.ErrValidation)
	}
	return line, nil
}
