package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/subway-lines/internal/domain"
	"github.com/pkordes/subway-lines/internal/handler"
)

// mockStationServicer is a test double for handler.StationServicer.
// Set only the method fields your test needs.
type mockStationServicer struct {
	create    func(ctx context.Context, st domain.Station) (domain.Station, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Station, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockStationServicer) Create(ctx context.Context, st domain.Station) (domain.Station, error) {
	return m.create(ctx, st)
}
func (m *mockStationServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Station, error) {
	return m.getByID(ctx, id)
}
func (m *mockStationServicer) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockStationServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockStationServicer must satisfy handler.StationServicer.
var _ handler.StationServicer = (*mockStationServicer)(nil)

// mockLineServicer is a test double for handler.LineServicer.
type mockLineServicer struct {
	create        func(ctx context.Context, l domain.Line, up, down uuid.UUID, distance int) (domain.LineView, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.LineView, error)
	listPaged     func(ctx context.Context, p domain.PaginationParams) ([]domain.LineView, int64, error)
	update        func(ctx context.Context, l domain.Line) (domain.LineView, error)
	delete        func(ctx context.Context, id uuid.UUID) error
	addSection    func(ctx context.Context, lineID, up, down uuid.UUID, distance int) (domain.LineView, error)
	removeStation func(ctx context.Context, lineID, stationID uuid.UUID) (domain.LineView, error)
	export        func(ctx context.Context, lineID uuid.UUID) ([]domain.SectionRow, error)
}

func (m *mockLineServicer) Create(ctx context.Context, l domain.Line, up, down uuid.UUID, distance int) (domain.LineView, error) {
	return m.create(ctx, l, up, down, distance)
}
func (m *mockLineServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.LineView, error) {
	return m.getByID(ctx, id)
}
func (m *mockLineServicer) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.LineView, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockLineServicer) Update(ctx context.Context, l domain.Line) (domain.LineView, error) {
	return m.update(ctx, l)
}
func (m *mockLineServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockLineServicer) AddSection(ctx context.Context, lineID, up, down uuid.UUID, distance int) (domain.LineView, error) {
	return m.addSection(ctx, lineID, up, down, distance)
}
func (m *mockLineServicer) RemoveStation(ctx context.Context, lineID, stationID uuid.UUID) (domain.LineView, error) {
	return m.removeStation(ctx, lineID, stationID)
}
func (m *mockLineServicer) Export(ctx context.Context, lineID uuid.UUID) ([]domain.SectionRow, error) {
	return m.export(ctx, lineID)
}

// compile-time check: mockLineServicer must satisfy handler.LineServicer.
var _ handler.LineServicer = (*mockLineServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into the chi router.
// This mirrors exactly how main.go wires it in production.
func newHTTPHandler(stations handler.StationServicer, lines handler.LineServicer) http.Handler {
	return handler.NewServer(stations, lines, nil).Routes()
}

func stationFixture(name string) domain.Station {
	now := time.Now().UTC()
	return domain.Station{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now}
}

// lineFixture returns a view of the line A -5-> B -3-> C.
// The sections are stored tail first to show responses come out in path order.
func lineFixture() domain.LineView {
	a, b, c := stationFixture("Alpha"), stationFixture("Bravo"), stationFixture("Charlie")
	id := uuid.New()
	now := time.Now().UTC()
	return domain.LineView{
		Line: domain.Line{
			ID:    id,
			Name:  "Red Line",
			Color: "red",
			Sections: domain.NewSections(
				domain.NewSection(id, b.ID, c.ID, 3),
				domain.NewSection(id, a.ID, b.ID, 5),
			),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Stations: []domain.Station{a, b, c},
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body *bytes.Buffer) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}
