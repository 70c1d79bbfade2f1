package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/subway-lines/internal/domain"
	"github.com/pkordes/subway-lines/internal/handler"
)

// ---- POST /stations --------------------------------------------------------

func TestCreateStation_201(t *testing.T) {
	fixture := stationFixture("Alpha")
	var got domain.Station
	svc := &mockStationServicer{
		create: func(_ context.Context, st domain.Station) (domain.Station, error) {
			got = st
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/stations", jsonBody(t, map[string]any{"name": "Alpha"}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Alpha", got.Name)

	var resp handler.Station
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
	assert.Equal(t, fixture.Name, resp.Name)
}

func TestCreateStation_422_ValidationError(t *testing.T) {
	svc := &mockStationServicer{
		create: func(_ context.Context, _ domain.Station) (domain.Station, error) {
			return domain.Station{}, fmt.Errorf("service.StationService.Create: %w: name is required", domain.ErrValidation)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/stations", jsonBody(t, map[string]any{"name": " "}))
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec.Body)
	assert.Equal(t, "validation_error", resp.Error.Code)
	assert.Equal(t, "name is required", resp.Error.Message)
}

func TestCreateStation_422_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/stations", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	newHTTPHandler(&mockStationServicer{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "malformed request body", decodeError(t, rec.Body).Error.Message)
}

func TestCreateStation_422_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/stations", http.NoBody)
	rec := httptest.NewRecorder()

	newHTTPHandler(&mockStationServicer{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "request body is required", decodeError(t, rec.Body).Error.Message)
}

func TestCreateStation_409_DuplicateName(t *testing.T) {
	svc := &mockStationServicer{
		create: func(_ context.Context, _ domain.Station) (domain.Station, error) {
			return domain.Station{}, fmt.Errorf("service.StationService.Create: %w",
				errors.Join(domain.ErrConflict, errors.New("duplicate key value")))
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/stations", jsonBody(t, map[string]any{"name": "Alpha"}))
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeError(t, rec.Body).Error.Code)
}

// ---- GET /stations ---------------------------------------------------------

func TestListStations_200(t *testing.T) {
	var gotParams domain.PaginationParams
	svc := &mockStationServicer{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]domain.Station, int64, error) {
			gotParams = p
			return []domain.Station{stationFixture("Alpha"), stationFixture("Bravo")}, 12, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/stations?page=2&limit=2", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaginationParams{Page: 2, Limit: 2}, gotParams)

	var resp handler.StationList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, handler.Pagination{Page: 2, Limit: 2, Total: 12}, resp.Pagination)
}

func TestListStations_200_Empty(t *testing.T) {
	svc := &mockStationServicer{
		listPaged: func(_ context.Context, _ domain.PaginationParams) ([]domain.Station, int64, error) {
			return []domain.Station{}, 0, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/stations", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Must be a JSON array, not null.
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestListStations_400_BadPage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/stations?page=abc", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(&mockStationServicer{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec.Body).Error.Code)
}

// ---- GET /stations/{id} ----------------------------------------------------

func TestGetStation_200(t *testing.T) {
	fixture := stationFixture("Alpha")
	svc := &mockStationServicer{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Station, error) {
			require.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/stations/"+fixture.ID.String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp handler.Station
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
}

func TestGetStation_404(t *testing.T) {
	svc := &mockStationServicer{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Station, error) {
			return domain.Station{}, fmt.Errorf("service.StationService.GetByID: repo.StationRepo.GetByID: %w", domain.ErrNotFound)
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/stations/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec.Body)
	assert.Equal(t, "not_found", resp.Error.Code)
	assert.Equal(t, "station not found", resp.Error.Message)
}

func TestGetStation_400_InvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/stations/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(&mockStationServicer{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStation_500_UnexpectedError(t *testing.T) {
	svc := &mockStationServicer{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Station, error) {
			return domain.Station{}, errors.New("connection reset")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/stations/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec.Body)
	assert.Equal(t, "internal_error", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "connection reset")
}

// ---- DELETE /stations/{id} -------------------------------------------------

func TestDeleteStation_204(t *testing.T) {
	svc := &mockStationServicer{
		delete: func(_ context.Context, _ uuid.UUID) error { return nil },
	}

	req := httptest.NewRequest(http.MethodDelete, "/stations/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestDeleteStation_409_InUse(t *testing.T) {
	svc := &mockStationServicer{
		delete: func(_ context.Context, _ uuid.UUID) error {
			return fmt.Errorf("service.StationService.Delete: %w", domain.ErrConflict)
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/stations/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
