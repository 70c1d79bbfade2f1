package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/subway-lines/internal/domain"
)

// CreateStationRequest is the body of POST /stations.
type CreateStationRequest struct {
	Name string `json:"name"`
}

// Station is the JSON representation of a station.
type Station struct {
	ID        openapi_types.UUID `json:"id"`
	Name      string             `json:"name"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// StationList is the body of GET /stations.
type StationList struct {
	Data       []Station  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateStation handles POST /stations.
func (s *Server) CreateStation(w http.ResponseWriter, r *http.Request) {
	var body CreateStationRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.stations.Create(r.Context(), domain.Station{Name: body.Name})
	if err != nil {
		s.serviceError(w, r, err, "station")
		return
	}
	writeJSON(w, http.StatusCreated, stationToResponse(created))
}

// ListStations handles GET /stations.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListStations(w http.ResponseWriter, r *http.Request) {
	params, err := pageParams(r)
	if err != nil {
		paramError(w, err)
		return
	}

	stations, total, err := s.stations.ListPaged(r.Context(), params)
	if err != nil {
		s.serviceError(w, r, err, "station")
		return
	}

	data := make([]Station, len(stations))
	for i, st := range stations {
		data[i] = stationToResponse(st)
	}
	writeJSON(w, http.StatusOK, StationList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetStation handles GET /stations/{id}.
func (s *Server) GetStation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		paramError(w, err)
		return
	}

	st, err := s.stations.GetByID(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "station")
		return
	}
	writeJSON(w, http.StatusOK, stationToResponse(st))
}

// DeleteStation handles DELETE /stations/{id}.
// A station that a line still runs through cannot be deleted (409).
func (s *Server) DeleteStation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		paramError(w, err)
		return
	}

	if err := s.stations.Delete(r.Context(), id); err != nil {
		s.serviceError(w, r, err, "station")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func stationToResponse(st domain.Station) Station {
	return Station{
		ID:        st.ID,
		Name:      st.Name,
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
}
