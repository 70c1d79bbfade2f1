package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/subway-lines/internal/domain"
)

// CreateLineRequest is the body of POST /lines. A line is always created
// together with its first section.
type CreateLineRequest struct {
	Name          string             `json:"name"`
	Color         string             `json:"color"`
	UpStationID   openapi_types.UUID `json:"up_station_id"`
	DownStationID openapi_types.UUID `json:"down_station_id"`
	Distance      int                `json:"distance"`
}

// UpdateLineRequest is the body of PUT /lines/{id}.
type UpdateLineRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Section is the JSON representation of one section of a line.
type Section struct {
	UpStationID   openapi_types.UUID `json:"up_station_id"`
	DownStationID openapi_types.UUID `json:"down_station_id"`
	Distance      int                `json:"distance"`
}

// Line is the JSON representation of a line. Stations and Sections are both
// in path order, head to tail.
type Line struct {
	ID            openapi_types.UUID `json:"id"`
	Name          string             `json:"name"`
	Color         string             `json:"color"`
	Stations      []Station          `json:"stations"`
	Sections      []Section          `json:"sections"`
	TotalDistance int                `json:"total_distance"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// LineList is the body of GET /lines.
type LineList struct {
	Data       []Line     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateLine handles POST /lines.
func (s *Server) CreateLine(w http.ResponseWriter, r *http.Request) {
	var body CreateLineRequest
	if !decodeBody(w, r, &body) {
		return
	}

	line := domain.Line{Name: body.Name, Color: body.Color}
	view, err := s.lines.Create(r.Context(), line, body.UpStationID, body.DownStationID, body.Distance)
	if err != nil {
		s.serviceError(w, r, err, "line")
		return
	}
	writeJSON(w, http.StatusCreated, lineToResponse(view))
}

// ListLines handles GET /lines.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListLines(w http.ResponseWriter, r *http.Request) {
	params, err := pageParams(r)
	if err != nil {
		paramError(w, err)
		return
	}

	views, total, err := s.lines.ListPaged(r.Context(), params)
	if err != nil {
		s.serviceError(w, r, err, "line")
		return
	}

	data := make([]Line, len(views))
	for i, v := range views {
		data[i] = lineToResponse(v)
	}
	writeJSON(w, http.StatusOK, LineList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetLine handles GET /lines/{id}.
func (s *Server) GetLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		paramError(w, err)
		return
	}

	view, err := s.lines.GetByID(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "line")
		return
	}
	writeJSON(w, http.StatusOK, lineToResponse(view))
}

// UpdateLine handles PUT /lines/{id}. Only the name and color change; the
// sections are edited through /lines/{id}/sections.
func (s *Server) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		paramError(w, err)
		return
	}
	var body UpdateLineRequest
	if !decodeBody(w, r, &body) {
		return
	}

	view, err := s.lines.Update(r.Context(), domain.Line{ID: id, Name: body.Name, Color: body.Color})
	if err != nil {
		s.serviceError(w, r, err, "line")
		return
	}
	writeJSON(w, http.StatusOK, lineToResponse(view))
}

// DeleteLine handles DELETE /lines/{id}.
func (s *Server) DeleteLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		paramError(w, err)
		return
	}

	if err := s.lines.Delete(r.Context(), id); err != nil {
		s.serviceError(w, r, err, "line")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// lineToResponse maps a domain.LineView to its JSON form.
// Stations and Sections are always arrays, never null.
func lineToResponse(v domain.LineView) Line {
	stations := make([]Station, len(v.Stations))
	for i, st := range v.Stations {
		stations[i] = stationToResponse(st)
	}

	ordered := v.Line.Sections.Ordered()
	sections := make([]Section, len(ordered))
	for i, sec := range ordered {
		sections[i] = Section{
			UpStationID:   sec.UpStation(),
			DownStationID: sec.DownStation(),
			Distance:      sec.Distance(),
		}
	}

	return Line{
		ID:            v.Line.ID,
		Name:          v.Line.Name,
		Color:         v.Line.Color,
		Stations:      stations,
		Sections:      sections,
		TotalDistance: v.Line.Sections.TotalDistance(),
		CreatedAt:     v.Line.CreatedAt,
		UpdatedAt:     v.Line.UpdatedAt,
	}
}
