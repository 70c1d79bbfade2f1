package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// AddSectionRequest is the body of POST /lines/{id}/sections.
type AddSectionRequest struct {
	UpStationID   openapi_types.UUID `json:"up_station_id"`
	DownStationID openapi_types.UUID `json:"down_station_id"`
	Distance      int                `json:"distance"`
}

// AddSection handles POST /lines/{id}/sections.
// The section either extends the line at one end or splits an existing
// section; the response is the whole line after the change.
func (s *Server) AddSection(w http.ResponseWriter, r *http.Request) {
	lineID, err := pathID(r, "id")
	if err != nil {
		paramError(w, err)
		return
	}
	var body AddSectionRequest
	if !decodeBody(w, r, &body) {
		return
	}

	view, err := s.lines.AddSection(r.Context(), lineID, body.UpStationID, body.DownStationID, body.Distance)
	if err != nil {
		s.serviceError(w, r, err, "line")
		return
	}
	writeJSON(w, http.StatusOK, lineToResponse(view))
}

// RemoveSectionStation handles DELETE /lines/{id}/sections?station_id=.
// Removing an interior station merges its two sections into one.
func (s *Server) RemoveSectionStation(w http.ResponseWriter, r *http.Request) {
	lineID, err := pathID(r, "id")
	if err != nil {
		paramError(w, err)
		return
	}
	stationID, err := queryID(r, "station_id")
	if err != nil {
		paramError(w, err)
		return
	}

	view, err := s.lines.RemoveStation(r.Context(), lineID, stationID)
	if err != nil {
		s.serviceError(w, r, err, "line")
		return
	}
	writeJSON(w, http.StatusOK, lineToResponse(view))
}
