package domain

import "github.com/google/uuid"

// StationID is the opaque handle a line uses to refer to a station.
// Sections only ever compare station ids for equality.
type StationID = uuid.UUID

// Section is a directed, weighted edge between two adjacent stations of a line.
// It is immutable: splitting or merging always builds a new Section.
type Section struct {
	lineID      uuid.UUID
	upStation   StationID
	downStation StationID
	distance    int
}

// NewSection builds a section of lineID running from up to down.
// No validation happens here; Sections checks what it needs on Add.
func NewSection(lineID uuid.UUID, up, down StationID, distance int) Section {
	return Section{
		lineID:      lineID,
		upStation:   up,
		downStation: down,
		distance:    distance,
	}
}

// LineID returns the line that owns the section.
func (s Section) LineID() uuid.UUID { return s.lineID }

// UpStation returns the station the section starts from.
func (s Section) UpStation() StationID { return s.upStation }

// DownStation returns the station the section ends at.
func (s Section) DownStation() StationID { return s.downStation }

// Distance returns the length of the section.
func (s Section) Distance() int { return s.distance }

// Stations returns {up, down}.
func (s Section) Stations() [2]StationID {
	return [2]StationID{s.upStation, s.downStation}
}
