// Package domain contains the core data types for the subway lines service.
// This package has no I/O and is imported by every other internal package
// (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Line is a single subway line. It is the aggregate that owns its Sections;
// every change to the line's geometry goes through Sections.Add or Sections.Remove.
type Line struct {
	ID        uuid.UUID
	Name      string
	Color     string
	Sections  Sections
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineView is the read model of a line: the line itself plus its stations
// resolved and ordered from head to tail.
type LineView struct {
	Line     Line
	Stations []Station
}

// SectionRow is one section of a line in path order, with station names
// resolved. It backs the line export.
type SectionRow struct {
	Position        int
	UpStationID     uuid.UUID
	UpStationName   string
	DownStationID   uuid.UUID
	DownStationName string
	Distance        int
	// Cumulative is the distance from the head station to DownStation.
	Cumulative int
}
