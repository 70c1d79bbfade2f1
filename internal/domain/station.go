package domain

import (
	"time"

	"github.com/google/uuid"
)

// Station is a stop that lines can run through.
// Stations are global: any number of lines may share one.
type Station struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
