package domain

import (
	"fmt"
	"slices"
)

// Sections is the set of sections belonging to one line.
//
// The set is stored unordered. Viewed as a directed graph it always forms a
// single simple path: every station has at most one outgoing and one incoming
// section, so the station order can be rebuilt from any starting section.
// Add and Remove keep that shape or fail without touching the set.
//
// Sections does no locking. Callers serialise writes per line (see
// repo.LineRepo.UpdateSections).
type Sections struct {
	sections []Section
}

// NewSections rehydrates a collection from previously stored sections.
// The list is trusted to already form a single path.
func NewSections(list ...Section) Sections {
	return Sections{sections: slices.Clone(list)}
}

// Add inserts sec into the line.
//
// The first section is accepted as is. After that exactly one of sec's
// stations must already be on the line. If sec starts where an existing
// section starts, or ends where one ends, that section is split in two and
// sec must be strictly shorter than it. Otherwise sec extends the line at
// its head or tail.
func (s *Sections) Add(sec Section) error {
	if sec.upStation == sec.downStation {
		return fmt.Errorf("%w: up and down station must differ", ErrInvalidSection)
	}
	if sec.distance <= 0 {
		return fmt.Errorf("%w: distance must be positive, got %d", ErrInvalidDistance, sec.distance)
	}

	if len(s.sections) == 0 {
		s.sections = []Section{sec}
		return nil
	}

	hasUp, hasDown := s.Contains(sec.upStation), s.Contains(sec.downStation)
	if hasUp && hasDown {
		return fmt.Errorf("%w: both stations are already on the line", ErrInvalidSection)
	}
	if !hasUp && !hasDown {
		return fmt.Errorf("%w: neither station is on the line", ErrInvalidSection)
	}

	if i := s.index(func(e Section) bool { return e.upStation == sec.upStation }); i >= 0 {
		e := s.sections[i]
		if err := checkSplit(e, sec); err != nil {
			return err
		}
		rest := NewSection(sec.lineID, sec.downStation, e.downStation, e.distance-sec.distance)
		s.sections = replaceAt(s.sections, []int{i}, sec, rest)
		return nil
	}

	if i := s.index(func(e Section) bool { return e.downStation == sec.downStation }); i >= 0 {
		e := s.sections[i]
		if err := checkSplit(e, sec); err != nil {
			return err
		}
		rest := NewSection(sec.lineID, e.upStation, sec.upStation, e.distance-sec.distance)
		s.sections = replaceAt(s.sections, []int{i}, rest, sec)
		return nil
	}

	s.sections = append(slices.Clip(s.sections), sec)
	return nil
}

// Remove takes station off the line.
//
// A head or tail station drops its single section. An interior station has
// its incoming and outgoing sections merged into one spanning both, so the
// total line distance is unchanged. A line never shrinks below one section.
func (s *Sections) Remove(station StationID) error {
	if len(s.sections) <= 1 {
		return fmt.Errorf("%w: a line keeps at least one section", ErrInvalidRemoval)
	}
	if !s.Contains(station) {
		return fmt.Errorf("%w: station is not on the line", ErrInvalidRemoval)
	}

	out := s.index(func(e Section) bool { return e.upStation == station })
	in := s.index(func(e Section) bool { return e.downStation == station })

	switch {
	case out >= 0 && in < 0:
		s.sections = replaceAt(s.sections, []int{out})
	case in >= 0 && out < 0:
		s.sections = replaceAt(s.sections, []int{in})
	default:
		u, d := s.sections[out], s.sections[in]
		merged := NewSection(u.lineID, d.upStation, u.downStation, u.distance+d.distance)
		s.sections = replaceAt(s.sections, []int{in, out}, merged)
	}
	return nil
}

// Stations returns the line's stations from head to tail.
// An empty collection yields an empty, non-nil slice.
func (s Sections) Stations() []StationID {
	ordered := s.Ordered()
	if len(ordered) == 0 {
		return []StationID{}
	}

	stations := make([]StationID, 0, len(ordered)+1)
	stations = append(stations, ordered[0].upStation)
	for _, sec := range ordered {
		stations = append(stations, sec.downStation)
	}
	return stations
}

// Ordered returns the sections from head to tail.
//
// The head is found by walking incoming sections backwards from the first
// stored section's up station; the path is then walked forwards from there.
// Both walks are bounded by the section count.
func (s Sections) Ordered() []Section {
	n := len(s.sections)
	if n == 0 {
		return []Section{}
	}

	byUp := make(map[StationID]Section, n)
	byDown := make(map[StationID]Section, n)
	for _, sec := range s.sections {
		if _, ok := byUp[sec.upStation]; !ok {
			byUp[sec.upStation] = sec
		}
		if _, ok := byDown[sec.downStation]; !ok {
			byDown[sec.downStation] = sec
		}
	}

	head := s.sections[0].upStation
	for range n {
		prev, ok := byDown[head]
		if !ok {
			break
		}
		head = prev.upStation
	}

	ordered := make([]Section, 0, n)
	cur := head
	for range n {
		next, ok := byUp[cur]
		if !ok {
			break
		}
		ordered = append(ordered, next)
		cur = next.downStation
	}
	return ordered
}

// All returns a copy of the stored sections in no particular order.
func (s Sections) All() []Section {
	return slices.Clone(s.sections)
}

// Contains reports whether station is an endpoint of any section.
func (s Sections) Contains(station StationID) bool {
	return s.index(func(e Section) bool {
		return e.upStation == station || e.downStation == station
	}) >= 0
}

// Len returns the number of sections.
func (s Sections) Len() int { return len(s.sections) }

// IsEmpty reports whether the line has no sections yet.
func (s Sections) IsEmpty() bool { return len(s.sections) == 0 }

// TotalDistance sums the distance of every section.
func (s Sections) TotalDistance() int {
	total := 0
	for _, sec := range s.sections {
		total += sec.distance
	}
	return total
}

func (s Sections) index(match func(Section) bool) int {
	return slices.IndexFunc(s.sections, match)
}

// checkSplit rejects splitting existing with sec unless a positive remainder is left.
func checkSplit(existing, sec Section) error {
	if sec.distance >= existing.distance {
		return fmt.Errorf("%w: new section (%d) must be shorter than the section it splits (%d)",
			ErrInvalidDistance, sec.distance, existing.distance)
	}
	return nil
}

// replaceAt returns a new slice with the sections at drop removed and with
// inserted placed where the first dropped section was. The input is not modified.
func replaceAt(list []Section, drop []int, inserted ...Section) []Section {
	at := slices.Min(drop)
	out := make([]Section, 0, len(list)-len(drop)+len(inserted))
	for i, sec := range list {
		if i == at {
			out = append(out, inserted...)
		}
		if slices.Contains(drop, i) {
			continue
		}
		out = append(out, sec)
	}
	return out
}
