package view

import (
	"fmt"
	"strings"
)

// SortKey selects the ordering of the visible rows.
type SortKey string

const (
	SortNone   SortKey = ""
	SortDate   SortKey = "date"
	SortAmount SortKey = "amount"
)

// Direction of an ordering.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

func (d Direction) flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// ParseSortKey accepts "date" and "amount".
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortDate, SortAmount:
		return k, nil
	default:
		return SortNone, fmt.Errorf("unknown sort key %q", s)
	}
}

// SortState is the active ordering plus the direction each key will use on
// its next invocation. The zero value sorts nothing and has both keys
// starting ascending.
type SortState struct {
	Key       SortKey
	Direction Direction

	nextDate   Direction
	nextAmount Direction
}

// Invoke activates key with its remembered direction and flips what the
// next invocation of the same key will use. Other keys keep their state.
func (s *SortState) Invoke(key SortKey) {
	var next *Direction
	switch key {
	case SortDate:
		next = &s.nextDate
	case SortAmount:
		next = &s.nextAmount
	default:
		s.Key, s.Direction = SortNone, Ascending
		return
	}
	s.Key = key
	s.Direction = *next
	*next = next.flip()
}

// Next returns the direction the next invocation of key would apply.
func (s SortState) Next(key SortKey) Direction {
	switch key {
	case SortDate:
		return s.nextDate
	case SortAmount:
		return s.nextAmount
	}
	return Ascending
}

// Reset drops the active ordering and both remembered directions.
func (s *SortState) Reset() {
	*s = SortState{}
}
