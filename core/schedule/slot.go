package schedule

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// clock times are anchored on this date so that only the time of day is compared
	referenceYear  = 2000
	referenceMonth = time.January
	referenceDay   = 1

	clockLayouts = []string{"15:04", "15:04:05"}

	ErrInvalidClock = errors.New("invalid clock time")
)

// Slot is a weekly time interval. StartTime and EndTime are "HH:MM" clock times.
type Slot struct {
	ID        string `json:"id,omitempty"`
	Day       Day    `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Candidate is a slot proposed for a section taught by FacultyID in RoomID.
type Candidate struct {
	Day       Day    `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	FacultyID string `json:"faculty_id"`
	RoomID    string `json:"room_id"`
}

func (c Candidate) Slot() Slot {
	return Slot{Day: c.Day, StartTime: c.StartTime, EndTime: c.EndTime}
}

// Committed holds the slots already persisted for the candidate's faculty and room.
type Committed struct {
	Faculty []Slot
	Room    []Slot
}

// Normalize anchors an "HH:MM" (or "HH:MM:SS") clock time on a fixed reference date.
// Equal inputs always yield equal instants, and instants order like the clock times do.
func Normalize(clock string) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, clock); err == nil {
			return time.Date(referenceYear, referenceMonth, referenceDay, t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrInvalidClock, "%q", clock)
}

// FormatClock renders t as "HH:MM", or "HH:MM:SS" when t has seconds.
func FormatClock(t time.Time) string {
	if t.Second() != 0 {
		return t.Format(clockLayouts[1])
	}
	return t.Format(clockLayouts[0])
}

// Overlaps reports whether the candidate interval starts inside [exStart, exEnd)
// or ends inside (exStart, exEnd].
//
// A candidate that strictly contains the existing interval is not reported.
// Back-to-back intervals never overlap.
func Overlaps(candStart, candEnd, exStart, exEnd time.Time) bool {
	startsInside := !candStart.Before(exStart) && candStart.Before(exEnd)
	endsInside := candEnd.After(exStart) && !candEnd.After(exEnd)
	return startsInside || endsInside
}

// Conflicts reports whether candidate overlaps existing on the same day.
// A slot whose times cannot be normalized never conflicts.
func Conflicts(candidate, existing Slot) bool {
	if candidate.Day != existing.Day {
		return false
	}
	cs, ce, err := bounds(candidate)
	if err != nil {
		return false
	}
	es, ee, err := bounds(existing)
	if err != nil {
		return false
	}
	return Overlaps(cs, ce, es, ee)
}

func bounds(s Slot) (start, end time.Time, err error) {
	if start, err = Normalize(s.StartTime); err != nil {
		return
	}
	end, err = Normalize(s.EndTime)
	return
}

// firstConflict returns the index of the first slot in existing that candidate conflicts with, or -1.
func firstConflict(candidate Slot, existing []Slot) int {
	for i, ex := range existing {
		if Conflicts(candidate, ex) {
			return i
		}
	}
	return -1
}
