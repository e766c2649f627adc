// Package schedule decides whether weekly time slots collide.
//
// Everything here is pure: callers pass in the slots to compare against,
// so the functions are safe to call concurrently and always give the same answer for the same input.
package schedule

import "strings"

// ValidateLocalConflict checks candidate against the slots staged in the same editing session.
func ValidateLocalConflict(candidate Slot, staged []Slot) Result {
	return validateAgainst(candidate, staged, LocalConflict)
}

// ValidateLocalSectionConflict checks the slot of a section a student wants to join
// against the slots of the sections they already attend.
func ValidateLocalSectionConflict(candidate Slot, enrolled []Slot) Result {
	return validateAgainst(candidate, enrolled, SectionConflict)
}

func validateAgainst(candidate Slot, existing []Slot, kind Kind) Result {
	if _, _, err := bounds(candidate); err != nil {
		return Failure(InvalidTime)
	}
	if firstConflict(candidate, existing) >= 0 {
		return Failure(kind)
	}
	return Success()
}

// IsFacultyAvailable reports whether candidate overlaps none of the faculty member's committed slots.
func IsFacultyAvailable(candidate Slot, facultySlots []Slot) bool {
	return firstConflict(candidate, facultySlots) < 0
}

// IsRoomAvailable reports whether candidate overlaps none of the room's committed slots.
func IsRoomAvailable(candidate Slot, roomSlots []Slot) bool {
	return firstConflict(candidate, roomSlots) < 0
}

// CheckFields runs the checks of ValidateTimeSlot that need no committed slots:
// every field is present, both times parse and start is before end.
func CheckFields(c Candidate) Result {
	if isBlank(string(c.Day)) || isBlank(c.StartTime) || isBlank(c.EndTime) || isBlank(c.FacultyID) || isBlank(c.RoomID) {
		return Failure(MissingField)
	}
	start, end, err := bounds(c.Slot())
	if err != nil {
		return Failure(InvalidTime)
	}
	if !start.Before(end) {
		return Failure(InvalidOrdering)
	}
	return Success()
}

// ValidateTimeSlot validates candidate against the committed slots of its faculty member and room.
// The first failing check wins, in this order: missing field, malformed time,
// start not before end, faculty conflict, room conflict.
func ValidateTimeSlot(c Candidate, committed Committed) Result {
	if res := CheckFields(c); !res.OK {
		return res
	}
	slot := c.Slot()
	if !IsFacultyAvailable(slot, committed.Faculty) {
		return Failure(FacultyConflict)
	}
	if !IsRoomAvailable(slot, committed.Room) {
		return Failure(RoomConflict)
	}
	return Success()
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
