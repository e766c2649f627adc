package schedule

import "github.com/google/uuid"

var newSlotID = func() string { return uuid.New().String() } // mockable

// Draft is the list of slots staged for a section before it is saved.
// It is plain data owned by the caller; validators only read it.
type Draft struct {
	Slots []Slot `json:"slots"`
}

// Add stages s if it does not conflict with the staged slots and returns it with its new ID.
func (d *Draft) Add(s Slot) (Slot, Result) {
	if res := ValidateLocalConflict(s, d.Slots); !res.OK {
		return Slot{}, res
	}
	s.ID = newSlotID()
	d.Slots = append(d.Slots, s)
	return s, Success()
}

// Update replaces the slot with the given id, checking s against every other staged slot.
// found is false when no staged slot has that id.
func (d *Draft) Update(id string, s Slot) (res Result, found bool) {
	idx := d.index(id)
	if idx < 0 {
		return Result{}, false
	}
	others := make([]Slot, 0, len(d.Slots)-1)
	others = append(others, d.Slots[:idx]...)
	others = append(others, d.Slots[idx+1:]...)
	if res = ValidateLocalConflict(s, others); !res.OK {
		return res, true
	}
	s.ID = id
	d.Slots[idx] = s
	return Success(), true
}

// Remove unstages the slot with the given id and reports whether it was there.
func (d *Draft) Remove(id string) bool {
	idx := d.index(id)
	if idx < 0 {
		return false
	}
	d.Slots = append(d.Slots[:idx], d.Slots[idx+1:]...)
	return true
}

func (d *Draft) Len() int { return len(d.Slots) }

func (d *Draft) index(id string) int {
	for i, s := range d.Slots {
		if s.ID == id {
			return i
		}
	}
	return -1
}
