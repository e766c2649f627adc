package schedule

import (
	"strconv"
	"testing"
)

func stubSlotIDs(t *testing.T) {
	var n int
	newSlotID = func() string {
		n++
		return "slot-" + strconv.Itoa(n)
	}
	t.Cleanup(func() { newSlotID = defaultSlotID })
}

var defaultSlotID = newSlotID

func TestDraft_Add(t *testing.T) {
	stubSlotIDs(t)
	var d Draft

	tests := []struct {
		name    string
		slot    Slot
		want    Result
		wantID  string
		wantLen int
	}{
		{name: "first slot", slot: slot(Monday, "09:00", "10:00"), want: Success(), wantID: "slot-1", wantLen: 1},
		{name: "back to back", slot: slot(Monday, "10:00", "11:00"), want: Success(), wantID: "slot-2", wantLen: 2},
		{name: "conflict is not staged", slot: slot(Monday, "10:30", "11:30"), want: Failure(LocalConflict), wantLen: 2},
		{name: "malformed is not staged", slot: slot(Monday, "10:30", "lol"), want: Failure(InvalidTime), wantLen: 2},
		{name: "other day", slot: slot(Friday, "10:30", "11:30"), want: Success(), wantID: "slot-3", wantLen: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, res := d.Add(tt.slot)
			if res != tt.want {
				t.Fatalf("Add() result = %+v, want %+v", res, tt.want)
			}
			if got.ID != tt.wantID {
				t.Errorf("Add() ID = %q, want %q", got.ID, tt.wantID)
			}
			if d.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", d.Len(), tt.wantLen)
			}
		})
	}
}

func TestDraft_UpdateRemove(t *testing.T) {
	stubSlotIDs(t)
	var d Draft
	first, _ := d.Add(slot(Monday, "09:00", "10:00"))
	second, _ := d.Add(slot(Monday, "10:00", "11:00"))

	t.Run("update onto another slot conflicts", func(t *testing.T) {
		res, found := d.Update(first.ID, slot(Monday, "10:30", "11:30"))
		if !found || res != Failure(LocalConflict) {
			t.Errorf("Update() = %+v, %v; want local conflict", res, found)
		}
	})
	t.Run("update does not conflict with itself", func(t *testing.T) {
		res, found := d.Update(first.ID, slot(Monday, "08:30", "09:30"))
		if !found || !res.OK {
			t.Fatalf("Update() = %+v, %v; want success", res, found)
		}
		if d.Slots[0].StartTime != "08:30" || d.Slots[0].ID != first.ID {
			t.Errorf("failed! slot = %+v", d.Slots[0])
		}
	})
	t.Run("update unknown", func(t *testing.T) {
		if _, found := d.Update("lol", slot(Monday, "08:30", "09:30")); found {
			t.Error("failed! found unknown slot")
		}
	})
	t.Run("remove unknown", func(t *testing.T) {
		if d.Remove("lol") {
			t.Error("failed! removed unknown slot")
		}
	})
	t.Run("remove then re-add", func(t *testing.T) {
		if !d.Remove(second.ID) {
			t.Fatal("failed! slot not removed")
		}
		if d.Len() != 1 {
			t.Fatalf("Len() = %d, want 1", d.Len())
		}
		if _, res := d.Add(slot(Monday, "10:30", "11:30")); !res.OK {
			t.Errorf("Add() = %+v, want success", res)
		}
	})
}
