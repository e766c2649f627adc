package main

import (
	"context"
	"fmt"

	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/section"
)

func scheduleCandidate(day, start, end, facultyID, roomID string) schedule.Candidate {
	return schedule.Candidate{
		Day:       schedule.Day(day),
		StartTime: start,
		EndTime:   end,
		FacultyID: facultyID,
		RoomID:    roomID,
	}
}

// checkSlot prints whether req fits the saved schedules. A rejected slot is returned as an error.
func (cli *commandLine) checkSlot(req section.TimeSlotRequest) error {
	res, err := cli.sectionSvc.ValidateTimeSlot(context.Background(), req)
	if err != nil {
		return err
	}
	if !res.OK {
		return res.Err()
	}
	fmt.Println("Time slot is available")
	return nil
}
