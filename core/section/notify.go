package section

import (
	"net/mail"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/user"
)

type scheduleNotice struct {
	FacultyName string
	SectionID   string
	SectionCode string
	SectionName string
	Action      string
	Slots       []schedule.Slot
}

// notifyFaculty emails faculty the schedule of sec.
func (svc *Service) notifyFaculty(faculty user.User, sec Section, action string) {
	if faculty.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{faculty.Address()},
		Subject:      "Section " + sec.Code + " schedule " + action,
		TemplateName: "section_schedule",
		TemplateData: scheduleNotice{
			FacultyName: faculty.Name,
			SectionID:   sec.ID,
			SectionCode: sec.Code,
			SectionName: sec.Name,
			Action:      action,
			Slots:       sec.Schedules,
		},
	})
}
