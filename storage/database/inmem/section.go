package inmemdb

import (
	"context"
	"sort"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/section"
)

type sectionRepository struct {
	db *DB
}

var _ section.Repository = (*sectionRepository)(nil) // interface compliance check

func NewSectionRepository(db *DB) section.Repository {
	return &sectionRepository{db: db}
}

// copySection detaches the schedules of sec from the stored ones.
func copySection(sec section.Section) section.Section {
	sec.Schedules = append([]schedule.Slot{}, sec.Schedules...)
	return sec
}

func (repo *sectionRepository) CheckCodeUniqueness(_ context.Context, code, excludeID string) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, sec := range repo.db.sections {
		if sec.Code == code && sec.ID != excludeID {
			return section.ErrCodeExists
		}
	}
	return nil
}

func (repo *sectionRepository) CreateSection(_ context.Context, sec section.Section) (section.Section, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	sec.ID = newID()
	sec = copySection(sec)
	for i := range sec.Schedules {
		sec.Schedules[i].ID = newID()
	}
	repo.db.sections[sec.ID] = sec
	return copySection(sec), nil
}

func (repo *sectionRepository) UpdateSection(_ context.Context, sec section.Section) (section.Section, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.sections[sec.ID]; !ok {
		return section.Section{}, section.ErrNotFound
	}
	sec = copySection(sec)
	for i := range sec.Schedules {
		sec.Schedules[i].ID = newID()
	}
	repo.db.sections[sec.ID] = sec
	return copySection(sec), nil
}

func (repo *sectionRepository) GetSection(_ context.Context, id string) (section.Section, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sec, ok := repo.db.sections[id]; ok {
		return copySection(sec), nil
	}
	return section.Section{}, section.ErrNotFound
}

func (repo *sectionRepository) QuerySections(_ context.Context, filter *section.QueryFilter, ordering []core.DBOrdering) ([]section.Section, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	secs := make([]section.Section, 0, len(repo.db.sections))
	for _, sec := range repo.db.sections {
		if matchSection(sec, filter) {
			secs = append(secs, copySection(sec))
		}
	}

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "code", Ascending: true}}
	}
	sort.SliceStable(secs, func(i, j int) bool {
		a, b := secs[i], secs[j]
		return less(ordering, func(field string) (int, bool) {
			switch field {
			case "name":
				return cmpStrings(a.Name, b.Name), true
			case "code":
				return cmpStrings(a.Code, b.Code), true
			case "created_at":
				return cmpTimes(a.CreatedAt, b.CreatedAt), true
			}
			return 0, false
		})
	})
	return secs, nil
}

func matchSection(sec section.Section, filter *section.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" && !(contains(sec.Name, filter.Search) || contains(sec.Code, filter.Search)) {
		return false
	}
	if filter.CourseID != "" && sec.CourseID != filter.CourseID {
		return false
	}
	if filter.FacultyID != "" && sec.FacultyID != filter.FacultyID {
		return false
	}
	if filter.RoomID != "" && sec.RoomID != filter.RoomID {
		return false
	}
	if filter.IDs != nil && !containsID(filter.IDs, sec.ID) {
		return false
	}
	if filter.Day != "" {
		found := false
		for _, s := range sec.Schedules {
			if string(s.Day) == filter.Day {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (repo *sectionRepository) DeleteSections(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.sections, id)
		for key, e := range repo.db.enrollments {
			if e.SectionID == id {
				delete(repo.db.enrollments, key)
			}
		}
	}
	return nil
}

func (repo *sectionRepository) querySlots(match func(section.Section) bool, excludeSectionID string) []schedule.Slot {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var slots []schedule.Slot
	for _, sec := range repo.db.sections {
		if sec.ID == excludeSectionID || !match(sec) {
			continue
		}
		slots = append(slots, sec.Schedules...)
	}
	return slots
}

func (repo *sectionRepository) QuerySlotsByFaculty(_ context.Context, facultyID, excludeSectionID string) ([]schedule.Slot, error) {
	return repo.querySlots(func(sec section.Section) bool { return sec.FacultyID == facultyID }, excludeSectionID), nil
}

func (repo *sectionRepository) QuerySlotsByRoom(_ context.Context, roomID, excludeSectionID string) ([]schedule.Slot, error) {
	return repo.querySlots(func(sec section.Section) bool { return sec.RoomID == roomID }, excludeSectionID), nil
}
