package inmemdb

import (
	"context"
	"sort"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db}
}

// Courses

func (repo *catalogRepository) CheckCourseCodeUniqueness(_ context.Context, code, excludeID string) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, c := range repo.db.courses {
		if c.Code == code && c.ID != excludeID {
			return catalog.ErrCourseCodeExists
		}
	}
	return nil
}

func (repo *catalogRepository) CreateCourse(_ context.Context, c catalog.Course) (catalog.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = newID()
	repo.db.courses[c.ID] = c
	return c, nil
}

func (repo *catalogRepository) QueryCourses(_ context.Context, filter *catalog.QueryFilter, ordering []core.DBOrdering) ([]catalog.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := make([]catalog.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		if filter != nil && filter.Search != "" && !(contains(c.Name, filter.Search) || contains(c.Code, filter.Search)) {
			continue
		}
		courses = append(courses, c)
	}

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "code", Ascending: true}}
	}
	sort.SliceStable(courses, func(i, j int) bool {
		a, b := courses[i], courses[j]
		return less(ordering, func(field string) (int, bool) {
			switch field {
			case "name":
				return cmpStrings(a.Name, b.Name), true
			case "code":
				return cmpStrings(a.Code, b.Code), true
			case "credit_hours":
				return cmpInts(a.CreditHours, b.CreditHours), true
			case "created_at":
				return cmpTimes(a.CreatedAt, b.CreatedAt), true
			}
			return 0, false
		})
	})
	return courses, nil
}

func (repo *catalogRepository) GetCourse(_ context.Context, id string) (catalog.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return c, nil
	}
	return catalog.Course{}, catalog.ErrCourseNotFound
}

func (repo *catalogRepository) UpdateCourse(_ context.Context, c catalog.Course) (catalog.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[c.ID]; !ok {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	repo.db.courses[c.ID] = c
	return c, nil
}

func (repo *catalogRepository) DeleteCourses(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.courses, id)
	}
	return nil
}

// Rooms

func (repo *catalogRepository) CheckRoomNoUniqueness(_ context.Context, no, excludeID string) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, r := range repo.db.rooms {
		if r.No == no && r.ID != excludeID {
			return catalog.ErrRoomNoExists
		}
	}
	return nil
}

func (repo *catalogRepository) CreateRoom(_ context.Context, r catalog.Room) (catalog.Room, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	r.ID = newID()
	repo.db.rooms[r.ID] = r
	return r, nil
}

func (repo *catalogRepository) QueryRooms(_ context.Context, filter *catalog.QueryFilter, ordering []core.DBOrdering) ([]catalog.Room, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	rooms := make([]catalog.Room, 0, len(repo.db.rooms))
	for _, r := range repo.db.rooms {
		if filter != nil && filter.Search != "" && !contains(r.No, filter.Search) {
			continue
		}
		rooms = append(rooms, r)
	}

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "no", Ascending: true}}
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		a, b := rooms[i], rooms[j]
		return less(ordering, func(field string) (int, bool) {
			switch field {
			case "no":
				return cmpStrings(a.No, b.No), true
			case "max_capacity":
				return cmpInts(a.MaxCapacity, b.MaxCapacity), true
			case "created_at":
				return cmpTimes(a.CreatedAt, b.CreatedAt), true
			}
			return 0, false
		})
	})
	return rooms, nil
}

func (repo *catalogRepository) GetRoom(_ context.Context, id string) (catalog.Room, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if r, ok := repo.db.rooms[id]; ok {
		return r, nil
	}
	return catalog.Room{}, catalog.ErrRoomNotFound
}

func (repo *catalogRepository) UpdateRoom(_ context.Context, r catalog.Room) (catalog.Room, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.rooms[r.ID]; !ok {
		return catalog.Room{}, catalog.ErrRoomNotFound
	}
	repo.db.rooms[r.ID] = r
	return r, nil
}

func (repo *catalogRepository) DeleteRooms(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.rooms, id)
	}
	return nil
}
