// Package inmemdb implements the repositories in memory.
package inmemdb

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/catalog"
	"github.com/academia/backend/core/enrollment"
	"github.com/academia/backend/core/section"
	"github.com/academia/backend/core/user"
)

// DB holds every table behind a single lock so that cross-table reads are consistent.
type DB struct {
	mu          sync.RWMutex
	users       map[string]user.User
	courses     map[string]catalog.Course
	rooms       map[string]catalog.Room
	sections    map[string]section.Section
	enrollments map[string]enrollment.Enrollment // {studentID/sectionID: Enrollment}
}

func NewDB() *DB {
	db := new(DB)
	db.Reset()
	return db
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = make(map[string]user.User)
	db.courses = make(map[string]catalog.Course)
	db.rooms = make(map[string]catalog.Room)
	db.sections = make(map[string]section.Section)
	db.enrollments = make(map[string]enrollment.Enrollment)
}

func newID() string { return uuid.New().String() }

func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func containsID(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

func cmpStrings(a, b string) int { return strings.Compare(strings.ToLower(a), strings.ToLower(b)) }

func cmpInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func cmpTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// less compares two rows field by field following orderings; cmp returns ok=false for unknown fields.
func less(orderings []core.DBOrdering, cmp func(field string) (int, bool)) bool {
	for _, ord := range orderings {
		c, ok := cmp(ord.Field)
		if !ok || c == 0 {
			continue
		}
		if ord.Ascending {
			return c < 0
		}
		return c > 0
	}
	return false
}
