package inmemdb

import (
	"context"
	"sort"

	"github.com/academia/backend/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func enrollmentKey(studentID, sectionID string) string { return studentID + "/" + sectionID }

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := enrollmentKey(e.StudentID, e.SectionID)
	if _, ok := repo.db.enrollments[key]; ok {
		return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
	}
	repo.db.enrollments[key] = e
	return e, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(_ context.Context, studentID, sectionID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := enrollmentKey(studentID, sectionID)
	if _, ok := repo.db.enrollments[key]; !ok {
		return enrollment.ErrNotFound
	}
	delete(repo.db.enrollments, key)
	return nil
}

func (repo *enrollmentRepository) QueryEnrollments(_ context.Context, studentID string) ([]enrollment.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var list []enrollment.Enrollment
	for _, e := range repo.db.enrollments {
		if e.StudentID == studentID {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (repo *enrollmentRepository) CountSectionEnrollments(_ context.Context, sectionID string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var count int
	for _, e := range repo.db.enrollments {
		if e.SectionID == sectionID {
			count++
		}
	}
	return count, nil
}
