package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/academia/backend/core/enrollment"
)

type enrollmentRow struct {
	StudentID string    `db:"student_id"`
	SectionID string    `db:"section_id"`
	CreatedAt time.Time `db:"created_at"`
}

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	q := repo.db.Rebind("INSERT INTO enrollments (student_id, section_id, created_at) VALUES (?, ?, ?)")
	if _, err := repo.db.ExecContext(ctx, q, e.StudentID, e.SectionID, e.CreatedAt.UTC()); err != nil {
		if isUniqueViolation(err) {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return e, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, studentID, sectionID string) error {
	if !validID(studentID) || !validID(sectionID) {
		return enrollment.ErrNotFound
	}
	q := repo.db.Rebind("DELETE FROM enrollments WHERE student_id = ? AND section_id = ?")
	res, err := repo.db.ExecContext(ctx, q, studentID, sectionID)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, studentID string) ([]enrollment.Enrollment, error) {
	if !validID(studentID) {
		return nil, nil
	}
	var rows []enrollmentRow
	q := repo.db.Rebind("SELECT student_id, section_id, created_at FROM enrollments WHERE student_id = ? ORDER BY created_at")
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	list := make([]enrollment.Enrollment, 0, len(rows))
	for _, r := range rows {
		list = append(list, enrollment.Enrollment{StudentID: r.StudentID, SectionID: r.SectionID, CreatedAt: r.CreatedAt.UTC()})
	}
	return list, nil
}

func (repo *enrollmentRepository) CountSectionEnrollments(ctx context.Context, sectionID string) (int, error) {
	if !validID(sectionID) {
		return 0, nil
	}
	var count int
	q := repo.db.Rebind("SELECT COUNT(*) FROM enrollments WHERE section_id = ?")
	if err := repo.db.GetContext(ctx, &count, q, sectionID); err != nil {
		return 0, errors.Wrap(err, "counting enrollments")
	}
	return count, nil
}
