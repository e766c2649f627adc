package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/catalog"
)

var (
	courseOrderings = map[string]string{
		"name":         "name",
		"code":         "code",
		"credit_hours": "credit_hours",
		"created_at":   "created_at",
	}
	roomOrderings = map[string]string{
		"no":           "no",
		"max_capacity": "max_capacity",
		"created_at":   "created_at",
	}
)

type courseRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Code        string    `db:"code"`
	CreditHours int       `db:"credit_hours"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r courseRow) course() catalog.Course {
	return catalog.Course{
		ID:          r.ID,
		Name:        r.Name,
		Code:        r.Code,
		CreditHours: r.CreditHours,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type roomRow struct {
	ID          string    `db:"id"`
	No          string    `db:"no"`
	MaxCapacity int       `db:"max_capacity"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r roomRow) room() catalog.Room {
	return catalog.Room{
		ID:          r.ID,
		No:          r.No,
		MaxCapacity: r.MaxCapacity,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

// exists tells whether table has a row where column = value, other than excludeID.
func (repo *catalogRepository) exists(ctx context.Context, table, column, value, excludeID string) (bool, error) {
	var conds conditions
	conds.add(column+" = ?", value)
	if validID(excludeID) {
		conds.add("id <> ?", excludeID)
	}
	var exists bool
	q := repo.db.Rebind("SELECT EXISTS (SELECT 1 FROM " + table + conds.String() + ")")
	err := repo.db.GetContext(ctx, &exists, q, conds.args...)
	return exists, err
}

func (repo *catalogRepository) deleteByID(ctx context.Context, table string, ids []string) error {
	if ids = validIDs(ids); len(ids) == 0 {
		return nil
	}
	q, args, err := bind(repo.db, "DELETE FROM "+table+" WHERE id IN (?)", ids)
	if err != nil {
		return err
	}
	_, err = repo.db.ExecContext(ctx, q, args...)
	return err
}

// Courses

func (repo *catalogRepository) CheckCourseCodeUniqueness(ctx context.Context, code, excludeID string) error {
	exists, err := repo.exists(ctx, "courses", "code", code, excludeID)
	if err != nil {
		return errors.Wrap(err, "checking course code uniqueness")
	}
	if exists {
		return catalog.ErrCourseCodeExists
	}
	return nil
}

func (repo *catalogRepository) CreateCourse(ctx context.Context, c catalog.Course) (catalog.Course, error) {
	q := repo.db.Rebind(`INSERT INTO courses (name, code, credit_hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := repo.db.GetContext(ctx, &c.ID, q, c.Name, c.Code, c.CreditHours, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.Course{}, catalog.ErrCourseCodeExists
		}
		return catalog.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo *catalogRepository) QueryCourses(ctx context.Context, filter *catalog.QueryFilter, ordering []core.DBOrdering) ([]catalog.Course, error) {
	var conds conditions
	if filter != nil && filter.Search != "" {
		pattern := likePattern(filter.Search)
		conds.add("(name ILIKE ? OR code ILIKE ?)", pattern, pattern)
	}
	q := repo.db.Rebind("SELECT id, name, code, credit_hours, created_at, updated_at FROM courses" + conds.String() +
		" ORDER BY " + core.OrderBy(ordering, courseOrderings, "code ASC"))

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, q, conds.args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]catalog.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.course())
	}
	return courses, nil
}

func (repo *catalogRepository) GetCourse(ctx context.Context, id string) (catalog.Course, error) {
	if !validID(id) {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	var row courseRow
	q := repo.db.Rebind("SELECT id, name, code, credit_hours, created_at, updated_at FROM courses WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return catalog.Course{}, trapNoRowsErr(err, catalog.ErrCourseNotFound, "finding course")
	}
	return row.course(), nil
}

func (repo *catalogRepository) UpdateCourse(ctx context.Context, c catalog.Course) (catalog.Course, error) {
	if !validID(c.ID) {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	q := repo.db.Rebind("UPDATE courses SET name = ?, code = ?, credit_hours = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, c.Name, c.Code, c.CreditHours, c.UpdatedAt.UTC(), c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.Course{}, catalog.ErrCourseCodeExists
		}
		return catalog.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	return c, nil
}

func (repo *catalogRepository) DeleteCourses(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.deleteByID(ctx, "courses", ids), "deleting courses")
}

// Rooms

func (repo *catalogRepository) CheckRoomNoUniqueness(ctx context.Context, no, excludeID string) error {
	exists, err := repo.exists(ctx, "rooms", "no", no, excludeID)
	if err != nil {
		return errors.Wrap(err, "checking room number uniqueness")
	}
	if exists {
		return catalog.ErrRoomNoExists
	}
	return nil
}

func (repo *catalogRepository) CreateRoom(ctx context.Context, r catalog.Room) (catalog.Room, error) {
	q := repo.db.Rebind(`INSERT INTO rooms (no, max_capacity, created_at, updated_at)
		VALUES (?, ?, ?, ?) RETURNING id`)
	err := repo.db.GetContext(ctx, &r.ID, q, r.No, r.MaxCapacity, r.CreatedAt.UTC(), r.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.Room{}, catalog.ErrRoomNoExists
		}
		return catalog.Room{}, errors.Wrap(err, "inserting room")
	}
	return r, nil
}

func (repo *catalogRepository) QueryRooms(ctx context.Context, filter *catalog.QueryFilter, ordering []core.DBOrdering) ([]catalog.Room, error) {
	var conds conditions
	if filter != nil && filter.Search != "" {
		conds.add("no ILIKE ?", likePattern(filter.Search))
	}
	q := repo.db.Rebind("SELECT id, no, max_capacity, created_at, updated_at FROM rooms" + conds.String() +
		" ORDER BY " + core.OrderBy(ordering, roomOrderings, "no ASC"))

	var rows []roomRow
	if err := repo.db.SelectContext(ctx, &rows, q, conds.args...); err != nil {
		return nil, errors.Wrap(err, "querying rooms")
	}
	rooms := make([]catalog.Room, 0, len(rows))
	for _, r := range rows {
		rooms = append(rooms, r.room())
	}
	return rooms, nil
}

func (repo *catalogRepository) GetRoom(ctx context.Context, id string) (catalog.Room, error) {
	if !validID(id) {
		return catalog.Room{}, catalog.ErrRoomNotFound
	}
	var row roomRow
	q := repo.db.Rebind("SELECT id, no, max_capacity, created_at, updated_at FROM rooms WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return catalog.Room{}, trapNoRowsErr(err, catalog.ErrRoomNotFound, "finding room")
	}
	return row.room(), nil
}

func (repo *catalogRepository) UpdateRoom(ctx context.Context, r catalog.Room) (catalog.Room, error) {
	if !validID(r.ID) {
		return catalog.Room{}, catalog.ErrRoomNotFound
	}
	q := repo.db.Rebind("UPDATE rooms SET no = ?, max_capacity = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, r.No, r.MaxCapacity, r.UpdatedAt.UTC(), r.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.Room{}, catalog.ErrRoomNoExists
		}
		return catalog.Room{}, errors.Wrap(err, "updating room")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.Room{}, catalog.ErrRoomNotFound
	}
	return r, nil
}

func (repo *catalogRepository) DeleteRooms(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.deleteByID(ctx, "rooms", ids), "deleting rooms")
}
