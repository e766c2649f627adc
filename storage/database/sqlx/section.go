package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/section"
)

const (
	sectionColumns = "s.id, s.name, s.code, s.course_id, s.faculty_id, s.room_id, s.created_at, s.updated_at"
	slotColumns    = "ss.id, ss.section_id, ss.day, to_char(ss.start_time, 'HH24:MI:SS') AS start_time, to_char(ss.end_time, 'HH24:MI:SS') AS end_time"
)

var sectionOrderings = map[string]string{
	"name":       "s.name",
	"code":       "s.code",
	"created_at": "s.created_at",
}

type sectionRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Code      string    `db:"code"`
	CourseID  string    `db:"course_id"`
	FacultyID string    `db:"faculty_id"`
	RoomID    string    `db:"room_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r sectionRow) section(slots []schedule.Slot) section.Section {
	if slots == nil {
		slots = []schedule.Slot{}
	}
	return section.Section{
		ID:        r.ID,
		Name:      r.Name,
		Code:      r.Code,
		CourseID:  r.CourseID,
		FacultyID: r.FacultyID,
		RoomID:    r.RoomID,
		Schedules: slots,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type slotRow struct {
	ID        string `db:"id"`
	SectionID string `db:"section_id"`
	Day       string `db:"day"`
	StartTime string `db:"start_time"`
	EndTime   string `db:"end_time"`
}

func (r slotRow) slot() schedule.Slot {
	return schedule.Slot{ID: r.ID, Day: schedule.Day(r.Day), StartTime: clock(r.StartTime), EndTime: clock(r.EndTime)}
}

// clock trims zero seconds off a "HH24:MI:SS" column value.
func clock(s string) string {
	t, err := schedule.Normalize(s)
	if err != nil {
		return s
	}
	return schedule.FormatClock(t)
}

type sectionRepository struct {
	db *sqlx.DB
}

var _ section.Repository = (*sectionRepository)(nil) // interface compliance check

func NewSectionRepository(db *sqlx.DB) section.Repository {
	return &sectionRepository{db: db}
}

// inTx runs fn in a transaction, rolling it back if fn fails.
func (repo *sectionRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func insertSlots(ctx context.Context, tx *sqlx.Tx, sectionID string, slots []schedule.Slot) ([]schedule.Slot, error) {
	q := tx.Rebind("INSERT INTO schedule_slots (section_id, day, start_time, end_time) VALUES (?, ?, ?, ?) RETURNING id")
	stored := make([]schedule.Slot, 0, len(slots))
	for _, s := range slots {
		if err := tx.GetContext(ctx, &s.ID, q, sectionID, string(s.Day), s.StartTime, s.EndTime); err != nil {
			return nil, errors.Wrap(err, "inserting schedule slot")
		}
		stored = append(stored, s)
	}
	return stored, nil
}

func (repo *sectionRepository) CheckCodeUniqueness(ctx context.Context, code, excludeID string) error {
	var conds conditions
	conds.add("code = ?", code)
	if validID(excludeID) {
		conds.add("id <> ?", excludeID)
	}
	var exists bool
	q := repo.db.Rebind("SELECT EXISTS (SELECT 1 FROM sections" + conds.String() + ")")
	if err := repo.db.GetContext(ctx, &exists, q, conds.args...); err != nil {
		return errors.Wrap(err, "checking section code uniqueness")
	}
	if exists {
		return section.ErrCodeExists
	}
	return nil
}

func (repo *sectionRepository) CreateSection(ctx context.Context, sec section.Section) (section.Section, error) {
	err := repo.inTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`INSERT INTO sections (name, code, course_id, faculty_id, room_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
		err := tx.GetContext(ctx, &sec.ID, q, sec.Name, sec.Code, sec.CourseID, sec.FacultyID, sec.RoomID, sec.CreatedAt.UTC(), sec.UpdatedAt.UTC())
		if err != nil {
			if isUniqueViolation(err) {
				return section.ErrCodeExists
			}
			return errors.Wrap(err, "inserting section")
		}
		sec.Schedules, err = insertSlots(ctx, tx, sec.ID, sec.Schedules)
		return err
	})
	if err != nil {
		return section.Section{}, err
	}
	return sec, nil
}

func (repo *sectionRepository) UpdateSection(ctx context.Context, sec section.Section) (section.Section, error) {
	if !validID(sec.ID) {
		return section.Section{}, section.ErrNotFound
	}
	err := repo.inTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`UPDATE sections SET name = ?, code = ?, course_id = ?, faculty_id = ?, room_id = ?, updated_at = ?
			WHERE id = ?`)
		res, err := tx.ExecContext(ctx, q, sec.Name, sec.Code, sec.CourseID, sec.FacultyID, sec.RoomID, sec.UpdatedAt.UTC(), sec.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return section.ErrCodeExists
			}
			return errors.Wrap(err, "updating section")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return section.ErrNotFound
		}
		if _, err = tx.ExecContext(ctx, tx.Rebind("DELETE FROM schedule_slots WHERE section_id = ?"), sec.ID); err != nil {
			return errors.Wrap(err, "deleting schedule slots")
		}
		sec.Schedules, err = insertSlots(ctx, tx, sec.ID, sec.Schedules)
		return err
	})
	if err != nil {
		return section.Section{}, err
	}
	return sec, nil
}

func (repo *sectionRepository) GetSection(ctx context.Context, id string) (section.Section, error) {
	if !validID(id) {
		return section.Section{}, section.ErrNotFound
	}
	var row sectionRow
	q := repo.db.Rebind("SELECT " + sectionColumns + " FROM sections s WHERE s.id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return section.Section{}, trapNoRowsErr(err, section.ErrNotFound, "finding section")
	}
	slots, err := repo.slotsBySection(ctx, []string{id})
	if err != nil {
		return section.Section{}, err
	}
	return row.section(slots[id]), nil
}

// slotsBySection loads the schedules of the given sections, keyed by section ID.
func (repo *sectionRepository) slotsBySection(ctx context.Context, ids []string) (map[string][]schedule.Slot, error) {
	slots := make(map[string][]schedule.Slot, len(ids))
	if len(ids) == 0 {
		return slots, nil
	}
	q, args, err := bind(repo.db, "SELECT "+slotColumns+" FROM schedule_slots ss WHERE ss.section_id IN (?) ORDER BY ss.start_time", ids)
	if err != nil {
		return nil, err
	}
	var rows []slotRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying schedule slots")
	}
	for _, r := range rows {
		slots[r.SectionID] = append(slots[r.SectionID], r.slot())
	}
	return slots, nil
}

func (repo *sectionRepository) QuerySections(ctx context.Context, filter *section.QueryFilter, ordering []core.DBOrdering) ([]section.Section, error) {
	var conds conditions
	if filter != nil {
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			conds.add("(s.name ILIKE ? OR s.code ILIKE ?)", pattern, pattern)
		}
		refs := []struct{ col, id string }{
			{"s.course_id", filter.CourseID},
			{"s.faculty_id", filter.FacultyID},
			{"s.room_id", filter.RoomID},
		}
		for _, ref := range refs {
			col, id := ref.col, ref.id
			if id == "" {
				continue
			}
			if !validID(id) {
				return []section.Section{}, nil
			}
			conds.add(col+" = ?", id)
		}
		if filter.Day != "" {
			conds.add("EXISTS (SELECT 1 FROM schedule_slots ss WHERE ss.section_id = s.id AND ss.day = ?)", filter.Day)
		}
		if filter.IDs != nil {
			ids := validIDs(filter.IDs)
			if len(ids) == 0 {
				return []section.Section{}, nil
			}
			conds.add("s.id IN (?)", ids)
		}
	}

	q := "SELECT " + sectionColumns + " FROM sections s" + conds.String() +
		" ORDER BY " + core.OrderBy(ordering, sectionOrderings, "s.code ASC")
	q, args, err := bind(repo.db, q, conds.args...)
	if err != nil {
		return nil, err
	}
	var rows []sectionRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	slots, err := repo.slotsBySection(ctx, ids)
	if err != nil {
		return nil, err
	}
	secs := make([]section.Section, 0, len(rows))
	for _, r := range rows {
		secs = append(secs, r.section(slots[r.ID]))
	}
	return secs, nil
}

func (repo *sectionRepository) DeleteSections(ctx context.Context, ids ...string) error {
	if ids = validIDs(ids); len(ids) == 0 {
		return nil
	}
	q, args, err := bind(repo.db, "DELETE FROM sections WHERE id IN (?)", ids)
	if err != nil {
		return err
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "deleting sections")
	}
	return nil
}

// querySlots returns the slots of the sections where column = id, but excludeSectionID.
func (repo *sectionRepository) querySlots(ctx context.Context, column, id, excludeSectionID string) ([]schedule.Slot, error) {
	if !validID(id) {
		return nil, nil
	}
	var conds conditions
	conds.add("s."+column+" = ?", id)
	if validID(excludeSectionID) {
		conds.add("s.id <> ?", excludeSectionID)
	}
	q := repo.db.Rebind("SELECT " + slotColumns + " FROM schedule_slots ss JOIN sections s ON s.id = ss.section_id" + conds.String())
	var rows []slotRow
	if err := repo.db.SelectContext(ctx, &rows, q, conds.args...); err != nil {
		return nil, err
	}
	slots := make([]schedule.Slot, 0, len(rows))
	for _, r := range rows {
		slots = append(slots, r.slot())
	}
	return slots, nil
}

func (repo *sectionRepository) QuerySlotsByFaculty(ctx context.Context, facultyID, excludeSectionID string) ([]schedule.Slot, error) {
	slots, err := repo.querySlots(ctx, "faculty_id", facultyID, excludeSectionID)
	return slots, errors.Wrap(err, "querying faculty slots")
}

func (repo *sectionRepository) QuerySlotsByRoom(ctx context.Context, roomID, excludeSectionID string) ([]schedule.Slot, error) {
	slots, err := repo.querySlots(ctx, "room_id", roomID, excludeSectionID)
	return slots, errors.Wrap(err, "querying room slots")
}
