package sqlxrepos

import (
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_likePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "math", want: "%math%"},
		{in: "100%", want: `%100\%%`},
		{in: "MATH_101", want: `%MATH\_101%`},
		{in: `a\b`, want: `%a\\b%`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, likePattern(tt.in))
		})
	}
}

func Test_conditions(t *testing.T) {
	var c conditions
	assert.Equal(t, "", c.String())

	c.add("s.faculty_id = ?", "f1")
	c.add("s.id IN (?)", []string{"a", "b"})
	assert.Equal(t, " WHERE s.faculty_id = ? AND s.id IN (?)", c.String())
	assert.Equal(t, []interface{}{"f1", []string{"a", "b"}}, c.args)

	db := sqlx.NewDb(nil, "postgres")
	q, args, err := bind(db, "SELECT * FROM sections s"+c.String(), c.args...)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM sections s WHERE s.faculty_id = $1 AND s.id IN ($2, $3)", q)
	assert.Equal(t, []interface{}{"f1", "a", "b"}, args)
}

func Test_validIDs(t *testing.T) {
	id := "9b2a4f0e-6a3c-4c2e-9f53-0f1d2a3b4c5d"
	assert.True(t, validID(id))
	assert.False(t, validID("lol"))
	assert.Equal(t, []string{id}, validIDs([]string{"lol", id, ""}))
	assert.Empty(t, validIDs(nil))
}

func Test_errorMapping(t *testing.T) {
	notFound := errors.New("not found")
	assert.Equal(t, notFound, trapNoRowsErr(errors.Wrap(sql.ErrNoRows, "get"), notFound, "getting"))
	other := errors.New("boom")
	assert.Equal(t, other, errors.Cause(trapNoRowsErr(other, notFound, "getting")))

	assert.True(t, isUniqueViolation(errors.Wrap(&pq.Error{Code: uniqueViolation}, "insert")))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(other))
}

func Test_slotRow(t *testing.T) {
	tests := []struct {
		name      string
		row       slotRow
		wantStart string
		wantEnd   string
	}{
		{name: "whole minutes", row: slotRow{Day: "MONDAY", StartTime: "09:00:00", EndTime: "10:00:00"}, wantStart: "09:00", wantEnd: "10:00"},
		{name: "seconds kept", row: slotRow{Day: "MONDAY", StartTime: "09:00:30", EndTime: "10:15:45"}, wantStart: "09:00:30", wantEnd: "10:15:45"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.row.slot()
			assert.Equal(t, tt.wantStart, s.StartTime)
			assert.Equal(t, tt.wantEnd, s.EndTime)
		})
	}
}
