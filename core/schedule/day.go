package schedule

import (
	"strings"

	"github.com/pkg/errors"
)

// Day is a weekday a slot recurs on.
type Day string

const (
	Monday    Day = "MONDAY"
	Tuesday   Day = "TUESDAY"
	Wednesday Day = "WEDNESDAY"
	Thursday  Day = "THURSDAY"
	Friday    Day = "FRIDAY"
	Saturday  Day = "SATURDAY"
	Sunday    Day = "SUNDAY"
)

// Days lists every Day in calendar order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var ErrInvalidDay = errors.New("invalid day")

// ParseDay returns the Day named by s, in any letter case.
func ParseDay(s string) (Day, error) {
	d := Day(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", errors.Wrapf(ErrInvalidDay, "%q", s)
	}
	return d, nil
}

func (d Day) IsValid() bool {
	for _, day := range Days {
		if d == day {
			return true
		}
	}
	return false
}

func (d Day) String() string { return string(d) }
