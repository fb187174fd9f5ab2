// file: internals/helpers/dbtime/dbtime.go
package dbtime

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	LocSchoolTimezone = "school_timezone" // string, e.g. "Asia/Kolkata"
	LocSchoolLoc      = "school_loc"      // *time.Location

	DateLayout = "2006-01-02"
)

// DefaultLocation is set at bootstrap from APP_TIMEZONE.
var DefaultLocation = time.UTC

// GetSchoolLocation resolves the school timezone for a request:
// 1) c.Locals("school_loc")
// 2) c.Locals("school_timezone") loaded and cached
// 3) DefaultLocation
func GetSchoolLocation(c *fiber.Ctx) *time.Location {
	if c == nil {
		return DefaultLocation
	}
	if v := c.Locals(LocSchoolLoc); v != nil {
		if loc, ok := v.(*time.Location); ok && loc != nil {
			return loc
		}
	}
	if v := c.Locals(LocSchoolTimezone); v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			if loc, err := time.LoadLocation(strings.TrimSpace(s)); err == nil {
				c.Locals(LocSchoolLoc, loc)
				return loc
			}
		}
	}
	return DefaultLocation
}

// DateOf drops the clock and zone, keeping the calendar date as UTC midnight.
// Postgres DATE columns scan into this shape.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today is the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = DefaultLocation
	}
	return DateOf(now.In(loc))
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}

// Before reports a < b comparing calendar dates only.
func Before(a, b time.Time) bool {
	return DateOf(a).Before(DateOf(b))
}
