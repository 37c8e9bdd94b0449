package model

import (
	"fmt"
	"time"
)

// Month is a calendar month (year + month), the granularity at which
// claims are reported.
type Month struct {
	Year int
	Mon  time.Month
}

// ParseMonth parses "YYYY-MM" or "YYYY-MM-DD" into a Month.
func ParseMonth(s string) (Month, error) {
	var t time.Time
	var err error
	switch len(s) {
	case 7:
		t, err = time.Parse("2006-01", s)
	case 10:
		t, err = time.Parse("2006-01-02", s)
	default:
		err = fmt.Errorf("unrecognized month format %q", s)
	}
	if err != nil {
		return Month{}, err
	}
	return Month{Year: t.Year(), Mon: t.Month()}, nil
}

// MonthOf truncates a time to its calendar month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Mon: t.Month()}
}

// Index maps the month onto a monotonic integer scale, so that
// consecutive months differ by exactly 1.
func (m Month) Index() int { return m.Year*12 + int(m.Mon) - 1 }

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool { return m.Index() < other.Index() }

// After reports whether m is strictly later than other.
func (m Month) After(other Month) bool { return m.Index() > other.Index() }

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Mon, 1, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool { return m.Year == 0 && m.Mon == 0 }

func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Mon)) }

// MarshalJSON renders the month as its "YYYY-MM" string form.
func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// ParseDate8 parses the 8-digit YYYYMMDD date encoding used by the
// exclusion source. The all-zero string is a sentinel for "no date";
// it and anything unparseable report ok=false rather than an error,
// since sentinel handling is a normalization rule, not an error path.
func ParseDate8(s string) (time.Time, bool) {
	if len(s) != 8 || s == "00000000" {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
