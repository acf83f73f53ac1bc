package core

import (
	"errors"
	"strings"
	"time"
)

// dateLayout is the canonical calendar-date representation used
// everywhere after normalization.
const dateLayout = "2006-01-02"

// Date is a day-granularity calendar date. The zero value is invalid.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts the source formats seen in bank exports: compact
// YYYYMMDD, locale dd/mm/yyyy, and the canonical YYYY-MM-DD. Eight-digit
// strings that do not name a real calendar day (e.g. 20240230) fail with
// a FormatError instead of rolling over to the next month.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, &FormatError{Field: "date", Value: s}
	}

	layouts := []string{dateLayout, "02/01/2006"}
	if len(s) == 8 && isDigits(s) {
		layouts = []string{"20060102"}
	}

	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return Date{Time: t.UTC()}, nil
	}
	return Date{}, &FormatError{Field: "date", Value: s}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// String returns the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// Month1 returns the first day of the date's month, used for monthly
// partitioning.
func (d Date) Month1() Date {
	return NewDate(d.Year(), int(d.Month()), 1)
}

// Validate rejects the zero date.
func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Before and After compare at day granularity.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
