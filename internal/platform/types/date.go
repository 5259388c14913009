package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Date is a calendar date without time of day. The zero value is NULL in SQL
// and null in JSON.
type Date struct {
	d civil.Date
}

// NewDate normalizes out-of-range values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{d: civil.DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return Date{d: civil.DateOf(t)}
}

func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		// Accept full timestamps as well; only the date part is kept.
		ts, tsErr := time.Parse(time.RFC3339, s)
		if tsErr != nil {
			return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
		}
		return DateOf(ts), nil
	}
	return Date{d: d}, nil
}

func (d Date) IsZero() bool { return d.d == civil.Date{} }

// Time is midnight UTC of d, or the zero time.
func (d Date) Time() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	return d.d.In(time.UTC)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.d.String()
}

func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}
	return Date{d: d.d.AddDays(n)}
}

// DaysUntil returns the whole days from d to other; negative when other is earlier.
func (d Date) DaysUntil(other Date) int { return other.d.DaysSince(d.d) }

func (d Date) Before(other Date) bool { return d.d.Before(other.d) }

func (d Date) After(other Date) bool { return d.d.After(other.d) }

func (d Date) Equal(other Date) bool { return d.d == other.d }

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time(), nil
}

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		return d.parseInto(string(v))
	case string:
		return d.parseInto(v)
	default:
		return fmt.Errorf("cannot convert %T to Date", value)
	}
}

func (d *Date) parseInto(s string) error {
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	return d.parseInto(s)
}
