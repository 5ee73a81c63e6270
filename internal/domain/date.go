package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	customError "github.com/segyhp/dealer-billing/pkg/errors"
	"github.com/segyhp/dealer-billing/pkg/utils"
)

// Date is a calendar day with no time-of-day or location. Due dates, payment
// dates and reference dates are all Dates so comparisons are day-granular.
type Date struct {
	civil.Date
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{civil.Date{Year: year, Month: month, Day: day}}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, customError.WrapInvalidDate(s, err)
	}
	return Date{d}, nil
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date{civil.DateOf(t)}
}

func (d Date) IsZero() bool {
	return d.Date == civil.Date{}
}

// Validate fails with ErrInvalidDate for the zero Date or an impossible day.
func (d Date) Validate() error {
	if !d.Date.IsValid() {
		return customError.WrapInvalidDate(d.String(), nil)
	}
	return nil
}

// AddMonths moves d by n calendar months. The day is clamped to the last day
// of the target month, so Jan 31 + 1 month is Feb 28 or Feb 29.
func (d Date) AddMonths(n int) Date {
	first := time.Date(d.Year, d.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := d.Day
	if last := utils.DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

func (d Date) AddDays(n int) Date {
	return Date{d.Date.AddDays(n)}
}

// DaysSince returns the signed number of days from s to d.
func (d Date) DaysSince(s Date) int {
	return d.Date.DaysSince(s.Date)
}

func (d Date) Before(o Date) bool {
	return d.Date.Before(o.Date)
}

func (d Date) After(o Date) bool {
	return d.Date.After(o.Date)
}

func (d *Date) UnmarshalText(data []byte) error {
	parsed, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner. Postgres DATE columns arrive as time.Time,
// text columns as string or []byte.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case nil:
		return customError.WrapInvalidDate("NULL", nil)
	default:
		return customError.WrapInvalidDate(fmt.Sprintf("%v", v), fmt.Errorf("unsupported type %T", v))
	}
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d.String(), nil
}
