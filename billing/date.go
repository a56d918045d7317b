package billing

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granular calendar point (all engine dates are day-granular)
// =============================================================================

// Date is a calendar day in UTC. Runs, fee schedules, and billing periods
// never need finer granularity than a day; wall-clock times live in HHMM
// tokens (see timecode.go) and are combined with a Date only on demand.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary timestamp to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.t.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.t.AddDate(0, n, 0)) }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) MonthOfYear() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }
func (d Date) Time() time.Time   { return d.t }

// MonthOf returns the billing-month key for the calendar month containing d.
func (d Date) MonthOf() Month { return Month{Year: d.t.Year(), Month: d.t.Month()} }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// =============================================================================
// MONTH - Month-granular key used to version monthly configs and invoices
// =============================================================================

// Month identifies one calendar month. It is the version key for
// RouteMonthlyConfig records and the billing-period key for invoices,
// payroll records, and manual overrides.
type Month struct {
	Year  int
	Month time.Month
}

func NewMonth(year int, month time.Month) Month {
	return Month{Year: year, Month: month}
}

// ParseMonth parses "2006-01".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// First returns the first day of the month.
func (m Month) First() Date { return NewDate(m.Year, m.Month, 1) }

// Last returns the last day of the month.
func (m Month) Last() Date { return m.Next().First().AddDays(-1) }

func (m Month) Next() Month     { return m.First().AddMonths(1).MonthOf() }
func (m Month) Previous() Month { return m.First().AddMonths(-1).MonthOf() }

// Contains reports whether d falls inside the month.
func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year && d.MonthOfYear() == m.Month
}

func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }

func (m Month) String() string { return m.First().Time().Format("2006-01") }
