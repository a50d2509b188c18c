// Package period maps calendar dates onto a group's accounting periods.
//
// A period for (year, month) runs from the day after the previous month's
// closing day through the closing day of month itself, both inclusive.
// Closing days are restricted to 1..28 so every month has one.
package period

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

const (
	MinClosingDay = 1
	MaxClosingDay = 28
)

type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (ym YearMonth) Label() string {
	return Label(ym.Year, ym.Month)
}

func (ym YearMonth) Next() YearMonth {
	if ym.Month == 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

func (ym YearMonth) Prev() YearMonth {
	if ym.Month == 1 {
		return YearMonth{Year: ym.Year - 1, Month: 12}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// Period is an inclusive calendar date range. Both bounds are midnight UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

// Compute returns the period owned by (year, month) for the given closing day.
// time.Date normalizes month 0 into December of the previous year and day 29
// of a short February into March 1st.
func Compute(closingDay, year, month int) Period {
	end := time.Date(year, time.Month(month), closingDay, 0, 0, 0, 0, time.UTC)
	start := time.Date(year, time.Month(month-1), closingDay+1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: end}
}

// ForDate returns the (year, month) whose period contains date.
func ForDate(date time.Time, closingDay int) YearMonth {
	ym := YearMonth{Year: date.Year(), Month: int(date.Month())}
	if date.Day() > closingDay {
		return ym.Next()
	}
	return ym
}

func Current(now time.Time, closingDay int) YearMonth {
	return ForDate(now, closingDay)
}

// ForDateString is ForDate for a YYYY-MM-DD string.
func ForDateString(date string, closingDay int) (YearMonth, error) {
	d, err := ParseDate(date)
	if err != nil {
		return YearMonth{}, err
	}
	return ForDate(d, closingDay), nil
}

func (p Period) Contains(date time.Time) bool {
	d := Normalize(date)
	return !d.Before(p.Start) && !d.After(p.End)
}

func (p Period) StartString() string {
	return p.Start.Format(DateLayout)
}

func (p Period) EndString() string {
	return p.End.Format(DateLayout)
}

func (p Period) String() string {
	return p.StartString() + ".." + p.EndString()
}

func Label(year, month int) string {
	return fmt.Sprintf("%d年%d月分", year, month)
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}

// Normalize drops the clock part of t, keeping its calendar date.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
