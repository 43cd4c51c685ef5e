// Package bucketing derives the calendar month and week keys that the
// aggregation engine groups orders by.
//
// Both keys read the calendar date in the time value's own location: a
// buy date parsed as 2024-01-31T23:30:00-05:00 is a January order even
// though the same instant is February 1 in UTC. Callers that want UTC
// buckets must convert before bucketing.
package bucketing

import (
	"time"

	"order-ledger/internal/domain"
)

const hoursPerDay = 24

// MonthKey returns the zero-based calendar month (0 = January) of t.
func MonthKey(t time.Time) int {
	return int(t.Month()) - 1
}

// WeekKeyOf returns the week bucket of t.
//
// The calendar date of t is moved to UTC midnight, the day offset from
// January 1 of that year is taken, and week = ceil((offset+1)/7). This is
// deliberately not ISO-8601 week numbering: week 1 always starts on
// January 1 and the last days of a year fall into week 53.
func WeekKeyOf(t time.Time) domain.WeekKey {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	offset := int(day.Sub(yearStart).Hours()) / hoursPerDay

	return domain.WeekKey{
		Year: day.Year(),
		Week: offset/7 + 1,
	}
}
