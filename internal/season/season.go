// Package season maps calendar dates onto club seasons. A season runs from
// August 1 to July 31 and is labelled "YYYY-YYYY" after the years it spans.
package season

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// StartMonth is the first month of a season.
const StartMonth = time.August

// ParseDate reads the local calendar date of an ISO-8601 date or timestamp.
// Only the YYYY-MM-DD prefix is used, so a stored "2024-07-31T23:30:00+02:00"
// stays on July 31 instead of shifting to another day in UTC.
func ParseDate(value string) (time.Time, error) {
	if len(value) < len(dateLayout) {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	d, err := time.Parse(dateLayout, value[:len(dateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return d, nil
}

// StartYear returns the calendar year in which the season containing d began.
func StartYear(d time.Time) int {
	if d.Month() >= StartMonth {
		return d.Year()
	}
	return d.Year() - 1
}

// Label formats the season starting in startYear.
func Label(startYear int) string {
	return fmt.Sprintf("%d-%d", startYear, startYear+1)
}

// Of returns the season label of an ISO date.
func Of(date string) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return Label(StartYear(d)), nil
}

// ForTime returns the season label of t's calendar date in t's location.
func ForTime(t time.Time) string {
	return Label(StartYear(t))
}

// Bounds returns the first and the last calendar day of a season label.
func Bounds(label string) (start, end time.Time, err error) {
	startYear, err := parseLabel(label)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = time.Date(startYear, StartMonth, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(startYear+1, time.July, 31, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}

// Previous returns the label of the season before label.
func Previous(label string) (string, error) {
	startYear, err := parseLabel(label)
	if err != nil {
		return "", err
	}
	return Label(startYear - 1), nil
}

func parseLabel(label string) (int, error) {
	from, to, ok := strings.Cut(label, "-")
	if !ok {
		return 0, fmt.Errorf("invalid season %q", label)
	}
	startYear, err := strconv.Atoi(from)
	if err != nil {
		return 0, fmt.Errorf("invalid season %q: %w", label, err)
	}
	endYear, err := strconv.Atoi(to)
	if err != nil || endYear != startYear+1 {
		return 0, fmt.Errorf("invalid season %q", label)
	}
	return startYear, nil
}
