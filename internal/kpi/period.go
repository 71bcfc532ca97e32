package kpi

import (
	"fmt"
	"math"
	"time"

	"github.com/marchalgreen/Rundeklar-sub002/internal/attendance"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/season"
)

const dateLayout = "2006-01-02"

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// CurrentPeriod resolves a request into the period it covers, relative to now.
func CurrentPeriod(req Request, now time.Time) (Period, error) {
	today := startOfDay(now)
	switch req.Type {
	case PeriodSeason, "":
		label := req.Season
		if label == "" {
			label = season.ForTime(today)
		}
		start, end, err := season.Bounds(label)
		if err != nil {
			return Period{}, &club.ValidationError{Field: "season", Message: err.Error()}
		}
		to := endOfDay(end)
		// The running season ends today.
		if today.Before(end) && !today.Before(start) {
			to = endOfDay(today)
		}
		return Period{Type: PeriodSeason, From: start, To: to, Label: "season " + label}, nil
	case PeriodLast7:
		return Period{Type: PeriodLast7, From: today.AddDate(0, 0, -6), To: endOfDay(today), Label: "last 7 days"}, nil
	case PeriodLast30:
		return Period{Type: PeriodLast30, From: today.AddDate(0, 0, -29), To: endOfDay(today), Label: "last 30 days"}, nil
	case PeriodCustom:
		from, err := season.ParseDate(req.From)
		if err != nil {
			return Period{}, &club.ValidationError{Field: "from", Message: err.Error()}
		}
		to, err := season.ParseDate(req.To)
		if err != nil {
			return Period{}, &club.ValidationError{Field: "to", Message: err.Error()}
		}
		if to.Before(from) {
			return Period{}, &club.ValidationError{Field: "to", Message: "must not be before from"}
		}
		label := fmt.Sprintf("%s to %s", from.Format(dateLayout), to.Format(dateLayout))
		return Period{Type: PeriodCustom, From: from, To: endOfDay(to), Label: label}, nil
	}
	return Period{}, &club.ValidationError{Field: "period", Message: fmt.Sprintf("unknown period type %q", req.Type)}
}

// ComparisonPeriod derives the period p is compared against. A season
// period moves back one year and never passes the previous season's last
// day. Other periods use the window of equal length right before p.
func ComparisonPeriod(p Period) Period {
	if p.Type == PeriodSeason {
		from := p.From.AddDate(-1, 0, 0)
		to := yearEarlier(p.To)
		seasonEnd := endOfDay(time.Date(season.StartYear(from)+1, time.July, 31, 0, 0, 0, 0, time.UTC))
		if to.After(seasonEnd) {
			to = seasonEnd
		}
		return Period{Type: p.Type, From: from, To: to, Label: "previous season"}
	}

	duration := p.To.Sub(p.From)
	to := p.From.Add(-time.Millisecond)
	from := to.Add(-duration)
	return Period{Type: p.Type, From: from, To: to, Label: comparisonLabel(p.Type, duration)}
}

// yearEarlier is t one year back. A day the earlier month lacks (Feb 29)
// becomes that month's last day instead of rolling into the next month.
func yearEarlier(t time.Time) time.Time {
	y, m, d := t.Date()
	if last := time.Date(y-1, m+1, 0, 0, 0, 0, 0, time.UTC).Day(); d > last {
		d = last
	}
	return time.Date(y-1, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func comparisonLabel(t PeriodType, duration time.Duration) string {
	switch t {
	case PeriodLast7:
		return "previous 7 days"
	case PeriodLast30:
		return "previous 30 days"
	}
	days := int(math.Round(duration.Hours() / 24))
	switch {
	case days >= 60:
		return fmt.Sprintf("previous %d months", days/30)
	case days <= 1:
		return "previous day"
	default:
		return fmt.Sprintf("previous %d days", days)
	}
}

// Filter returns the attendance filter covering p.
func (p Period) Filter(groups []string) attendance.Filter {
	return attendance.Filter{
		DateFrom: p.From.Format(dateLayout),
		DateTo:   p.To.Format(dateLayout),
		Groups:   groups,
	}
}
