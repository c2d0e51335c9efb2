package cadence

import (
	"math"
	"time"

	"github.com/vicu/vicu-api/internal/model"
)

// Default goal windows in days when the user gives no deadline.
const (
	validationWindowDays = 10
	teamWindowDays       = 21
	clientsWindowDays    = 14
	ritualWindowDays     = 28
	defaultWindowDays    = 14
	minimumLeadDays      = 7
)

// Day truncates t to its calendar date in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func windowDays(experimentType, surfaceType string) int {
	if surfaceType == model.SurfaceRitual {
		return ritualWindowDays
	}
	switch experimentType {
	case model.ExperimentTypeValidacion:
		return validationWindowDays
	case model.ExperimentTypeEquipo:
		return teamWindowDays
	case model.ExperimentTypeClientes:
		return clientsWindowDays
	default:
		return defaultWindowDays
	}
}

// SuggestedDeadline is the end date proposed for a goal created today.
func SuggestedDeadline(today time.Time, experimentType, surfaceType string) time.Time {
	return Day(today).AddDate(0, 0, windowDays(experimentType, surfaceType))
}

// EndDate resolves the last schedulable day. A deadline that is not strictly
// after today is replaced by today+7.
func EndDate(today time.Time, deadline *time.Time, experimentType, surfaceType string) time.Time {
	start := Day(today)
	var end time.Time
	if deadline != nil {
		end = Day(deadline.In(today.Location()))
	} else {
		end = SuggestedDeadline(today, experimentType, surfaceType)
	}
	if !end.After(start) {
		end = start.AddDate(0, 0, minimumLeadDays)
	}
	return end
}

// SuggestedDueDates spreads n due dates between today and the resolved end
// date on a square-root curve, so early actions land close together.
func SuggestedDueDates(today time.Time, n int, deadline *time.Time, experimentType, surfaceType string) []time.Time {
	if n <= 0 {
		return []time.Time{}
	}

	start := Day(today)
	end := EndDate(today, deadline, experimentType, surfaceType)
	totalDays := daysBetween(start, end)

	dates := make([]time.Time, n)
	for i := 0; i < n; i++ {
		progress := 0.0
		if n > 1 {
			progress = math.Sqrt(float64(i) / float64(n-1))
		}
		offset := int(math.Round(progress * float64(totalDays)))
		dates[i] = start.AddDate(0, 0, offset)
	}
	return dates
}

func daysBetween(start, end time.Time) int {
	days := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}
