// Package streak implements the daily reading-goal streak rules.
package streak

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// DateLayout is the calendar-day format completed days are stored in.
const DateLayout = "2006-01-02"

// historyLimit caps how many completed days are retained.
const historyLimit = 90

// MarkComplete records today as completed and returns the updated day list
// and streak. Marking a day that is already recorded changes nothing. The
// streak extends only when yesterday was completed, otherwise it restarts
// at 1. History beyond the retention window is dropped, oldest first.
func MarkComplete(days []string, streak int, today time.Time) ([]string, int, bool) {
	date := today.Format(DateLayout)
	completed := mapset.NewThreadUnsafeSet(days...)
	if completed.Contains(date) {
		return days, streak, false
	}

	yesterday := today.AddDate(0, 0, -1).Format(DateLayout)
	if completed.Contains(yesterday) {
		streak++
	} else {
		streak = 1
	}

	days = append(days, date)
	if len(days) > historyLimit {
		days = days[len(days)-historyLimit:]
	}
	return days, streak, true
}
