package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarkCompleteStartsStreak(t *testing.T) {
	today := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	days, streak, changed := MarkComplete(nil, 0, today)
	assert.True(t, changed)
	assert.Equal(t, []string{"2025-03-10"}, days)
	assert.Equal(t, 1, streak)
}

func TestMarkCompleteExtendsStreak(t *testing.T) {
	today := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	days, streak, changed := MarkComplete([]string{"2025-03-09"}, 4, today)
	assert.True(t, changed)
	assert.Equal(t, []string{"2025-03-09", "2025-03-10"}, days)
	assert.Equal(t, 5, streak)
}

func TestMarkCompleteRestartsAfterGap(t *testing.T) {
	today := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	days, streak, changed := MarkComplete([]string{"2025-03-01"}, 7, today)
	assert.True(t, changed)
	assert.Equal(t, []string{"2025-03-01", "2025-03-10"}, days)
	assert.Equal(t, 1, streak)
}

func TestMarkCompleteSameDayIsNoop(t *testing.T) {
	today := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)

	days, streak, changed := MarkComplete([]string{"2025-03-10"}, 3, today)
	assert.False(t, changed)
	assert.Equal(t, []string{"2025-03-10"}, days)
	assert.Equal(t, 3, streak)
}

func TestMarkCompleteCapsHistory(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	var days []string
	for i := 0; i < historyLimit; i++ {
		days = append(days, start.AddDate(0, 0, i).Format(DateLayout))
	}

	today := start.AddDate(0, 0, historyLimit)
	days, streak, changed := MarkComplete(days, historyLimit, today)
	assert.True(t, changed)
	assert.Len(t, days, historyLimit)
	assert.Equal(t, today.Format(DateLayout), days[len(days)-1])
	assert.Equal(t, start.AddDate(0, 0, 1).Format(DateLayout), days[0])
	assert.Equal(t, historyLimit+1, streak)
}
