package scheduler

import (
	"testing"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRunAtHourly(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	next, err := NextRunAt(models.ScheduleTypeHourly, models.ScheduleConfig{}, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), next)
}

func TestNextRunAtDaily(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	t.Run("WithoutTimeOfDay", func(t *testing.T) {
		next, err := NextRunAt(models.ScheduleTypeDaily, models.ScheduleConfig{}, now)
		require.NoError(t, err)
		assert.Equal(t, now.Add(24*time.Hour), next)
	})

	t.Run("TimeOfDayStillAheadToday", func(t *testing.T) {
		next, err := NextRunAt(models.ScheduleTypeDaily, models.ScheduleConfig{TimeOfDay: "18:00"}, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), next)
	})

	t.Run("TimeOfDayAlreadyPassed", func(t *testing.T) {
		next, err := NextRunAt(models.ScheduleTypeDaily, models.ScheduleConfig{TimeOfDay: "06:00"}, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 11, 6, 0, 0, 0, time.UTC), next)
	})

	t.Run("TimeOfDayExactlyNowRollsToTomorrow", func(t *testing.T) {
		next, err := NextRunAt(models.ScheduleTypeDaily, models.ScheduleConfig{TimeOfDay: "14:30"}, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 11, 14, 30, 0, 0, time.UTC), next)
	})

	t.Run("InvalidTimeOfDay", func(t *testing.T) {
		_, err := NextRunAt(models.ScheduleTypeDaily, models.ScheduleConfig{TimeOfDay: "25:99"}, now)
		assert.Error(t, err)
	})
}

func TestNextRunAtTwiceDaily(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	next, err := NextRunAt(models.ScheduleTypeTwiceDaily, models.ScheduleConfig{}, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(12*time.Hour), next)
}

func TestNextRunAtWeekly(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	next, err := NextRunAt(models.ScheduleTypeWeekly, models.ScheduleConfig{}, now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 7), next)
}

func TestNextRunAtMonthly(t *testing.T) {
	t.Run("SimpleAdvance", func(t *testing.T) {
		now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
		next, err := NextRunAt(models.ScheduleTypeMonthly, models.ScheduleConfig{}, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("ClampsIntoFebruary", func(t *testing.T) {
		now := time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)
		next, err := NextRunAt(models.ScheduleTypeMonthly, models.ScheduleConfig{}, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("ClampsIntoLeapFebruary", func(t *testing.T) {
		now := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
		next, err := NextRunAt(models.ScheduleTypeMonthly, models.ScheduleConfig{}, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("AnchorDayOverride", func(t *testing.T) {
		now := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
		next, err := NextRunAt(models.ScheduleTypeMonthly, models.ScheduleConfig{DayOfMonth: 31}, now)
		require.NoError(t, err)
		// April has 30 days; the anchor clamps rather than overflowing into May
		assert.Equal(t, time.Date(2025, 4, 30, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("DecemberWrapsToJanuary", func(t *testing.T) {
		now := time.Date(2025, 12, 20, 9, 0, 0, 0, time.UTC)
		next, err := NextRunAt(models.ScheduleTypeMonthly, models.ScheduleConfig{}, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC), next)
	})
}

func TestNextRunAtCustom(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	t.Run("CronExpression", func(t *testing.T) {
		// Every day at 15:00
		next, err := NextRunAt(models.ScheduleTypeCustom, models.ScheduleConfig{Cron: "0 15 * * *"}, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), next)
	})

	t.Run("InvalidCron", func(t *testing.T) {
		_, err := NextRunAt(models.ScheduleTypeCustom, models.ScheduleConfig{Cron: "not a cron"}, now)
		assert.Error(t, err)
	})

	t.Run("IntervalMinutes", func(t *testing.T) {
		next, err := NextRunAt(models.ScheduleTypeCustom, models.ScheduleConfig{IntervalMinutes: 45}, now)
		require.NoError(t, err)
		assert.Equal(t, now.Add(45*time.Minute), next)
	})

	t.Run("TimesPicksEarliestAhead", func(t *testing.T) {
		cfg := models.ScheduleConfig{Times: []string{"09:00", "16:00", "12:00"}}
		next, err := NextRunAt(models.ScheduleTypeCustom, cfg, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC), next)
	})

	t.Run("TimesAllPassedRollsToTomorrow", func(t *testing.T) {
		cfg := models.ScheduleConfig{Times: []string{"06:00", "09:00"}}
		next, err := NextRunAt(models.ScheduleTypeCustom, cfg, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 11, 6, 0, 0, 0, time.UTC), next)
	})

	t.Run("InvalidTimeEntry", func(t *testing.T) {
		_, err := NextRunAt(models.ScheduleTypeCustom, models.ScheduleConfig{Times: []string{"noon"}}, now)
		assert.Error(t, err)
	})

	t.Run("EmptyConfigRejected", func(t *testing.T) {
		_, err := NextRunAt(models.ScheduleTypeCustom, models.ScheduleConfig{}, now)
		assert.Error(t, err)
	})
}

func TestNextRunAtUnknownType(t *testing.T) {
	_, err := NextRunAt(models.ScheduleType("fortnightly"), models.ScheduleConfig{}, time.Now())
	assert.Error(t, err)
}

// Every supported schedule must always land strictly in the future;
// otherwise a completed run would immediately be due again.
func TestNextRunAtStrictlyFuture(t *testing.T) {
	instants := []time.Time{
		time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 23, 30, 0, 0, time.UTC),
	}
	cases := []struct {
		scheduleType models.ScheduleType
		cfg          models.ScheduleConfig
	}{
		{models.ScheduleTypeHourly, models.ScheduleConfig{}},
		{models.ScheduleTypeDaily, models.ScheduleConfig{}},
		{models.ScheduleTypeDaily, models.ScheduleConfig{TimeOfDay: "00:00"}},
		{models.ScheduleTypeTwiceDaily, models.ScheduleConfig{}},
		{models.ScheduleTypeWeekly, models.ScheduleConfig{}},
		{models.ScheduleTypeMonthly, models.ScheduleConfig{}},
		{models.ScheduleTypeMonthly, models.ScheduleConfig{DayOfMonth: 31}},
		{models.ScheduleTypeCustom, models.ScheduleConfig{IntervalMinutes: 1}},
		{models.ScheduleTypeCustom, models.ScheduleConfig{Times: []string{"00:00"}}},
		{models.ScheduleTypeCustom, models.ScheduleConfig{Cron: "*/5 * * * *"}},
	}

	for _, now := range instants {
		for _, tc := range cases {
			next, err := NextRunAt(tc.scheduleType, tc.cfg, now)
			require.NoError(t, err, "type=%s now=%s", tc.scheduleType, now)
			assert.True(t, next.After(now), "type=%s cfg=%+v now=%s next=%s", tc.scheduleType, tc.cfg, now, next)
		}
	}
}
