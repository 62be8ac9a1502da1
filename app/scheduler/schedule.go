// Package scheduler
package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"github.com/robfig/cron/v3"
)

// timeOfDayLayout is the wall-clock format accepted in schedule configs
const timeOfDayLayout = "15:04"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextRunAt computes the next eligible run time strictly after now for the
// given schedule. It is a pure function; the dispatcher calls it after every
// run to advance next_run_at.
//
// Monthly schedules clamp the anchor day into shorter months: a job anchored
// on day 31 runs on Apr 30 and on Feb 28 (29 in leap years) rather than
// overflowing into the following month.
func NextRunAt(scheduleType models.ScheduleType, cfg models.ScheduleConfig, now time.Time) (time.Time, error) {
	now = now.UTC()

	switch scheduleType {
	case models.ScheduleTypeHourly:
		return now.Add(time.Hour), nil

	case models.ScheduleTypeDaily:
		if cfg.TimeOfDay != "" {
			return nextAtTimeOfDay(now, cfg.TimeOfDay)
		}
		return now.Add(24 * time.Hour), nil

	case models.ScheduleTypeTwiceDaily:
		return now.Add(12 * time.Hour), nil

	case models.ScheduleTypeWeekly:
		return now.Add(7 * 24 * time.Hour), nil

	case models.ScheduleTypeMonthly:
		return nextMonthly(now, cfg.DayOfMonth), nil

	case models.ScheduleTypeCustom:
		return nextCustom(now, cfg)

	default:
		return time.Time{}, fmt.Errorf("unknown schedule type: %s", scheduleType)
	}
}

// nextAtTimeOfDay returns the next occurrence of the given wall-clock time,
// today if still ahead, otherwise tomorrow
func nextAtTimeOfDay(now time.Time, timeOfDay string) (time.Time, error) {
	tod, err := time.Parse(timeOfDayLayout, timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time_of_day %q: %w", timeOfDay, err)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), tod.Hour(), tod.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}

// nextMonthly advances one calendar month, anchored on dayOfMonth when
// given (otherwise on the current day), clamping into shorter months
func nextMonthly(now time.Time, dayOfMonth int) time.Time {
	anchor := now.Day()
	if dayOfMonth >= 1 && dayOfMonth <= 31 {
		anchor = dayOfMonth
	}

	year, month := now.Year(), now.Month()+1
	if month > time.December {
		month = time.January
		year++
	}

	day := utils.ClampDayToMonth(year, month, anchor)
	return time.Date(year, month, day, now.Hour(), now.Minute(), now.Second(), 0, now.Location())
}

// nextCustom interprets the schedule entirely from its config: a cron
// expression, a fixed interval in minutes, or a list of daily times
func nextCustom(now time.Time, cfg models.ScheduleConfig) (time.Time, error) {
	if cfg.Cron != "" {
		sched, err := cronParser.Parse(cfg.Cron)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", cfg.Cron, err)
		}
		return sched.Next(now), nil
	}

	if cfg.IntervalMinutes > 0 {
		return now.Add(time.Duration(cfg.IntervalMinutes) * time.Minute), nil
	}

	if len(cfg.Times) > 0 {
		return nextFromTimes(now, cfg.Times)
	}

	return time.Time{}, fmt.Errorf("custom schedule requires cron, interval_minutes, or times in schedule_config")
}

// nextFromTimes returns the earliest listed time still ahead today, or the
// earliest listed time tomorrow
func nextFromTimes(now time.Time, times []string) (time.Time, error) {
	candidates := make([]time.Time, 0, len(times))
	for _, raw := range times {
		tod, err := time.Parse(timeOfDayLayout, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q in schedule_config: %w", raw, err)
		}
		candidates = append(candidates,
			time.Date(now.Year(), now.Month(), now.Day(), tod.Hour(), tod.Minute(), 0, 0, now.Location()))
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })

	for _, c := range candidates {
		if c.After(now) {
			return c, nil
		}
	}
	return candidates[0].AddDate(0, 0, 1), nil
}
