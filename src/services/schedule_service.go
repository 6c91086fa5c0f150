package services

import (
	"time"

	"reporter/src/models"
)

// scanHorizonDays bounds the per-trigger search. Any weekday/hour/minute
// rule matches within eight days of the reference instant.
const scanHorizonDays = 8

// NextRun computes the earliest instant strictly after `after` at which
// any trigger of the schedule fires. The second return is false for an
// empty schedule, which callers must treat as "never due". The function
// is pure: all time context comes from its arguments.
func NextRun(schedule []models.Trigger, after time.Time, loc *time.Location) (time.Time, bool) {
	if len(schedule) == 0 {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	var earliest time.Time
	for _, trigger := range schedule {
		candidate := nextTriggerTime(trigger, after, loc)
		if candidate.IsZero() {
			continue
		}
		if earliest.IsZero() || candidate.Before(earliest) {
			earliest = candidate
		}
	}
	if earliest.IsZero() {
		return time.Time{}, false
	}
	return earliest, true
}

func nextTriggerTime(trigger models.Trigger, after time.Time, loc *time.Location) time.Time {
	base := after.In(loc)
	for offset := 0; offset <= scanHorizonDays; offset++ {
		candidate := time.Date(base.Year(), base.Month(), base.Day()+offset,
			trigger.Hour, trigger.Minute, 0, 0, loc)
		if !candidate.After(after) {
			continue
		}
		if trigger.Weekday != nil && !weekdayMatches(*trigger.Weekday, candidate.Weekday()) {
			continue
		}
		return candidate
	}
	return time.Time{}
}

// weekdayMatches maps the schedule convention (1..7 = Monday..Sunday)
// onto Go's week (Sunday = 0).
func weekdayMatches(scheduleDay int, actual time.Weekday) bool {
	return time.Weekday(scheduleDay%7) == actual
}

// IsDue reports whether a report should execute now. An enabled report
// with a schedule but no computed next run is due immediately: its
// first run happens on the next sweep.
func IsDue(report *models.ScheduledReport, now time.Time) bool {
	if !report.Enabled || len(report.Schedule) == 0 {
		return false
	}
	if report.NextRun == nil {
		return true
	}
	return !report.NextRun.After(now)
}

// DueReports filters the stored set down to reports due at `now`.
// It has no side effects, so two calls without an intervening sweep
// return the same set.
func DueReports(reports []*models.ScheduledReport, now time.Time) []*models.ScheduledReport {
	var due []*models.ScheduledReport
	for _, report := range reports {
		if IsDue(report, now) {
			due = append(due, report)
		}
	}
	return due
}
