package executor

import (
	"strings"
	"time"
)

const (
	DefaultTaskHour        = 9
	DefaultDurationMinutes = 60
	DefaultMissionDays     = 7
	DefaultMissionHour     = 23
	DefaultMissionMinute   = 59
)

var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006-01-02",
	"2006/01/02",
}

var clockLayouts = []string{
	"15:04",
	"15.04",
	"15h04",
	"3:04pm",
	"3:04 pm",
	"3pm",
	"3 pm",
	"15h",
}

// parseDate 解析日期；无法解析时返回 ok=false，由调用方使用默认值
// parseDate parses a date; ok=false lets the caller fall back to its default
func parseDate(s string, loc *time.Location) (year int, month time.Month, day int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, 0, false
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.Year(), t.Month(), t.Day(), true
		}
	}
	return 0, 0, 0, false
}

func parseClock(s string) (hour, minute int, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ".m.", "m")
	if s == "" {
		return 0, 0, false
	}
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

// resolveTime combines a date and a clock string, each falling back to the
// given default independently. Malformed values degrade silently.
func resolveTime(date, clock string, fallback time.Time) time.Time {
	loc := fallback.Location()
	y, m, d := fallback.Date()
	if py, pm, pd, ok := parseDate(date, loc); ok {
		y, m, d = py, pm, pd
	}
	hour, minute := fallback.Hour(), fallback.Minute()
	if ph, pm, ok := parseClock(clock); ok {
		hour, minute = ph, pm
	}
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}

func defaultTaskStart(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, DefaultTaskHour, 0, 0, 0, now.Location())
}

func defaultMissionDeadline(now time.Time) time.Time {
	y, m, d := now.AddDate(0, 0, DefaultMissionDays).Date()
	return time.Date(y, m, d, DefaultMissionHour, DefaultMissionMinute, 0, 0, now.Location())
}
