package models

import "strings"

// Weekdays is the school week in order. Index is the grouping key.
var Weekdays = [5]string{
	"Maanantai",
	"Tiistai",
	"Keskiviikko",
	"Torstai",
	"Perjantai",
}

var weekdayCodes = [5]string{"ma", "ti", "ke", "to", "pe"}

// BreakStarts are the minutes-since-midnight at which a recognised break begins.
var BreakStarts = [6]int{
	525, // 8:45
	615, // 10:15
	660, // 11:00
	705, // 11:45
	780, // 13:00
	840, // 14:00
}

// WeekdayIndex returns the position of name in Weekdays.
func WeekdayIndex(name string) (int, bool) {
	for i, w := range Weekdays {
		if w == name {
			return i, true
		}
	}
	return -1, false
}

// ParseWeekday accepts a two-letter code ("ma") or a full name, ignoring case.
func ParseWeekday(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := range Weekdays {
		if s == weekdayCodes[i] || s == strings.ToLower(Weekdays[i]) {
			return i, true
		}
	}
	return -1, false
}

// BreakIndex returns the position of start in BreakStarts.
func BreakIndex(start int) (int, bool) {
	for i, b := range BreakStarts {
		if b == start {
			return i, true
		}
	}
	return -1, false
}
