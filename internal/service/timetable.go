package service

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	lecturerMarker  = "GV "
	scheduleDivider = "<hr>"
	periodMarker    = "tiết"
	scheduleCutoff  = ",GV"
)

// ExtractLecturer returns the name following the first "GV " marker of a
// timetable string, up to the next marker or comma. Missing marker yields "".
func ExtractLecturer(tkb string) string {
	tkb = norm.NFC.String(tkb)
	_, after, found := strings.Cut(tkb, lecturerMarker)
	if !found {
		return ""
	}
	if next := strings.Index(after, lecturerMarker); next >= 0 {
		after = after[:next]
	}
	name, _, _ := strings.Cut(after, ",")
	return strings.TrimSpace(name)
}

// ExtractSchedule returns the first timetable block (before "<hr>") when it
// names class periods, cut before the lecturer part. Otherwise "".
func ExtractSchedule(tkb string) string {
	if tkb == "" {
		return ""
	}
	tkb = norm.NFC.String(tkb)
	first, _, _ := strings.Cut(tkb, scheduleDivider)
	if !strings.Contains(first, periodMarker) {
		return ""
	}
	segment, _, _ := strings.Cut(first, scheduleCutoff)
	return segment
}

// ParseCredits reads a credit count. Only digit strings and non-negative
// integral JSON numbers count; anything else is 0.
func ParseCredits(v interface{}) int {
	switch value := v.(type) {
	case string:
		if value == "" || strings.IndexFunc(value, notDigit) >= 0 {
			return 0
		}
		n, ok := atoi(value)
		if !ok {
			return 0
		}
		return n
	case json.Number:
		n, ok := intValue(value)
		if !ok || n < 0 {
			return 0
		}
		return n
	default:
		return 0
	}
}

func notDigit(r rune) bool {
	return r < '0' || r > '9'
}
