package metatools

import (
	"time"
)

// TimestampLayout is the undelimited acquisition time format used in Sentinel-2
// directory names, e.g. 20180206T084129.
const TimestampLayout = "20060102T150405"

type Season string

const (
	Winter Season = "winter"
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
)

// Seasons lists the labels in calendar order starting with winter.
var Seasons = []Season{Winter, Spring, Summer, Fall}

// ClassifySeason maps a naive timestamp onto a northern-hemisphere season using
// fixed day boundaries (21 March, 21 June, 23 September).
func ClassifySeason(t time.Time) Season {
	month, day := t.Month(), t.Day()
	switch {
	case month == time.December || month <= time.February || (month == time.March && day < 21):
		return Winter
	case month <= time.May || (month == time.June && day < 21):
		return Spring
	case month <= time.August || (month == time.September && day < 23):
		return Summer
	default:
		return Fall
	}
}

// ParseTimestamp parses a YYYYMMDDThhmmss string. It rejects anything that is not
// exactly that shape rather than guessing.
func ParseTimestamp(s string) (time.Time, error) {
	if len(s) != len(TimestampLayout) {
		return time.Time{}, &ParseError{Input: s, Reason: "timestamp must be 15 characters"}
	}
	for i := 0; i < len(s); i++ {
		if i == 8 {
			if s[i] != 'T' {
				return time.Time{}, &ParseError{Input: s, Reason: "missing T separator"}
			}
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, &ParseError{Input: s, Reason: "non-digit in timestamp"}
		}
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, &ParseError{Input: s, Reason: err.Error()}
	}
	return t, nil
}

// SeasonOf parses s and classifies it.
func SeasonOf(s string) (Season, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return "", err
	}
	return ClassifySeason(t), nil
}
