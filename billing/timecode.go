/*
timecode.go - Overflow-aware HHMM clock tokens

PURPOSE:
  Dispatch schedules record wall-clock times as 4-digit "HHMM" tokens in
  which the hour may run past 24: a run written as "2530" belongs
  operationally to its listed date but departs at 01:30 the next morning.
  The literal hour IS the encoding, so formatting must not normalize it
  except in the one display mode that spells out "next day".

TOKEN GRAMMAR:
  Exactly 4 decimal digits. Hour 00-48 inclusive, minute 00-59.
  Anything else is malformed and parses to (zero, false) - never clamped.

ORDERING:
  Comparison is by total minutes, so "2530" sorts after "2330". A token
  that fails to parse compares as a maximum sentinel; runs without a
  recorded departure therefore sort last within a day, which keeps run
  listings stable without special-casing absent times.

SEE ALSO:
  - period.go: uses the parsed hour to attribute past-midnight runs to
    the following billing month
*/
package billing

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// PARSED TIME
// =============================================================================

// ParsedTime is a decoded HHMM token. Hour keeps the literal (possibly
// overflowing) value; use NormalizedHour/DayOffset for calendar math.
type ParsedTime struct {
	Hour   int
	Minute int
}

const (
	maxTokenHour = 48

	// sentinelMinutes sorts after every valid token (48*60+59 = 2939).
	sentinelMinutes = (maxTokenHour + 1) * 60
)

// ParseClockToken decodes a 4-digit HHMM token. It returns false for
// malformed input: wrong length, non-digits, minute >= 60, or hour > 48.
func ParseClockToken(token string) (ParsedTime, bool) {
	if len(token) != 4 {
		return ParsedTime{}, false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return ParsedTime{}, false
		}
	}
	hour := int(token[0]-'0')*10 + int(token[1]-'0')
	minute := int(token[2]-'0')*10 + int(token[3]-'0')
	if hour > maxTokenHour || minute > 59 {
		return ParsedTime{}, false
	}
	return ParsedTime{Hour: hour, Minute: minute}, true
}

// NormalizedHour is the hour wrapped into 0-23.
func (p ParsedTime) NormalizedHour() int { return p.Hour % 24 }

// DayOffset is how many calendar days past the base date the time lands on.
func (p ParsedTime) DayOffset() int { return p.Hour / 24 }

// TotalMinutes is minutes since 00:00 of the base date, monotonic across
// overflowing and non-overflowing tokens.
func (p ParsedTime) TotalMinutes() int { return p.Hour*60 + p.Minute }

// CrossesMidnight reports whether the token encodes a past-midnight time.
func (p ParsedTime) CrossesMidnight() bool { return p.Hour >= 24 }

// Token re-encodes the parsed time as its 4-digit form.
func (p ParsedTime) Token() string { return fmt.Sprintf("%02d%02d", p.Hour, p.Minute) }

// On builds the concrete timestamp for the token relative to a base date:
// base + DayOffset days, at NormalizedHour:Minute UTC.
func (p ParsedTime) On(base Date) time.Time {
	d := base.AddDays(p.DayOffset())
	return time.Date(d.Year(), d.MonthOfYear(), d.Day(), p.NormalizedHour(), p.Minute, 0, 0, time.UTC)
}

// =============================================================================
// FORMATTING
// =============================================================================

// ClockFormat selects how a parsed token is rendered.
type ClockFormat int

const (
	// FormatClock renders the literal hour: "2530" -> "25:30".
	FormatClock ClockFormat = iota

	// FormatKanji renders the literal hour with Japanese unit suffixes:
	// "2530" -> "25時30分".
	FormatKanji

	// FormatDisplay renders past-midnight hours as next-day wall time:
	// "2530" -> "翌01:30". Hours below 24 render as FormatClock.
	FormatDisplay
)

// Format renders the token. Only FormatDisplay normalizes the hour; the
// literal hour is itself the user-facing encoding everywhere else.
func (p ParsedTime) Format(mode ClockFormat) string {
	switch mode {
	case FormatKanji:
		return fmt.Sprintf("%d時%02d分", p.Hour, p.Minute)
	case FormatDisplay:
		if p.CrossesMidnight() {
			return fmt.Sprintf("翌%02d:%02d", p.Hour-24, p.Minute)
		}
		return fmt.Sprintf("%02d:%02d", p.Hour, p.Minute)
	default:
		return fmt.Sprintf("%02d:%02d", p.Hour, p.Minute)
	}
}

// FormatClockToken parses and renders a raw token in one step, returning
// the raw token unchanged when it does not parse.
func FormatClockToken(token string, mode ClockFormat) string {
	p, ok := ParseClockToken(token)
	if !ok {
		return token
	}
	return p.Format(mode)
}

// =============================================================================
// ORDERING
// =============================================================================

func clockSortKey(token string) int {
	p, ok := ParseClockToken(token)
	if !ok {
		return sentinelMinutes
	}
	return p.TotalMinutes()
}

// CompareClockTokens orders two raw tokens by total minutes, returning
// -1, 0, or 1. Malformed tokens sort last.
func CompareClockTokens(a, b string) int {
	ka, kb := clockSortKey(a), clockSortKey(b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	default:
		return 0
	}
}

// SortRunsByDeparture orders runs ascending by departure token within the
// slice, stable so ties keep their input order. Runs with no parseable
// departure end up last.
func SortRunsByDeparture(runs []ScheduledRun) {
	sort.SliceStable(runs, func(i, j int) bool {
		return CompareClockTokens(runs[i].Departure, runs[j].Departure) < 0
	})
}
