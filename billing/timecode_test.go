package billing

import (
	"testing"
	"time"
)

// =============================================================================
// PARSING
// =============================================================================

func TestParseClockToken_ValidTokens(t *testing.T) {
	cases := []struct {
		token      string
		hour       int
		minute     int
		normalized int
		dayOffset  int
		total      int
	}{
		{"0000", 0, 0, 0, 0, 0},
		{"0800", 8, 0, 8, 0, 480},
		{"2359", 23, 59, 23, 0, 1439},
		{"2400", 24, 0, 0, 1, 1440},
		{"2530", 25, 30, 1, 1, 1530},
		{"4859", 48, 59, 0, 2, 2939},
	}

	for _, tc := range cases {
		p, ok := ParseClockToken(tc.token)
		if !ok {
			t.Fatalf("ParseClockToken(%q) unexpectedly failed", tc.token)
		}
		if p.Hour != tc.hour || p.Minute != tc.minute {
			t.Errorf("ParseClockToken(%q) = %d:%d, want %d:%d", tc.token, p.Hour, p.Minute, tc.hour, tc.minute)
		}
		if p.NormalizedHour() != tc.normalized {
			t.Errorf("%q normalized hour = %d, want %d", tc.token, p.NormalizedHour(), tc.normalized)
		}
		if p.DayOffset() != tc.dayOffset {
			t.Errorf("%q day offset = %d, want %d", tc.token, p.DayOffset(), tc.dayOffset)
		}
		if p.TotalMinutes() != tc.total {
			t.Errorf("%q total minutes = %d, want %d", tc.token, p.TotalMinutes(), tc.total)
		}
	}
}

func TestParseClockToken_MalformedTokens(t *testing.T) {
	// Malformed tokens are rejected, never clamped.
	malformed := []string{
		"",
		"800",    // too short
		"08000",  // too long
		"08:00",  // non-digits
		"ab00",   // non-digits
		"0860",   // minute >= 60
		"4900",   // hour > 48
		"9999",   // both out of range
		"-100",   // sign
		"12 0",   // space
	}

	for _, token := range malformed {
		if _, ok := ParseClockToken(token); ok {
			t.Errorf("ParseClockToken(%q) accepted malformed token", token)
		}
	}
}

func TestParseClockToken_ClockRoundTrip(t *testing.T) {
	// Every valid token survives parse -> Token() unchanged, and the
	// clock rendering keeps the literal (overflowing) hour.
	for hour := 0; hour <= 48; hour++ {
		for _, minute := range []int{0, 9, 30, 59} {
			token := ParsedTime{Hour: hour, Minute: minute}.Token()
			p, ok := ParseClockToken(token)
			if !ok {
				t.Fatalf("round trip parse failed for %q", token)
			}
			if p.Token() != token {
				t.Errorf("round trip %q -> %q", token, p.Token())
			}
		}
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

func TestFormat_Modes(t *testing.T) {
	cases := []struct {
		token   string
		clock   string
		kanji   string
		display string
	}{
		{"0805", "08:05", "8時05分", "08:05"},
		{"2359", "23:59", "23時59分", "23:59"},
		{"2400", "24:00", "24時00分", "翌00:00"},
		{"2530", "25:30", "25時30分", "翌01:30"},
		{"4815", "48:15", "48時15分", "翌24:15"},
	}

	for _, tc := range cases {
		p, ok := ParseClockToken(tc.token)
		if !ok {
			t.Fatalf("parse %q failed", tc.token)
		}
		if got := p.Format(FormatClock); got != tc.clock {
			t.Errorf("%q clock = %q, want %q", tc.token, got, tc.clock)
		}
		if got := p.Format(FormatKanji); got != tc.kanji {
			t.Errorf("%q kanji = %q, want %q", tc.token, got, tc.kanji)
		}
		if got := p.Format(FormatDisplay); got != tc.display {
			t.Errorf("%q display = %q, want %q", tc.token, got, tc.display)
		}
	}
}

func TestFormatClockToken_MalformedPassesThrough(t *testing.T) {
	if got := FormatClockToken("xx30", FormatDisplay); got != "xx30" {
		t.Errorf("malformed token rendered as %q, want passthrough", got)
	}
}

// =============================================================================
// ORDERING
// =============================================================================

func TestCompareClockTokens_TotalOrder(t *testing.T) {
	// Overflowing tokens sort after same-day tokens.
	if CompareClockTokens("0800", "2530") >= 0 {
		t.Error("expected 0800 < 2530")
	}
	if CompareClockTokens("2400", "2359") <= 0 {
		t.Error("expected 2400 > 2359")
	}
	if CompareClockTokens("1215", "1215") != 0 {
		t.Error("expected 1215 == 1215")
	}
	// Malformed tokens sort last.
	if CompareClockTokens("4859", "bogus") >= 0 {
		t.Error("expected latest valid token < malformed token")
	}
	if CompareClockTokens("", "") != 0 {
		t.Error("expected two absent tokens to compare equal")
	}
}

func TestSortRunsByDeparture_AbsentTokensLast(t *testing.T) {
	runs := []ScheduledRun{
		{ID: "no-time"},
		{ID: "late", Departure: "2530"},
		{ID: "early", Departure: "0700"},
		{ID: "evening", Departure: "2300"},
	}

	SortRunsByDeparture(runs)

	want := []string{"early", "evening", "late", "no-time"}
	for i, id := range want {
		if runs[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, runs[i].ID, id)
		}
	}
}

// =============================================================================
// CALENDAR COMBINATION
// =============================================================================

func TestOn_BuildsTimestampWithDayOffset(t *testing.T) {
	base := NewDate(2025, time.October, 31)

	p, _ := ParseClockToken("2530")
	got := p.On(base)
	want := time.Date(2025, time.November, 1, 1, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("2530 on 2025-10-31 = %v, want %v", got, want)
	}

	p, _ = ParseClockToken("0915")
	got = p.On(base)
	want = time.Date(2025, time.October, 31, 9, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("0915 on 2025-10-31 = %v, want %v", got, want)
	}
}
