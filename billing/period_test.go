package billing

import (
	"testing"
	"time"
)

func TestBillingMonthOf_PastMidnightShiftsForward(t *testing.T) {
	// GIVEN a run on the last day of October departing past midnight
	runDate := NewDate(2025, time.October, 31)

	// WHEN the departure token overflows the day
	month := BillingMonthOf(runDate, "2500")

	// THEN the run bills into November
	if month != NewMonth(2025, time.November) {
		t.Errorf("billing month = %s, want 2025-11", month)
	}
}

func TestBillingMonthOf_SameDayStaysInMonth(t *testing.T) {
	runDate := NewDate(2025, time.October, 31)

	month := BillingMonthOf(runDate, "2000")

	if month != NewMonth(2025, time.October) {
		t.Errorf("billing month = %s, want 2025-10", month)
	}
}

func TestBillingMonthOf_MidMonthOverflowStaysInMonth(t *testing.T) {
	// Overflow only changes the billing month when the shifted day lands
	// in the next calendar month.
	runDate := NewDate(2025, time.October, 15)

	month := BillingMonthOf(runDate, "2630")

	if month != NewMonth(2025, time.October) {
		t.Errorf("billing month = %s, want 2025-10", month)
	}
}

func TestBillingMonthOf_YearBoundary(t *testing.T) {
	runDate := NewDate(2025, time.December, 31)

	month := BillingMonthOf(runDate, "2400")

	if month != NewMonth(2026, time.January) {
		t.Errorf("billing month = %s, want 2026-01", month)
	}
}

func TestBillingMonthOf_MalformedTokenFallsBackToRunDate(t *testing.T) {
	// A token that fails to parse never shifts the month, even when it
	// looks like an overflowing hour.
	runDate := NewDate(2025, time.October, 31)

	for _, token := range []string{"", "25:00", "4960", "late"} {
		if month := BillingMonthOf(runDate, token); month != NewMonth(2025, time.October) {
			t.Errorf("token %q: billing month = %s, want 2025-10", token, month)
		}
	}
}
