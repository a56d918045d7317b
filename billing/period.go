package billing

// =============================================================================
// BILLING PERIOD - Which calendar month a run's charges belong to
// =============================================================================

// BillingMonthOf attributes a run to its billing month.
//
// A run dispatched at 23:00 that completes at 01:00 is recorded against the
// dispatch date, with the departure hour overflowing past 24 when it leaves
// after midnight. Such a run must be billed in the month it actually
// executes in, which differs from the dispatch month at month boundaries:
//
//   - departure does not parse  -> month of runDate
//   - departure hour >= 24      -> month of runDate + 1 day
//   - otherwise                 -> month of runDate
func BillingMonthOf(runDate Date, departure string) Month {
	p, ok := ParseClockToken(departure)
	if ok && p.CrossesMidnight() {
		return runDate.AddDays(1).MonthOf()
	}
	return runDate.MonthOf()
}
