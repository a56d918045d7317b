/*
resolve.go - Temporal configuration resolution

PURPOSE:
  Configuration records are time-versioned two different ways and each
  entity type resolves with its own strategy:

  Month-keyed (RouteMonthlyConfig):
    A config applies only if its Month key equals the run's billing month.
    No interval semantics - a missing month means no config.

  Effective-date-keyed (RouteFeeSchedule):
    Records form a history. The applicable record is the one with the
    latest EffectiveFrom that is not after the run date. A record whose
    EffectiveFrom is strictly in the future is never selected.

  Both strategies are pure functions over (date, candidates). Callers load
  and pre-filter candidates (typically to a single route); no caching, no
  I/O here. Resolution failure is a normal state - a newly added route
  awaiting setup simply derives zero fees - so both return (zero, false)
  rather than an error.
*/
package billing

import "sort"

// ResolveMonthlyConfig selects the config whose month key equals the
// billing month. Returns false when no candidate matches.
func ResolveMonthlyConfig(month Month, candidates []RouteMonthlyConfig) (RouteMonthlyConfig, bool) {
	for _, c := range candidates {
		if c.Month == month {
			return c, true
		}
	}
	return RouteMonthlyConfig{}, false
}

// ResolveFeeSchedule selects the fee schedule with the latest EffectiveFrom
// on or before runDate. Returns false when every candidate is effective
// strictly after the run date (or there are none).
func ResolveFeeSchedule(runDate Date, candidates []RouteFeeSchedule) (RouteFeeSchedule, bool) {
	sorted := make([]RouteFeeSchedule, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.After(sorted[j].EffectiveFrom)
	})

	for _, f := range sorted {
		if f.EffectiveFrom.BeforeOrEqual(runDate) {
			return f, true
		}
	}
	return RouteFeeSchedule{}, false
}
