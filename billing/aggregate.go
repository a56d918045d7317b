/*
aggregate.go - Grouping and additive folds over derived rows

PURPOSE:
  Pure aggregation of derived rows into invoice and payroll rollups.
  Grouping is stable and deterministic: output groups appear in first-seen
  key order, and within a group counts and sums are plain additive folds.
  No weighting, no outlier exclusion, no rounding.

USED FOR:
  - category totals            (key = billing category)
  - route totals per category  (key = route within category)
  - driver-month totals        (key = driver id)
*/
package billing

import "github.com/shopspring/decimal"

// =============================================================================
// GENERIC GROUPING - first-seen key order
// =============================================================================

// Group is one bucket of rows sharing a key.
type Group[K comparable] struct {
	Key  K
	Rows []DerivedRow
}

// GroupRows buckets rows by key, preserving the order keys first appear
// in the input. Iterating the result is therefore deterministic for a
// given input ordering.
func GroupRows[K comparable](rows []DerivedRow, key func(DerivedRow) K) []Group[K] {
	index := make(map[K]int)
	var groups []Group[K]
	for _, row := range rows {
		k := key(row)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K]{Key: k})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}

// SumRows folds an amount out of every row.
func SumRows(rows []DerivedRow, amount func(DerivedRow) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(amount(row))
	}
	return total
}

// =============================================================================
// INVOICE ROLLUPS
// =============================================================================

// SummarizeCategories rolls rows up into one summary per billing category,
// in first-seen category order.
func SummarizeCategories(rows []DerivedRow) []CategorySummary {
	groups := GroupRows(rows, func(r DerivedRow) CategoryCode { return r.Category })
	summaries := make([]CategorySummary, len(groups))
	for i, g := range groups {
		summaries[i] = CategorySummary{
			Code:        g.Key,
			Label:       g.Key.Label(),
			RunCount:    len(g.Rows),
			TotalAmount: SumRows(g.Rows, func(r DerivedRow) decimal.Decimal { return r.BilledAmount }),
		}
	}
	return summaries
}

type categoryRouteKey struct {
	Category CategoryCode
	Route    string
}

// DetailCategories rolls rows up per route within each category. The sum
// of detail TotalAmounts for a category always equals that category's
// summary TotalAmount, since both fold the same BilledAmount.
func DetailCategories(rows []DerivedRow) []CategoryDetail {
	groups := GroupRows(rows, func(r DerivedRow) categoryRouteKey {
		return categoryRouteKey{Category: r.Category, Route: r.RouteName}
	})
	details := make([]CategoryDetail, len(groups))
	for i, g := range groups {
		details[i] = CategoryDetail{
			Category:  g.Key.Category,
			RouteName: g.Key.Route,
			RunCount:  len(g.Rows),
			// The fee schedule is per route, so the first row's total
			// driver fee is the route's per-run unit price.
			UnitPrice:      g.Rows[0].TotalDriverFee,
			DriverFeeTotal: SumRows(g.Rows, func(r DerivedRow) decimal.Decimal { return r.TotalDriverFee }),
			TollTotal: SumRows(g.Rows, func(r DerivedRow) decimal.Decimal {
				return r.PostalTollBilled.Add(r.GeneralTollBilled)
			}),
			TotalAmount: SumRows(g.Rows, func(r DerivedRow) decimal.Decimal { return r.BilledAmount }),
		}
	}
	return details
}

// =============================================================================
// PAYROLL ROLLUPS
// =============================================================================

// TotalsByDriver aggregates rows per driver for one billing month, in
// first-seen driver order. Rows outside the month are skipped.
func TotalsByDriver(rows []DerivedRow, month Month) []DriverMonthTotals {
	var scoped []DerivedRow
	for _, r := range rows {
		if r.BillingMonth == month {
			scoped = append(scoped, r)
		}
	}

	groups := GroupRows(scoped, func(r DerivedRow) DriverID { return r.DriverID })
	totals := make([]DriverMonthTotals, len(groups))
	for i, g := range groups {
		totals[i] = DriverMonthTotals{
			DriverID:            g.Key,
			Month:               month,
			RunCount:            len(g.Rows),
			DriverFeeTotal:      SumRows(g.Rows, func(r DerivedRow) decimal.Decimal { return r.TotalDriverFee }),
			ChargeableFeeTotal:  SumRows(g.Rows, func(r DerivedRow) decimal.Decimal { return r.DriverChargeableFee }),
			TollOverageTotal:    SumRows(g.Rows, func(r DerivedRow) decimal.Decimal { return r.TollOverage }),
			PostalBurdenTotal:   SumRows(g.Rows, func(r DerivedRow) decimal.Decimal { return r.EmployeeTollBurden }),
			PostalTollPaidTotal: SumRows(g.Rows, func(r DerivedRow) decimal.Decimal { return r.PostalTollPaid }),
		}
	}
	return totals
}
