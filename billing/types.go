/*
Package billing provides the core calculation engine for transport-service
billing and driver payroll.

PURPOSE:
  This package contains the domain types and pure algorithms shared by the
  invoice and payroll assemblers: the overflow-aware clock-token codec, the
  billing-month resolver, temporal configuration resolution, per-run fee
  derivation, and grouping/aggregation.

KEY CONCEPTS IN THIS FILE (types.go):
  - ScheduledRun: one vehicle/driver dispatch on a route for a given date
  - RouteMonthlyConfig: route billing amounts versioned by calendar month
  - RouteFeeSchedule: driver fees versioned by an effective-from date
  - DerivedRow: the full set of computed monetary fields for one run
  - CategorySummary / CategoryDetail: invoice-facing rollups

DESIGN PRINCIPLES:
  1. Purity: every function computes over snapshots handed in by the caller;
     the package performs no I/O and holds no state between calls
  2. Precision: uses decimal.Decimal to avoid floating-point errors in money
  3. Tolerance: a malformed field or missing configuration resolves to zero
     so one bad record never aborts a whole batch
  4. Type Safety: strong typing for customer/driver/category identifiers

USAGE:
  snap := billing.ConfigSnapshot{MonthlyConfigs: cfgs, FeeSchedules: fees}
  rows := billing.DeriveAll(runs, snap)
  summaries := billing.SummarizeCategories(rows)

SEE ALSO:
  - timecode.go: HHMM token parsing (hours may exceed 24)
  - period.go: billing-month attribution for past-midnight departures
  - resolve.go: which versioned config record applies to a date
  - derive.go: per-run fee derivation
  - aggregate.go: grouping and additive folds
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CustomerID string
type DriverID string
type VehicleID string

// CategoryCode is the billing classification attached to a route.
// Invoice line items are grouped by this code.
type CategoryCode string

// Well-known category codes. The set is open: unknown codes are carried
// through aggregation with the code itself as label.
const (
	CategoryRegular CategoryCode = "01"
	CategoryCharter CategoryCode = "02"
	CategorySpot    CategoryCode = "03"
)

var categoryLabels = map[CategoryCode]string{
	CategoryRegular: "Regular route",
	CategoryCharter: "Charter",
	CategorySpot:    "Spot dispatch",
}

// Label returns the human-readable name for the category, falling back to
// the raw code for categories we have no label for.
func (c CategoryCode) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// =============================================================================
// SOURCE RECORDS - Owned and mutated by external collaborators
// =============================================================================

// ScheduledRun is one vehicle/driver assignment on a date. The engine treats
// runs as an immutable snapshot per call; scheduling owns their lifecycle.
type ScheduledRun struct {
	ID        string
	Date      Date
	RouteName string

	// Departure and Arrival are raw HHMM tokens. Departure hours 24-48
	// encode a run operationally belonging to Date but executing after
	// midnight. Either may be empty when no time was recorded.
	Departure string
	Arrival   string

	Category   CategoryCode
	CustomerID CustomerID
	DriverID   DriverID
	VehicleID  VehicleID

	// Highway tolls actually incurred on this run, per toll class.
	PostalHighwayPaid  decimal.Decimal
	GeneralHighwayPaid decimal.Decimal
}

// RouteMonthlyConfig carries route-level billing amounts for exactly one
// calendar month. At most one record should exist per route+month.
type RouteMonthlyConfig struct {
	RouteName string
	Month     Month

	// PostalTollBilling is the monthly postal-class toll amount billed to
	// the customer, split across the runs of the period.
	PostalTollBilling decimal.Decimal

	// GeneralFee is the general-class toll amount billed per run.
	GeneralFee decimal.Decimal
}

// RouteFeeSchedule carries the contracted driver fees for a route from
// EffectiveFrom onward. Multiple records per route form a history; the
// latest record not after the run date applies (see resolve.go).
type RouteFeeSchedule struct {
	RouteName     string
	EffectiveFrom Date

	DriverFee       decimal.Decimal
	SupplementalFee decimal.Decimal
}

// =============================================================================
// DERIVED ROW - Output of fee derivation for one run
// =============================================================================

// DerivedRow holds every computed monetary field for one scheduled run plus
// the keys needed to group it. Rows are created fresh on every computation
// call and never persisted by this package.
type DerivedRow struct {
	RunID        string
	Date         Date
	BillingMonth Month
	RouteName    string
	Category     CategoryCode
	CustomerID   CustomerID
	DriverID     DriverID

	// Toll reconciliation, postal class.
	PostalTollBilled    decimal.Decimal // monthly billing amount / runs in period
	PostalTollPaid      decimal.Decimal
	ThirtyPercentPostal decimal.Decimal // paid * 0.3, employer-absorbed share
	EmployeeTollBurden  decimal.Decimal // paid - (billed + 30% share)

	// Toll reconciliation, general class.
	GeneralTollBilled decimal.Decimal
	GeneralTollPaid   decimal.Decimal
	TollOverage       decimal.Decimal // paid - billed, deliberately unclamped

	// Driver fees from the resolved fee schedule.
	DriverFee           decimal.Decimal
	SupplementalFee     decimal.Decimal
	TotalDriverFee      decimal.Decimal
	DriverChargeableFee decimal.Decimal // total fee - (30% share + overage)

	// BilledAmount is what the customer is invoiced for this run:
	// total driver fee plus both billed toll classes.
	BilledAmount decimal.Decimal
}

// =============================================================================
// INVOICE ROLLUPS
// =============================================================================

// CategorySummary is one invoice line per billing category.
type CategorySummary struct {
	Code        CategoryCode
	Label       string
	RunCount    int
	TotalAmount decimal.Decimal
}

// CategoryDetail is the route-level rollup within a category.
type CategoryDetail struct {
	Category       CategoryCode
	RouteName      string
	RunCount       int
	UnitPrice      decimal.Decimal // per-run driver fee for the route
	DriverFeeTotal decimal.Decimal
	TollTotal      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// DriverMonthTotals aggregates derived rows for one driver and month.
// Input to payroll computation.
type DriverMonthTotals struct {
	DriverID DriverID
	Month    Month

	RunCount            int
	DriverFeeTotal      decimal.Decimal
	ChargeableFeeTotal  decimal.Decimal
	TollOverageTotal    decimal.Decimal
	PostalBurdenTotal   decimal.Decimal
	PostalTollPaidTotal decimal.Decimal
}

// =============================================================================
// CONFIG SNAPSHOT - Everything derivation needs, pre-loaded by the caller
// =============================================================================

// ConfigSnapshot bundles the configuration records loaded for a computation.
// The engine never queries storage itself; callers load the snapshot and
// hand it in (typically pre-filtered by branch and date range).
type ConfigSnapshot struct {
	MonthlyConfigs []RouteMonthlyConfig
	FeeSchedules   []RouteFeeSchedule
}

func (s ConfigSnapshot) monthlyFor(route string) []RouteMonthlyConfig {
	var out []RouteMonthlyConfig
	for _, c := range s.MonthlyConfigs {
		if c.RouteName == route {
			out = append(out, c)
		}
	}
	return out
}

func (s ConfigSnapshot) schedulesFor(route string) []RouteFeeSchedule {
	var out []RouteFeeSchedule
	for _, f := range s.FeeSchedules {
		if f.RouteName == route {
			out = append(out, f)
		}
	}
	return out
}
