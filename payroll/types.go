/*
Package payroll computes monthly driver payout records from the billing
engine's derived rows plus externally supplied driver-month aggregates.

PURPOSE:
  Demonstrates the second consumer of the billing engine: where the
  invoice package rolls derived rows up per customer, payroll rolls them
  up per driver and combines them with attendance, fuel-history, and
  vehicle-cost figures that separate collaborators compute.

KEY DIFFERENCES FROM INVOICING:
  1. Grouping key: driver, not customer/category
  2. Extra inputs: attendance, fuel, vehicle costs, manual adjustments
  3. No override layer: payroll figures are always recomputed
  4. Missing inputs default to zero instead of failing the batch - one
     driver with no fuel history must not abort the whole payroll run

SEE ALSO:
  - assembler.go: the payout formula chain
  - billing/aggregate.go: TotalsByDriver
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/fleet-billing/billing"
)

// =============================================================================
// EXTERNAL DRIVER-MONTH INPUTS - Computed by collaborators, consumed here
// =============================================================================

// AttendanceSummary is one driver's attendance for the month.
type AttendanceSummary struct {
	WorkDays      int
	AbsentDays    int
	PaidLeaveDays int
}

// FuelSummary is one driver's fuel history for the month.
type FuelSummary struct {
	FuelCost   decimal.Decimal
	FuelLiters decimal.Decimal
	DistanceKm decimal.Decimal
}

// VehicleCosts are driver-borne vehicle expenses for the month.
type VehicleCosts struct {
	WashCost   decimal.Decimal
	RepairCost decimal.Decimal
}

func (v VehicleCosts) Total() decimal.Decimal { return v.WashCost.Add(v.RepairCost) }

// Adjustments are the manually entered per-driver fields: a lump other-
// allowances amount and the margin split rate. A zero SplitRate means
// "use the default" (half), not a zero payout.
type Adjustments struct {
	OtherAllowances decimal.Decimal
	SplitRate       decimal.Decimal
	Note            string
}

// =============================================================================
// PAYROLL RECORD - One driver-month, inputs and computed figures together
// =============================================================================

type PayrollRecord struct {
	DriverID billing.DriverID
	Month    billing.Month

	// Inputs carried through for rendering.
	RunCount    int
	Attendance  AttendanceSummary
	Fuel        FuelSummary
	Vehicle     VehicleCosts
	Adjustments Adjustments

	// Derived-row aggregates for the driver.
	FeeTotal           decimal.Decimal // sum of total driver fees
	ChargeableFeeTotal decimal.Decimal
	TollOverageTotal   decimal.Decimal // unclamped; may be negative
	PostalBurdenTotal  decimal.Decimal

	// Computed payout chain.
	NetMargin           decimal.Decimal // fee total - fuel cost
	SplitRate           decimal.Decimal // rate actually applied
	BasePayout          decimal.Decimal // net margin * split rate
	AttendanceAllowance decimal.Decimal
	Payout              decimal.Decimal
}
