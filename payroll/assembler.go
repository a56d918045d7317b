/*
assembler.go - Driver payout computation

FORMULA CHAIN (straight-line, no branching states):
  feeTotal            = sum of totalDriverFee over the driver's rows
  netMargin           = feeTotal - fuelCost
  basePayout          = netMargin * splitRate          (default 1/2)
  attendanceAllowance = workDays * dailyAllowance
  payout              = basePayout
                        - tollOverageTotal             (highway overage)
                        - vehicle costs                (wash, repair)
                        + attendanceAllowance
                        + otherAllowances

  tollOverageTotal carries its sign: a driver who paid less toll than was
  billed gets the difference credited, never floored at zero.

  Failures are limited to missing inputs, which default to zero; a batch
  never aborts because one driver lacks fuel or attendance figures.
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/fleet-billing/billing"
)

// defaultSplitRate is the margin share paid out when the adjustment
// record does not set one.
var defaultSplitRate = decimal.RequireFromString("0.5")

// Assembler computes payroll records. DailyAllowance is the per-workday
// attendance allowance, set once per branch by the embedding application.
type Assembler struct {
	DailyAllowance decimal.Decimal
}

// Assemble computes the payout for one driver-month from its aggregates.
func (a *Assembler) Assemble(totals billing.DriverMonthTotals, attendance AttendanceSummary, fuel FuelSummary, vehicle VehicleCosts, adjustments Adjustments) PayrollRecord {
	rate := adjustments.SplitRate
	if rate.IsZero() {
		rate = defaultSplitRate
	}

	rec := PayrollRecord{
		DriverID:    totals.DriverID,
		Month:       totals.Month,
		RunCount:    totals.RunCount,
		Attendance:  attendance,
		Fuel:        fuel,
		Vehicle:     vehicle,
		Adjustments: adjustments,

		FeeTotal:           totals.DriverFeeTotal,
		ChargeableFeeTotal: totals.ChargeableFeeTotal,
		TollOverageTotal:   totals.TollOverageTotal,
		PostalBurdenTotal:  totals.PostalBurdenTotal,

		SplitRate: rate,
	}

	rec.NetMargin = rec.FeeTotal.Sub(fuel.FuelCost)
	rec.BasePayout = rec.NetMargin.Mul(rate)
	rec.AttendanceAllowance = a.DailyAllowance.Mul(decimal.NewFromInt(int64(attendance.WorkDays)))
	rec.Payout = rec.BasePayout.
		Sub(rec.TollOverageTotal).
		Sub(vehicle.Total()).
		Add(rec.AttendanceAllowance).
		Add(adjustments.OtherAllowances)

	return rec
}

// AssembleAll computes records for every driver appearing in rows for the
// month, in first-seen driver order. Drivers missing from any of the
// input maps get zero values for those inputs.
func (a *Assembler) AssembleAll(rows []billing.DerivedRow, month billing.Month,
	attendance map[billing.DriverID]AttendanceSummary,
	fuel map[billing.DriverID]FuelSummary,
	vehicle map[billing.DriverID]VehicleCosts,
	adjustments map[billing.DriverID]Adjustments) []PayrollRecord {

	totals := billing.TotalsByDriver(rows, month)
	records := make([]PayrollRecord, len(totals))
	for i, t := range totals {
		records[i] = a.Assemble(t, attendance[t.DriverID], fuel[t.DriverID], vehicle[t.DriverID], adjustments[t.DriverID])
	}
	return records
}
