/*
derive.go - Per-run fee derivation

PURPOSE:
  Computes the full derived row for one scheduled run from its resolved
  monthly config and fee schedule. The formulas reconcile two toll classes
  (postal and general) between what was billed to the customer and what the
  driver actually paid, and split the postal toll three ways: the billed
  share, a 30% employer-absorbed share, and the remainder carried by the
  employee.

FORMULAS (identities that hold for every row, by construction):
  postalTollBilled    = monthlyConfig.PostalTollBilling / runsInPeriod
  thirtyPercentPostal = postalTollPaid * 0.3
  employeeTollBurden  = postalTollPaid - (postalTollBilled + thirtyPercentPostal)
  tollOverage         = generalTollPaid - generalTollBilled
  totalDriverFee      = feeSchedule.DriverFee + feeSchedule.SupplementalFee
  driverChargeableFee = totalDriverFee - (thirtyPercentPostal + tollOverage)
  billedAmount        = totalDriverFee + postalTollBilled + generalTollBilled

  tollOverage is deliberately NOT floored at zero when the driver paid less
  than was billed; the negative value flows through to payroll unchanged.

ROUNDING:
  None. Derived fields stay exact decimals; rounding happens only at the
  single mandated point, invoice tax (see invoice package).

MISSING CONFIGURATION:
  A run with no applicable monthly config or fee schedule derives zero for
  the corresponding fields. Absence of billing configuration is a valid
  state, not an error.
*/
package billing

import "github.com/shopspring/decimal"

// runsInPeriod divides the monthly postal-toll billing amount across the
// runs of the period. Currently every run carries the full amount.
var runsInPeriod = decimal.NewFromInt(1)

// postalShareRate is the employer-absorbed share of the postal toll paid.
var postalShareRate = decimal.RequireFromString("0.3")

// DeriveRow computes all derived fields for one run. haveMonthly/haveFee
// report whether resolution found an applicable record; when false the
// corresponding billed/fee fields are zero.
func DeriveRow(run ScheduledRun, monthly RouteMonthlyConfig, haveMonthly bool, fee RouteFeeSchedule, haveFee bool) DerivedRow {
	row := DerivedRow{
		RunID:        run.ID,
		Date:         run.Date,
		BillingMonth: BillingMonthOf(run.Date, run.Departure),
		RouteName:    run.RouteName,
		Category:     run.Category,
		CustomerID:   run.CustomerID,
		DriverID:     run.DriverID,

		PostalTollPaid:  run.PostalHighwayPaid,
		GeneralTollPaid: run.GeneralHighwayPaid,
	}

	if haveMonthly {
		row.PostalTollBilled = monthly.PostalTollBilling.Div(runsInPeriod)
		row.GeneralTollBilled = monthly.GeneralFee
	}
	if haveFee {
		row.DriverFee = fee.DriverFee
		row.SupplementalFee = fee.SupplementalFee
	}

	row.TotalDriverFee = row.DriverFee.Add(row.SupplementalFee)
	row.ThirtyPercentPostal = row.PostalTollPaid.Mul(postalShareRate)
	row.EmployeeTollBurden = row.PostalTollPaid.Sub(row.PostalTollBilled.Add(row.ThirtyPercentPostal))
	row.TollOverage = row.GeneralTollPaid.Sub(row.GeneralTollBilled)
	row.DriverChargeableFee = row.TotalDriverFee.Sub(row.ThirtyPercentPostal.Add(row.TollOverage))
	row.BilledAmount = row.TotalDriverFee.Add(row.PostalTollBilled).Add(row.GeneralTollBilled)

	return row
}

// DeriveAll resolves configuration and derives a row for every run in the
// snapshot's scope. Resolution is per run: the monthly config is matched
// against the run's billing month (which may differ from its calendar
// month for past-midnight departures), the fee schedule against its date.
func DeriveAll(runs []ScheduledRun, snap ConfigSnapshot) []DerivedRow {
	rows := make([]DerivedRow, 0, len(runs))
	for _, run := range runs {
		month := BillingMonthOf(run.Date, run.Departure)
		monthly, haveMonthly := ResolveMonthlyConfig(month, snap.monthlyFor(run.RouteName))
		fee, haveFee := ResolveFeeSchedule(run.Date, snap.schedulesFor(run.RouteName))
		rows = append(rows, DeriveRow(run, monthly, haveMonthly, fee, haveFee))
	}
	return rows
}
