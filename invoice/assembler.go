/*
assembler.go - Invoice assembly pipeline

PIPELINE:
  1. Filter the supplied runs to the customer whose resolved billing month
     equals the requested month. Past-midnight departures (hour >= 24)
     shift a run into the following month here.
  2. Derive a row per run and aggregate into category summaries and
     route-level details.
  3. Totals: TaxAmount = floor(TotalAmount * 10%), GrandTotal = sum.
  4. If a manual override exists for (customer, month), its summary and
     details replace the computed ones and totals are recomputed from the
     override.

  Zero matching runs is reported as ErrNoBillableData rather than an empty
  invoice: an empty invoice is indistinguishable from an upstream filter
  or selection mistake.
*/
package invoice

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/fleet-billing/billing"
)

// taxRate is the consumption-tax rate applied to the invoice total.
// The tax amount is floored to a whole unit; this is the only rounding
// point in the whole computation.
var taxRate = decimal.RequireFromString("0.1")

// Assembler builds invoices. Overrides may be nil, in which case the
// override layer is skipped entirely.
type Assembler struct {
	Overrides OverrideStore
}

// Assemble computes the invoice for one customer and billing month from
// the supplied run and configuration snapshot.
//
// Returns a *billing.NoBillableDataError when no runs match. Override
// store failures (other than not-found) are surfaced unchanged.
func (a *Assembler) Assemble(ctx context.Context, customer CustomerInfo, month billing.Month, runs []billing.ScheduledRun, snap billing.ConfigSnapshot) (Invoice, error) {
	scoped := filterRuns(runs, customer.ID, month)
	if len(scoped) == 0 {
		return Invoice{}, &billing.NoBillableDataError{CustomerID: customer.ID, Month: month}
	}

	rows := billing.DeriveAll(scoped, snap)
	inv := Invoice{
		Customer:          customer,
		BillingMonth:      month,
		SummaryByCategory: billing.SummarizeCategories(rows),
		DetailsByCategory: billing.DetailCategories(rows),
	}
	inv.recomputeTotals()

	if a.Overrides != nil {
		override, err := a.Overrides.Get(ctx, customer.ID, month)
		switch {
		case err == nil:
			inv.SummaryByCategory = override.Summary
			inv.DetailsByCategory = override.Details
			inv.Overridden = true
			inv.recomputeTotals()
		case errors.Is(err, billing.ErrOverrideNotFound):
			// No override, keep the computed figures.
		default:
			return Invoice{}, err
		}
	}

	return inv, nil
}

// SaveOverride persists the given lines as the manual override for the
// customer/month, replacing any existing one.
func (a *Assembler) SaveOverride(ctx context.Context, customer billing.CustomerID, month billing.Month, summary []billing.CategorySummary, details []billing.CategoryDetail, savedBy string) (ManualOverride, error) {
	override := ManualOverride{
		ID:           uuid.NewString(),
		CustomerID:   customer,
		BillingMonth: month,
		Summary:      summary,
		Details:      details,
		SavedAt:      time.Now().UTC(),
		SavedBy:      savedBy,
	}
	if err := a.Overrides.Put(ctx, override); err != nil {
		return ManualOverride{}, err
	}
	return override, nil
}

// ResetOverride deletes the manual override so the next Assemble falls
// through to fresh computation. Resetting when no override exists is a
// no-op, not an error.
func (a *Assembler) ResetOverride(ctx context.Context, customer billing.CustomerID, month billing.Month) error {
	err := a.Overrides.Delete(ctx, customer, month)
	if err != nil && !errors.Is(err, billing.ErrOverrideNotFound) {
		return err
	}
	return nil
}

// recomputeTotals rebuilds the invoice totals from the current summary
// lines, computed or overridden alike.
func (inv *Invoice) recomputeTotals() {
	total := decimal.Zero
	for _, s := range inv.SummaryByCategory {
		total = total.Add(s.TotalAmount)
	}
	inv.TotalAmount = total
	inv.TaxAmount = total.Mul(taxRate).Floor()
	inv.GrandTotal = inv.TotalAmount.Add(inv.TaxAmount)
}

func filterRuns(runs []billing.ScheduledRun, customer billing.CustomerID, month billing.Month) []billing.ScheduledRun {
	var scoped []billing.ScheduledRun
	for _, run := range runs {
		if run.CustomerID != customer {
			continue
		}
		if billing.BillingMonthOf(run.Date, run.Departure) != month {
			continue
		}
		scoped = append(scoped, run)
	}

	// Deterministic line ordering: by calendar date, then departure time
	// within the day (runs without a parseable departure sort last).
	sort.SliceStable(scoped, func(i, j int) bool {
		if !scoped[i].Date.Equal(scoped[j].Date) {
			return scoped[i].Date.Before(scoped[j].Date)
		}
		return billing.CompareClockTokens(scoped[i].Departure, scoped[j].Departure) < 0
	})
	return scoped
}
