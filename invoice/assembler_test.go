package invoice_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fleet-billing/billing"
	"github.com/warp/fleet-billing/invoice"
	"github.com/warp/fleet-billing/store/memory"
)

var october = billing.NewMonth(2025, time.October)

func fixtureCustomer() invoice.CustomerInfo {
	return invoice.CustomerInfo{ID: "cust-1", Name: "Acme Transport KK"}
}

func fixtureRuns() []billing.ScheduledRun {
	return []billing.ScheduledRun{
		{
			ID:         "run-1",
			Date:       billing.NewDate(2025, time.October, 10),
			RouteName:  "route-a",
			Departure:  "0800",
			Category:   billing.CategoryRegular,
			CustomerID: "cust-1",
			DriverID:   "drv-1",
		},
		{
			ID:         "run-2",
			Date:       billing.NewDate(2025, time.October, 12),
			RouteName:  "route-a",
			Departure:  "0800",
			Category:   billing.CategoryRegular,
			CustomerID: "cust-1",
			DriverID:   "drv-1",
		},
	}
}

func fixtureSnapshot() billing.ConfigSnapshot {
	return billing.ConfigSnapshot{
		FeeSchedules: []billing.RouteFeeSchedule{
			{
				RouteName:     "route-a",
				EffectiveFrom: billing.NewDate(2025, time.January, 1),
				DriverFee:     decimal.NewFromInt(10000),
			},
		},
	}
}

func TestAssemble_TotalsAndTax(t *testing.T) {
	// GIVEN two October runs on a route with a 10,000 per-run fee and no
	// toll configuration
	assembler := &invoice.Assembler{Overrides: memory.New()}

	// WHEN assembling the October invoice
	inv, err := assembler.Assemble(context.Background(), fixtureCustomer(), october, fixtureRuns(), fixtureSnapshot())
	require.NoError(t, err)

	// THEN total is 20,000, tax floors to 2,000, grand total 22,000
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(20000)), "total = %s", inv.TotalAmount)
	assert.True(t, inv.TaxAmount.Equal(decimal.NewFromInt(2000)), "tax = %s", inv.TaxAmount)
	assert.True(t, inv.GrandTotal.Equal(decimal.NewFromInt(22000)), "grand total = %s", inv.GrandTotal)
	assert.False(t, inv.Overridden)

	require.Len(t, inv.SummaryByCategory, 1)
	assert.Equal(t, 2, inv.SummaryByCategory[0].RunCount)
	require.Len(t, inv.DetailsByCategory, 1)
	assert.True(t, inv.DetailsByCategory[0].UnitPrice.Equal(decimal.NewFromInt(10000)))
}

func TestAssemble_TaxFlooredNotRounded(t *testing.T) {
	// A total of 10,005 yields 1,000.5 of tax before flooring.
	runs := fixtureRuns()[:1]
	snap := billing.ConfigSnapshot{
		FeeSchedules: []billing.RouteFeeSchedule{
			{
				RouteName:     "route-a",
				EffectiveFrom: billing.NewDate(2025, time.January, 1),
				DriverFee:     decimal.NewFromInt(10005),
			},
		},
	}
	assembler := &invoice.Assembler{Overrides: memory.New()}

	inv, err := assembler.Assemble(context.Background(), fixtureCustomer(), october, runs, snap)
	require.NoError(t, err)

	assert.True(t, inv.TaxAmount.Equal(decimal.NewFromInt(1000)), "tax = %s", inv.TaxAmount)
	assert.True(t, inv.GrandTotal.Equal(decimal.NewFromInt(11005)), "grand total = %s", inv.GrandTotal)
}

func TestAssemble_NoBillableData(t *testing.T) {
	assembler := &invoice.Assembler{Overrides: memory.New()}

	// Runs exist but none for this customer in the requested month.
	_, err := assembler.Assemble(context.Background(), fixtureCustomer(), billing.NewMonth(2025, time.December), fixtureRuns(), fixtureSnapshot())

	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrNoBillableData)
	assert.True(t, billing.IsClientError(err))
}

func TestAssemble_PastMidnightRunBillsNextMonth(t *testing.T) {
	// A September 30 run departing at 25:00 belongs on the October invoice.
	runs := fixtureRuns()
	runs = append(runs, billing.ScheduledRun{
		ID:         "run-overnight",
		Date:       billing.NewDate(2025, time.September, 30),
		RouteName:  "route-a",
		Departure:  "2500",
		Category:   billing.CategoryRegular,
		CustomerID: "cust-1",
		DriverID:   "drv-1",
	})
	assembler := &invoice.Assembler{Overrides: memory.New()}

	inv, err := assembler.Assemble(context.Background(), fixtureCustomer(), october, runs, fixtureSnapshot())
	require.NoError(t, err)

	require.Len(t, inv.SummaryByCategory, 1)
	assert.Equal(t, 3, inv.SummaryByCategory[0].RunCount)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(30000)), "total = %s", inv.TotalAmount)
}

func TestAssemble_OverrideReplacesComputedLines(t *testing.T) {
	store := memory.New()
	assembler := &invoice.Assembler{Overrides: store}
	ctx := context.Background()

	// GIVEN a saved manual override with different figures
	summary := []billing.CategorySummary{
		{Code: billing.CategoryRegular, Label: billing.CategoryRegular.Label(), RunCount: 2, TotalAmount: decimal.NewFromInt(18000)},
	}
	details := []billing.CategoryDetail{
		{Category: billing.CategoryRegular, RouteName: "route-a", RunCount: 2, TotalAmount: decimal.NewFromInt(18000)},
	}
	saved, err := assembler.SaveOverride(ctx, "cust-1", october, summary, details, "ops@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	// WHEN assembling
	inv, err := assembler.Assemble(ctx, fixtureCustomer(), october, fixtureRuns(), fixtureSnapshot())
	require.NoError(t, err)

	// THEN the override lines are returned verbatim and totals recomputed
	// from them
	assert.True(t, inv.Overridden)
	require.Len(t, inv.SummaryByCategory, 1)
	assert.True(t, inv.SummaryByCategory[0].TotalAmount.Equal(decimal.NewFromInt(18000)))
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(18000)), "total = %s", inv.TotalAmount)
	assert.True(t, inv.TaxAmount.Equal(decimal.NewFromInt(1800)), "tax = %s", inv.TaxAmount)
	assert.True(t, inv.GrandTotal.Equal(decimal.NewFromInt(19800)), "grand total = %s", inv.GrandTotal)
}

func TestAssemble_ResetRestoresComputation(t *testing.T) {
	store := memory.New()
	assembler := &invoice.Assembler{Overrides: store}
	ctx := context.Background()

	fresh, err := assembler.Assemble(ctx, fixtureCustomer(), october, fixtureRuns(), fixtureSnapshot())
	require.NoError(t, err)

	_, err = assembler.SaveOverride(ctx, "cust-1", october, nil, nil, "")
	require.NoError(t, err)

	// WHEN resetting the override
	require.NoError(t, assembler.ResetOverride(ctx, "cust-1", october))

	// THEN assembly is indistinguishable from never having overridden
	after, err := assembler.Assemble(ctx, fixtureCustomer(), october, fixtureRuns(), fixtureSnapshot())
	require.NoError(t, err)
	assert.Equal(t, fresh, after)

	// Resetting again is a no-op.
	assert.NoError(t, assembler.ResetOverride(ctx, "cust-1", october))
}

func TestAssemble_NilOverrideStoreSkipsLayer(t *testing.T) {
	assembler := &invoice.Assembler{}

	inv, err := assembler.Assemble(context.Background(), fixtureCustomer(), october, fixtureRuns(), fixtureSnapshot())
	require.NoError(t, err)
	assert.False(t, inv.Overridden)
}
