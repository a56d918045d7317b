package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fleet-billing/billing"
	"github.com/warp/fleet-billing/invoice"
	"github.com/warp/fleet-billing/payroll"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRunRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run := billing.ScheduledRun{
		ID:                 "run-1",
		Date:               billing.NewDate(2025, time.October, 31),
		RouteName:          "route-a",
		Departure:          "2530",
		Arrival:            "2815",
		Category:           billing.CategoryRegular,
		CustomerID:         "cust-1",
		DriverID:           "drv-1",
		VehicleID:          "veh-1",
		PostalHighwayPaid:  decimal.RequireFromString("1234.56"),
		GeneralHighwayPaid: decimal.NewFromInt(800),
	}
	require.NoError(t, st.SaveRun(ctx, run))

	runs, err := st.RunsBetween(ctx, billing.NewDate(2025, time.October, 1), billing.NewDate(2025, time.October, 31))
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.True(t, got.Date.Equal(run.Date))
	assert.Equal(t, "2530", got.Departure, "raw overflowing token survives storage")
	assert.True(t, got.PostalHighwayPaid.Equal(run.PostalHighwayPaid), "paid = %s", got.PostalHighwayPaid)
}

func TestSaveRun_UpsertsOnID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run := billing.ScheduledRun{
		ID:         "run-1",
		Date:       billing.NewDate(2025, time.October, 10),
		RouteName:  "route-a",
		Category:   billing.CategoryRegular,
		CustomerID: "cust-1",
		DriverID:   "drv-1",
	}
	require.NoError(t, st.SaveRun(ctx, run))

	run.RouteName = "route-b"
	require.NoError(t, st.SaveRun(ctx, run))

	runs, err := st.RunsBetween(ctx, run.Date, run.Date)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "route-b", runs[0].RouteName)
}

func TestConfigSnapshotRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	cfg := billing.RouteMonthlyConfig{
		RouteName:         "route-a",
		Month:             billing.NewMonth(2025, time.October),
		PostalTollBilling: decimal.NewFromInt(3000),
		GeneralFee:        decimal.NewFromInt(1200),
	}
	require.NoError(t, st.SaveMonthlyConfig(ctx, cfg))

	fee := billing.RouteFeeSchedule{
		RouteName:       "route-a",
		EffectiveFrom:   billing.NewDate(2025, time.June, 1),
		DriverFee:       decimal.NewFromInt(10000),
		SupplementalFee: decimal.NewFromInt(500),
	}
	require.NoError(t, st.SaveFeeSchedule(ctx, fee))

	// Natural-key upsert: same route+month replaces.
	cfg.PostalTollBilling = decimal.NewFromInt(4000)
	require.NoError(t, st.SaveMonthlyConfig(ctx, cfg))

	snap, err := st.Configs(ctx)
	require.NoError(t, err)
	require.Len(t, snap.MonthlyConfigs, 1)
	require.Len(t, snap.FeeSchedules, 1)
	assert.True(t, snap.MonthlyConfigs[0].PostalTollBilling.Equal(decimal.NewFromInt(4000)))
	assert.Equal(t, cfg.Month, snap.MonthlyConfigs[0].Month)
	assert.True(t, snap.FeeSchedules[0].EffectiveFrom.Equal(fee.EffectiveFrom))
	assert.True(t, snap.FeeSchedules[0].DriverFee.Equal(fee.DriverFee))
}

func TestOverrideLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	month := billing.NewMonth(2025, time.October)

	// Absent reads and deletes report not-found.
	_, err := st.Get(ctx, "cust-1", month)
	assert.ErrorIs(t, err, billing.ErrOverrideNotFound)
	assert.ErrorIs(t, st.Delete(ctx, "cust-1", month), billing.ErrOverrideNotFound)

	override := invoice.ManualOverride{
		ID:           "ovr-1",
		CustomerID:   "cust-1",
		BillingMonth: month,
		Summary: []billing.CategorySummary{
			{Code: billing.CategoryRegular, Label: "regular", RunCount: 2, TotalAmount: decimal.NewFromInt(18000)},
		},
		Details: []billing.CategoryDetail{
			{Category: billing.CategoryRegular, RouteName: "route-a", RunCount: 2, TotalAmount: decimal.NewFromInt(18000)},
		},
		SavedAt: time.Date(2025, time.November, 1, 9, 0, 0, 0, time.UTC),
		SavedBy: "ops@example.com",
	}
	require.NoError(t, st.Put(ctx, override))

	got, err := st.Get(ctx, "cust-1", month)
	require.NoError(t, err)
	assert.Equal(t, "ovr-1", got.ID)
	assert.Equal(t, override.SavedAt, got.SavedAt)
	assert.Equal(t, "ops@example.com", got.SavedBy)
	require.Len(t, got.Summary, 1)
	assert.True(t, got.Summary[0].TotalAmount.Equal(decimal.NewFromInt(18000)))
	require.Len(t, got.Details, 1)
	assert.Equal(t, "route-a", got.Details[0].RouteName)

	// Replace wholesale on the same customer+month.
	override.ID = "ovr-2"
	override.Summary[0].TotalAmount = decimal.NewFromInt(20000)
	require.NoError(t, st.Put(ctx, override))
	got, err = st.Get(ctx, "cust-1", month)
	require.NoError(t, err)
	assert.Equal(t, "ovr-2", got.ID)
	assert.True(t, got.Summary[0].TotalAmount.Equal(decimal.NewFromInt(20000)))

	require.NoError(t, st.Delete(ctx, "cust-1", month))
	_, err = st.Get(ctx, "cust-1", month)
	assert.ErrorIs(t, err, billing.ErrOverrideNotFound)
}

func TestDriverInputRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	month := billing.NewMonth(2025, time.October)

	require.NoError(t, st.SaveAttendance(ctx, month, "drv-1", payroll.AttendanceSummary{WorkDays: 20, AbsentDays: 1}))
	require.NoError(t, st.SaveFuel(ctx, month, "drv-1", payroll.FuelSummary{
		FuelCost:   decimal.NewFromInt(40000),
		FuelLiters: decimal.RequireFromString("250.5"),
		DistanceKm: decimal.NewFromInt(3200),
	}))
	require.NoError(t, st.SaveVehicleCosts(ctx, month, "drv-1", payroll.VehicleCosts{WashCost: decimal.NewFromInt(1000)}))
	require.NoError(t, st.SaveAdjustments(ctx, month, "drv-2", payroll.Adjustments{
		OtherAllowances: decimal.NewFromInt(5000),
		SplitRate:       decimal.RequireFromString("0.6"),
		Note:            "trainee rate",
	}))
	// Other months stay invisible.
	require.NoError(t, st.SaveAttendance(ctx, billing.NewMonth(2025, time.November), "drv-1", payroll.AttendanceSummary{WorkDays: 5}))

	attendance, err := st.Attendance(ctx, month)
	require.NoError(t, err)
	require.Len(t, attendance, 1)
	assert.Equal(t, 20, attendance["drv-1"].WorkDays)

	fuel, err := st.Fuel(ctx, month)
	require.NoError(t, err)
	assert.True(t, fuel["drv-1"].FuelLiters.Equal(decimal.RequireFromString("250.5")))

	adjustments, err := st.Adjustments(ctx, month)
	require.NoError(t, err)
	adj, ok := adjustments["drv-2"]
	require.True(t, ok)
	assert.True(t, adj.SplitRate.Equal(decimal.RequireFromString("0.6")))
	assert.Equal(t, "trainee rate", adj.Note)

	// Re-saving replaces, never duplicates.
	require.NoError(t, st.SaveAttendance(ctx, month, "drv-1", payroll.AttendanceSummary{WorkDays: 21}))
	attendance, err = st.Attendance(ctx, month)
	require.NoError(t, err)
	require.Len(t, attendance, 1)
	assert.Equal(t, 21, attendance["drv-1"].WorkDays)
}
