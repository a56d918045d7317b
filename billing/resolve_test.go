package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestResolveMonthlyConfig_ExactMonthMatch(t *testing.T) {
	candidates := []RouteMonthlyConfig{
		{RouteName: "route-a", Month: NewMonth(2025, time.September), PostalTollBilling: decimal.NewFromInt(3000)},
		{RouteName: "route-a", Month: NewMonth(2025, time.October), PostalTollBilling: decimal.NewFromInt(4000)},
	}

	got, ok := ResolveMonthlyConfig(NewMonth(2025, time.October), candidates)
	if !ok {
		t.Fatal("expected a config for 2025-10")
	}
	if !got.PostalTollBilling.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("postal toll billing = %s, want 4000", got.PostalTollBilling)
	}

	// Month keys never bleed into neighbors.
	if _, ok := ResolveMonthlyConfig(NewMonth(2025, time.November), candidates); ok {
		t.Error("expected no config for 2025-11")
	}
}

func TestResolveFeeSchedule_LatestEffectiveNotAfterRunDate(t *testing.T) {
	// GIVEN a fee history with two revisions
	candidates := []RouteFeeSchedule{
		{RouteName: "route-a", EffectiveFrom: NewDate(2025, time.January, 1), DriverFee: decimal.NewFromInt(100)},
		{RouteName: "route-a", EffectiveFrom: NewDate(2025, time.June, 1), DriverFee: decimal.NewFromInt(150)},
	}

	// WHEN resolving a run dated between the revisions
	got, ok := ResolveFeeSchedule(NewDate(2025, time.May, 1), candidates)

	// THEN the earlier revision still applies
	if !ok {
		t.Fatal("expected a schedule for 2025-05-01")
	}
	if !got.DriverFee.Equal(decimal.NewFromInt(100)) {
		t.Errorf("driver fee = %s, want 100", got.DriverFee)
	}

	// On and after the cutover the new revision wins.
	got, ok = ResolveFeeSchedule(NewDate(2025, time.June, 1), candidates)
	if !ok || !got.DriverFee.Equal(decimal.NewFromInt(150)) {
		t.Errorf("driver fee at cutover = %s, want 150", got.DriverFee)
	}
}

func TestResolveFeeSchedule_AllCandidatesInFuture(t *testing.T) {
	candidates := []RouteFeeSchedule{
		{RouteName: "route-a", EffectiveFrom: NewDate(2026, time.January, 1), DriverFee: decimal.NewFromInt(200)},
	}

	if _, ok := ResolveFeeSchedule(NewDate(2025, time.December, 31), candidates); ok {
		t.Error("expected no schedule when every revision is in the future")
	}
}

func TestResolveFeeSchedule_UnorderedInput(t *testing.T) {
	// Resolution must not depend on storage order.
	candidates := []RouteFeeSchedule{
		{RouteName: "route-a", EffectiveFrom: NewDate(2025, time.June, 1), DriverFee: decimal.NewFromInt(150)},
		{RouteName: "route-a", EffectiveFrom: NewDate(2024, time.April, 1), DriverFee: decimal.NewFromInt(80)},
		{RouteName: "route-a", EffectiveFrom: NewDate(2025, time.January, 1), DriverFee: decimal.NewFromInt(100)},
	}

	got, ok := ResolveFeeSchedule(NewDate(2025, time.March, 15), candidates)
	if !ok {
		t.Fatal("expected a schedule")
	}
	if !got.DriverFee.Equal(decimal.NewFromInt(100)) {
		t.Errorf("driver fee = %s, want 100", got.DriverFee)
	}

	// Input slice order is preserved.
	if !candidates[0].EffectiveFrom.Equal(NewDate(2025, time.June, 1)) {
		t.Error("candidates were reordered in place")
	}
}
