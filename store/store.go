/*
Package store defines the persistence interfaces the billing engine's
callers depend on.

PURPOSE:
  The engine itself performs no I/O; it computes over snapshots. These
  interfaces are what loads those snapshots and what persists the one
  stateful entity in the system, the manual invoice override (whose
  interface lives in the invoice package next to its type).

KEY INTERFACES:
  RecordStore:      scheduled runs and versioned route configuration
  DriverInputStore: per-driver-month attendance/fuel/vehicle/adjustment
                    aggregates supplied to payroll

IMPLEMENTATIONS:
  - store/memory: in-memory, for tests and development
  - store/sqlite: production SQLite

SEE ALSO:
  - invoice/override.go: OverrideStore
*/
package store

import (
	"context"

	"github.com/warp/fleet-billing/billing"
	"github.com/warp/fleet-billing/payroll"
)

// RecordStore persists source records. Save* replace an existing record
// with the same natural key. Missing records are a normal state for the
// engine; lookups return empty collections, not errors.
type RecordStore interface {
	SaveRun(ctx context.Context, run billing.ScheduledRun) error

	// RunsBetween returns runs dated in [from, to]. Callers assembling a
	// billing month fetch from the previous month's last day onward so
	// past-midnight runs that billed into the month are included.
	RunsBetween(ctx context.Context, from, to billing.Date) ([]billing.ScheduledRun, error)

	SaveMonthlyConfig(ctx context.Context, cfg billing.RouteMonthlyConfig) error
	SaveFeeSchedule(ctx context.Context, fee billing.RouteFeeSchedule) error

	// Configs returns the full configuration snapshot.
	Configs(ctx context.Context) (billing.ConfigSnapshot, error)
}

// DriverInputStore persists the externally computed driver-month
// aggregates consumed by payroll assembly.
type DriverInputStore interface {
	SaveAttendance(ctx context.Context, month billing.Month, driver billing.DriverID, s payroll.AttendanceSummary) error
	SaveFuel(ctx context.Context, month billing.Month, driver billing.DriverID, s payroll.FuelSummary) error
	SaveVehicleCosts(ctx context.Context, month billing.Month, driver billing.DriverID, c payroll.VehicleCosts) error
	SaveAdjustments(ctx context.Context, month billing.Month, driver billing.DriverID, a payroll.Adjustments) error

	Attendance(ctx context.Context, month billing.Month) (map[billing.DriverID]payroll.AttendanceSummary, error)
	Fuel(ctx context.Context, month billing.Month) (map[billing.DriverID]payroll.FuelSummary, error)
	VehicleCosts(ctx context.Context, month billing.Month) (map[billing.DriverID]payroll.VehicleCosts, error)
	Adjustments(ctx context.Context, month billing.Month) (map[billing.DriverID]payroll.Adjustments, error)
}
