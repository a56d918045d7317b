// Package memory provides in-memory store implementations (for testing/dev).
package memory

import (
	"context"
	"sync"

	"github.com/warp/fleet-billing/billing"
	"github.com/warp/fleet-billing/invoice"
	"github.com/warp/fleet-billing/payroll"
)

// =============================================================================
// MEMORY STORE - Implements OverrideStore, RecordStore, DriverInputStore
// =============================================================================

type overrideKey struct {
	Customer billing.CustomerID
	Month    billing.Month
}

type driverKey struct {
	Month  billing.Month
	Driver billing.DriverID
}

type Store struct {
	mu sync.RWMutex

	overrides map[overrideKey]invoice.ManualOverride

	runs           map[string]billing.ScheduledRun
	runOrder       []string
	monthlyConfigs []billing.RouteMonthlyConfig
	feeSchedules   []billing.RouteFeeSchedule

	attendance   map[driverKey]payroll.AttendanceSummary
	fuel         map[driverKey]payroll.FuelSummary
	vehicleCosts map[driverKey]payroll.VehicleCosts
	adjustments  map[driverKey]payroll.Adjustments
}

func New() *Store {
	return &Store{
		overrides:    make(map[overrideKey]invoice.ManualOverride),
		runs:         make(map[string]billing.ScheduledRun),
		attendance:   make(map[driverKey]payroll.AttendanceSummary),
		fuel:         make(map[driverKey]payroll.FuelSummary),
		vehicleCosts: make(map[driverKey]payroll.VehicleCosts),
		adjustments:  make(map[driverKey]payroll.Adjustments),
	}
}

// =============================================================================
// OVERRIDE STORE
// =============================================================================

func (s *Store) Get(_ context.Context, customer billing.CustomerID, month billing.Month) (invoice.ManualOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	override, ok := s.overrides[overrideKey{Customer: customer, Month: month}]
	if !ok {
		return invoice.ManualOverride{}, billing.ErrOverrideNotFound
	}
	return override, nil
}

func (s *Store) Put(_ context.Context, override invoice.ManualOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[overrideKey{Customer: override.CustomerID, Month: override.BillingMonth}] = override
	return nil
}

func (s *Store) Delete(_ context.Context, customer billing.CustomerID, month billing.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := overrideKey{Customer: customer, Month: month}
	if _, ok := s.overrides[k]; !ok {
		return billing.ErrOverrideNotFound
	}
	delete(s.overrides, k)
	return nil
}

// =============================================================================
// RECORD STORE
// =============================================================================

func (s *Store) SaveRun(_ context.Context, run billing.ScheduledRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; !ok {
		s.runOrder = append(s.runOrder, run.ID)
	}
	s.runs[run.ID] = run
	return nil
}

func (s *Store) RunsBetween(_ context.Context, from, to billing.Date) ([]billing.ScheduledRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []billing.ScheduledRun
	for _, id := range s.runOrder {
		run := s.runs[id]
		if run.Date.AfterOrEqual(from) && run.Date.BeforeOrEqual(to) {
			out = append(out, run)
		}
	}
	return out, nil
}

func (s *Store) SaveMonthlyConfig(_ context.Context, cfg billing.RouteMonthlyConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.monthlyConfigs {
		if existing.RouteName == cfg.RouteName && existing.Month == cfg.Month {
			s.monthlyConfigs[i] = cfg
			return nil
		}
	}
	s.monthlyConfigs = append(s.monthlyConfigs, cfg)
	return nil
}

func (s *Store) SaveFeeSchedule(_ context.Context, fee billing.RouteFeeSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.feeSchedules {
		if existing.RouteName == fee.RouteName && existing.EffectiveFrom.Equal(fee.EffectiveFrom) {
			s.feeSchedules[i] = fee
			return nil
		}
	}
	s.feeSchedules = append(s.feeSchedules, fee)
	return nil
}

func (s *Store) Configs(_ context.Context) (billing.ConfigSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := billing.ConfigSnapshot{
		MonthlyConfigs: make([]billing.RouteMonthlyConfig, len(s.monthlyConfigs)),
		FeeSchedules:   make([]billing.RouteFeeSchedule, len(s.feeSchedules)),
	}
	copy(snap.MonthlyConfigs, s.monthlyConfigs)
	copy(snap.FeeSchedules, s.feeSchedules)
	return snap, nil
}

// =============================================================================
// DRIVER INPUT STORE
// =============================================================================

func (s *Store) SaveAttendance(_ context.Context, month billing.Month, driver billing.DriverID, summary payroll.AttendanceSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendance[driverKey{Month: month, Driver: driver}] = summary
	return nil
}

func (s *Store) SaveFuel(_ context.Context, month billing.Month, driver billing.DriverID, summary payroll.FuelSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fuel[driverKey{Month: month, Driver: driver}] = summary
	return nil
}

func (s *Store) SaveVehicleCosts(_ context.Context, month billing.Month, driver billing.DriverID, costs payroll.VehicleCosts) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicleCosts[driverKey{Month: month, Driver: driver}] = costs
	return nil
}

func (s *Store) SaveAdjustments(_ context.Context, month billing.Month, driver billing.DriverID, adjustments payroll.Adjustments) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adjustments[driverKey{Month: month, Driver: driver}] = adjustments
	return nil
}

func (s *Store) Attendance(_ context.Context, month billing.Month) (map[billing.DriverID]payroll.AttendanceSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[billing.DriverID]payroll.AttendanceSummary)
	for k, v := range s.attendance {
		if k.Month == month {
			out[k.Driver] = v
		}
	}
	return out, nil
}

func (s *Store) Fuel(_ context.Context, month billing.Month) (map[billing.DriverID]payroll.FuelSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[billing.DriverID]payroll.FuelSummary)
	for k, v := range s.fuel {
		if k.Month == month {
			out[k.Driver] = v
		}
	}
	return out, nil
}

func (s *Store) VehicleCosts(_ context.Context, month billing.Month) (map[billing.DriverID]payroll.VehicleCosts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[billing.DriverID]payroll.VehicleCosts)
	for k, v := range s.vehicleCosts {
		if k.Month == month {
			out[k.Driver] = v
		}
	}
	return out, nil
}

func (s *Store) Adjustments(_ context.Context, month billing.Month) (map[billing.DriverID]payroll.Adjustments, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[billing.DriverID]payroll.Adjustments)
	for k, v := range s.adjustments {
		if k.Month == month {
			out[k.Driver] = v
		}
	}
	return out, nil
}
