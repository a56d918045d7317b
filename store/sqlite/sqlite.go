/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements invoice.OverrideStore, store.RecordStore, and
  store.DriverInputStore using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  scheduled_runs:        dispatch records with raw HHMM tokens and paid tolls
  route_monthly_configs: month-keyed route billing amounts
  route_fee_schedules:   effective-date-keyed driver fees
  manual_overrides:      invoice override snapshots (lines as JSON columns)
  driver_inputs:         attendance/fuel/vehicle/adjustment aggregates per
                         driver-month (one row per kind)

AMOUNTS:
  Monetary values are stored as decimal strings, never REAL, so nothing is
  lost between write and read.

OVERRIDE ATOMICITY:
  The override upsert is a single INSERT ... ON CONFLICT DO UPDATE keyed on
  (customer_id, billing_month); replace and reset are each one statement,
  which is all the atomicity the override lifecycle needs.

WAL MODE:
  Opened with WAL for better concurrency: multiple readers, single writer,
  better crash recovery.

USAGE:
  st, err := sqlite.New("./data/fleet.db")
  if err != nil { log.Fatal(err) }
  defer st.Close()

SEE ALSO:
  - store/store.go: interface definitions
  - store/memory: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/fleet-billing/billing"
	"github.com/warp/fleet-billing/invoice"
	"github.com/warp/fleet-billing/payroll"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scheduled_runs (
		id TEXT PRIMARY KEY,
		run_date TEXT NOT NULL,
		route_name TEXT NOT NULL,
		departure TEXT,
		arrival TEXT,
		category TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		driver_id TEXT NOT NULL,
		vehicle_id TEXT,
		postal_highway_paid TEXT NOT NULL DEFAULT '0',
		general_highway_paid TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_date
		ON scheduled_runs(run_date);
	CREATE INDEX IF NOT EXISTS idx_runs_customer_date
		ON scheduled_runs(customer_id, run_date);
	CREATE INDEX IF NOT EXISTS idx_runs_driver_date
		ON scheduled_runs(driver_id, run_date);

	CREATE TABLE IF NOT EXISTS route_monthly_configs (
		route_name TEXT NOT NULL,
		month TEXT NOT NULL,
		postal_toll_billing TEXT NOT NULL DEFAULT '0',
		general_fee TEXT NOT NULL DEFAULT '0',
		updated_at TEXT NOT NULL,
		PRIMARY KEY (route_name, month)
	);

	CREATE TABLE IF NOT EXISTS route_fee_schedules (
		route_name TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		driver_fee TEXT NOT NULL DEFAULT '0',
		supplemental_fee TEXT NOT NULL DEFAULT '0',
		updated_at TEXT NOT NULL,
		PRIMARY KEY (route_name, effective_from)
	);

	-- Manual invoice overrides: one snapshot per customer+month, lines
	-- serialized as JSON. Replaced wholesale, deleted to reset.
	CREATE TABLE IF NOT EXISTS manual_overrides (
		id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		billing_month TEXT NOT NULL,
		summary_json TEXT NOT NULL,
		details_json TEXT NOT NULL,
		saved_at TEXT NOT NULL,
		saved_by TEXT,
		PRIMARY KEY (customer_id, billing_month)
	);

	-- Driver-month aggregates computed by external collaborators.
	-- kind is one of: attendance, fuel, vehicle, adjustments.
	CREATE TABLE IF NOT EXISTS driver_inputs (
		month TEXT NOT NULL,
		driver_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (month, driver_id, kind)
	);

	CREATE INDEX IF NOT EXISTS idx_driver_inputs_month_kind
		ON driver_inputs(month, kind);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE (store.RecordStore interface)
// =============================================================================

func (s *Store) SaveRun(ctx context.Context, run billing.ScheduledRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO scheduled_runs
		(id, run_date, route_name, departure, arrival, category, customer_id,
		 driver_id, vehicle_id, postal_highway_paid, general_highway_paid, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			run_date = excluded.run_date,
			route_name = excluded.route_name,
			departure = excluded.departure,
			arrival = excluded.arrival,
			category = excluded.category,
			customer_id = excluded.customer_id,
			driver_id = excluded.driver_id,
			vehicle_id = excluded.vehicle_id,
			postal_highway_paid = excluded.postal_highway_paid,
			general_highway_paid = excluded.general_highway_paid
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Date.String(),
		run.RouteName,
		run.Departure,
		run.Arrival,
		string(run.Category),
		string(run.CustomerID),
		string(run.DriverID),
		string(run.VehicleID),
		run.PostalHighwayPaid.String(),
		run.GeneralHighwayPaid.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (s *Store) RunsBetween(ctx context.Context, from, to billing.Date) ([]billing.ScheduledRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, run_date, route_name, departure, arrival, category,
		       customer_id, driver_id, vehicle_id, postal_highway_paid, general_highway_paid
		FROM scheduled_runs
		WHERE run_date >= ? AND run_date <= ?
		ORDER BY run_date, departure, id
	`

	rows, err := s.db.QueryContext(ctx, query, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []billing.ScheduledRun
	for rows.Next() {
		var run billing.ScheduledRun
		var dateStr, postal, general string
		err := rows.Scan(&run.ID, &dateStr, &run.RouteName, &run.Departure, &run.Arrival,
			&run.Category, &run.CustomerID, &run.DriverID, &run.VehicleID, &postal, &general)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.Date, err = billing.ParseDate(dateStr); err != nil {
			return nil, err
		}
		run.PostalHighwayPaid = parseAmount(postal)
		run.GeneralHighwayPaid = parseAmount(general)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) SaveMonthlyConfig(ctx context.Context, cfg billing.RouteMonthlyConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO route_monthly_configs
		(route_name, month, postal_toll_billing, general_fee, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(route_name, month) DO UPDATE SET
			postal_toll_billing = excluded.postal_toll_billing,
			general_fee = excluded.general_fee,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		cfg.RouteName,
		cfg.Month.String(),
		cfg.PostalTollBilling.String(),
		cfg.GeneralFee.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save monthly config: %w", err)
	}
	return nil
}

func (s *Store) SaveFeeSchedule(ctx context.Context, fee billing.RouteFeeSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO route_fee_schedules
		(route_name, effective_from, driver_fee, supplemental_fee, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(route_name, effective_from) DO UPDATE SET
			driver_fee = excluded.driver_fee,
			supplemental_fee = excluded.supplemental_fee,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		fee.RouteName,
		fee.EffectiveFrom.String(),
		fee.DriverFee.String(),
		fee.SupplementalFee.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save fee schedule: %w", err)
	}
	return nil
}

func (s *Store) Configs(ctx context.Context) (billing.ConfigSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap billing.ConfigSnapshot

	rows, err := s.db.QueryContext(ctx,
		`SELECT route_name, month, postal_toll_billing, general_fee
		 FROM route_monthly_configs ORDER BY route_name, month`)
	if err != nil {
		return snap, fmt.Errorf("failed to query monthly configs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cfg billing.RouteMonthlyConfig
		var monthStr, postal, general string
		if err := rows.Scan(&cfg.RouteName, &monthStr, &postal, &general); err != nil {
			return snap, fmt.Errorf("failed to scan monthly config: %w", err)
		}
		if cfg.Month, err = billing.ParseMonth(monthStr); err != nil {
			return snap, err
		}
		cfg.PostalTollBilling = parseAmount(postal)
		cfg.GeneralFee = parseAmount(general)
		snap.MonthlyConfigs = append(snap.MonthlyConfigs, cfg)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	feeRows, err := s.db.QueryContext(ctx,
		`SELECT route_name, effective_from, driver_fee, supplemental_fee
		 FROM route_fee_schedules ORDER BY route_name, effective_from`)
	if err != nil {
		return snap, fmt.Errorf("failed to query fee schedules: %w", err)
	}
	defer feeRows.Close()

	for feeRows.Next() {
		var fee billing.RouteFeeSchedule
		var fromStr, driverFee, supplemental string
		if err := feeRows.Scan(&fee.RouteName, &fromStr, &driverFee, &supplemental); err != nil {
			return snap, fmt.Errorf("failed to scan fee schedule: %w", err)
		}
		if fee.EffectiveFrom, err = billing.ParseDate(fromStr); err != nil {
			return snap, err
		}
		fee.DriverFee = parseAmount(driverFee)
		fee.SupplementalFee = parseAmount(supplemental)
		snap.FeeSchedules = append(snap.FeeSchedules, fee)
	}
	return snap, feeRows.Err()
}

// =============================================================================
// OVERRIDE STORE (invoice.OverrideStore interface)
// =============================================================================

func (s *Store) Get(ctx context.Context, customer billing.CustomerID, month billing.Month) (invoice.ManualOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, summary_json, details_json, saved_at, saved_by
		FROM manual_overrides
		WHERE customer_id = ? AND billing_month = ?
	`

	var override invoice.ManualOverride
	var summaryJSON, detailsJSON, savedAt string
	var savedBy sql.NullString
	err := s.db.QueryRowContext(ctx, query, string(customer), month.String()).
		Scan(&override.ID, &summaryJSON, &detailsJSON, &savedAt, &savedBy)
	if err == sql.ErrNoRows {
		return invoice.ManualOverride{}, billing.ErrOverrideNotFound
	}
	if err != nil {
		return invoice.ManualOverride{}, fmt.Errorf("failed to load override: %w", err)
	}

	override.CustomerID = customer
	override.BillingMonth = month
	override.SavedBy = savedBy.String
	if override.SavedAt, err = time.Parse(time.RFC3339, savedAt); err != nil {
		return invoice.ManualOverride{}, fmt.Errorf("corrupt saved_at on override %s: %w", override.ID, err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &override.Summary); err != nil {
		return invoice.ManualOverride{}, fmt.Errorf("corrupt summary on override %s: %w", override.ID, err)
	}
	if err := json.Unmarshal([]byte(detailsJSON), &override.Details); err != nil {
		return invoice.ManualOverride{}, fmt.Errorf("corrupt details on override %s: %w", override.ID, err)
	}
	return override, nil
}

func (s *Store) Put(ctx context.Context, override invoice.ManualOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaryJSON, err := json.Marshal(override.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode override summary: %w", err)
	}
	detailsJSON, err := json.Marshal(override.Details)
	if err != nil {
		return fmt.Errorf("failed to encode override details: %w", err)
	}

	query := `
		INSERT INTO manual_overrides
		(id, customer_id, billing_month, summary_json, details_json, saved_at, saved_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(customer_id, billing_month) DO UPDATE SET
			id = excluded.id,
			summary_json = excluded.summary_json,
			details_json = excluded.details_json,
			saved_at = excluded.saved_at,
			saved_by = excluded.saved_by
	`

	_, err = s.db.ExecContext(ctx, query,
		override.ID,
		string(override.CustomerID),
		override.BillingMonth.String(),
		string(summaryJSON),
		string(detailsJSON),
		override.SavedAt.UTC().Format(time.RFC3339),
		nullString(override.SavedBy),
	)
	if err != nil {
		return fmt.Errorf("failed to save override: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, customer billing.CustomerID, month billing.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM manual_overrides WHERE customer_id = ? AND billing_month = ?`,
		string(customer), month.String())
	if err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return billing.ErrOverrideNotFound
	}
	return nil
}

// =============================================================================
// DRIVER INPUT STORE (store.DriverInputStore interface)
// =============================================================================

const (
	kindAttendance  = "attendance"
	kindFuel        = "fuel"
	kindVehicle     = "vehicle"
	kindAdjustments = "adjustments"
)

func (s *Store) SaveAttendance(ctx context.Context, month billing.Month, driver billing.DriverID, summary payroll.AttendanceSummary) error {
	return s.saveDriverInput(ctx, month, driver, kindAttendance, summary)
}

func (s *Store) SaveFuel(ctx context.Context, month billing.Month, driver billing.DriverID, summary payroll.FuelSummary) error {
	return s.saveDriverInput(ctx, month, driver, kindFuel, summary)
}

func (s *Store) SaveVehicleCosts(ctx context.Context, month billing.Month, driver billing.DriverID, costs payroll.VehicleCosts) error {
	return s.saveDriverInput(ctx, month, driver, kindVehicle, costs)
}

func (s *Store) SaveAdjustments(ctx context.Context, month billing.Month, driver billing.DriverID, adjustments payroll.Adjustments) error {
	return s.saveDriverInput(ctx, month, driver, kindAdjustments, adjustments)
}

func (s *Store) saveDriverInput(ctx context.Context, month billing.Month, driver billing.DriverID, kind string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s input: %w", kind, err)
	}

	query := `
		INSERT INTO driver_inputs (month, driver_id, kind, payload_json, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(month, driver_id, kind) DO UPDATE SET
			payload_json = excluded.payload_json,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		month.String(), string(driver), kind, string(payloadJSON),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save %s input: %w", kind, err)
	}
	return nil
}

func (s *Store) Attendance(ctx context.Context, month billing.Month) (map[billing.DriverID]payroll.AttendanceSummary, error) {
	return loadDriverInputs[payroll.AttendanceSummary](ctx, s, month, kindAttendance)
}

func (s *Store) Fuel(ctx context.Context, month billing.Month) (map[billing.DriverID]payroll.FuelSummary, error) {
	return loadDriverInputs[payroll.FuelSummary](ctx, s, month, kindFuel)
}

func (s *Store) VehicleCosts(ctx context.Context, month billing.Month) (map[billing.DriverID]payroll.VehicleCosts, error) {
	return loadDriverInputs[payroll.VehicleCosts](ctx, s, month, kindVehicle)
}

func (s *Store) Adjustments(ctx context.Context, month billing.Month) (map[billing.DriverID]payroll.Adjustments, error) {
	return loadDriverInputs[payroll.Adjustments](ctx, s, month, kindAdjustments)
}

func loadDriverInputs[T any](ctx context.Context, s *Store, month billing.Month, kind string) (map[billing.DriverID]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT driver_id, payload_json FROM driver_inputs WHERE month = ? AND kind = ?`,
		month.String(), kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s inputs: %w", kind, err)
	}
	defer rows.Close()

	out := make(map[billing.DriverID]T)
	for rows.Next() {
		var driver, payloadJSON string
		if err := rows.Scan(&driver, &payloadJSON); err != nil {
			return nil, fmt.Errorf("failed to scan %s input: %w", kind, err)
		}
		var payload T
		if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
			return nil, fmt.Errorf("corrupt %s input for driver %s: %w", kind, driver, err)
		}
		out[billing.DriverID(driver)] = payload
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

// parseAmount reads a stored decimal string, tolerating blanks as zero so
// one bad column never poisons a whole batch load.
func parseAmount(s string) decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
