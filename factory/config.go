/*
Package factory provides JSON to Go record conversion.

PURPOSE:
  Converts JSON definitions into billing record structs. This enables
  configuration without code changes - operations staff can define route
  fee schedules and monthly billing amounts in JSON, over the API or from
  seed files, and the factory creates the proper Go structs.

JSON SCHEMA:
  {
    "route": "Tokyo-Nagoya express",
    "effective_from": "2025-06-01",
    "driver_fee": "12000",
    "supplemental_fee": "1500"
  }

  Monetary amounts are JSON strings parsed as exact decimals; empty or
  absent amounts default to "0". Dates are "2006-01-02", months "2006-01".

VALIDATION:
  Structural problems (bad date, bad amount, missing route) reject the
  record with billing.ErrInvalidRecord. Clock tokens on runs are validated
  here too - this is the one place a malformed token is an error, because
  rejecting it at entry is cheaper than carrying it forever.

SEE ALSO:
  - billing/types.go: target record types
  - api/handlers.go: create endpoints using this factory
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/fleet-billing/billing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// MonthlyConfigJSON is the JSON representation of a RouteMonthlyConfig.
type MonthlyConfigJSON struct {
	Route             string `json:"route"`
	Month             string `json:"month"`
	PostalTollBilling string `json:"postal_toll_billing,omitempty"`
	GeneralFee        string `json:"general_fee,omitempty"`
}

// FeeScheduleJSON is the JSON representation of a RouteFeeSchedule.
type FeeScheduleJSON struct {
	Route           string `json:"route"`
	EffectiveFrom   string `json:"effective_from"`
	DriverFee       string `json:"driver_fee,omitempty"`
	SupplementalFee string `json:"supplemental_fee,omitempty"`
}

// RunJSON is the JSON representation of a ScheduledRun.
type RunJSON struct {
	ID                 string `json:"id,omitempty"`
	Date               string `json:"date"`
	Route              string `json:"route"`
	Departure          string `json:"departure,omitempty"`
	Arrival            string `json:"arrival,omitempty"`
	Category           string `json:"category"`
	CustomerID         string `json:"customer_id"`
	DriverID           string `json:"driver_id"`
	VehicleID          string `json:"vehicle_id,omitempty"`
	PostalHighwayPaid  string `json:"postal_highway_paid,omitempty"`
	GeneralHighwayPaid string `json:"general_highway_paid,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

type ConfigFactory struct{}

func NewConfigFactory() *ConfigFactory { return &ConfigFactory{} }

// ParseMonthlyConfig converts a JSON definition into a RouteMonthlyConfig.
func (f *ConfigFactory) ParseMonthlyConfig(data []byte) (billing.RouteMonthlyConfig, error) {
	var def MonthlyConfigJSON
	if err := json.Unmarshal(data, &def); err != nil {
		return billing.RouteMonthlyConfig{}, fmt.Errorf("%w: %v", billing.ErrInvalidRecord, err)
	}
	return f.MonthlyConfigFromJSON(def)
}

// MonthlyConfigFromJSON validates and converts an already-decoded definition.
func (f *ConfigFactory) MonthlyConfigFromJSON(def MonthlyConfigJSON) (billing.RouteMonthlyConfig, error) {
	if def.Route == "" {
		return billing.RouteMonthlyConfig{}, fmt.Errorf("%w: route is required", billing.ErrInvalidRecord)
	}
	month, err := billing.ParseMonth(def.Month)
	if err != nil {
		return billing.RouteMonthlyConfig{}, fmt.Errorf("%w: %v", billing.ErrInvalidRecord, err)
	}

	cfg := billing.RouteMonthlyConfig{RouteName: def.Route, Month: month}
	if cfg.PostalTollBilling, err = parseAmount(def.PostalTollBilling); err != nil {
		return billing.RouteMonthlyConfig{}, fmt.Errorf("%w: postal_toll_billing: %v", billing.ErrInvalidRecord, err)
	}
	if cfg.GeneralFee, err = parseAmount(def.GeneralFee); err != nil {
		return billing.RouteMonthlyConfig{}, fmt.Errorf("%w: general_fee: %v", billing.ErrInvalidRecord, err)
	}
	return cfg, nil
}

// ParseFeeSchedule converts a JSON definition into a RouteFeeSchedule.
func (f *ConfigFactory) ParseFeeSchedule(data []byte) (billing.RouteFeeSchedule, error) {
	var def FeeScheduleJSON
	if err := json.Unmarshal(data, &def); err != nil {
		return billing.RouteFeeSchedule{}, fmt.Errorf("%w: %v", billing.ErrInvalidRecord, err)
	}
	return f.FeeScheduleFromJSON(def)
}

// FeeScheduleFromJSON validates and converts an already-decoded definition.
func (f *ConfigFactory) FeeScheduleFromJSON(def FeeScheduleJSON) (billing.RouteFeeSchedule, error) {
	if def.Route == "" {
		return billing.RouteFeeSchedule{}, fmt.Errorf("%w: route is required", billing.ErrInvalidRecord)
	}
	from, err := billing.ParseDate(def.EffectiveFrom)
	if err != nil {
		return billing.RouteFeeSchedule{}, fmt.Errorf("%w: %v", billing.ErrInvalidRecord, err)
	}

	fee := billing.RouteFeeSchedule{RouteName: def.Route, EffectiveFrom: from}
	if fee.DriverFee, err = parseAmount(def.DriverFee); err != nil {
		return billing.RouteFeeSchedule{}, fmt.Errorf("%w: driver_fee: %v", billing.ErrInvalidRecord, err)
	}
	if fee.SupplementalFee, err = parseAmount(def.SupplementalFee); err != nil {
		return billing.RouteFeeSchedule{}, fmt.Errorf("%w: supplemental_fee: %v", billing.ErrInvalidRecord, err)
	}
	return fee, nil
}

// RunFromJSON validates and converts a run definition. Departure/arrival
// tokens must be valid HHMM or empty; this is the entry-point check, the
// pipeline itself tolerates whatever is already stored.
func (f *ConfigFactory) RunFromJSON(def RunJSON) (billing.ScheduledRun, error) {
	if def.Route == "" {
		return billing.ScheduledRun{}, fmt.Errorf("%w: route is required", billing.ErrInvalidRecord)
	}
	if def.CustomerID == "" || def.DriverID == "" {
		return billing.ScheduledRun{}, fmt.Errorf("%w: customer_id and driver_id are required", billing.ErrInvalidRecord)
	}
	date, err := billing.ParseDate(def.Date)
	if err != nil {
		return billing.ScheduledRun{}, fmt.Errorf("%w: %v", billing.ErrInvalidRecord, err)
	}
	if err := validateToken("departure", def.Departure); err != nil {
		return billing.ScheduledRun{}, err
	}
	if err := validateToken("arrival", def.Arrival); err != nil {
		return billing.ScheduledRun{}, err
	}

	run := billing.ScheduledRun{
		ID:         def.ID,
		Date:       date,
		RouteName:  def.Route,
		Departure:  def.Departure,
		Arrival:    def.Arrival,
		Category:   billing.CategoryCode(def.Category),
		CustomerID: billing.CustomerID(def.CustomerID),
		DriverID:   billing.DriverID(def.DriverID),
		VehicleID:  billing.VehicleID(def.VehicleID),
	}
	if run.PostalHighwayPaid, err = parseAmount(def.PostalHighwayPaid); err != nil {
		return billing.ScheduledRun{}, fmt.Errorf("%w: postal_highway_paid: %v", billing.ErrInvalidRecord, err)
	}
	if run.GeneralHighwayPaid, err = parseAmount(def.GeneralHighwayPaid); err != nil {
		return billing.ScheduledRun{}, fmt.Errorf("%w: general_highway_paid: %v", billing.ErrInvalidRecord, err)
	}
	return run, nil
}

func validateToken(field, token string) error {
	if token == "" {
		return nil
	}
	if _, ok := billing.ParseClockToken(token); !ok {
		return &billing.InvalidTokenError{Field: field, Token: token}
	}
	return nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
