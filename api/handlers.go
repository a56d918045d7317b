/*
handlers.go - HTTP API handlers for the billing engine

PURPOSE:
  Exposes the billing/payroll engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Runs:
    GET    /api/runs?from=&to=             List runs in a date range
    POST   /api/runs                       Create/replace a scheduled run

  Configuration:
    POST   /api/configs/monthly            Upsert a route monthly config
    POST   /api/configs/fees               Upsert a route fee schedule

  Invoices:
    GET    /api/customers/{id}/invoices/{month}           Assemble invoice
    PUT    /api/customers/{id}/invoices/{month}/override  Save manual override
    DELETE /api/customers/{id}/invoices/{month}/override  Reset to computed

  Payroll:
    GET    /api/payroll/{month}            Payroll records for all drivers
    PUT    /api/payroll/{month}/drivers/{id}/attendance
    PUT    /api/payroll/{month}/drivers/{id}/fuel
    PUT    /api/payroll/{month}/drivers/{id}/vehicle
    PUT    /api/payroll/{month}/drivers/{id}/adjustments

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: validation errors, no billable data
  - 404: missing override/record
  - 500: storage and internal errors

SEE ALSO:
  - dto.go: request/response structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/fleet-billing/billing"
	"github.com/warp/fleet-billing/factory"
	"github.com/warp/fleet-billing/invoice"
	"github.com/warp/fleet-billing/payroll"
	"github.com/warp/fleet-billing/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Records store.RecordStore
	Inputs  store.DriverInputStore

	Invoices *invoice.Assembler
	Payroll  *payroll.Assembler
	Factory  *factory.ConfigFactory

	Log *zap.Logger
}

// NewHandler wires a handler around one backing store (the sqlite and
// memory stores both implement every interface).
func NewHandler(records store.RecordStore, inputs store.DriverInputStore, overrides invoice.OverrideStore, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Records:  records,
		Inputs:   inputs,
		Invoices: &invoice.Assembler{Overrides: overrides},
		Payroll:  &payroll.Assembler{},
		Factory:  factory.NewConfigFactory(),
		Log:      log,
	}
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// ListRuns returns runs in [from, to].
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	from, err := billing.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'from' date", err)
		return
	}
	to, err := billing.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'to' date", err)
		return
	}

	runs, err := h.Records.RunsBetween(r.Context(), from, to)
	if err != nil {
		h.fail(w, "list runs", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRun creates or replaces a scheduled run.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var def factory.RunJSON
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	run, err := h.Factory.RunFromJSON(def)
	if err != nil {
		h.fail(w, "create run", err)
		return
	}
	if run.ID == "" {
		run.ID = newID()
	}

	if err := h.Records.SaveRun(r.Context(), run); err != nil {
		h.fail(w, "create run", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRunDTO(run))
}

// =============================================================================
// CONFIG HANDLERS
// =============================================================================

func (h *Handler) CreateMonthlyConfig(w http.ResponseWriter, r *http.Request) {
	var def factory.MonthlyConfigJSON
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	cfg, err := h.Factory.MonthlyConfigFromJSON(def)
	if err != nil {
		h.fail(w, "create monthly config", err)
		return
	}
	if err := h.Records.SaveMonthlyConfig(r.Context(), cfg); err != nil {
		h.fail(w, "create monthly config", err)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

func (h *Handler) CreateFeeSchedule(w http.ResponseWriter, r *http.Request) {
	var def factory.FeeScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	fee, err := h.Factory.FeeScheduleFromJSON(def)
	if err != nil {
		h.fail(w, "create fee schedule", err)
		return
	}
	if err := h.Records.SaveFeeSchedule(r.Context(), fee); err != nil {
		h.fail(w, "create fee schedule", err)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// GetInvoice assembles the invoice for one customer and month.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	customer := billing.CustomerID(chi.URLParam(r, "id"))
	month, err := billing.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid billing month", err)
		return
	}

	runs, snap, err := h.loadMonthScope(r, month)
	if err != nil {
		h.fail(w, "assemble invoice", err)
		return
	}

	info := invoice.CustomerInfo{ID: customer, Name: r.URL.Query().Get("name")}
	inv, err := h.Invoices.Assemble(r.Context(), info, month, runs, snap)
	if err != nil {
		h.fail(w, "assemble invoice", err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// SaveOverride replaces the computed invoice lines for a customer/month.
func (h *Handler) SaveOverride(w http.ResponseWriter, r *http.Request) {
	customer := billing.CustomerID(chi.URLParam(r, "id"))
	month, err := billing.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid billing month", err)
		return
	}

	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	summary, err := fromSummaryDTOs(req.Summary)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid summary line", err)
		return
	}
	details, err := fromDetailDTOs(req.Details)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid detail line", err)
		return
	}

	override, err := h.Invoices.SaveOverride(r.Context(), customer, month, summary, details, req.SavedBy)
	if err != nil {
		h.fail(w, "save override", err)
		return
	}

	h.Log.Info("manual override saved",
		zap.String("customer", string(customer)),
		zap.String("month", month.String()),
		zap.String("override_id", override.ID))

	writeJSON(w, http.StatusOK, OverrideDTO{
		ID:           override.ID,
		CustomerID:   string(override.CustomerID),
		BillingMonth: override.BillingMonth.String(),
		SavedAt:      override.SavedAt.Format("2006-01-02T15:04:05Z07:00"),
		SavedBy:      override.SavedBy,
	})
}

// ResetOverride deletes the override so the invoice reverts to computed.
func (h *Handler) ResetOverride(w http.ResponseWriter, r *http.Request) {
	customer := billing.CustomerID(chi.URLParam(r, "id"))
	month, err := billing.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid billing month", err)
		return
	}

	if err := h.Invoices.ResetOverride(r.Context(), customer, month); err != nil {
		h.fail(w, "reset override", err)
		return
	}

	h.Log.Info("manual override reset",
		zap.String("customer", string(customer)),
		zap.String("month", month.String()))

	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// GetPayroll computes payroll records for every driver with runs billed
// in the month.
func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	month, err := billing.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}

	runs, snap, err := h.loadMonthScope(r, month)
	if err != nil {
		h.fail(w, "assemble payroll", err)
		return
	}
	rows := billing.DeriveAll(runs, snap)

	ctx := r.Context()
	attendance, err := h.Inputs.Attendance(ctx, month)
	if err != nil {
		h.fail(w, "assemble payroll", err)
		return
	}
	fuel, err := h.Inputs.Fuel(ctx, month)
	if err != nil {
		h.fail(w, "assemble payroll", err)
		return
	}
	vehicle, err := h.Inputs.VehicleCosts(ctx, month)
	if err != nil {
		h.fail(w, "assemble payroll", err)
		return
	}
	adjustments, err := h.Inputs.Adjustments(ctx, month)
	if err != nil {
		h.fail(w, "assemble payroll", err)
		return
	}

	records := h.Payroll.AssembleAll(rows, month, attendance, fuel, vehicle, adjustments)
	dtos := make([]PayrollRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toPayrollDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveDriverInput handles the four PUT endpoints for externally computed
// driver-month aggregates; kind comes from the route.
func (h *Handler) SaveDriverInput(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		month, err := billing.ParseMonth(chi.URLParam(r, "month"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month", err)
			return
		}
		driver := billing.DriverID(chi.URLParam(r, "id"))

		var req DriverInputRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}

		ctx := r.Context()
		switch kind {
		case "attendance":
			err = h.Inputs.SaveAttendance(ctx, month, driver, payroll.AttendanceSummary{
				WorkDays:      req.WorkDays,
				AbsentDays:    req.AbsentDays,
				PaidLeaveDays: req.PaidLeaveDays,
			})
		case "fuel":
			var s payroll.FuelSummary
			if s.FuelCost, err = parseAmountField("fuel_cost", req.FuelCost); err == nil {
				if s.FuelLiters, err = parseAmountField("fuel_liters", req.FuelLiters); err == nil {
					s.DistanceKm, err = parseAmountField("distance_km", req.DistanceKm)
				}
			}
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid fuel figures", err)
				return
			}
			err = h.Inputs.SaveFuel(ctx, month, driver, s)
		case "vehicle":
			var c payroll.VehicleCosts
			if c.WashCost, err = parseAmountField("wash_cost", req.WashCost); err == nil {
				c.RepairCost, err = parseAmountField("repair_cost", req.RepairCost)
			}
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid vehicle costs", err)
				return
			}
			err = h.Inputs.SaveVehicleCosts(ctx, month, driver, c)
		case "adjustments":
			var a payroll.Adjustments
			a.Note = req.Note
			if a.OtherAllowances, err = parseAmountField("other_allowances", req.OtherAllowances); err == nil {
				a.SplitRate, err = parseAmountField("split_rate", req.SplitRate)
			}
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid adjustments", err)
				return
			}
			err = h.Inputs.SaveAdjustments(ctx, month, driver, a)
		}
		if err != nil {
			h.fail(w, "save driver input", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// loadMonthScope loads the runs and config snapshot needed to assemble a
// billing month. The run window starts on the previous month's last day
// so past-midnight runs billed into this month are included.
func (h *Handler) loadMonthScope(r *http.Request, month billing.Month) ([]billing.ScheduledRun, billing.ConfigSnapshot, error) {
	from := month.Previous().Last()
	to := month.Last()

	runs, err := h.Records.RunsBetween(r.Context(), from, to)
	if err != nil {
		return nil, billing.ConfigSnapshot{}, err
	}
	snap, err := h.Records.Configs(r.Context())
	if err != nil {
		return nil, billing.ConfigSnapshot{}, err
	}
	return runs, snap, nil
}

// fail maps a domain error onto a status code and logs server faults.
func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	switch {
	case billing.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case billing.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	default:
		h.Log.Error("request failed", zap.String("action", action), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}

func newID() string { return uuid.NewString() }

func parseAmountField(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil && message != err.Error() {
		resp.Code = http.StatusText(status)
	}
	writeJSON(w, status, resp)
}
