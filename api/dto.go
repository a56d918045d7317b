/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Monetary
  amounts cross the wire as decimal strings, never floats, so documents
  round-trip exactly.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: RunJSON / MonthlyConfigJSON / FeeScheduleJSON
    double as the create-endpoint request bodies
*/
package api

import (
	"github.com/warp/fleet-billing/billing"
	"github.com/warp/fleet-billing/invoice"
	"github.com/warp/fleet-billing/payroll"
)

// =============================================================================
// INVOICE
// =============================================================================

type CategorySummaryDTO struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	RunCount    int    `json:"run_count"`
	TotalAmount string `json:"total_amount"`
}

type CategoryDetailDTO struct {
	Category       string `json:"category"`
	Route          string `json:"route"`
	RunCount       int    `json:"run_count"`
	UnitPrice      string `json:"unit_price"`
	DriverFeeTotal string `json:"driver_fee_total"`
	TollTotal      string `json:"toll_total"`
	TotalAmount    string `json:"total_amount"`
}

type InvoiceDTO struct {
	CustomerID   string               `json:"customer_id"`
	CustomerName string               `json:"customer_name,omitempty"`
	BillingMonth string               `json:"billing_month"`
	TotalAmount  string               `json:"total_amount"`
	TaxAmount    string               `json:"tax_amount"`
	GrandTotal   string               `json:"grand_total"`
	Summary      []CategorySummaryDTO `json:"summary_by_category"`
	Details      []CategoryDetailDTO  `json:"details_by_category"`
	Overridden   bool                 `json:"overridden"`
}

// OverrideRequest is the body of PUT .../override. The lines replace the
// computed invoice wholesale; totals are recomputed server-side.
type OverrideRequest struct {
	Summary []CategorySummaryDTO `json:"summary_by_category"`
	Details []CategoryDetailDTO  `json:"details_by_category"`
	SavedBy string               `json:"saved_by,omitempty"`
}

type OverrideDTO struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id"`
	BillingMonth string `json:"billing_month"`
	SavedAt      string `json:"saved_at"`
	SavedBy      string `json:"saved_by,omitempty"`
}

// =============================================================================
// PAYROLL
// =============================================================================

type PayrollRecordDTO struct {
	DriverID string `json:"driver_id"`
	Month    string `json:"month"`
	RunCount int    `json:"run_count"`

	WorkDays      int `json:"work_days"`
	AbsentDays    int `json:"absent_days"`
	PaidLeaveDays int `json:"paid_leave_days"`

	FuelCost   string `json:"fuel_cost"`
	DistanceKm string `json:"distance_km"`

	FeeTotal            string `json:"fee_total"`
	ChargeableFeeTotal  string `json:"chargeable_fee_total"`
	TollOverageTotal    string `json:"toll_overage_total"`
	PostalBurdenTotal   string `json:"postal_burden_total"`
	NetMargin           string `json:"net_margin"`
	SplitRate           string `json:"split_rate"`
	BasePayout          string `json:"base_payout"`
	AttendanceAllowance string `json:"attendance_allowance"`
	OtherAllowances     string `json:"other_allowances"`
	Payout              string `json:"payout"`
}

// DriverInputRequest carries one externally computed driver-month
// aggregate. Exactly one of the optional sections should be set,
// matching the endpoint it is posted to.
type DriverInputRequest struct {
	WorkDays      int `json:"work_days,omitempty"`
	AbsentDays    int `json:"absent_days,omitempty"`
	PaidLeaveDays int `json:"paid_leave_days,omitempty"`

	FuelCost   string `json:"fuel_cost,omitempty"`
	FuelLiters string `json:"fuel_liters,omitempty"`
	DistanceKm string `json:"distance_km,omitempty"`

	WashCost   string `json:"wash_cost,omitempty"`
	RepairCost string `json:"repair_cost,omitempty"`

	OtherAllowances string `json:"other_allowances,omitempty"`
	SplitRate       string `json:"split_rate,omitempty"`
	Note            string `json:"note,omitempty"`
}

// =============================================================================
// RUNS
// =============================================================================

type RunDTO struct {
	ID                 string `json:"id"`
	Date               string `json:"date"`
	Route              string `json:"route"`
	Departure          string `json:"departure,omitempty"`
	DepartureDisplay   string `json:"departure_display,omitempty"`
	Arrival            string `json:"arrival,omitempty"`
	Category           string `json:"category"`
	CustomerID         string `json:"customer_id"`
	DriverID           string `json:"driver_id"`
	VehicleID          string `json:"vehicle_id,omitempty"`
	BillingMonth       string `json:"billing_month"`
	PostalHighwayPaid  string `json:"postal_highway_paid"`
	GeneralHighwayPaid string `json:"general_highway_paid"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toSummaryDTOs(summaries []billing.CategorySummary) []CategorySummaryDTO {
	dtos := make([]CategorySummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = CategorySummaryDTO{
			Code:        string(s.Code),
			Label:       s.Label,
			RunCount:    s.RunCount,
			TotalAmount: s.TotalAmount.String(),
		}
	}
	return dtos
}

func toDetailDTOs(details []billing.CategoryDetail) []CategoryDetailDTO {
	dtos := make([]CategoryDetailDTO, len(details))
	for i, d := range details {
		dtos[i] = CategoryDetailDTO{
			Category:       string(d.Category),
			Route:          d.RouteName,
			RunCount:       d.RunCount,
			UnitPrice:      d.UnitPrice.String(),
			DriverFeeTotal: d.DriverFeeTotal.String(),
			TollTotal:      d.TollTotal.String(),
			TotalAmount:    d.TotalAmount.String(),
		}
	}
	return dtos
}

func toInvoiceDTO(inv invoice.Invoice) InvoiceDTO {
	return InvoiceDTO{
		CustomerID:   string(inv.Customer.ID),
		CustomerName: inv.Customer.Name,
		BillingMonth: inv.BillingMonth.String(),
		TotalAmount:  inv.TotalAmount.String(),
		TaxAmount:    inv.TaxAmount.String(),
		GrandTotal:   inv.GrandTotal.String(),
		Summary:      toSummaryDTOs(inv.SummaryByCategory),
		Details:      toDetailDTOs(inv.DetailsByCategory),
		Overridden:   inv.Overridden,
	}
}

func toPayrollDTO(rec payroll.PayrollRecord) PayrollRecordDTO {
	return PayrollRecordDTO{
		DriverID: string(rec.DriverID),
		Month:    rec.Month.String(),
		RunCount: rec.RunCount,

		WorkDays:      rec.Attendance.WorkDays,
		AbsentDays:    rec.Attendance.AbsentDays,
		PaidLeaveDays: rec.Attendance.PaidLeaveDays,

		FuelCost:   rec.Fuel.FuelCost.String(),
		DistanceKm: rec.Fuel.DistanceKm.String(),

		FeeTotal:            rec.FeeTotal.String(),
		ChargeableFeeTotal:  rec.ChargeableFeeTotal.String(),
		TollOverageTotal:    rec.TollOverageTotal.String(),
		PostalBurdenTotal:   rec.PostalBurdenTotal.String(),
		NetMargin:           rec.NetMargin.String(),
		SplitRate:           rec.SplitRate.String(),
		BasePayout:          rec.BasePayout.String(),
		AttendanceAllowance: rec.AttendanceAllowance.String(),
		OtherAllowances:     rec.Adjustments.OtherAllowances.String(),
		Payout:              rec.Payout.String(),
	}
}

func toRunDTO(run billing.ScheduledRun) RunDTO {
	return RunDTO{
		ID:                 run.ID,
		Date:               run.Date.String(),
		Route:              run.RouteName,
		Departure:          run.Departure,
		DepartureDisplay:   billing.FormatClockToken(run.Departure, billing.FormatDisplay),
		Arrival:            run.Arrival,
		Category:           string(run.Category),
		CustomerID:         string(run.CustomerID),
		DriverID:           string(run.DriverID),
		VehicleID:          string(run.VehicleID),
		BillingMonth:       billing.BillingMonthOf(run.Date, run.Departure).String(),
		PostalHighwayPaid:  run.PostalHighwayPaid.String(),
		GeneralHighwayPaid: run.GeneralHighwayPaid.String(),
	}
}

func fromSummaryDTOs(dtos []CategorySummaryDTO) ([]billing.CategorySummary, error) {
	summaries := make([]billing.CategorySummary, len(dtos))
	for i, dto := range dtos {
		amount, err := parseAmountField("total_amount", dto.TotalAmount)
		if err != nil {
			return nil, err
		}
		summaries[i] = billing.CategorySummary{
			Code:        billing.CategoryCode(dto.Code),
			Label:       dto.Label,
			RunCount:    dto.RunCount,
			TotalAmount: amount,
		}
		if summaries[i].Label == "" {
			summaries[i].Label = summaries[i].Code.Label()
		}
	}
	return summaries, nil
}

func fromDetailDTOs(dtos []CategoryDetailDTO) ([]billing.CategoryDetail, error) {
	details := make([]billing.CategoryDetail, len(dtos))
	for i, dto := range dtos {
		detail := billing.CategoryDetail{
			Category:  billing.CategoryCode(dto.Category),
			RouteName: dto.Route,
			RunCount:  dto.RunCount,
		}
		var err error
		if detail.UnitPrice, err = parseAmountField("unit_price", dto.UnitPrice); err != nil {
			return nil, err
		}
		if detail.DriverFeeTotal, err = parseAmountField("driver_fee_total", dto.DriverFeeTotal); err != nil {
			return nil, err
		}
		if detail.TollTotal, err = parseAmountField("toll_total", dto.TollTotal); err != nil {
			return nil, err
		}
		if detail.TotalAmount, err = parseAmountField("total_amount", dto.TotalAmount); err != nil {
			return nil, err
		}
		details[i] = detail
	}
	return details, nil
}
