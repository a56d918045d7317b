/*
Package invoice assembles per-customer monthly invoices from the billing
engine's derived rows, with a manual-override layer on top.

PURPOSE:
  Orchestrates billing-month resolution, fee derivation, and aggregation
  for one customer and month, then merges in a persisted manual override
  when one exists. The override lets an operator replace the computed
  invoice lines; deleting it reverts to a fresh computation.

THE INVOICE SHAPE:
  Document/print and spreadsheet-export collaborators rely on the Invoice
  struct field-for-field. Do not rename or drop fields without updating
  those collaborators.

SEE ALSO:
  - assembler.go: the assembly pipeline and override lifecycle
  - override.go: the OverrideStore persistence interface
*/
package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/fleet-billing/billing"
)

// CustomerInfo identifies the invoiced customer. Supplied by the caller;
// the engine never looks customers up itself.
type CustomerInfo struct {
	ID         billing.CustomerID
	Name       string
	PostalCode string
	Address    string
}

// Invoice is the computed (or overridden) billing document for one
// customer and month.
type Invoice struct {
	Customer     CustomerInfo
	BillingMonth billing.Month

	TotalAmount decimal.Decimal
	TaxAmount   decimal.Decimal
	GrandTotal  decimal.Decimal

	SummaryByCategory []billing.CategorySummary
	DetailsByCategory []billing.CategoryDetail

	// Overridden is true when the summary/details came from a manual
	// override rather than fresh computation.
	Overridden bool
}

// ManualOverride is a persisted replacement of the computed invoice lines
// for one customer and month. Once written it is returned verbatim until
// reset; reset restores whatever a fresh computation produces at that
// moment, not a cached historical value.
type ManualOverride struct {
	ID           string
	CustomerID   billing.CustomerID
	BillingMonth billing.Month
	Summary      []billing.CategorySummary
	Details      []billing.CategoryDetail
	SavedAt      time.Time
	SavedBy      string
}
