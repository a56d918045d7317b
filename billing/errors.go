/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers wrap these errors with additional context.

PROPAGATION POLICY:
  Local resolution failures are NOT errors: a malformed clock token or a
  route with no applicable configuration resolves to zero-valued fields so
  aggregation over a batch continues. Only two conditions surface:
  - no billable data for a customer/month (usually an upstream filter
    mistake, not a legitimately empty invoice)
  - storage failures from the override store, passed through unchanged

USAGE:
  if errors.Is(err, billing.ErrNoBillableData) { ... }
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoBillableData is returned when invoice assembly finds zero runs
	// for the requested customer and billing month.
	ErrNoBillableData = errors.New("no billable data for this customer in this period")

	// ErrOverrideNotFound is returned by override stores when no manual
	// override exists for the requested customer and month.
	ErrOverrideNotFound = errors.New("manual override not found")

	// ErrInvalidClockToken is returned where a caller explicitly validates
	// a token (e.g. record creation). Pipeline paths never raise it; they
	// absorb malformed tokens with defaults instead.
	ErrInvalidClockToken = errors.New("invalid clock token")

	// ErrInvalidRecord is returned when a record fails validation on write.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrRecordNotFound is returned by record stores for missing rows.
	ErrRecordNotFound = errors.New("record not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NoBillableDataError reports which customer/month produced no runs.
type NoBillableDataError struct {
	CustomerID CustomerID
	Month      Month
}

func (e *NoBillableDataError) Error() string {
	return fmt.Sprintf("no billable data for customer %s in %s", e.CustomerID, e.Month)
}

func (e *NoBillableDataError) Unwrap() error { return ErrNoBillableData }

// InvalidTokenError reports which field carried a malformed clock token.
type InvalidTokenError struct {
	Field string
	Token string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("%s: invalid clock token %q", e.Field, e.Token)
}

func (e *InvalidTokenError) Unwrap() error { return ErrInvalidClockToken }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// or an empty selection, rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoBillableData) ||
		errors.Is(err, ErrInvalidClockToken) ||
		errors.Is(err, ErrInvalidRecord)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOverrideNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}
