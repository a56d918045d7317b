package invoice

import (
	"context"

	"github.com/warp/fleet-billing/billing"
)

// =============================================================================
// OVERRIDE STORE - Persistence interface for manual overrides
// =============================================================================

// OverrideStore persists manual overrides keyed by (customer, month).
// Put replaces any existing override for the key in a single atomic write;
// concurrent writers to the same key race at the storage layer, the engine
// adds no locking of its own.
//
// Get returns billing.ErrOverrideNotFound (possibly wrapped) when no
// override exists for the key. Storage failures are returned unchanged and
// never retried here.
//
// IMPLEMENTATIONS:
//   - store/memory: in-memory, for tests and development
//   - store/sqlite: production SQLite
type OverrideStore interface {
	Get(ctx context.Context, customer billing.CustomerID, month billing.Month) (ManualOverride, error)
	Put(ctx context.Context, override ManualOverride) error
	Delete(ctx context.Context, customer billing.CustomerID, month billing.Month) error
}
