// Package collect provides the collection boundary: external source
// clients that produce normalized events, and the persisted per-source
// collection cursor.
package collect

import (
	"context"
	"time"

	"github.com/intelcore/intelcore/pkg/types"
)

// Collector is the boundary to one external message source. Retry and
// fallback strategies inside a collector are its own concern; the core
// only consumes the returned records.
type Collector interface {
	// Name identifies the source; it tags events and keys the cursor.
	Name() string

	// Collect fetches records newer than since, in timestamp order.
	Collect(ctx context.Context, since time.Time) ([]types.Event, error)
}
