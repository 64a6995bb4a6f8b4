package connector

import (
	"context"
	"time"

	"github.com/zero-day-ai/inventory/ooi"
)

// Connector is the typed view of the knowledge-graph service for one
// organization. Every method performs exactly one remote request.
//
// Implementations must be safe for concurrent use.
type Connector interface {
	// Get fetches a single object as it was at validTime.
	// Returns a *NotFoundError when no such object exists.
	Get(ctx context.Context, ref ooi.Reference, validTime time.Time) (*ooi.Object, error)

	// GetTree fetches the subgraph reachable from ref within depth hops.
	// Returns a *NotFoundError when ref does not exist.
	GetTree(ctx context.Context, ref ooi.Reference, depth int, validTime time.Time) (*ooi.ReferenceTree, error)

	// List returns the window [offset, offset+limit) of objects whose type is
	// in types. The page count is the total size of the query. A limit of 0
	// is a count probe and returns no items.
	List(ctx context.Context, types []string, validTime time.Time, offset, limit int) (*ooi.Page, error)

	// SaveScanProfile persists profile as of validTime.
	SaveScanProfile(ctx context.Context, profile ooi.ScanProfile, validTime time.Time) error

	// ListOrigins returns every origin whose result contains ref.
	ListOrigins(ctx context.Context, ref ooi.Reference, validTime time.Time) ([]ooi.Origin, error)
}

// Method names, as used in logs and by connectortest.
const (
	MethodGet             = "Get"
	MethodGetTree         = "GetTree"
	MethodList            = "List"
	MethodSaveScanProfile = "SaveScanProfile"
	MethodListOrigins     = "ListOrigins"
)
