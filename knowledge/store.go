package knowledge

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/inventory/ooi"
)

// ForObjects looks up every distinct information id of objects once and
// returns the entries found, keyed by information id. Ids without an entry
// are left out.
func ForObjects(ctx context.Context, source Source, objects []*ooi.Object) (map[string]Entry, error) {
	out := make(map[string]Entry)
	seen := make(map[string]bool, len(objects))
	for _, o := range objects {
		id := o.InformationID()
		if seen[id] {
			continue
		}
		seen[id] = true

		entry, err := source.Lookup(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("knowledge for %s: %w", id, err)
		}
		if entry != nil {
			out[id] = entry
		}
	}
	return out, nil
}
