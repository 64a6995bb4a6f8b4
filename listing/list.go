package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zero-day-ai/inventory/connector"
	"github.com/zero-day-ai/inventory/ooi"
)

// ErrInvalidWindow is returned for negative indices and inverted slices.
// No request is sent in that case.
var ErrInvalidWindow = errors.New("invalid window")

// List is a lazily paged view over every object of a type set at one valid
// time. It never holds the whole collection: each call maps to exactly one
// List request, except Count which is fetched once and then cached.
//
// Thread-safety: a List is safe for concurrent use.
type List struct {
	conn      connector.Connector
	types     []string
	validTime time.Time

	mu    sync.Mutex
	count *int
}

// New returns a list of objects whose type is in types, as of validTime.
func New(conn connector.Connector, types []string, validTime time.Time) *List {
	return &List{
		conn:      conn,
		types:     append([]string(nil), types...),
		validTime: validTime,
	}
}

// Types returns the type set of the list.
func (l *List) Types() []string {
	return append([]string(nil), l.types...)
}

// ValidTime returns the time the list observes the graph at.
func (l *List) ValidTime() time.Time {
	return l.validTime
}

// Count returns the total number of objects. The first call issues a
// count-only request; later calls return the cached value. A failed request
// is not cached.
func (l *List) Count(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count != nil {
		return *l.count, nil
	}
	page, err := l.conn.List(ctx, l.types, l.validTime, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("count objects: %w", err)
	}
	n := page.Count
	l.count = &n
	return n, nil
}

// Get returns the object at index. An index past the end yields
// (nil, false, nil).
func (l *List) Get(ctx context.Context, index int) (*ooi.Object, bool, error) {
	if index < 0 {
		return nil, false, fmt.Errorf("%w: index %d", ErrInvalidWindow, index)
	}
	page, err := l.conn.List(ctx, l.types, l.validTime, index, 1)
	if err != nil {
		return nil, false, fmt.Errorf("get object %d: %w", index, err)
	}
	if len(page.Items) == 0 {
		return nil, false, nil
	}
	return page.Items[0], true, nil
}

// Slice returns the objects in [start, stop). The result may be shorter than
// stop-start when the window runs past the end of the collection.
func (l *List) Slice(ctx context.Context, start, stop int) ([]*ooi.Object, error) {
	if start < 0 || stop < start {
		return nil, fmt.Errorf("%w: [%d:%d]", ErrInvalidWindow, start, stop)
	}
	page, err := l.conn.List(ctx, l.types, l.validTime, start, stop-start)
	if err != nil {
		return nil, fmt.Errorf("slice objects [%d:%d]: %w", start, stop, err)
	}
	return page.Items, nil
}
