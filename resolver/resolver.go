// Package resolver fetches a single object, optionally together with the
// subgraph around it.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zero-day-ai/inventory/connector"
	"github.com/zero-day-ai/inventory/ooi"
)

// ErrInvalidDepth is returned for a depth below 1.
var ErrInvalidDepth = errors.New("depth must be at least 1")

// Resolver turns a reference into an object. At depth 1 it reads the object
// alone; deeper resolutions fetch the reference tree and pick the root out of
// its store. The tree of the last resolution is available through Tree.
//
// Thread-safety: a Resolver is safe for concurrent use, but Tree only reports
// the most recent resolution across all callers.
type Resolver struct {
	conn connector.Connector

	mu   sync.RWMutex
	tree *ooi.ReferenceTree
}

// New returns a resolver reading through conn.
func New(conn connector.Connector) *Resolver {
	return &Resolver{conn: conn}
}

// Resolve returns the object for ref as of validTime.
//
// Errors from the connector are returned wrapped, so connector.IsNotFound
// still applies. A tree whose store lacks its root yields ooi.ErrRootMissing.
// A failed resolution clears Tree.
func (r *Resolver) Resolve(ctx context.Context, ref ooi.Reference, depth int, validTime time.Time) (*ooi.Object, error) {
	if depth < 1 {
		r.setTree(nil)
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDepth, depth)
	}

	if depth == 1 {
		obj, err := r.conn.Get(ctx, ref, validTime)
		if err != nil {
			r.setTree(nil)
			return nil, fmt.Errorf("resolve %s: %w", ref, err)
		}
		r.setTree(&ooi.ReferenceTree{
			Root:  ooi.ReferenceNode{Reference: obj.Reference()},
			Store: map[string]*ooi.Object{obj.PrimaryKey(): obj},
		})
		return obj, nil
	}

	tree, err := r.conn.GetTree(ctx, ref, depth, validTime)
	if err != nil {
		r.setTree(nil)
		return nil, fmt.Errorf("resolve %s at depth %d: %w", ref, depth, err)
	}

	obj, err := tree.RootObject()
	if err != nil {
		r.setTree(nil)
		return nil, fmt.Errorf("resolve %s: %w", ref, err)
	}
	r.setTree(tree)
	return obj, nil
}

func (r *Resolver) setTree(tree *ooi.ReferenceTree) {
	r.mu.Lock()
	r.tree = tree
	r.mu.Unlock()
}

// Tree returns the tree of the last resolution, or nil when it failed or
// nothing was resolved yet. At depth 1 the tree holds the object alone.
func (r *Resolver) Tree() *ooi.ReferenceTree {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree
}
