// Package connectortest provides an in-memory connector.Connector that
// records every call, for tests of packages built on top of the graph.
package connectortest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zero-day-ai/inventory/connector"
	"github.com/zero-day-ai/inventory/ooi"
)

// Call is one recorded invocation.
type Call struct {
	Method    string
	Reference ooi.Reference
	Types     []string
	Depth     int
	Offset    int
	Limit     int
	ValidTime time.Time
}

// Connector serves objects, trees and origins from memory.
type Connector struct {
	mu       sync.Mutex
	objects  map[string]*ooi.Object
	trees    map[string]*ooi.ReferenceTree
	origins  map[string][]ooi.Origin
	profiles []ooi.ScanProfile
	failures map[string]error
	calls    []Call
}

// New returns an empty connector.
func New() *Connector {
	return &Connector{
		objects:  make(map[string]*ooi.Object),
		trees:    make(map[string]*ooi.ReferenceTree),
		origins:  make(map[string][]ooi.Origin),
		failures: make(map[string]error),
	}
}

// AddObjects stores objects, keyed by primary key.
func (c *Connector) AddObjects(objects ...*ooi.Object) *Connector {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range objects {
		c.objects[o.PrimaryKey()] = o
	}
	return c
}

// SetTree registers the tree returned by GetTree for its root reference.
func (c *Connector) SetTree(tree *ooi.ReferenceTree) *Connector {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trees[tree.Root.Reference.String()] = tree
	return c
}

// SetOrigins registers the origins returned by ListOrigins for ref.
func (c *Connector) SetOrigins(ref ooi.Reference, origins ...ooi.Origin) *Connector {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.origins[ref.String()] = origins
	return c
}

// FailOn makes every call of method return err. A nil err clears it.
func (c *Connector) FailOn(method string, err error) *Connector {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, method)
	} else {
		c.failures[method] = err
	}
	return c
}

// Calls returns a copy of the recorded calls in order.
func (c *Connector) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// CallCount returns how many times method was called.
func (c *Connector) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call.Method == method {
			n++
		}
	}
	return n
}

// SavedProfiles returns the scan profiles written so far.
func (c *Connector) SavedProfiles() []ooi.ScanProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ooi.ScanProfile(nil), c.profiles...)
}

func (c *Connector) record(call Call) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	return c.failures[call.Method]
}

// Get implements connector.Connector.
func (c *Connector) Get(_ context.Context, ref ooi.Reference, validTime time.Time) (*ooi.Object, error) {
	if err := c.record(Call{Method: connector.MethodGet, Reference: ref, ValidTime: validTime}); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.objects[ref.String()]
	if !ok {
		return nil, &connector.NotFoundError{Reference: ref}
	}
	return obj, nil
}

// GetTree implements connector.Connector. Without a registered tree, a
// single-node tree is built from the stored object.
func (c *Connector) GetTree(_ context.Context, ref ooi.Reference, depth int, validTime time.Time) (*ooi.ReferenceTree, error) {
	if err := c.record(Call{Method: connector.MethodGetTree, Reference: ref, Depth: depth, ValidTime: validTime}); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if tree, ok := c.trees[ref.String()]; ok {
		return tree, nil
	}
	obj, ok := c.objects[ref.String()]
	if !ok {
		return nil, &connector.NotFoundError{Reference: ref}
	}
	return &ooi.ReferenceTree{
		Root:  ooi.ReferenceNode{Reference: ref},
		Store: map[string]*ooi.Object{ref.String(): obj},
	}, nil
}

// List implements connector.Connector. Objects are ordered by primary key;
// an empty type set matches every object.
func (c *Connector) List(_ context.Context, types []string, validTime time.Time, offset, limit int) (*ooi.Page, error) {
	call := Call{
		Method:    connector.MethodList,
		Types:     append([]string(nil), types...),
		Offset:    offset,
		Limit:     limit,
		ValidTime: validTime,
	}
	if err := c.record(call); err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	c.mu.Lock()
	matched := make([]*ooi.Object, 0, len(c.objects))
	for _, o := range c.objects {
		if len(wanted) == 0 || wanted[o.Type()] {
			matched = append(matched, o)
		}
	}
	c.mu.Unlock()
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PrimaryKey() < matched[j].PrimaryKey()
	})

	page := &ooi.Page{Count: len(matched), Items: []*ooi.Object{}}
	if offset >= len(matched) || limit <= 0 {
		return page, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	page.Items = append(page.Items, matched[offset:end]...)
	return page, nil
}

// SaveScanProfile implements connector.Connector.
func (c *Connector) SaveScanProfile(_ context.Context, profile ooi.ScanProfile, validTime time.Time) error {
	if err := c.record(Call{Method: connector.MethodSaveScanProfile, Reference: profile.Reference, ValidTime: validTime}); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles = append(c.profiles, profile)
	return nil
}

// ListOrigins implements connector.Connector.
func (c *Connector) ListOrigins(_ context.Context, ref ooi.Reference, validTime time.Time) ([]ooi.Origin, error) {
	if err := c.record(Call{Method: connector.MethodListOrigins, Reference: ref, ValidTime: validTime}); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ooi.Origin(nil), c.origins[ref.String()]...), nil
}

var _ connector.Connector = (*Connector)(nil)
