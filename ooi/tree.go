package ooi

import (
	"errors"
	"fmt"
	"sort"
)

// ErrRootMissing indicates a tree whose store lacks the root object.
var ErrRootMissing = errors.New("tree store does not contain root")

// ReferenceNode is one node of a reference tree. Children are grouped by the
// relation (or reverse relation) name that leads to them.
type ReferenceNode struct {
	Reference Reference                  `json:"reference"`
	Children  map[string][]ReferenceNode `json:"children,omitempty"`
}

// ReferenceTree is a bounded-depth subgraph around Root. Store maps the
// string form of every reachable reference to its object.
type ReferenceTree struct {
	Root  ReferenceNode      `json:"root"`
	Store map[string]*Object `json:"store"`
}

// Validate checks that the store contains the root.
func (t *ReferenceTree) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil tree", ErrRootMissing)
	}
	if _, ok := t.Store[t.Root.Reference.String()]; !ok {
		return fmt.Errorf("%w: %s", ErrRootMissing, t.Root.Reference)
	}
	return nil
}

// RootObject returns the root object from the store.
func (t *ReferenceTree) RootObject() (*Object, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t.Store[t.Root.Reference.String()], nil
}

// Objects returns the stored objects sorted by primary key.
func (t *ReferenceTree) Objects() []*Object {
	keys := make([]string, 0, len(t.Store))
	for k := range t.Store {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*Object, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.Store[k])
	}
	return out
}

// Walk visits every node depth-first, root first. Relation names are
// visited in sorted order. Returning false from fn stops the walk.
func (t *ReferenceTree) Walk(fn func(node ReferenceNode, depth int) bool) {
	walk(t.Root, 0, fn)
}

func walk(node ReferenceNode, depth int, fn func(ReferenceNode, int) bool) bool {
	if !fn(node, depth) {
		return false
	}
	names := make([]string, 0, len(node.Children))
	for name := range node.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, child := range node.Children[name] {
			if !walk(child, depth+1, fn) {
				return false
			}
		}
	}
	return true
}
