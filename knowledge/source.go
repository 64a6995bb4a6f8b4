// Package knowledge looks up reference data about objects, such as the
// description and risk of a finding type, keyed by information id.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrInvalidKnowledgeBase indicates a knowledge-base document that cannot be parsed.
var ErrInvalidKnowledgeBase = errors.New("invalid knowledge base")

// Entry is the data known about one information id.
type Entry map[string]any

// Source returns the entry for an information id. Unknown ids yield
// (nil, nil).
type Source interface {
	Lookup(ctx context.Context, informationID string) (Entry, error)
}

// Static is an in-memory Source.
type Static map[string]Entry

// Lookup implements Source. The returned entry is a copy.
func (s Static) Lookup(_ context.Context, informationID string) (Entry, error) {
	entry, ok := s[informationID]
	if !ok {
		return nil, nil
	}
	out := make(Entry, len(entry))
	for k, v := range entry {
		out[k] = v
	}
	return out, nil
}

// IDs returns the known information ids, sorted.
func (s Static) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Parse reads a YAML document mapping information ids to entries:
//
//	KAT-NO-SPF:
//	  description: No SPF record found.
//	  risk: medium
func Parse(data []byte) (Static, error) {
	var raw map[string]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKnowledgeBase, err)
	}

	out := make(Static, len(raw))
	for id, fields := range raw {
		if id == "" {
			return nil, fmt.Errorf("%w: empty information id", ErrInvalidKnowledgeBase)
		}
		entry := make(Entry, len(fields))
		for k, v := range fields {
			entry[k] = v
		}
		out[id] = entry
	}
	return out, nil
}

// LoadFile reads a YAML knowledge base from path.
func LoadFile(path string) (Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	return Parse(data)
}
