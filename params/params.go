// Package params parses the query parameters accepted at the boundary:
// observed_at, depth and ooi_type.
package params

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zero-day-ai/inventory/ooi"
)

// Query parameter names.
const (
	KeyObservedAt = "observed_at"
	KeyDepth      = "depth"
	KeyOOIType    = "ooi_type"
)

// DateLayout is the format of observed_at.
const DateLayout = "2006-01-02"

// Depth bounds used when none are configured.
const (
	DefaultDepth = 2
	MaxDepth     = 9
)

// Parser applies the configured defaults and limits.
type Parser struct {
	now          func() time.Time
	defaultDepth int
	maxDepth     int
	registry     ooi.TypeRegistry
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithDepth sets the default and maximum depth. Non-positive values keep the
// package defaults.
func WithDepth(defaultDepth, maxDepth int) Option {
	return func(p *Parser) {
		if defaultDepth > 0 {
			p.defaultDepth = defaultDepth
		}
		if maxDepth > 0 {
			p.maxDepth = maxDepth
		}
	}
}

// WithRegistry sets the registry that defines "all types".
func WithRegistry(registry ooi.TypeRegistry) Option {
	return func(p *Parser) {
		if registry != nil {
			p.registry = registry
		}
	}
}

// New returns a parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		now:          time.Now,
		defaultDepth: DefaultDepth,
		maxDepth:     MaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.defaultDepth > p.maxDepth {
		p.defaultDepth = p.maxDepth
	}
	return p
}

// ObservedAt parses observed_at. Missing or unparsable values yield the
// current instant in UTC; a valid date yields its midnight in UTC.
//
// The date is read as a UTC calendar day, never in the local zone, so the
// same observed_at selects the same valid time on every host. Data
// recorded later that day is not visible at that instant.
func (p *Parser) ObservedAt(q url.Values) time.Time {
	raw := strings.TrimSpace(q.Get(KeyObservedAt))
	if raw == "" {
		return p.now().UTC()
	}
	date, err := time.Parse(DateLayout, raw)
	if err != nil {
		return p.now().UTC()
	}
	return date.UTC()
}

// Depth parses depth, clamped to the maximum. Missing or non-integer values
// yield the default; values below 1 are raised to 1.
func (p *Parser) Depth(q url.Values) int {
	raw := strings.TrimSpace(q.Get(KeyDepth))
	if raw == "" {
		return p.defaultDepth
	}
	depth, err := strconv.Atoi(raw)
	if err != nil {
		return p.defaultDepth
	}
	return p.clamp(depth)
}

func (p *Parser) clamp(depth int) int {
	if depth > p.maxDepth {
		return p.maxDepth
	}
	if depth < 1 {
		return 1
	}
	return depth
}

// OOITypes returns the repeated ooi_type values, dropping blanks,
// duplicates and unregistered names. Without any usable value every
// registered type is returned.
func (p *Parser) OOITypes(q url.Values) []string {
	registry := p.registry
	if registry == nil {
		registry = ooi.Registry()
	}

	seen := make(map[string]bool)
	var out []string
	for _, t := range q[KeyOOIType] {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] || !registry.IsRegistered(t) {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return registry.AllTypes()
	}
	return out
}

// Selected returns the raw ooi_type selection, without defaults, for display
// purposes.
func (p *Parser) Selected(q url.Values) []string {
	var out []string
	for _, t := range q[KeyOOIType] {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
