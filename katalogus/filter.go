package katalogus

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
)

// FilterOption orders or narrows a plugin listing.
type FilterOption string

const (
	FilterNone            FilterOption = ""
	FilterEnabled         FilterOption = "enabled"
	FilterDisabled        FilterOption = "disabled"
	FilterAZ              FilterOption = "a-z"
	FilterZA              FilterOption = "z-a"
	FilterEnabledDisabled FilterOption = "enabled-disabled"
	FilterDisabledEnabled FilterOption = "disabled-enabled"
)

// ErrUnknownFilter is returned by ParseFilterOption.
var ErrUnknownFilter = errors.New("unknown filter option")

// FilterOptions lists the accepted options in display order.
func FilterOptions() []FilterOption {
	return []FilterOption{
		FilterEnabled, FilterDisabled, FilterAZ, FilterZA, FilterEnabledDisabled, FilterDisabledEnabled,
	}
}

// ParseFilterOption parses s; the empty string is FilterNone.
func ParseFilterOption(s string) (FilterOption, error) {
	opt := FilterOption(strings.ToLower(strings.TrimSpace(s)))
	if opt == FilterNone {
		return FilterNone, nil
	}
	for _, known := range FilterOptions() {
		if opt == known {
			return opt, nil
		}
	}
	return FilterNone, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Apply returns a new slice of plugins filtered and ordered by opt.
// FilterNone keeps the catalog order.
func Apply(plugins []Plugin, opt FilterOption) []Plugin {
	out := make([]Plugin, 0, len(plugins))
	for _, p := range plugins {
		switch {
		case opt == FilterEnabled && !p.Enabled, opt == FilterDisabled && p.Enabled:
			continue
		}
		out = append(out, p)
	}

	byName := func(i, j int) bool {
		return strings.ToLower(out[i].DisplayName()) < strings.ToLower(out[j].DisplayName())
	}
	switch opt {
	case FilterAZ:
		sort.SliceStable(out, byName)
	case FilterZA:
		sort.SliceStable(out, func(i, j int) bool { return byName(j, i) })
	case FilterEnabledDisabled:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Enabled && !out[j].Enabled })
	case FilterDisabledEnabled:
		sort.SliceStable(out, func(i, j int) bool { return !out[i].Enabled && out[j].Enabled })
	}
	return out
}

// ErrInvalidPredicate is returned for expressions that do not compile to a
// boolean.
var ErrInvalidPredicate = errors.New("invalid plugin predicate")

// Predicate is a compiled CEL expression over a single plugin, bound to the
// variable "plugin". For example:
//
//	plugin.enabled && plugin.scan_level <= 2 && "Hostname" in plugin.consumes
type Predicate struct {
	expr string
	prg  cel.Program
}

// CompilePredicate compiles expr.
func CompilePredicate(expr string) (*Predicate, error) {
	env, err := cel.NewEnv(cel.Variable("plugin", cel.MapType(cel.StringType, cel.DynType)))
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPredicate, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: expression yields %s, not bool", ErrInvalidPredicate, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPredicate, err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (p *Predicate) String() string {
	return p.expr
}

// Match evaluates the predicate for plugin.
func (p *Predicate) Match(plugin Plugin) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{"plugin": plugin.activation()})
	if err != nil {
		return false, fmt.Errorf("evaluate %q for %s: %w", p.expr, plugin.ID, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q yielded %T for %s", ErrInvalidPredicate, p.expr, out.Value(), plugin.ID)
	}
	return b, nil
}

// Select returns the plugins matching the predicate, in order.
func (p *Predicate) Select(plugins []Plugin) ([]Plugin, error) {
	out := make([]Plugin, 0, len(plugins))
	for _, plugin := range plugins {
		ok, err := p.Match(plugin)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, plugin)
		}
	}
	return out, nil
}
