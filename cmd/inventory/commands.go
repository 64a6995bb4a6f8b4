package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/inventory"
	"github.com/zero-day-ai/inventory/katalogus"
	"github.com/zero-day-ai/inventory/listing"
	"github.com/zero-day-ai/inventory/ooi"
	"github.com/zero-day-ai/inventory/params"
	"github.com/zero-day-ai/inventory/scanprofile"
)

// queryFlags carry the observed_at, depth and ooi_type query parameters.
// params.Parser interprets them leniently.
type queryFlags struct {
	observedAt string
	depth      string
	types      []string
}

func (q *queryFlags) values() url.Values {
	v := url.Values{}
	if q.observedAt != "" {
		v.Set(params.KeyObservedAt, q.observedAt)
	}
	if q.depth != "" {
		v.Set(params.KeyDepth, q.depth)
	}
	for _, t := range q.types {
		v.Add(params.KeyOOIType, t)
	}
	return v
}

func (q *queryFlags) addObservedAt(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.observedAt, "observed-at", "", "valid time as YYYY-MM-DD (default now)")
}

func (q *queryFlags) addDepth(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.depth, "depth", "", "tree depth, clamped to the configured maximum")
}

func (q *queryFlags) addTypes(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&q.types, "ooi-type", nil, "object type to include (repeatable, default all)")
}

func parseRef(arg string) (ooi.Reference, error) {
	ref, err := ooi.Parse(arg)
	if err != nil {
		return ooi.Reference{}, inventory.NewValidationError("parse reference", err)
	}
	return ref, nil
}

func newGetCmd(withSession sessionRunner) *cobra.Command {
	q := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "get <reference>",
		Short: "Fetch one object",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *inventory.Session) error {
			v := q.values()
			obj, err := s.Lookup(cmd.Context(), args[0], s.Params().ObservedAt(v))
			if err != nil {
				return err
			}
			return printJSON(cmd, obj)
		}),
	}
	q.addObservedAt(cmd)
	return cmd
}

func newTreeCmd(withSession sessionRunner) *cobra.Command {
	q := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "tree <reference>",
		Short: "Fetch the subgraph around an object",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *inventory.Session) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}
			v := q.values()
			_, tree, err := s.Tree(cmd.Context(), ref, s.Params().Depth(v), s.Params().ObservedAt(v))
			if err != nil {
				return err
			}
			return printJSON(cmd, tree)
		}),
	}
	q.addObservedAt(cmd)
	q.addDepth(cmd)
	return cmd
}

type listOutput struct {
	Types   string               `json:"types"`
	Count   int                  `json:"count"`
	Offset  int                  `json:"offset"`
	Items   []*ooi.Object        `json:"items"`
	Filters []listing.TypeFilter `json:"filters,omitempty"`
}

func newListCmd(withSession sessionRunner) *cobra.Command {
	q := &queryFlags{}
	var offset, limit int
	var showFilters bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List objects page by page",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *inventory.Session) error {
			v := q.values()
			l, err := s.List(s.Params().OOITypes(v), s.Params().ObservedAt(v))
			if err != nil {
				return err
			}
			count, err := l.Count(cmd.Context())
			if err != nil {
				return err
			}
			items, err := l.Slice(cmd.Context(), offset, offset+limit)
			if err != nil {
				return err
			}

			registry := ooi.Registry()
			out := listOutput{
				Types:  listing.TypesDisplay(registry, s.Params().Selected(v)),
				Count:  count,
				Offset: offset,
				Items:  items,
			}
			if showFilters {
				out.Filters = listing.TypeFilters(registry, s.Params().Selected(v))
			}
			return printJSON(cmd, out)
		}),
	}
	q.addObservedAt(cmd)
	q.addTypes(cmd)
	cmd.Flags().IntVar(&offset, "offset", 0, "index of the first object")
	cmd.Flags().IntVar(&limit, "limit", 50, "number of objects")
	cmd.Flags().BoolVar(&showFilters, "filters", false, "include the type filter checklist")
	return cmd
}

func newCountCmd(withSession sessionRunner) *cobra.Command {
	q := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count objects",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *inventory.Session) error {
			v := q.values()
			n, err := s.Count(cmd.Context(), s.Params().OOITypes(v), s.Params().ObservedAt(v))
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]int{"count": n})
		}),
	}
	q.addObservedAt(cmd)
	q.addTypes(cmd)
	return cmd
}

func newOriginsCmd(withSession sessionRunner) *cobra.Command {
	q := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "origins <reference>",
		Short: "Show declarations, observations and inferences of an object",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *inventory.Session) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}
			p, err := s.Origins(cmd.Context(), ref, s.Params().ObservedAt(q.values()))
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}),
	}
	q.addObservedAt(cmd)
	return cmd
}

func newDeclareCmd(withSession sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "declare <reference> <level>",
		Short: "Declare the scan level of an object (e.g. 2 or L2)",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *inventory.Session) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}
			level, err := scanprofile.ParseLevel(args[1])
			if err != nil {
				return inventory.NewValidationError("parse level", err)
			}
			profile, err := s.Declare(cmd.Context(), ref, level)
			if err != nil {
				return err
			}
			return printJSON(cmd, profile)
		}),
	}
}

func newPropertiesCmd(withSession sessionRunner) *cobra.Command {
	q := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "properties <reference>",
		Short: "Show the scalar properties of an object",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *inventory.Session) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}
			v := q.values()
			props, err := s.Properties(cmd.Context(), ref, s.Params().Depth(v), s.Params().ObservedAt(v))
			if err != nil {
				return err
			}
			return printJSON(cmd, props)
		}),
	}
	q.addObservedAt(cmd)
	q.addDepth(cmd)
	return cmd
}

func newPluginsCmd(withSession sessionRunner) *cobra.Command {
	var filter, where string
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List the plugin catalog of the organization",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *inventory.Session) error {
			opt, err := katalogus.ParseFilterOption(filter)
			if err != nil {
				return inventory.NewValidationError("parse filter", err)
			}
			var pred *katalogus.Predicate
			if where != "" {
				if pred, err = katalogus.CompilePredicate(where); err != nil {
					return inventory.NewValidationError("compile predicate", err)
				}
			}
			plugins, err := s.Plugins(cmd.Context(), opt, pred)
			if err != nil {
				return err
			}
			return printJSON(cmd, plugins)
		}),
	}
	cmd.Flags().StringVar(&filter, "filter", "", fmt.Sprintf("ordering and filter, one of %v", katalogus.FilterOptions()))
	cmd.Flags().StringVar(&where, "where", "", `CEL predicate over "plugin", e.g. 'plugin.scan_level <= 2'`)
	return cmd
}

// errUnhealthy makes the health command exit non-zero.
var errUnhealthy = errors.New("inventory is unhealthy")

func newHealthCmd(withSession sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the remote services",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *inventory.Session) error {
			report := s.Health(cmd.Context())
			if err := printJSON(cmd, report); err != nil {
				return err
			}
			if report.Overall.IsUnhealthy() {
				return errUnhealthy
			}
			return nil
		}),
	}
}
