package listing

import (
	"sort"
	"strings"

	"github.com/zero-day-ai/inventory/ooi"
)

// AllLabel is shown when no type filter narrows the listing.
const AllLabel = "All"

// TypeFilter is one entry of the type selector.
type TypeFilter struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Checked bool   `json:"checked"`
}

// TypeFilters returns one filter per registered type, sorted by label. With
// no selection every filter is checked.
func TypeFilters(registry ooi.TypeRegistry, selected []string) []TypeFilter {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}

	types := registry.AllTypes()
	filters := make([]TypeFilter, 0, len(types))
	for _, name := range types {
		filters = append(filters, TypeFilter{
			Label:   name,
			Value:   name,
			Checked: len(selected) == 0 || chosen[name],
		})
	}
	sort.Slice(filters, func(i, j int) bool {
		return filters[i].Label < filters[j].Label
	})
	return filters
}

// TypesDisplay summarises a selection: AllLabel when nothing or everything is
// selected, otherwise the selected names joined by ", ".
func TypesDisplay(registry ooi.TypeRegistry, selected []string) string {
	if len(selected) == 0 || len(selected) == len(registry.AllTypes()) {
		return AllLabel
	}
	return strings.Join(selected, ", ")
}
