package workspace

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mark3labs/tplvars/internal/token"
)

// Filter values accepted by ListVariables besides a sync group key.
const (
	FilterAll      = "all"
	FilterText     = "text"
	FilterDropdown = "dropdown"
)

// Sort values accepted by ListVariables.
const (
	SortDefault   = "default"
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
	SortGroupAsc  = "group_asc"
	SortGroupDesc = "group_desc"
)

// ListVariables returns registry names filtered and sorted for display.
// Filter is all, text, dropdown or a sync group key. Name sorting uses
// Korean collation with numeric ordering so that v2 sorts before v10.
func (s *State) ListVariables(filter, sortBy string) ([]string, error) {
	names := s.OrderedNames()

	switch sortBy {
	case "", SortDefault:
	case SortNameAsc, SortNameDesc, SortGroupAsc, SortGroupDesc:
		kind, dir, _ := strings.Cut(sortBy, "_")
		coll := collate.New(language.Korean, collate.Numeric, collate.Loose)
		slices.SortStableFunc(names, func(a, b string) int {
			var c int
			if kind == "group" {
				c = s.compareGroups(a, b)
			}
			if c == 0 {
				c = coll.CompareString(a, b)
			}
			if dir == "desc" {
				return -c
			}
			return c
		})
	default:
		return nil, fmt.Errorf("unknown sort %q", sortBy)
	}

	switch filter {
	case "", FilterAll:
		return names, nil
	case FilterText, FilterDropdown:
		return slices.DeleteFunc(names, func(n string) bool {
			return string(s.Configs[n].Mode) != filter
		}), nil
	default:
		return slices.DeleteFunc(names, func(n string) bool {
			return s.GroupKeyOf(n) != filter
		}), nil
	}
}

// compareGroups orders grouped names before ungrouped ones, and groups by age.
func (s *State) compareGroups(a, b string) int {
	ga, gb := s.SyncGroups[s.GroupKeyOf(a)], s.SyncGroups[s.GroupKeyOf(b)]
	switch {
	case ga == nil && gb == nil:
		return 0
	case ga == nil:
		return 1
	case gb == nil:
		return -1
	case ga == gb:
		return 0
	}
	return cmp.Compare(ga.CreatedAt, gb.CreatedAt)
}

// DisplayName strips the instance prefix from instance scoped names.
func DisplayName(name string) string {
	if id, ok := token.Parse(name).(token.InstanceScoped); ok && id.Original != "" {
		return id.Original
	}
	return name
}

// SharedDisplayNames returns the names in names whose display name is also
// the display name of another entry.
func SharedDisplayNames(names []string) map[string]bool {
	byDisplay := make(map[string][]string)
	for _, n := range names {
		d := DisplayName(n)
		byDisplay[d] = append(byDisplay[d], n)
	}

	shared := make(map[string]bool)
	for _, group := range byDisplay {
		if len(group) < 2 {
			continue
		}
		for _, n := range group {
			shared[n] = true
		}
	}
	return shared
}
