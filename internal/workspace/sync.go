package workspace

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Palette is the cycle of colours assigned to sync groups by age.
var Palette = []string{
	"#fdba74", "#86efac", "#93c5fd", "#f9a8d4",
	"#a5b4fc", "#fcd34d", "#6ee7b7", "#c4b5fd",
}

// GroupKey returns the canonical key of a member set: sorted, comma joined.
func GroupKey(members []string) string {
	sorted := slices.Clone(members)
	slices.Sort(sorted)
	return strings.Join(slices.Compact(sorted), ",")
}

// GroupMembers returns name plus its sync partners, sorted. It returns nil
// when name is not synced with anything.
func (s *State) GroupMembers(name string) []string {
	c, ok := s.Configs[name]
	if !ok || len(c.SyncWith) == 0 {
		return nil
	}
	members := append([]string{name}, c.SyncWith...)
	slices.Sort(members)
	return slices.Compact(members)
}

// GroupKeyOf returns the sync group key name belongs to, or "".
func (s *State) GroupKeyOf(name string) string {
	members := s.GroupMembers(name)
	if members == nil {
		return ""
	}
	return strings.Join(members, ",")
}

// Link puts a and b (and everyone already synced with either) into one group.
// The merged group keeps the oldest creation time of the groups it absorbs.
func (s *State) Link(a, b string, now time.Time) error {
	if a == b {
		return ErrSelfSync
	}
	if _, err := s.dropdown(a); err != nil {
		return err
	}
	if _, err := s.dropdown(b); err != nil {
		return err
	}

	current := append([]string{a}, s.Configs[a].SyncWith...)
	target := append([]string{b}, s.Configs[b].SyncWith...)
	full := GroupKey(append(slices.Clone(current), target...))
	members := strings.Split(full, ",")

	// Absorb every existing group touched by the merge
	oldest := now.UnixMilli()
	for _, m := range append(current, target...) {
		key := s.GroupKeyOf(m)
		if g, ok := s.SyncGroups[key]; ok {
			oldest = min(oldest, g.CreatedAt)
			delete(s.SyncGroups, key)
		}
	}

	for _, m := range members {
		if c, ok := s.Configs[m]; ok {
			c.SyncWith = without(members, m)
		}
	}
	if _, ok := s.SyncGroups[full]; !ok {
		s.SyncGroups[full] = &SyncGroup{CreatedAt: oldest}
	}

	s.renumberGroups()
	return nil
}

// Unlink removes b from a's group. The remaining members keep the group's
// metadata when at least two of them are left.
func (s *State) Unlink(a, b string, now time.Time) error {
	ca, err := s.Config(a)
	if err != nil {
		return err
	}
	cb, err := s.Config(b)
	if err != nil {
		return err
	}
	if !slices.Contains(ca.SyncWith, b) {
		return nil
	}

	oldMembers := s.GroupMembers(a)
	oldKey := strings.Join(oldMembers, ",")
	info := s.SyncGroups[oldKey]
	delete(s.SyncGroups, oldKey)

	remaining := without(oldMembers, b)
	for _, m := range remaining {
		if c, ok := s.Configs[m]; ok {
			c.SyncWith = without(remaining, m)
		}
	}
	cb.SyncWith = slices.DeleteFunc(slices.Clone(cb.SyncWith), func(m string) bool {
		return slices.Contains(remaining, m)
	})

	if len(remaining) >= 2 {
		g := &SyncGroup{CreatedAt: now.UnixMilli()}
		if info != nil {
			cp := *info
			g = &cp
		}
		s.SyncGroups[GroupKey(remaining)] = g
	}

	s.renumberGroups()
	return nil
}

// ResetGroup dissolves the group with the given key, clearing every member's
// sync links.
func (s *State) ResetGroup(key string) error {
	found := false
	for _, name := range s.Names() {
		if s.GroupKeyOf(name) == key {
			s.Configs[name].SyncWith = []string{}
			found = true
		}
	}
	_, known := s.SyncGroups[key]
	if !found && !known {
		return fmt.Errorf("sync group %q not found", key)
	}

	delete(s.SyncGroups, key)
	s.renumberGroups()
	return nil
}

// RefreshSyncGroups prunes group metadata that no longer matches a symmetric
// member set, adds metadata for new groups and renumbers names and colours.
func (s *State) RefreshSyncGroups(now time.Time) {
	current := make(map[string]bool)
	for name, c := range s.Configs {
		if c.Mode == ModeDropdown && len(c.SyncWith) > 0 {
			current[s.GroupKeyOf(name)] = true
		}
	}

	for key := range s.SyncGroups {
		if !s.validGroup(key) && !current[key] {
			delete(s.SyncGroups, key)
		}
	}
	for key := range current {
		if _, ok := s.SyncGroups[key]; !ok {
			s.SyncGroups[key] = &SyncGroup{CreatedAt: now.UnixMilli()}
		}
	}

	s.renumberGroups()
}

// SymmetryViolations returns "a->b" pairs where b is listed in a's SyncWith
// but a is missing from b's.
func (s *State) SymmetryViolations() []string {
	var out []string
	for _, name := range s.Names() {
		for _, partner := range s.Configs[name].SyncWith {
			pc, ok := s.Configs[partner]
			if !ok || !slices.Contains(pc.SyncWith, name) {
				out = append(out, name+"->"+partner)
			}
		}
	}
	return out
}

// PropagateSync copies the selection of source onto its sync partners by
// display label. It returns the partners whose default changed.
func (s *State) PropagateSync(source string) []string {
	src, ok := s.Configs[source]
	if !ok || len(src.SyncWith) == 0 {
		return nil
	}

	idx := src.OptionByValue(src.Default)
	if idx == -1 {
		return nil
	}
	label := src.Options[idx].Name

	var changed []string
	for _, target := range src.SyncWith {
		tc, ok := s.Configs[target]
		if !ok || tc.Mode != ModeDropdown {
			continue
		}
		ti := tc.OptionByName(label)
		if ti == -1 {
			continue
		}
		if tc.Default != tc.Options[ti].Value {
			tc.Default = tc.Options[ti].Value
			changed = append(changed, target)
		}
	}
	return changed
}

// detach removes name from its group. The rest of the group keeps its
// metadata when at least two members remain.
func (s *State) detach(name string) {
	c, ok := s.Configs[name]
	if !ok || len(c.SyncWith) == 0 {
		return
	}

	oldKey := s.GroupKeyOf(name)
	info := s.SyncGroups[oldKey]
	delete(s.SyncGroups, oldKey)

	partners := c.SyncWith
	for _, p := range partners {
		if pc, ok := s.Configs[p]; ok {
			pc.SyncWith = without(pc.SyncWith, name)
		}
	}
	c.SyncWith = []string{}

	if info != nil && len(partners) >= 2 {
		s.SyncGroups[GroupKey(partners)] = info
	}
	s.renumberGroups()
}

func (s *State) validGroup(key string) bool {
	members := strings.Split(key, ",")
	if len(members) < 2 {
		return false
	}
	for _, m := range members {
		c, ok := s.Configs[m]
		if !ok || c.Mode != ModeDropdown {
			return false
		}
		for _, other := range members {
			if other != m && !slices.Contains(c.SyncWith, other) {
				return false
			}
		}
	}
	return true
}

func (s *State) renumberGroups() {
	keys := slices.SortedFunc(maps.Keys(s.SyncGroups), func(a, b string) int {
		return cmp.Or(
			cmp.Compare(s.SyncGroups[a].CreatedAt, s.SyncGroups[b].CreatedAt),
			cmp.Compare(a, b),
		)
	})
	for i, key := range keys {
		g := s.SyncGroups[key]
		g.Name = fmt.Sprintf("Group %d", i+1)
		g.Color = Palette[i%len(Palette)]
	}
}
