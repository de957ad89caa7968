package workspace

import (
	"fmt"
	"slices"
	"strings"
)

// Config returns the configuration registered for name.
func (s *State) Config(name string) (*VariableConfig, error) {
	c, ok := s.Configs[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrVariableNotFound)
	}
	return c, nil
}

// Ensure returns the configuration for name, creating a default one when
// missing. created reports whether a new entry was made.
func (s *State) Ensure(name string) (c *VariableConfig, created bool) {
	if c, ok := s.Configs[name]; ok {
		return c, false
	}
	c = NewVariableConfig()
	s.Configs[name] = c
	return c, true
}

// Remove deletes name from the registry and from every partner's SyncWith.
func (s *State) Remove(name string) {
	if _, ok := s.Configs[name]; !ok {
		return
	}
	s.detach(name)
	delete(s.Configs, name)
}

// RemovePrefix deletes every registry entry whose name starts with prefix and
// returns the removed names in sorted order.
func (s *State) RemovePrefix(prefix string) []string {
	var removed []string
	for _, name := range s.Names() {
		if strings.HasPrefix(name, prefix) {
			s.Remove(name)
			removed = append(removed, name)
		}
	}
	return removed
}

// Move re-keys the configuration of from under to, keeping mode, options,
// default and sync links. Partners are re-pointed at the new name.
func (s *State) Move(from, to string) error {
	c, err := s.Config(from)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}

	oldKey := s.GroupKeyOf(from)
	info := s.SyncGroups[oldKey]
	delete(s.SyncGroups, oldKey)

	for _, partner := range c.SyncWith {
		pc, ok := s.Configs[partner]
		if !ok {
			continue
		}
		pc.SyncWith = without(pc.SyncWith, from)
		pc.SyncWith = insertSorted(pc.SyncWith, to)
	}

	delete(s.Configs, from)
	s.Configs[to] = c

	if info != nil {
		s.SyncGroups[s.GroupKeyOf(to)] = info
	}
	return nil
}

// SetDefault sets the substitution value of name. Dropdown variables only
// accept one of their option values, or empty.
func (s *State) SetDefault(name, value string) error {
	c, err := s.Config(name)
	if err != nil {
		return err
	}
	if c.Mode == ModeDropdown && value != "" && c.OptionByValue(value) == -1 {
		return fmt.Errorf("%q has no option with value %q: %w", name, value, ErrOptionNotFound)
	}
	c.Default = value
	return nil
}

// SetMode switches the input mode of name. Leaving dropdown mode detaches the
// variable from its sync group; entering it snaps the default onto an option.
func (s *State) SetMode(name string, mode Mode) error {
	c, err := s.Config(name)
	if err != nil {
		return err
	}
	if c.Mode == mode {
		return nil
	}

	c.Mode = mode
	switch mode {
	case ModeText:
		s.detach(name)
	case ModeDropdown:
		if c.OptionByValue(c.Default) == -1 {
			c.Default = ""
			if len(c.Options) > 0 {
				c.Default = c.Options[0].Value
			}
		}
	}
	return nil
}

// AddOption appends a dropdown option. An empty display name falls back to
// the value; the first option added to a variable without a default becomes
// the default.
func (s *State) AddOption(name, label, value string) error {
	c, err := s.dropdown(name)
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyOptionValue
	}
	if c.OptionByValue(value) != -1 {
		return fmt.Errorf("%q: %w", value, ErrDuplicateOption)
	}
	if strings.TrimSpace(label) == "" {
		label = value
	}

	c.Options = append(c.Options, Option{Name: label, Value: value})
	if c.Default == "" {
		c.Default = value
	}
	return nil
}

// EditOption replaces the option currently holding oldValue. The default
// follows the edited value.
func (s *State) EditOption(name, oldValue, label, value string) error {
	c, err := s.dropdown(name)
	if err != nil {
		return err
	}

	idx := c.OptionByValue(oldValue)
	if idx == -1 {
		return fmt.Errorf("%q: %w", oldValue, ErrOptionNotFound)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyOptionValue
	}
	for i, o := range c.Options {
		if i != idx && o.Value == value {
			return fmt.Errorf("%q: %w", value, ErrDuplicateOption)
		}
	}
	if strings.TrimSpace(label) == "" {
		label = value
	}

	c.Options[idx] = Option{Name: label, Value: value}
	if c.Default == oldValue {
		c.Default = value
	}
	return nil
}

// RemoveOption deletes the option holding value. If it was the default, the
// default moves to the first remaining option or becomes empty.
func (s *State) RemoveOption(name, value string) error {
	c, err := s.dropdown(name)
	if err != nil {
		return err
	}

	idx := c.OptionByValue(value)
	if idx == -1 {
		return fmt.Errorf("%q: %w", value, ErrOptionNotFound)
	}

	c.Options = slices.Delete(c.Options, idx, idx+1)
	if c.Default == value {
		c.Default = ""
		if len(c.Options) > 0 {
			c.Default = c.Options[0].Value
		}
	}
	return nil
}

// MoveOption moves the option holding value to position to. Out of range
// positions are clamped.
func (s *State) MoveOption(name, value string, to int) error {
	c, err := s.dropdown(name)
	if err != nil {
		return err
	}

	idx := c.OptionByValue(value)
	if idx == -1 {
		return fmt.Errorf("%q: %w", value, ErrOptionNotFound)
	}

	opt := c.Options[idx]
	c.Options = slices.Delete(c.Options, idx, idx+1)
	to = max(0, min(to, len(c.Options)))
	c.Options = slices.Insert(c.Options, to, opt)
	return nil
}

func (s *State) dropdown(name string) (*VariableConfig, error) {
	c, err := s.Config(name)
	if err != nil {
		return nil, err
	}
	if c.Mode != ModeDropdown {
		return nil, fmt.Errorf("%q: %w", name, ErrModeMismatch)
	}
	return c, nil
}

func without(list []string, name string) []string {
	return slices.DeleteFunc(slices.Clone(list), func(s string) bool { return s == name })
}

func insertSorted(list []string, name string) []string {
	if slices.Contains(list, name) {
		return list
	}
	list = append(list, name)
	slices.Sort(list)
	return list
}
