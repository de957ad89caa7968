// Package workspace holds the editable state of a template workspace: the
// main template text, the variable registry, code blocks and sync groups.
//
// State is not safe for concurrent use. The engine package owns a single
// State and serializes access to it.
package workspace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Mode is the input mode of a variable.
type Mode string

const (
	ModeText     Mode = "text"
	ModeDropdown Mode = "dropdown"
)

// ParseMode validates a user supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeText, ModeDropdown:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want text or dropdown)", s)
	}
}

// Option is one dropdown choice. Name is the display label, Value is what
// gets substituted.
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value" validate:"required"`
}

// UnmarshalJSON accepts both the {name,value} object form and the legacy
// bare string form, where the string is used for both fields.
func (o *Option) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Name = s
		o.Value = s
		return nil
	}

	type plain Option
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode option: %w", err)
	}
	*o = Option(p)
	return nil
}

// VariableConfig is the registry entry for one variable name.
type VariableConfig struct {
	Mode     Mode     `json:"mode" validate:"oneof=text dropdown"`
	Options  []Option `json:"options" validate:"dive"`
	Default  string   `json:"default"`
	SyncWith []string `json:"syncWith"`
}

// NewVariableConfig returns the default configuration for a newly seen name.
func NewVariableConfig() *VariableConfig {
	return &VariableConfig{
		Mode:     ModeText,
		Options:  []Option{},
		SyncWith: []string{},
	}
}

// Clone returns a deep copy of c.
func (c *VariableConfig) Clone() *VariableConfig {
	return &VariableConfig{
		Mode:     c.Mode,
		Options:  append([]Option{}, c.Options...),
		Default:  c.Default,
		SyncWith: append([]string{}, c.SyncWith...),
	}
}

// OptionByValue returns the index of the option with the given value, or -1.
func (c *VariableConfig) OptionByValue(value string) int {
	return slices.IndexFunc(c.Options, func(o Option) bool { return o.Value == value })
}

// OptionByName returns the index of the first option with the given display
// label, or -1.
func (c *VariableConfig) OptionByName(name string) int {
	return slices.IndexFunc(c.Options, func(o Option) bool { return o.Name == name })
}

// CodeBlock is a named reusable sub-template. ID is the map key it is stored
// under and is not serialized inside the value.
type CodeBlock struct {
	ID       string `json:"-"`
	Name     string `json:"name" validate:"required"`
	Template string `json:"template"`
}

// SyncGroup carries display metadata for a set of mutually synced variables.
// CreatedAt is unix milliseconds.
type SyncGroup struct {
	CreatedAt int64  `json:"createdAt"`
	Name      string `json:"name,omitempty"`
	Color     string `json:"color,omitempty"`
}

// TagTemplate is a saved open/close tag pair. The engine carries these
// through persistence untouched.
type TagTemplate struct {
	Name  string `json:"name" validate:"required"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

// RenamePrompt is an unresolved single add/remove pair awaiting a decision.
type RenamePrompt struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// State is the full persisted workspace.
type State struct {
	Template      string                     `json:"template"`
	CodeBlocks    map[string]*CodeBlock      `json:"codeBlocks"`
	Configs       map[string]*VariableConfig `json:"configs" validate:"dive"`
	SyncGroups    map[string]*SyncGroup      `json:"syncGroups"`
	Theme         string                     `json:"theme"`
	TagTemplates  []TagTemplate              `json:"tagTemplates" validate:"dive"`
	Realtime      *bool                      `json:"realtime,omitempty"`
	PendingRename *RenamePrompt              `json:"pendingRename,omitempty"`
	TemplateOrder []string                   `json:"templateOrder,omitempty"`
}

// New returns an empty workspace with the given template text.
func New(template string) *State {
	return &State{
		Template:     template,
		CodeBlocks:   make(map[string]*CodeBlock),
		Configs:      make(map[string]*VariableConfig),
		SyncGroups:   make(map[string]*SyncGroup),
		Theme:        DefaultTheme,
		TagTemplates: []TagTemplate{},
	}
}

// RealtimeEnabled reports whether continuous rendering is on. A missing flag
// means on.
func (s *State) RealtimeEnabled() bool {
	return s.Realtime == nil || *s.Realtime
}

// SetRealtime stores the continuous rendering flag.
func (s *State) SetRealtime(on bool) {
	s.Realtime = &on
}

// Normalize fills nil collections, upgrades legacy shapes and restores block
// IDs from their map keys. It is applied after every decode.
func (s *State) Normalize() {
	if s.CodeBlocks == nil {
		s.CodeBlocks = make(map[string]*CodeBlock)
	}
	if s.Configs == nil {
		s.Configs = make(map[string]*VariableConfig)
	}
	if s.SyncGroups == nil {
		s.SyncGroups = make(map[string]*SyncGroup)
	}
	if s.TagTemplates == nil {
		s.TagTemplates = []TagTemplate{}
	}
	if s.Theme == "" {
		s.Theme = DefaultTheme
	}

	for id, b := range s.CodeBlocks {
		if b == nil {
			delete(s.CodeBlocks, id)
			continue
		}
		b.ID = id
	}
	for name, c := range s.Configs {
		if c == nil {
			s.Configs[name] = NewVariableConfig()
			continue
		}
		if c.Mode == "" {
			c.Mode = ModeText
		}
		if c.Options == nil {
			c.Options = []Option{}
		}
		if c.SyncWith == nil {
			c.SyncWith = []string{}
		}
	}
	for key, g := range s.SyncGroups {
		if g == nil {
			delete(s.SyncGroups, key)
		}
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	out := &State{
		Template:      s.Template,
		CodeBlocks:    make(map[string]*CodeBlock, len(s.CodeBlocks)),
		Configs:       make(map[string]*VariableConfig, len(s.Configs)),
		SyncGroups:    make(map[string]*SyncGroup, len(s.SyncGroups)),
		Theme:         s.Theme,
		TagTemplates:  append([]TagTemplate{}, s.TagTemplates...),
		TemplateOrder: slices.Clone(s.TemplateOrder),
	}
	for id, b := range s.CodeBlocks {
		cp := *b
		out.CodeBlocks[id] = &cp
	}
	for name, c := range s.Configs {
		out.Configs[name] = c.Clone()
	}
	for key, g := range s.SyncGroups {
		cp := *g
		out.SyncGroups[key] = &cp
	}
	if s.Realtime != nil {
		out.SetRealtime(*s.Realtime)
	}
	if s.PendingRename != nil {
		p := *s.PendingRename
		out.PendingRename = &p
	}
	return out
}

// Names returns the registry keys in sorted order.
func (s *State) Names() []string {
	return slices.Sorted(maps.Keys(s.Configs))
}

// OrderedNames returns the registry keys in template order, followed by any
// keys not present in the last extracted order.
func (s *State) OrderedNames() []string {
	seen := make(map[string]bool, len(s.Configs))
	names := make([]string, 0, len(s.Configs))
	for _, n := range s.TemplateOrder {
		if _, ok := s.Configs[n]; ok && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, n := range s.Names() {
		if !seen[n] {
			names = append(names, n)
		}
	}
	return names
}
