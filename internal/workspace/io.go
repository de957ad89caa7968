package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// document is the user facing export shape. Pointers distinguish a missing
// field from an empty one so that imports can be rejected.
type document struct {
	Template     *string                    `json:"template"`
	CodeBlocks   map[string]*CodeBlock      `json:"codeBlocks"`
	Configs      map[string]*VariableConfig `json:"configs"`
	SyncGroups   map[string]*SyncGroup      `json:"syncGroups"`
	Theme        string                     `json:"theme"`
	TagTemplates []TagTemplate              `json:"tagTemplates"`
	Realtime     *bool                      `json:"realtime,omitempty"`
}

// Export writes the workspace as indented JSON.
func Export(w io.Writer, s *State) error {
	doc := document{
		Template:     &s.Template,
		CodeBlocks:   s.CodeBlocks,
		Configs:      s.Configs,
		SyncGroups:   s.SyncGroups,
		Theme:        s.Theme,
		TagTemplates: s.TagTemplates,
		Realtime:     s.Realtime,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// Import reads an exported workspace. A document without template or configs
// is rejected with ErrInvalidImport.
func Import(r io.Reader) (*State, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse import: %w", err)
	}
	if doc.Template == nil || doc.Configs == nil {
		return nil, ErrInvalidImport
	}

	s := &State{
		Template:     *doc.Template,
		CodeBlocks:   doc.CodeBlocks,
		Configs:      doc.Configs,
		SyncGroups:   doc.SyncGroups,
		Theme:        doc.Theme,
		TagTemplates: doc.TagTemplates,
		Realtime:     doc.Realtime,
	}
	s.Normalize()

	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Decode parses a persisted workspace record.
func Decode(data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	s.Normalize()
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode serializes a workspace record for persistence.
func Encode(s *State) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return data, nil
}

// Validate checks the structural constraints of a decoded workspace.
func Validate(s *State) error {
	err := getValidator().Struct(s)
	if err == nil {
		for id, b := range s.CodeBlocks {
			if err := getValidator().Struct(b); err != nil {
				return fmt.Errorf("invalid code block %q: %s", id, describe(err))
			}
		}
		return nil
	}
	return fmt.Errorf("invalid workspace: %s", describe(err))
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Namespace()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", e.Namespace(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", e.Namespace()))
		}
	}
	return strings.Join(msgs, "; ")
}

// ExportFileName returns the conventional export file name for the given day.
func ExportFileName(now time.Time) string {
	return "template_config_" + now.Format("2006-01-02") + ".json"
}
