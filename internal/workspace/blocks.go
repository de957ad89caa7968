package workspace

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rs/xid"

	"github.com/mark3labs/tplvars/internal/token"
)

// NewBlockID returns a fresh code block id. xid strings contain no
// underscores, so the id never clashes with the instance separator.
func NewBlockID() string {
	return token.BlockPrefix + xid.New().String()
}

// Block returns the code block stored under id.
func (s *State) Block(id string) (*CodeBlock, error) {
	b, ok := s.CodeBlocks[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrBlockNotFound)
	}
	return b, nil
}

// BlockByName returns the code block with the given name.
func (s *State) BlockByName(name string) (*CodeBlock, error) {
	for _, b := range s.CodeBlocks {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrBlockNotFound)
}

// ResolveBlock accepts either a block id or a block name.
func (s *State) ResolveBlock(ref string) (*CodeBlock, error) {
	if b, ok := s.CodeBlocks[ref]; ok {
		return b, nil
	}
	return s.BlockByName(ref)
}

// Blocks returns every code block ordered by name, then id.
func (s *State) Blocks() []*CodeBlock {
	blocks := slices.Collect(maps.Values(s.CodeBlocks))
	slices.SortFunc(blocks, func(a, b *CodeBlock) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return blocks
}

// AddBlock stores a new code block under a generated id.
func (s *State) AddBlock(name, template string) (*CodeBlock, error) {
	name, err := s.checkBlockName("", name)
	if err != nil {
		return nil, err
	}

	b := &CodeBlock{ID: NewBlockID(), Name: name, Template: template}
	s.CodeBlocks[b.ID] = b
	return b, nil
}

// RenameBlock changes the display name of a code block.
func (s *State) RenameBlock(id, name string) error {
	b, err := s.Block(id)
	if err != nil {
		return err
	}
	name, err = s.checkBlockName(id, name)
	if err != nil {
		return err
	}
	b.Name = name
	return nil
}

// SetBlockTemplate replaces the template text of a code block. Existing
// instances are not touched.
func (s *State) SetBlockTemplate(id, template string) error {
	b, err := s.Block(id)
	if err != nil {
		return err
	}
	b.Template = template
	return nil
}

// RemoveBlock deletes the definition only. Callers remove instances.
func (s *State) RemoveBlock(id string) error {
	if _, err := s.Block(id); err != nil {
		return err
	}
	delete(s.CodeBlocks, id)
	return nil
}

func (s *State) checkBlockName(selfID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyBlockName
	}
	for id, b := range s.CodeBlocks {
		if id != selfID && b.Name == name {
			return "", fmt.Errorf("%q: %w", name, ErrDuplicateBlockName)
		}
	}
	return name, nil
}
