package engine

import (
	"errors"
	"fmt"

	"github.com/mark3labs/tplvars/internal/workspace"
)

var (
	// ErrNestedInsertion is returned when the cursor lies inside another
	// instance region. Nothing is mutated.
	ErrNestedInsertion = errors.New("cannot insert a code block inside another instance")
	// ErrBlockNotFound is returned for unknown code block ids or names.
	ErrBlockNotFound = workspace.ErrBlockNotFound
	// ErrInstanceNotFound is returned when no region carries the instance id.
	ErrInstanceNotFound = errors.New("instance not found")
	// ErrNoPendingRename is returned by ResolveRename when nothing is pending.
	ErrNoPendingRename = errors.New("no rename is pending")
	// ErrRenamePending is returned by structural commands while a rename
	// decision is outstanding.
	ErrRenamePending = errors.New("a rename is pending; accept or reject it first")
)

// ValidationError reports a reserved block_*_instance_* name that has no
// backing instance. The token has been neutralized in the text.
type ValidationError struct {
	Name string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%q is reserved for code block instances", e.Name)
}

// CollisionError reports a block variable for which no unique instance name
// could be found. Its token was replaced with an ERROR_VAR_CONFLICT marker.
type CollisionError struct {
	Name string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("no unique name available for %q", e.Name)
}
