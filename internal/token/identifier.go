package token

import (
	"strconv"
	"strings"
)

// Reserved name fragments.
const (
	BlockPrefix       = "block_"
	InstanceSeparator = "_instance_"
	InvalidPrefix     = "INVALID_VAR_"
	ConflictPrefix    = "ERROR_VAR_CONFLICT_"
)

// Identifier is a parsed variable name: either Plain or InstanceScoped.
type Identifier interface {
	String() string
	isIdentifier()
}

// Plain is an ordinary, user-authored variable name.
type Plain struct {
	Name string
}

func (p Plain) String() string { return p.Name }
func (Plain) isIdentifier()      {}

// InstanceScoped is a name of the form {blockID}_instance_{stamp}[_{original}]
// produced when a code block is inserted into the main template.
type InstanceScoped struct {
	Name       string
	BlockID    string
	InstanceID string
	Original   string // empty when Name is the bare instance id
}

func (s InstanceScoped) String() string { return s.Name }
func (InstanceScoped) isIdentifier()      {}

// IsReserved reports whether name uses the block_*_instance_* shape that only
// code block instances may own.
func IsReserved(name string) bool {
	return strings.HasPrefix(name, BlockPrefix) && strings.Contains(name, InstanceSeparator)
}

// MaybeScoped reports whether name contains the instance separator anywhere.
// Such names are treated as possibly instance-scoped wherever they were found.
func MaybeScoped(name string) bool {
	return strings.Contains(name, InstanceSeparator)
}

// Parse classifies name. It is the only place the reserved shape is decoded.
func Parse(name string) Identifier {
	if !IsReserved(name) {
		return Plain{Name: name}
	}

	idx := strings.Index(name, InstanceSeparator)
	blockID := name[:idx]
	rest := name[idx+len(InstanceSeparator):]

	// Instance stamps are numeric; fall back to the first "_"-separated
	// segment for hand-typed names.
	stamp := digitsPrefix(rest)
	if stamp == "" {
		stamp, _, _ = strings.Cut(rest, "_")
	}

	return InstanceScoped{
		Name:       name,
		BlockID:    blockID,
		InstanceID: blockID + InstanceSeparator + stamp,
		Original:   strings.TrimPrefix(rest[len(stamp):], "_"),
	}
}

// InstanceID builds the id of a new instance of blockID.
func InstanceID(blockID string, stamp int64) string {
	return blockID + InstanceSeparator + strconv.FormatInt(stamp, 10)
}

// ScopedName namespaces original under instanceID.
func ScopedName(instanceID, original string) string {
	return instanceID + "_" + original
}

// Neutralized returns the marker name an invalid reserved name is rewritten to.
func Neutralized(name string) string {
	return InvalidPrefix + name
}

// Conflict returns the placeholder name used when no unique scoped name
// could be found for original.
func Conflict(original string) string {
	return ConflictPrefix + original
}

func digitsPrefix(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
