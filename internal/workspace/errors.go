package workspace

import "errors"

var (
	ErrVariableNotFound   = errors.New("variable not found")
	ErrBlockNotFound      = errors.New("code block not found")
	ErrDuplicateOption    = errors.New("option value already exists")
	ErrEmptyOptionValue   = errors.New("option value must not be empty")
	ErrOptionNotFound     = errors.New("option not found")
	ErrDuplicateBlockName = errors.New("code block name already exists")
	ErrEmptyBlockName     = errors.New("code block name must not be empty")
	ErrModeMismatch       = errors.New("variable is not a dropdown")
	ErrSelfSync           = errors.New("variable cannot be synced with itself")
	ErrInvalidImport      = errors.New("invalid import: template and configs are required")
)
