package entities

import "errors"

// Domain errors
var (
	ErrInvalidStatus   = errors.New("invalid pendência status")
	ErrInvalidColumn   = errors.New("invalid kanban column")
	ErrInvalidAssignee = errors.New("invalid assignee filter")
	ErrInvalidPriority = errors.New("invalid priority filter")
)
