package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTaskRef indicates a task reference with an unknown category or a
// missing identifier. Surfaces to clients as a validation error.
var ErrInvalidTaskRef = errors.New("invalid task reference")

// TaskCategory identifies one of the three fixed task kinds that can carry
// photo proof. The category decides how the evaluation rule is located.
type TaskCategory string

const (
	// TaskCategoryChore is a checklist chore; the identifier is the chore id.
	TaskCategoryChore TaskCategory = "chore"
	// TaskCategoryRoom is a scheduled room task; the identifier is the room name.
	TaskCategoryRoom TaskCategory = "room"
	// TaskCategoryDaily is a fixed daily routine; the identifier is the routine
	// type itself (e.g. "dishes").
	TaskCategoryDaily TaskCategory = "daily"
)

// ParseTaskCategory normalizes and validates a category string.
func ParseTaskCategory(value string) (TaskCategory, error) {
	switch TaskCategory(strings.ToLower(strings.TrimSpace(value))) {
	case TaskCategoryChore:
		return TaskCategoryChore, nil
	case TaskCategoryRoom:
		return TaskCategoryRoom, nil
	case TaskCategoryDaily:
		return TaskCategoryDaily, nil
	default:
		return "", fmt.Errorf("%w: unknown task category %q", ErrInvalidTaskRef, value)
	}
}

// TaskRef is a closed tagged reference to a reviewable task.
type TaskRef struct {
	Category   TaskCategory
	Identifier string
}

// NewTaskRef builds a validated task reference.
func NewTaskRef(category, identifier string) (TaskRef, error) {
	parsed, err := ParseTaskCategory(category)
	if err != nil {
		return TaskRef{}, err
	}

	id := strings.TrimSpace(identifier)
	if id == "" {
		return TaskRef{}, fmt.Errorf("%w: task identifier is required", ErrInvalidTaskRef)
	}

	return TaskRef{Category: parsed, Identifier: id}, nil
}

func (r TaskRef) String() string {
	return string(r.Category) + "/" + r.Identifier
}
