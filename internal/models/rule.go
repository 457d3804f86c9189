package models

import (
	"time"

	"gorm.io/datatypes"
)

// EvaluationRule describes how photo proof for one task is judged. Rules are
// keyed by (category, task identifier); for daily routines the identifier is
// the routine type itself. The pipeline treats rules as read-only.
type EvaluationRule struct {
	ID             uint                          `gorm:"primaryKey" json:"id"`
	Category       string                        `gorm:"size:16;not null;uniqueIndex:idx_rules_task" json:"category"`
	TaskIdentifier string                        `gorm:"size:128;not null;uniqueIndex:idx_rules_task" json:"task_identifier"`
	Scope          string                        `gorm:"type:text" json:"scope"`
	Criteria       string                        `gorm:"type:text" json:"criteria"`
	Checklist      datatypes.JSONSlice[string]   `json:"checklist"`
	AutoReview     bool                          `gorm:"not null" json:"auto_review"`
	RewardPoints   float64                       `gorm:"not null;default:0" json:"reward_points"`
	CreatedAt      time.Time                     `json:"created_at"`
	UpdatedAt      time.Time                     `json:"updated_at"`
}

// Snapshot captures the rule content used for an evaluation so that later
// feedback signals record what the automation was judging against.
func (r EvaluationRule) Snapshot() datatypes.JSONMap {
	checklist := make([]interface{}, 0, len(r.Checklist))
	for _, item := range r.Checklist {
		checklist = append(checklist, item)
	}

	return datatypes.JSONMap{
		"category":        r.Category,
		"task_identifier": r.TaskIdentifier,
		"scope":           r.Scope,
		"criteria":        r.Criteria,
		"checklist":       checklist,
		"auto_review":     r.AutoReview,
		"reward_points":   r.RewardPoints,
	}
}
