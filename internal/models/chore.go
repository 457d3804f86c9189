package models

import (
	"time"

	"gorm.io/datatypes"
)

// Chore is a recurring household task that can be assigned to a member.
// Checklist chores carry their own item list; room and daily tasks exist as
// schedule entries and locate their evaluation rule by name instead.
type Chore struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Title        string                      `gorm:"size:255;not null" json:"title"`
	Description  string                      `gorm:"type:text" json:"description"`
	Category     string                      `gorm:"size:16;not null;default:chore" json:"category"`
	Room         string                      `gorm:"size:128" json:"room"`
	Checklist    datatypes.JSONSlice[string] `json:"checklist"`
	AssigneeID   *uint                       `gorm:"index" json:"assignee_id"`
	RewardPoints float64                     `gorm:"not null;default:0" json:"reward_points"`
	DueWeekday   *int                        `json:"due_weekday"`
	Active       bool                        `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	Assignee     *Member                     `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}
