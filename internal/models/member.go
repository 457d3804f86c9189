package models

import "time"

// Member roles within a household.
const (
	MemberRoleParent = "parent"
	MemberRoleKid    = "kid"
)

// Member represents one person in the household.
type Member struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	AvatarURL string    `gorm:"size:512" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsReviewer reports whether the member may review proofs.
func (m Member) IsReviewer() bool {
	return m.Role == MemberRoleParent
}
