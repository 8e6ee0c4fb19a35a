package models

import "github.com/google/uuid"

// Member is the database copy of a member record. One row per user; it is
// created the first time the member saves and never deleted.
type Member struct {
	Base
	UserID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Email      string    `gorm:"index;not null" json:"email"`
	Tel        string    `json:"tel"`
	Topic      string    `json:"topic"`
	Keyword    string    `json:"keyword"`
	Title      string    `json:"title"`
	SocialLink string    `json:"social_link"`
}

func (Member) TableName() string {
	return "members"
}
