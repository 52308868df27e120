package models

import "time"

// Relationship represents a directed follow edge from one user to another.
// UserID is the follower, FollowID the followee. At most one edge may exist
// per ordered pair, and a user may not follow itself.
type Relationship struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_follow" json:"user_id"`
	FollowID  uint      `gorm:"not null;uniqueIndex:idx_user_follow" json:"follow_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Follow User `gorm:"foreignKey:FollowID" json:"follow,omitempty"`
}

// TableName specifies the table name for GORM
func (Relationship) TableName() string {
	return "relationships"
}
