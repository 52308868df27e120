package models

import "time"

// Room is a two-party direct-message conversation container. Membership is
// established by Entry rows and is fixed at creation.
type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Entries  []Entry   `gorm:"foreignKey:RoomID" json:"entries,omitempty"`
	Messages []Message `gorm:"foreignKey:RoomID" json:"messages,omitempty"`
}

// Entry is a membership record linking a user to a room.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"not null;uniqueIndex:idx_room_user" json:"room_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_room_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Message is an append-only chat message inside a room, ordered by creation.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"not null;index" json:"room_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// RoomSummary is the list response shape for a room: the other participant
// plus the most recent message (nil when the room has no messages yet).
type RoomSummary struct {
	ID          uint     `json:"id"`
	OtherUser   User     `json:"other_user"`
	LastMessage *Message `json:"last_message"`
}

// RoomDetail is the detail response shape for a room: the other participant
// plus the full message history in ascending creation order.
type RoomDetail struct {
	ID        uint      `json:"id"`
	OtherUser User      `json:"other_user"`
	Messages  []Message `json:"messages"`
}
