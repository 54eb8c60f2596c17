package models

import "time"

// Conversation is the denormalized preview row for a direct-message pair.
// It is owned by the fan-out pipeline, always reconstructible from
// DirectMessage rows, and keyed by the ordered pair (UserAID < UserBID) so
// each pair has exactly one row regardless of who wrote first.
type Conversation struct {
	ID      uint `json:"id" gorm:"primaryKey"`
	UserAID uint `json:"userAID" gorm:"not null;index:idx_conversation_pair,unique"`
	UserBID uint `json:"userBID" gorm:"not null;index:idx_conversation_pair,unique"`

	UserA User `json:"userA" gorm:"foreignKey:UserAID"`
	UserB User `json:"userB" gorm:"foreignKey:UserBID"`

	LastMessage   string    `json:"lastMessage" gorm:"size:512"`
	LastMessageAt time.Time `json:"lastMessageAt" gorm:"index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConversationPair returns the canonical ordering for a DM pair.
func ConversationPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
