package models

import "time"

// Mention is an append-only record created when a channel message contains
// an @First Last reference to a known user. Never mutated after creation.
type Mention struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	UserID      uint `json:"userId" gorm:"not null;index"`
	ChannelID   uint `json:"channelId" gorm:"not null;index"`
	WorkspaceID uint `json:"workspaceId" gorm:"not null;index"`
	MessageID   uint `json:"messageId" gorm:"not null;index"`

	Content     string `json:"content" gorm:"type:text"`
	ChannelName string `json:"channelName" gorm:"size:80"`

	CreatedAt time.Time `json:"timestamp"`
}
