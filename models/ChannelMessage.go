package models

import (
	"time"

	"gorm.io/datatypes"
)

// ChannelMessage stores a single message posted to a channel.
// type: text | file | image
type ChannelMessage struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	ChannelID uint    `json:"channelId" gorm:"not null;index"`
	Channel   Channel `json:"-" gorm:"foreignKey:ChannelID"`

	SenderID uint `json:"senderId" gorm:"not null;index"`
	Sender   User `json:"-" gorm:"foreignKey:SenderID"`
	// SenderName is denormalized so the fan-out payload needs no extra read.
	SenderName string `json:"senderName" gorm:"size:160;not null"`

	Content       string `json:"content" gorm:"type:text"`
	Type          string `json:"type" gorm:"size:16;default:text"`
	AttachmentURL string `json:"attachmentUrl" gorm:"size:512"`

	// Reactions holds []Reaction; at most one entry per user.
	Reactions datatypes.JSON `json:"reactions"`
	// ReadBy holds the []uint of user IDs that marked the message read.
	ReadBy datatypes.JSON `json:"readBy"`

	CreatedAt time.Time `json:"timestamp"`
	UpdatedAt time.Time `json:"-"`
}
