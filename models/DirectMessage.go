package models

import (
	"time"

	"gorm.io/datatypes"
)

// DirectMessage stores a single one-to-one message.
// type: text | file | image
type DirectMessage struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	SenderID uint `json:"senderId" gorm:"not null;index"`
	Sender   User `json:"-" gorm:"foreignKey:SenderID"`

	ReceiverID uint `json:"receiverId" gorm:"not null;index"`
	Receiver   User `json:"-" gorm:"foreignKey:ReceiverID"`

	Content       string `json:"content" gorm:"type:text"`
	Type          string `json:"type" gorm:"size:16;default:text"`
	AttachmentURL string `json:"attachmentUrl" gorm:"size:512"`

	ReplyToID *uint `json:"replyTo" gorm:"index"`

	Read bool `json:"read" gorm:"default:false;index"`

	// Reactions holds []Reaction; at most one entry per user.
	Reactions datatypes.JSON `json:"reactions"`

	CreatedAt time.Time `json:"timestamp"`
	UpdatedAt time.Time `json:"-"`
}
