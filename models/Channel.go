package models

import "time"

// DefaultChannelName is the channel auto-created with every workspace and
// recreated as a fallback when the last channel of a workspace is deleted.
const DefaultChannelName = "general"

type Channel struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	WorkspaceID uint   `json:"workspaceID" gorm:"not null;index"`
	Name        string `json:"name" gorm:"size:80;not null"`
	Description string `json:"description" gorm:"size:512"`
	IsPrivate   bool   `json:"isPrivate" gorm:"default:false;index"`

	// Invariant: the creator is inserted as the first member on create and
	// is the only user allowed to mutate membership.
	CreatedByID uint `json:"createdByID" gorm:"not null;index"`
	CreatedBy   User `json:"createdBy" gorm:"foreignKey:CreatedByID"`

	Members []ChannelMember `json:"members" gorm:"foreignKey:ChannelID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChannelMember is one user's membership row inside a channel.
type ChannelMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ChannelID uint      `json:"channelID" gorm:"not null;index:idx_channel_user,unique"`
	UserID    uint      `json:"userID" gorm:"not null;index:idx_channel_user,unique"`
	User      User      `json:"user" gorm:"foreignKey:UserID"`
	CreatedAt time.Time `json:"createdAt"`
}
