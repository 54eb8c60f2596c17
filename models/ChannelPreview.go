package models

import "time"

// ChannelPreview is the denormalized last-message row per channel, used by
// list views so they never refetch full history. Owned by the fan-out
// pipeline; upserts carry a monotonic guard on LastMessageAt so a
// late-arriving older message cannot regress the preview.
type ChannelPreview struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	ChannelID uint `json:"channelId" gorm:"not null;uniqueIndex"`

	LastMessage   string    `json:"lastMessage" gorm:"size:512"`
	LastMessageAt time.Time `json:"lastMessageAt" gorm:"index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
