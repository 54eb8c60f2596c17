package services

import (
	"fmt"

	"supchat-server/models"

	"gorm.io/gorm"
)

// ChannelService owns channel lifecycle steps that touch several tables at
// once.
type ChannelService struct {
	db *gorm.DB
}

func NewChannelService(db *gorm.DB) *ChannelService {
	return &ChannelService{db: db}
}

// ChannelDeleteResult describes the workspace after a channel deletion.
// Exactly one of the IDs is set: FallbackChannelID when the deletion
// emptied the workspace and the default channel was recreated,
// NextChannelID otherwise.
type ChannelDeleteResult struct {
	FallbackChannelID uint
	NextChannelID     uint
}

// Delete removes a channel together with its messages, members, preview
// and mention records. A workspace is never left without channels:
// deleting the last one recreates the default channel with deleterID as
// creator and sole member.
func (s *ChannelService) Delete(channel models.Channel, deleterID uint) (ChannelDeleteResult, error) {
	var res ChannelDeleteResult

	s.db.Where("channel_id = ?", channel.ID).Delete(&models.ChannelMessage{})
	s.db.Where("channel_id = ?", channel.ID).Delete(&models.ChannelMember{})
	s.db.Where("channel_id = ?", channel.ID).Delete(&models.ChannelPreview{})
	s.db.Where("channel_id = ?", channel.ID).Delete(&models.Mention{})
	if err := s.db.Delete(&channel).Error; err != nil {
		return res, fmt.Errorf("delete channel %d: %w", channel.ID, err)
	}

	var remaining []models.Channel
	s.db.Where("workspace_id = ?", channel.WorkspaceID).Find(&remaining)
	if len(remaining) > 0 {
		res.NextChannelID = remaining[0].ID
		return res, nil
	}

	fallback := models.Channel{
		Name:        models.DefaultChannelName,
		Description: "Default channel recreated automatically",
		IsPrivate:   false,
		WorkspaceID: channel.WorkspaceID,
		CreatedByID: deleterID,
	}
	if err := s.db.Create(&fallback).Error; err != nil {
		return res, fmt.Errorf("recreate default channel: %w", err)
	}
	s.db.Create(&models.ChannelMember{ChannelID: fallback.ID, UserID: deleterID})
	res.FallbackChannelID = fallback.ID
	return res, nil
}
