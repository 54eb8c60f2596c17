package services

import (
	"errors"
	"fmt"

	"supchat-server/models"

	"gorm.io/gorm"
)

// MessageService is the message store: it validates references and appends
// message rows. Each write is a single-row create; there is deliberately no
// transaction spanning the message and its preview row — a crash between
// the two leaves the preview stale until the next message self-heals it.
type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// AppendDirect persists a direct message after checking both participants
// exist. Returns ErrValidation on missing fields and ErrNotFound on an
// unknown sender or receiver.
func (s *MessageService) AppendDirect(msg *models.DirectMessage) error {
	if msg.SenderID == 0 || msg.ReceiverID == 0 {
		return ErrValidation
	}
	if msg.Type == "" {
		msg.Type = "text"
	}
	var count int64
	s.db.Model(&models.User{}).Where("id IN ?", []uint{msg.SenderID, msg.ReceiverID}).Count(&count)
	want := int64(2)
	if msg.SenderID == msg.ReceiverID {
		want = 1
	}
	if count != want {
		return ErrNotFound
	}
	if msg.Reactions == nil {
		msg.Reactions = models.EncodeReactions(nil)
	}
	if err := s.db.Create(msg).Error; err != nil {
		return fmt.Errorf("append direct message: %w", err)
	}
	return nil
}

// AppendChannel persists a channel message after checking the target
// channel exists. Returns ErrValidation on missing fields and ErrNotFound
// on an unknown channel.
func (s *MessageService) AppendChannel(msg *models.ChannelMessage) error {
	if msg.SenderID == 0 || msg.ChannelID == 0 || msg.SenderName == "" {
		return ErrValidation
	}
	if msg.Type == "" {
		msg.Type = "text"
	}
	var channel models.Channel
	if err := s.db.First(&channel, msg.ChannelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load channel %d: %w", msg.ChannelID, err)
	}
	if msg.Reactions == nil {
		msg.Reactions = models.EncodeReactions(nil)
	}
	if msg.ReadBy == nil {
		msg.ReadBy = models.EncodeReadBy(nil)
	}
	if err := s.db.Create(msg).Error; err != nil {
		return fmt.Errorf("append channel message: %w", err)
	}
	return nil
}
