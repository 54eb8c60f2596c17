package services

import (
	"errors"
	"log"

	"supchat-server/models"

	"gorm.io/gorm"
)

// Fan-out event names shared by the socket and REST paths.
const (
	EventNewDirectMessage      = "new_direct_message"
	EventDirectMessagePreview  = "direct_message_preview"
	EventNewChannelMessage     = "new_channel_message"
	EventChannelMessagePreview = "channel_message_preview"
)

// FanoutService is the message pipeline: persist, move the preview forward,
// record mentions, broadcast. All steps run sequentially with no
// compensating transaction; after persistence succeeds, a failing later
// step is logged and swallowed rather than undoing the message.
type FanoutService struct {
	db          *gorm.DB
	messages    *MessageService
	previews    *PreviewService
	mentions    *MentionService
	broadcaster Broadcaster
}

func NewFanoutService(db *gorm.DB, messages *MessageService, previews *PreviewService, mentions *MentionService, b Broadcaster) *FanoutService {
	return &FanoutService{db: db, messages: messages, previews: previews, mentions: mentions, broadcaster: b}
}

// SendDirectMessage runs the DM pipeline. The returned error is the
// persistence error only; broadcast problems never surface to the sender.
func (s *FanoutService) SendDirectMessage(msg *models.DirectMessage) error {
	if err := s.messages.AppendDirect(msg); err != nil {
		return err
	}

	preview := PreviewText(msg.Content, msg.Type, msg.AttachmentURL)
	if err := s.previews.UpsertConversation(msg.SenderID, msg.ReceiverID, preview, msg.CreatedAt); err != nil {
		log.Printf("❌ fanout: upsert conversation preview: %v", err)
	}

	payload := map[string]interface{}{
		"id":            msg.ID,
		"senderId":      msg.SenderID,
		"receiverId":    msg.ReceiverID,
		"content":       msg.Content,
		"type":          msg.Type,
		"attachmentUrl": msg.AttachmentURL,
		"timestamp":     msg.CreatedAt,
		"reactions":     models.DecodeReactions(msg.Reactions),
	}
	s.broadcaster.Publish(UserRoom(msg.ReceiverID), EventNewDirectMessage, payload)
	s.broadcaster.Publish(UserRoom(msg.SenderID), EventNewDirectMessage, payload)

	// Each participant's preview names the *other* participant as contact.
	s.broadcaster.Publish(UserRoom(msg.SenderID), EventDirectMessagePreview, map[string]interface{}{
		"contactId":   msg.ReceiverID,
		"lastMessage": preview,
		"lastHour":    msg.CreatedAt,
	})
	s.broadcaster.Publish(UserRoom(msg.ReceiverID), EventDirectMessagePreview, map[string]interface{}{
		"contactId":   msg.SenderID,
		"lastMessage": preview,
		"lastHour":    msg.CreatedAt,
	})

	log.Printf("📤 direct message %d delivered to users %d and %d", msg.ID, msg.SenderID, msg.ReceiverID)
	return nil
}

// SendChannelMessage runs the channel pipeline: persist, mentions, preview,
// one broadcast to the channel room and a global preview event.
func (s *FanoutService) SendChannelMessage(msg *models.ChannelMessage) error {
	var channel models.Channel
	if err := s.db.First(&channel, msg.ChannelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.messages.AppendChannel(msg); err != nil {
		return err
	}

	if err := s.mentions.RecordMentions(msg, &channel); err != nil {
		log.Printf("❌ fanout: record mentions: %v", err)
	}

	preview := PreviewText(msg.Content, msg.Type, msg.AttachmentURL)
	if err := s.previews.UpsertChannelPreview(msg.ChannelID, preview, msg.CreatedAt); err != nil {
		log.Printf("❌ fanout: upsert channel preview: %v", err)
	}

	s.broadcaster.Publish(ChannelRoom(msg.ChannelID), EventNewChannelMessage, map[string]interface{}{
		"id":            msg.ID,
		"channelId":     msg.ChannelID,
		"senderId":      msg.SenderID,
		"senderName":    msg.SenderName,
		"content":       msg.Content,
		"type":          msg.Type,
		"attachmentUrl": msg.AttachmentURL,
		"timestamp":     msg.CreatedAt,
	})
	s.broadcaster.PublishAll(EventChannelMessagePreview, map[string]interface{}{
		"channelId": msg.ChannelID,
		"preview":   preview,
		"timestamp": msg.CreatedAt,
	})

	log.Printf("📤 channel message %d delivered to channel %d", msg.ID, msg.ChannelID)
	return nil
}
