package services

import (
	"fmt"
	"time"

	"supchat-server/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreviewService owns the denormalized conversation/channel preview rows.
// Upserts are idempotent and carry a monotonic guard: the row only moves
// forward in time, so two messages delivered out of order can never leave
// an older message's text as the preview.
type PreviewService struct {
	db *gorm.DB
}

func NewPreviewService(db *gorm.DB) *PreviewService {
	return &PreviewService{db: db}
}

// UpsertConversation updates the DM preview row for a pair of users,
// creating it on first contact. lastAt is the message's server-assigned
// creation time, not its network arrival time.
func (s *PreviewService) UpsertConversation(senderID, receiverID uint, lastText string, lastAt time.Time) error {
	a, b := models.ConversationPair(senderID, receiverID)
	row := models.Conversation{
		UserAID:       a,
		UserBID:       b,
		LastMessage:   lastText,
		LastMessageAt: lastAt,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_message":    lastText,
			"last_message_at": lastAt,
			"updated_at":      time.Now(),
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "conversations.last_message_at <= ?", Vars: []interface{}{lastAt}},
		}},
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert conversation %d/%d: %w", a, b, err)
	}
	return nil
}

// UpsertChannelPreview updates the channel preview row with the same
// monotonic guard.
func (s *PreviewService) UpsertChannelPreview(channelID uint, lastText string, lastAt time.Time) error {
	row := models.ChannelPreview{
		ChannelID:     channelID,
		LastMessage:   lastText,
		LastMessageAt: lastAt,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_message":    lastText,
			"last_message_at": lastAt,
			"updated_at":      time.Now(),
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "channel_previews.last_message_at <= ?", Vars: []interface{}{lastAt}},
		}},
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert channel preview %d: %w", channelID, err)
	}
	return nil
}

// PreviewText is what list views show for a message: file and image
// messages are summarized instead of dumping the URL.
func PreviewText(content, msgType, attachmentURL string) string {
	switch msgType {
	case "image":
		return "🖼️ " + fileName(attachmentURL)
	case "file":
		return "📎 " + fileName(attachmentURL)
	}
	if content == "" {
		return "[Message]"
	}
	return content
}

func fileName(url string) string {
	for i := len(url) - 1; i >= 0; i-- {
		if url[i] == '/' {
			return url[i+1:]
		}
	}
	return url
}
