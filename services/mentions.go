package services

import (
	"fmt"
	"regexp"
	"strings"

	"supchat-server/models"

	"gorm.io/gorm"
)

// mentionPattern matches "@First Last" and "@First.Last", accented letters
// included.
var mentionPattern = regexp.MustCompile(`@([\wÀ-ÿ]+)[\s.]+([\wÀ-ÿ]+)`)

// MentionService scans channel messages for @mentions of known users and
// records them, decoupled from delivery: a failed mention write never
// blocks the broadcast.
type MentionService struct {
	db *gorm.DB
}

func NewMentionService(db *gorm.DB) *MentionService {
	return &MentionService{db: db}
}

// ExtractMentions returns the users whose "first last" name matches an
// @mention in the text, case-insensitively. Every user sharing a matched
// name is returned, so duplicates mention both — deterministic rather than
// iteration-order dependent. Unmatched mentions are silently ignored.
func ExtractMentions(content string, knownUsers []models.User) []models.User {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	wanted := make(map[string]bool, len(matches))
	for _, m := range matches {
		wanted[strings.ToLower(m[1]+" "+m[2])] = true
	}

	var mentioned []models.User
	seen := make(map[uint]bool)
	for _, u := range knownUsers {
		key := strings.ToLower(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
		if wanted[key] && !seen[u.ID] {
			seen[u.ID] = true
			mentioned = append(mentioned, u)
		}
	}
	return mentioned
}

// RecordMentions extracts mentions from a persisted channel message and
// creates one Mention row per mentioned user.
func (s *MentionService) RecordMentions(msg *models.ChannelMessage, channel *models.Channel) error {
	var users []models.User
	if err := s.db.Select("id, first_name, last_name").Find(&users).Error; err != nil {
		return fmt.Errorf("load users for mention scan: %w", err)
	}

	for _, u := range ExtractMentions(msg.Content, users) {
		mention := models.Mention{
			UserID:      u.ID,
			ChannelID:   channel.ID,
			WorkspaceID: channel.WorkspaceID,
			MessageID:   msg.ID,
			Content:     msg.Content,
			ChannelName: channel.Name,
		}
		if err := s.db.Create(&mention).Error; err != nil {
			return fmt.Errorf("record mention for user %d: %w", u.ID, err)
		}
	}
	return nil
}
