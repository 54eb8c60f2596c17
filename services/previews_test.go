package services

import (
	"testing"
	"time"

	"supchat-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPreviewTextPlainMessage(t *testing.T) {
	assert.Equal(t, "see you at 10", PreviewText("see you at 10", "text", ""))
}

func TestPreviewTextEmptyContentFallback(t *testing.T) {
	assert.Equal(t, "[Message]", PreviewText("", "text", ""))
}

func TestPreviewTextImageShowsFileName(t *testing.T) {
	got := PreviewText("", "image", "https://cdn.example.com/uploads/team.png")
	assert.Equal(t, "🖼️ team.png", got)
}

func TestPreviewTextFileShowsFileName(t *testing.T) {
	got := PreviewText("", "file", "https://cdn.example.com/docs/q3-report.pdf")
	assert.Equal(t, "📎 q3-report.pdf", got)
}

func TestPreviewTextAttachmentWithoutSlash(t *testing.T) {
	assert.Equal(t, "📎 notes.txt", PreviewText("", "file", "notes.txt"))
}

func previewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testDB(t, &models.User{}, &models.Conversation{}, &models.ChannelPreview{})
}

func TestUpsertConversationIgnoresStaleMessage(t *testing.T) {
	db := previewTestDB(t)
	s := NewPreviewService(db)

	t1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Second)

	// The newer message wins the write race, the older one lands after.
	require.NoError(t, s.UpsertConversation(7, 3, "second message", t2))
	require.NoError(t, s.UpsertConversation(3, 7, "first message", t1))

	var row models.Conversation
	require.NoError(t, db.First(&row, "user_a_id = ? AND user_b_id = ?", 3, 7).Error)
	assert.Equal(t, "second message", row.LastMessage)
	assert.WithinDuration(t, t2, row.LastMessageAt, time.Second)
}

func TestUpsertConversationAdvancesInOrder(t *testing.T) {
	db := previewTestDB(t)
	s := NewPreviewService(db)

	t1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Second)

	require.NoError(t, s.UpsertConversation(3, 7, "first message", t1))
	require.NoError(t, s.UpsertConversation(7, 3, "second message", t2))

	var rows []models.Conversation
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "second message", rows[0].LastMessage)
}

func TestUpsertChannelPreviewIgnoresStaleMessage(t *testing.T) {
	db := previewTestDB(t)
	s := NewPreviewService(db)

	t1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Second)

	require.NoError(t, s.UpsertChannelPreview(12, "second message", t2))
	require.NoError(t, s.UpsertChannelPreview(12, "first message", t1))

	var row models.ChannelPreview
	require.NoError(t, db.First(&row, "channel_id = ?", 12).Error)
	assert.Equal(t, "second message", row.LastMessage)
	assert.WithinDuration(t, t2, row.LastMessageAt, time.Second)
}
