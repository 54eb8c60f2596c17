package services

import (
	"testing"

	"supchat-server/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens an in-memory database and migrates the given models.
func testDB(t *testing.T, dst ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(dst...))
	return db
}

func channelTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testDB(t,
		&models.User{},
		&models.Channel{},
		&models.ChannelMember{},
		&models.ChannelMessage{},
		&models.ChannelPreview{},
		&models.Mention{},
	)
}

func TestDeleteLastChannelRecreatesDefault(t *testing.T) {
	db := channelTestDB(t)
	svc := NewChannelService(db)

	ch := models.Channel{Name: "random", WorkspaceID: 1, CreatedByID: 5}
	require.NoError(t, db.Create(&ch).Error)
	require.NoError(t, db.Create(&models.ChannelMember{ChannelID: ch.ID, UserID: 5}).Error)

	res, err := svc.Delete(ch, 5)
	require.NoError(t, err)
	assert.Zero(t, res.NextChannelID)
	require.NotZero(t, res.FallbackChannelID)

	var remaining []models.Channel
	require.NoError(t, db.Where("workspace_id = ?", 1).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, models.DefaultChannelName, remaining[0].Name)
	assert.Equal(t, uint(5), remaining[0].CreatedByID)
	assert.False(t, remaining[0].IsPrivate)

	var members []models.ChannelMember
	require.NoError(t, db.Where("channel_id = ?", remaining[0].ID).Find(&members).Error)
	require.Len(t, members, 1)
	assert.Equal(t, uint(5), members[0].UserID)
}

func TestDeleteChannelWithSiblingsPicksNext(t *testing.T) {
	db := channelTestDB(t)
	svc := NewChannelService(db)

	doomed := models.Channel{Name: "doomed", WorkspaceID: 2, CreatedByID: 5}
	survivor := models.Channel{Name: "general", WorkspaceID: 2, CreatedByID: 5}
	require.NoError(t, db.Create(&doomed).Error)
	require.NoError(t, db.Create(&survivor).Error)

	res, err := svc.Delete(doomed, 5)
	require.NoError(t, err)
	assert.Zero(t, res.FallbackChannelID)
	assert.Equal(t, survivor.ID, res.NextChannelID)

	var count int64
	db.Model(&models.Channel{}).Where("workspace_id = ?", 2).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDeleteChannelCascadesDependentRows(t *testing.T) {
	db := channelTestDB(t)
	svc := NewChannelService(db)

	ch := models.Channel{Name: "ops", WorkspaceID: 3, CreatedByID: 5}
	other := models.Channel{Name: "general", WorkspaceID: 3, CreatedByID: 5}
	require.NoError(t, db.Create(&ch).Error)
	require.NoError(t, db.Create(&other).Error)
	require.NoError(t, db.Create(&models.ChannelMember{ChannelID: ch.ID, UserID: 5}).Error)
	require.NoError(t, db.Create(&models.ChannelMessage{ChannelID: ch.ID, SenderID: 5, SenderName: "Ada Byron", Content: "hi"}).Error)
	require.NoError(t, db.Create(&models.ChannelPreview{ChannelID: ch.ID, LastMessage: "hi"}).Error)
	require.NoError(t, db.Create(&models.Mention{UserID: 9, ChannelID: ch.ID, WorkspaceID: 3, MessageID: 1}).Error)

	_, err := svc.Delete(ch, 5)
	require.NoError(t, err)

	for _, model := range []interface{}{
		&models.ChannelMember{}, &models.ChannelMessage{},
		&models.ChannelPreview{}, &models.Mention{},
	} {
		var count int64
		db.Model(model).Where("channel_id = ?", ch.ID).Count(&count)
		assert.EqualValues(t, 0, count)
	}
}
