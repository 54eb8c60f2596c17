package routes

import (
	"supchat-server/models"
	"supchat-server/storage"
	"supchat-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// GetConversations lists a user's DM conversations, most recently active
// first, with the contact's identity attached. UserIDMiddleware guarantees
// the path user is the caller.
func GetConversations(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var conversations []models.Conversation
	if err := storage.DB.
		Where("user_a_id = ? OR user_b_id = ?", claims.ID, claims.ID).
		Order("last_message_at DESC").
		Find(&conversations).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	result := make([]iris.Map, 0, len(conversations))
	for _, c := range conversations {
		contactID := c.UserAID
		if contactID == claims.ID {
			contactID = c.UserBID
		}

		var contact models.User
		if err := storage.DB.Select("id, first_name, last_name, email, status").First(&contact, contactID).Error; err != nil {
			continue
		}

		result = append(result, iris.Map{
			"id":            c.ID,
			"contactId":     contact.ID,
			"contactName":   contact.FullName(),
			"contactEmail":  contact.Email,
			"contactStatus": contact.Status,
			"lastMessage":   c.LastMessage,
			"lastMessageAt": c.LastMessageAt,
		})
	}
	ctx.JSON(result)
}
