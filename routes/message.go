package routes

import (
	"fmt"
	"net/http"

	"supchat-server/models"
	"supchat-server/services"
	"supchat-server/storage"
	"supchat-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

type DirectMessageInput struct {
	ReceiverID    uint   `json:"receiverId" validate:"required"`
	Content       string `json:"content" validate:"required_without=AttachmentURL,lt=5000"`
	Type          string `json:"type" validate:"omitempty,oneof=text image file"`
	AttachmentURL string `json:"attachmentUrl" validate:"omitempty,url"`
	ReplyToID     *uint  `json:"replyToId"`
}

// CreateDirectMessage persists a DM through the fan-out pipeline: both
// participants' socket rooms receive the message and a conversation preview
// update.
func CreateDirectMessage(fanout *services.FanoutService) iris.Handler {
	return func(ctx iris.Context) {
		claims := jwt.Get(ctx).(*utils.AccessToken)

		var input DirectMessageInput
		if err := ctx.ReadJSON(&input); err != nil {
			utils.HandleValidationErrors(err, ctx)
			return
		}

		msg := models.DirectMessage{
			SenderID:      claims.ID,
			ReceiverID:    input.ReceiverID,
			Content:       input.Content,
			Type:          input.Type,
			AttachmentURL: input.AttachmentURL,
			ReplyToID:     input.ReplyToID,
		}
		if err := fanout.SendDirectMessage(&msg); err != nil {
			switch err {
			case services.ErrNotFound:
				utils.CreateNotFound(ctx)
			case services.ErrValidation:
				ctx.StopWithStatus(http.StatusBadRequest)
			default:
				utils.CreateInternalServerError(ctx)
			}
			return
		}

		ctx.StatusCode(http.StatusCreated)
		ctx.JSON(msg)
	}
}

// ListDirectMessages returns the history between the caller and a contact,
// oldest first.
func ListDirectMessages(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	contactID, err := ctx.Params().GetUint("contactID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var messages []models.DirectMessage
	err = storage.DB.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			claims.ID, contactID, contactID, claims.ID).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(messages)
}

// AddDirectReaction toggles the caller's reaction on a direct message and
// notifies both participants.
func AddDirectReaction(b services.Broadcaster) iris.Handler {
	return func(ctx iris.Context) {
		claims := jwt.Get(ctx).(*utils.AccessToken)
		messageID, err := ctx.Params().GetUint("messageID")
		if err != nil {
			ctx.StopWithStatus(http.StatusBadRequest)
			return
		}

		var input ReactionInput
		if err := ctx.ReadJSON(&input); err != nil {
			utils.HandleValidationErrors(err, ctx)
			return
		}

		var message models.DirectMessage
		if err := storage.DB.First(&message, messageID).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}
		if message.SenderID != claims.ID && message.ReceiverID != claims.ID {
			utils.CreateForbidden(ctx)
			return
		}

		reactions := models.DecodeReactions(message.Reactions)
		updated, removed := models.ToggleReaction(reactions, claims.ID, input.Emoji)
		message.Reactions = models.EncodeReactions(updated)
		if err := storage.DB.Model(&message).Update("reactions", message.Reactions).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}

		event := "direct_reaction_updated"
		payload := iris.Map{"messageId": messageID, "userId": claims.ID, "emoji": input.Emoji}
		if removed {
			event = "direct_reaction_removed"
			payload = iris.Map{"messageId": messageID, "userId": claims.ID}
		}
		b.Publish(services.UserRoom(message.SenderID), event, payload)
		b.Publish(services.UserRoom(message.ReceiverID), event, payload)

		ctx.JSON(iris.Map{"success": true, "removed": removed})
	}
}

// RemoveDirectReaction drops the caller's reaction regardless of emoji.
func RemoveDirectReaction(b services.Broadcaster) iris.Handler {
	return func(ctx iris.Context) {
		claims := jwt.Get(ctx).(*utils.AccessToken)
		messageID, err := ctx.Params().GetUint("messageID")
		if err != nil {
			ctx.StopWithStatus(http.StatusBadRequest)
			return
		}

		var message models.DirectMessage
		if err := storage.DB.First(&message, messageID).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}
		if message.SenderID != claims.ID && message.ReceiverID != claims.ID {
			utils.CreateForbidden(ctx)
			return
		}

		reactions := models.RemoveReaction(models.DecodeReactions(message.Reactions), claims.ID)
		message.Reactions = models.EncodeReactions(reactions)
		if err := storage.DB.Model(&message).Update("reactions", message.Reactions).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}

		payload := iris.Map{"messageId": messageID, "userId": claims.ID}
		b.Publish(services.UserRoom(message.SenderID), "direct_reaction_removed", payload)
		b.Publish(services.UserRoom(message.ReceiverID), "direct_reaction_removed", payload)

		ctx.JSON(iris.Map{"success": true})
	}
}

// MarkDirectRead marks every message from the contact to the caller as
// read.
func MarkDirectRead(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	contactID, err := ctx.Params().GetUint("contactID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	result := storage.DB.Model(&models.DirectMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", contactID, claims.ID, false).
		Update("read", true)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"updatedCount": result.RowsAffected})
}

// DirectUnreadCounts returns the unread DM count keyed by sender.
func DirectUnreadCounts(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	type row struct {
		SenderID uint
		Count    int64
	}
	var rows []row
	err := storage.DB.Model(&models.DirectMessage{}).
		Select("sender_id, COUNT(*) as count").
		Where("receiver_id = ? AND read = ?", claims.ID, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	result := iris.Map{}
	for _, r := range rows {
		result[fmt.Sprintf("%d", r.SenderID)] = r.Count
	}
	ctx.JSON(result)
}
