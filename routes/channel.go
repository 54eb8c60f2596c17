package routes

import (
	"fmt"
	"net/http"
	"time"

	"supchat-server/models"
	"supchat-server/services"
	"supchat-server/storage"
	"supchat-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/exp/slices"
)

type ChannelInput struct {
	Name        string `json:"name" validate:"required,max=80"`
	Description string `json:"description" validate:"max=512"`
	IsPrivate   bool   `json:"isPrivate"`
}

// CreateChannel creates a channel inside a workspace, with the creator as
// sole member.
func CreateChannel(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	workspaceID, err := ctx.Params().GetUint("workspaceID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input ChannelInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var workspace models.Workspace
	if err := storage.DB.First(&workspace, workspaceID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	channel := models.Channel{
		Name:        input.Name,
		Description: input.Description,
		IsPrivate:   input.IsPrivate,
		WorkspaceID: workspaceID,
		CreatedByID: claims.ID,
	}
	if err := storage.DB.Create(&channel).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if err := storage.DB.Create(&models.ChannelMember{ChannelID: channel.ID, UserID: claims.ID}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(channel)
}

// ListWorkspaceChannels returns the channels visible to the caller: public
// ones, and private ones they are a member of.
func ListWorkspaceChannels(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	workspaceID, err := ctx.Params().GetUint("workspaceID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var workspace models.Workspace
	if err := storage.DB.First(&workspace, workspaceID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var channels []models.Channel
	err = storage.DB.
		Where("workspace_id = ?", workspaceID).
		Where("is_private = ? OR id IN (?)",
			false,
			storage.DB.Model(&models.ChannelMember{}).Select("channel_id").Where("user_id = ?", claims.ID),
		).
		Preload("Members.User").
		Find(&channels).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(channels)
}

// GetChannel returns one channel; private channels are members-only.
func GetChannel(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	channelID, err := ctx.Params().GetUint("channelID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var channel models.Channel
	if err := storage.DB.Preload("Members.User").First(&channel, channelID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if channel.IsPrivate && !isChannelMember(channel.ID, claims.ID) {
		utils.CreateForbidden(ctx)
		return
	}
	ctx.JSON(channel)
}

type UpdateChannelInput struct {
	Name        *string `json:"name" validate:"omitempty,max=80"`
	Description *string `json:"description" validate:"omitempty,max=512"`
	IsPrivate   *bool   `json:"isPrivate"`
}

// UpdateChannel lets the creator rename or toggle visibility.
func UpdateChannel(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	channelID, err := ctx.Params().GetUint("channelID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input UpdateChannelInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var channel models.Channel
	if err := storage.DB.First(&channel, channelID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if channel.CreatedByID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	if input.Name != nil {
		channel.Name = *input.Name
	}
	if input.Description != nil {
		channel.Description = *input.Description
	}
	if input.IsPrivate != nil {
		channel.IsPrivate = *input.IsPrivate
	}
	if err := storage.DB.Save(&channel).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(channel)
}

// DeleteChannel removes a channel and its messages; creator only. When the
// workspace would be left with zero channels, a fallback default channel is
// created with the deleting user as creator and sole member.
func DeleteChannel(channels *services.ChannelService) iris.Handler {
	return func(ctx iris.Context) {
		claims := jwt.Get(ctx).(*utils.AccessToken)
		channelID, err := ctx.Params().GetUint("channelID")
		if err != nil {
			ctx.StopWithStatus(http.StatusBadRequest)
			return
		}

		var channel models.Channel
		if err := storage.DB.First(&channel, channelID).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}
		if channel.CreatedByID != claims.ID {
			utils.CreateForbidden(ctx)
			return
		}

		res, err := channels.Delete(channel, claims.ID)
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		if res.FallbackChannelID != 0 {
			ctx.JSON(iris.Map{"success": true, "fallbackChannelId": res.FallbackChannelID})
			return
		}
		ctx.JSON(iris.Map{"success": true, "nextChannelId": res.NextChannelID})
	}
}

// AddChannelMemberByEmail adds a workspace member to the channel; creator
// only. The member event is relayed to the channel room.
func AddChannelMemberByEmail(b services.Broadcaster) iris.Handler {
	return func(ctx iris.Context) {
		claims := jwt.Get(ctx).(*utils.AccessToken)
		channelID, err := ctx.Params().GetUint("channelID")
		if err != nil {
			ctx.StopWithStatus(http.StatusBadRequest)
			return
		}

		var input MemberByEmailInput
		if err := ctx.ReadJSON(&input); err != nil {
			utils.HandleValidationErrors(err, ctx)
			return
		}

		var channel models.Channel
		if err := storage.DB.First(&channel, channelID).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}
		if channel.CreatedByID != claims.ID {
			utils.CreateError(http.StatusForbidden, "Forbidden", "Only the channel creator can add members", ctx)
			return
		}

		var userToAdd models.User
		if err := storage.DB.Where("email = ?", input.Email).First(&userToAdd).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}

		// The user must already belong to the workspace.
		var wsMember models.WorkspaceMember
		if err := storage.DB.Where("workspace_id = ? AND user_id = ?", channel.WorkspaceID, userToAdd.ID).First(&wsMember).Error; err != nil {
			utils.CreateError(http.StatusBadRequest, "Bad Request", "User is not a member of the workspace", ctx)
			return
		}

		if isChannelMember(channelID, userToAdd.ID) {
			utils.CreateError(http.StatusBadRequest, "Bad Request", "User is already a channel member", ctx)
			return
		}

		if err := storage.DB.Create(&models.ChannelMember{ChannelID: channelID, UserID: userToAdd.ID}).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}

		b.Publish(services.ChannelRoom(channelID), "channel_member_added", iris.Map{
			"channelId": channelID,
			"member": iris.Map{
				"id":        userToAdd.ID,
				"firstName": userToAdd.FirstName,
				"lastName":  userToAdd.LastName,
				"email":     userToAdd.Email,
			},
		})

		storage.DB.Preload("Members.User").First(&channel, channelID)
		ctx.JSON(channel)
	}
}

// RemoveChannelMember removes a member; creator only, and the creator
// cannot remove themselves. The socket room is deliberately left joined —
// REST access checks are the read authority.
func RemoveChannelMember(b services.Broadcaster) iris.Handler {
	return func(ctx iris.Context) {
		claims := jwt.Get(ctx).(*utils.AccessToken)
		channelID, err := ctx.Params().GetUint("channelID")
		if err != nil {
			ctx.StopWithStatus(http.StatusBadRequest)
			return
		}
		userID, err := ctx.Params().GetUint("userID")
		if err != nil {
			ctx.StopWithStatus(http.StatusBadRequest)
			return
		}

		var channel models.Channel
		if err := storage.DB.First(&channel, channelID).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}
		if channel.CreatedByID != claims.ID {
			utils.CreateError(http.StatusForbidden, "Forbidden", "Only the channel creator can remove members", ctx)
			return
		}
		if userID == claims.ID {
			utils.CreateError(http.StatusBadRequest, "Bad Request", "The creator cannot remove themselves", ctx)
			return
		}

		storage.DB.Where("channel_id = ? AND user_id = ?", channelID, userID).Delete(&models.ChannelMember{})

		b.Publish(services.ChannelRoom(channelID), "channel_member_removed", iris.Map{
			"channelId": channelID,
			"userId":    userID,
		})

		storage.DB.Preload("Members.User").First(&channel, channelID)
		ctx.JSON(channel)
	}
}

// ListChannelMembers lists a channel's members.
func ListChannelMembers(ctx iris.Context) {
	channelID, err := ctx.Params().GetUint("channelID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var channel models.Channel
	if err := storage.DB.First(&channel, channelID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var members []models.ChannelMember
	if err := storage.DB.Where("channel_id = ?", channelID).Preload("User").Find(&members).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(members)
}

// ListChannelMessages returns a channel's history. Private workspaces and
// private channels are members-only; a user removed from a private channel
// loses access on their next request even if their socket stays joined.
func ListChannelMessages(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	channelID, err := ctx.Params().GetUint("channelID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var channel models.Channel
	if err := storage.DB.First(&channel, channelID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	var workspace models.Workspace
	if err := storage.DB.First(&workspace, channel.WorkspaceID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if workspace.IsPrivate && !isWorkspaceMember(workspace.ID, claims.ID) {
		utils.CreateError(http.StatusForbidden, "Forbidden", "This workspace is private, join it first", ctx)
		return
	}
	if channel.IsPrivate && !isChannelMember(channel.ID, claims.ID) {
		utils.CreateError(http.StatusForbidden, "Forbidden", "This channel is private and you are not a member", ctx)
		return
	}

	var messages []models.ChannelMessage
	if err := storage.DB.Where("channel_id = ?", channelID).Order("id ASC").Find(&messages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(messages)
}

type PostChannelMessageInput struct {
	Content string `json:"content" validate:"required,lt=5000"`
}

// PostChannelMessage persists a text message through the fan-out pipeline;
// members only.
func PostChannelMessage(fanout *services.FanoutService) iris.Handler {
	return func(ctx iris.Context) {
		claims := jwt.Get(ctx).(*utils.AccessToken)
		channelID, err := ctx.Params().GetUint("channelID")
		if err != nil {
			ctx.StopWithStatus(http.StatusBadRequest)
			return
		}

		var input PostChannelMessageInput
		if err := ctx.ReadJSON(&input); err != nil {
			utils.HandleValidationErrors(err, ctx)
			return
		}

		if !isChannelMember(channelID, claims.ID) {
			utils.CreateError(http.StatusForbidden, "Forbidden", "Not allowed to post in this channel", ctx)
			return
		}

		var sender models.User
		if err := storage.DB.First(&sender, claims.ID).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}

		msg := models.ChannelMessage{
			ChannelID:  channelID,
			SenderID:   claims.ID,
			SenderName: sender.FullName(),
			Content:    input.Content,
			Type:       "text",
		}
		if err := fanout.SendChannelMessage(&msg); err != nil {
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

type ReactionInput struct {
	Emoji string `json:"emoji" validate:"required,max=32"`
}

// AddChannelReaction toggles the caller's reaction on a channel message:
// the same emoji removes it, a different emoji replaces the previous one.
func AddChannelReaction(b services.Broadcaster) iris.Handler {
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

		var message models.ChannelMessage
		if err := storage.DB.First(&message, messageID).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}

		reactions := models.DecodeReactions(message.Reactions)
		updated, removed := models.ToggleReaction(reactions, claims.ID, input.Emoji)
		message.Reactions = models.EncodeReactions(updated)
		if err := storage.DB.Model(&message).Update("reactions", message.Reactions).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}

		if removed {
			b.Publish(services.ChannelRoom(message.ChannelID), "channel_reaction_removed", iris.Map{
				"messageId": messageID,
				"userId":    claims.ID,
			})
			ctx.JSON(iris.Map{"success": true, "removed": true})
			return
		}

		var user models.User
		storage.DB.Select("id, first_name, last_name").First(&user, claims.ID)
		b.Publish(services.ChannelRoom(message.ChannelID), "channel_reaction_updated", iris.Map{
			"messageId": messageID,
			"emoji":     input.Emoji,
			"user": iris.Map{
				"id":        user.ID,
				"firstName": user.FirstName,
				"lastName":  user.LastName,
			},
		})
		ctx.JSON(iris.Map{"success": true})
	}
}

// RemoveChannelReaction drops the caller's reaction regardless of emoji.
func RemoveChannelReaction(b services.Broadcaster) iris.Handler {
	return func(ctx iris.Context) {
		claims := jwt.Get(ctx).(*utils.AccessToken)
		messageID, err := ctx.Params().GetUint("messageID")
		if err != nil {
			ctx.StopWithStatus(http.StatusBadRequest)
			return
		}

		var message models.ChannelMessage
		if err := storage.DB.First(&message, messageID).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}

		reactions := models.RemoveReaction(models.DecodeReactions(message.Reactions), claims.ID)
		message.Reactions = models.EncodeReactions(reactions)
		if err := storage.DB.Model(&message).Update("reactions", message.Reactions).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}

		b.Publish(services.ChannelRoom(message.ChannelID), "channel_reaction_removed", iris.Map{
			"messageId": messageID,
			"userId":    claims.ID,
		})
		ctx.JSON(iris.Map{"success": true})
	}
}

// ChannelUnreadCounts returns, per channel the caller belongs to, how many
// messages they have not read yet.
func ChannelUnreadCounts(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var memberships []models.ChannelMember
	if err := storage.DB.Where("user_id = ?", claims.ID).Find(&memberships).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	result := iris.Map{}
	for _, m := range memberships {
		var count int64
		storage.DB.Model(&models.ChannelMessage{}).
			Where("channel_id = ? AND sender_id <> ?", m.ChannelID, claims.ID).
			Where("NOT read_by @> ?", fmt.Sprintf("[%d]", claims.ID)).
			Count(&count)
		result[fmt.Sprintf("%d", m.ChannelID)] = count
	}
	ctx.JSON(result)
}

// MarkChannelAsRead stamps the caller onto every unread message of the
// channel.
func MarkChannelAsRead(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	channelID, err := ctx.Params().GetUint("channelID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var messages []models.ChannelMessage
	if err := storage.DB.
		Where("channel_id = ?", channelID).
		Where("NOT read_by @> ?", fmt.Sprintf("[%d]", claims.ID)).
		Find(&messages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	updatedCount := 0
	for i := range messages {
		readBy := models.DecodeReadBy(messages[i].ReadBy)
		if slices.Contains(readBy, claims.ID) {
			continue
		}
		readBy = append(readBy, claims.ID)
		if err := storage.DB.Model(&messages[i]).Update("read_by", models.EncodeReadBy(readBy)).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		updatedCount++
	}
	ctx.JSON(iris.Map{"updatedCount": updatedCount})
}

// Typing sets a short-lived typing key in Redis.
func Typing(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	channelID, err := ctx.Params().GetUint("channelID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	if !isChannelMember(channelID, claims.ID) {
		utils.CreateForbidden(ctx)
		return
	}

	key := typingKey(channelID, claims.ID)
	storage.Redis.Set(ctx, key, "1", 5*time.Second)
	ctx.JSON(iris.Map{"success": true})
}

// ListTyping reports which other channel members currently hold a typing
// key.
func ListTyping(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	channelID, err := ctx.Params().GetUint("channelID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var members []models.ChannelMember
	if err := storage.DB.Where("channel_id = ?", channelID).Preload("User").Find(&members).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	typing := []iris.Map{}
	for _, m := range members {
		if m.UserID == claims.ID {
			continue
		}
		key := typingKey(channelID, m.UserID)
		if val, err := storage.Redis.Get(ctx, key).Result(); err == nil && val == "1" {
			typing = append(typing, iris.Map{
				"userId": m.UserID,
				"name":   m.User.FullName(),
			})
		}
	}
	ctx.JSON(iris.Map{"success": true, "typing": typing})
}

func typingKey(channelID uint, userID uint) string {
	return fmt.Sprintf("typing:chan:%d:user:%d", channelID, userID)
}

func isChannelMember(channelID, userID uint) bool {
	var member models.ChannelMember
	return storage.DB.Where("channel_id = ? AND user_id = ?", channelID, userID).First(&member).Error == nil
}

func isWorkspaceMember(workspaceID, userID uint) bool {
	var member models.WorkspaceMember
	return storage.DB.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).First(&member).Error == nil
}
