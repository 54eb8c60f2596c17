package routes

import (
	"supchat-server/models"
	"supchat-server/storage"
	"supchat-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// GetChannelPreviews returns, for every channel of the workspace visible
// to the caller, the latest message snippet and its timestamp. Channels
// without traffic yet report an empty preview.
func GetChannelPreviews(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	workspaceID, err := ctx.Params().GetUint("workspaceID")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var channels []models.Channel
	err = storage.DB.
		Where("workspace_id = ?", workspaceID).
		Where("is_private = ? OR id IN (?)",
			false,
			storage.DB.Model(&models.ChannelMember{}).Select("channel_id").Where("user_id = ?", claims.ID),
		).
		Find(&channels).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	channelIDs := make([]uint, 0, len(channels))
	for _, c := range channels {
		channelIDs = append(channelIDs, c.ID)
	}

	var previews []models.ChannelPreview
	if len(channelIDs) > 0 {
		storage.DB.Where("channel_id IN ?", channelIDs).Find(&previews)
	}
	byChannel := make(map[uint]models.ChannelPreview, len(previews))
	for _, p := range previews {
		byChannel[p.ChannelID] = p
	}

	result := make([]iris.Map, 0, len(channels))
	for _, c := range channels {
		entry := iris.Map{
			"channelId":   c.ID,
			"channelName": c.Name,
			"workspaceId": c.WorkspaceID,
			"isPrivate":   c.IsPrivate,
		}
		if p, ok := byChannel[c.ID]; ok {
			entry["lastMessage"] = p.LastMessage
			entry["lastMessageAt"] = p.LastMessageAt
		} else {
			entry["lastMessage"] = ""
			entry["lastMessageAt"] = nil
		}
		result = append(result, entry)
	}
	ctx.JSON(result)
}
