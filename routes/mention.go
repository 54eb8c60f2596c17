package routes

import (
	"supchat-server/models"
	"supchat-server/storage"
	"supchat-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// GetMyMentions lists the caller's mention records, newest first.
func GetMyMentions(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var mentions []models.Mention
	err := storage.DB.
		Where("user_id = ?", claims.ID).
		Order("created_at DESC").
		Find(&mentions).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(mentions)
}
