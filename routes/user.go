package routes

import (
	"strings"

	"supchat-server/models"
	"supchat-server/services"
	"supchat-server/storage"
	"supchat-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
)

// GetAllUsers lists every account with public fields only.
func GetAllUsers(ctx iris.Context) {
	var users []models.User
	if err := storage.DB.Select("id, first_name, last_name, email, status, created_at").Find(&users).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(users)
}

// GetContacts lists everyone except the caller, for starting DMs.
func GetContacts(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var users []models.User
	err := storage.DB.
		Select("id, first_name, last_name, email, status").
		Where("id <> ?", claims.ID).
		Order("first_name ASC").
		Find(&users).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(users)
}

// SearchUsers allows searching users by name or email (auth required)
func SearchUsers(ctx iris.Context) {
	q := ctx.URLParamDefault("q", "")
	limit := ctx.URLParamIntDefault("limit", 20)
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if len(q) < 1 {
		ctx.JSON(iris.Map{"success": true, "users": []interface{}{}})
		return
	}
	var users []models.User
	search := "%" + q + "%"
	storage.DB.Limit(limit).
		Where("lower(first_name) LIKE lower(?) OR lower(last_name) LIKE lower(?) OR lower(email) LIKE lower(?)", search, search, search).
		Select("id, first_name, last_name, email, status").
		Find(&users)
	ctx.JSON(iris.Map{"success": true, "users": users})
}

// GetUser returns one user's public profile with their effective presence,
// so a stale "online" column never leaks past an expired liveness key.
func GetUser(presence *services.PresenceService) iris.Handler {
	return func(ctx iris.Context) {
		userID, err := ctx.Params().GetUint("userID")
		if err != nil {
			ctx.StopWithStatus(iris.StatusBadRequest)
			return
		}

		var user models.User
		if err := storage.DB.First(&user, userID).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}

		ctx.JSON(iris.Map{
			"ID":        user.ID,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"email":     user.Email,
			"status":    presence.Resolve(ctx, user.ID, user.Status),
		})
	}
}

type UpdateProfileInput struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=256"`
	LastName  *string `json:"lastName" validate:"omitempty,max=256"`
	Email     *string `json:"email" validate:"omitempty,max=256,email"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=256"`
}

// UpdateProfile patches the caller's own profile. A password in the body
// is re-hashed before storage.
func UpdateProfile(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input UpdateProfileInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil {
		user.Email = strings.ToLower(*input.Email)
	}
	if input.Password != nil {
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		user.Password = string(hashed)
	}

	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":        user.ID,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
		"status":    user.Status,
	})
}

type UpdateStatusInput struct {
	Status string `json:"status" validate:"required,oneof=online busy offline"`
}

// UpdateStatus sets the caller's displayed status and announces it.
func UpdateStatus(presence *services.PresenceService) iris.Handler {
	return func(ctx iris.Context) {
		claims := jwt.Get(ctx).(*utils.AccessToken)

		var input UpdateStatusInput
		if err := ctx.ReadJSON(&input); err != nil {
			utils.HandleValidationErrors(err, ctx)
			return
		}

		if err := presence.SetStatus(ctx, claims.ID, input.Status); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		ctx.JSON(iris.Map{"success": true, "status": input.Status})
	}
}

// DeleteMe removes the caller's account and everything keyed on it.
// Their sent messages stay, attributed by the denormalized sender name.
func DeleteMe(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	storage.DB.Where("user_id = ?", claims.ID).Delete(&models.WorkspaceMember{})
	storage.DB.Where("user_id = ?", claims.ID).Delete(&models.ChannelMember{})
	storage.DB.Where("user_id = ?", claims.ID).Delete(&models.Mention{})
	storage.DB.Where("user_a_id = ? OR user_b_id = ?", claims.ID, claims.ID).Delete(&models.Conversation{})
	if err := storage.DB.Delete(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}

// ExportData returns everything stored about the caller in one JSON
// document.
func ExportData(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var directMessages []models.DirectMessage
	storage.DB.Where("sender_id = ? OR receiver_id = ?", claims.ID, claims.ID).Order("id ASC").Find(&directMessages)

	var channelMessages []models.ChannelMessage
	storage.DB.Where("sender_id = ?", claims.ID).Order("id ASC").Find(&channelMessages)

	var memberships []models.ChannelMember
	storage.DB.Where("user_id = ?", claims.ID).Find(&memberships)

	var workspaces []models.WorkspaceMember
	storage.DB.Where("user_id = ?", claims.ID).Find(&workspaces)

	var mentions []models.Mention
	storage.DB.Where("user_id = ?", claims.ID).Find(&mentions)

	ctx.JSON(iris.Map{
		"user": iris.Map{
			"ID":        user.ID,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"email":     user.Email,
			"status":    user.Status,
			"createdAt": user.CreatedAt,
		},
		"directMessages":       directMessages,
		"channelMessages":      channelMessages,
		"channelMemberships":   memberships,
		"workspaceMemberships": workspaces,
		"mentions":             mentions,
	})
}

// ListDocuments collects every attachment message the caller can see:
// their DMs plus the channels they belong to.
func ListDocuments(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var directDocs []models.DirectMessage
	storage.DB.
		Where("(sender_id = ? OR receiver_id = ?) AND attachment_url <> ''", claims.ID, claims.ID).
		Order("id DESC").
		Find(&directDocs)

	var channelDocs []models.ChannelMessage
	storage.DB.
		Where("attachment_url <> ''").
		Where("channel_id IN (?)",
			storage.DB.Model(&models.ChannelMember{}).Select("channel_id").Where("user_id = ?", claims.ID),
		).
		Order("id DESC").
		Find(&channelDocs)

	documents := []iris.Map{}
	for _, m := range directDocs {
		documents = append(documents, iris.Map{
			"source":    "direct",
			"messageId": m.ID,
			"url":       m.AttachmentURL,
			"type":      m.Type,
			"timestamp": m.CreatedAt,
		})
	}
	for _, m := range channelDocs {
		documents = append(documents, iris.Map{
			"source":    "channel",
			"messageId": m.ID,
			"channelId": m.ChannelID,
			"url":       m.AttachmentURL,
			"type":      m.Type,
			"timestamp": m.CreatedAt,
		})
	}
	ctx.JSON(iris.Map{"success": true, "documents": documents})
}
