package routes

import (
	"net/http"

	"supchat-server/models"
	"supchat-server/storage"
	"supchat-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

type WorkspaceInput struct {
	Name        string `json:"name" validate:"required,max=80"`
	Description string `json:"description" validate:"max=512"`
	IsPrivate   bool   `json:"isPrivate"`
}

// CreateWorkspace creates a workspace with the caller as creator and sole
// member, plus the default channel.
func CreateWorkspace(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input WorkspaceInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	workspace := models.Workspace{
		Name:        input.Name,
		Description: input.Description,
		IsPrivate:   input.IsPrivate,
		CreatedByID: claims.ID,
	}
	if err := storage.DB.Create(&workspace).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if err := storage.DB.Create(&models.WorkspaceMember{WorkspaceID: workspace.ID, UserID: claims.ID}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Every workspace starts with a default channel.
	channel := models.Channel{
		Name:        models.DefaultChannelName,
		Description: "Default workspace channel",
		IsPrivate:   false,
		WorkspaceID: workspace.ID,
		CreatedByID: claims.ID,
	}
	if err := storage.DB.Create(&channel).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	storage.DB.Create(&models.ChannelMember{ChannelID: channel.ID, UserID: claims.ID})

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(workspace)
}

// GetMyWorkspaces lists workspaces the caller belongs to.
func GetMyWorkspaces(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var workspaces []models.Workspace
	err := storage.DB.
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.user_id = ?", claims.ID).
		Find(&workspaces).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(workspaces)
}

// GetPublicWorkspaces lists joinable public workspaces.
func GetPublicWorkspaces(ctx iris.Context) {
	var workspaces []models.Workspace
	if err := storage.DB.Where("is_private = ?", false).Find(&workspaces).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(workspaces)
}

func GetWorkspace(ctx iris.Context) {
	workspaceID, err := ctx.Params().GetUint("workspaceID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var workspace models.Workspace
	if err := storage.DB.
		Preload("CreatedBy").
		Preload("Members.User").
		First(&workspace, workspaceID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(workspace)
}

type UpdateWorkspaceInput struct {
	Name        *string `json:"name" validate:"omitempty,max=80"`
	Description *string `json:"description" validate:"omitempty,max=512"`
	IsPrivate   *bool   `json:"isPrivate"`
}

// UpdateWorkspace lets the creator rename or toggle visibility.
func UpdateWorkspace(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	workspaceID, err := ctx.Params().GetUint("workspaceID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input UpdateWorkspaceInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var workspace models.Workspace
	if err := storage.DB.First(&workspace, workspaceID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if workspace.CreatedByID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	if input.Name != nil {
		workspace.Name = *input.Name
	}
	if input.Description != nil {
		workspace.Description = *input.Description
	}
	if input.IsPrivate != nil {
		workspace.IsPrivate = *input.IsPrivate
	}
	if err := storage.DB.Save(&workspace).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(workspace)
}

// DeleteWorkspace removes the workspace and everything under it.
func DeleteWorkspace(ctx iris.Context) {
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
	if workspace.CreatedByID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	var channelIDs []uint
	storage.DB.Model(&models.Channel{}).Where("workspace_id = ?", workspaceID).Pluck("id", &channelIDs)
	if len(channelIDs) > 0 {
		storage.DB.Where("channel_id IN ?", channelIDs).Delete(&models.ChannelMessage{})
		storage.DB.Where("channel_id IN ?", channelIDs).Delete(&models.ChannelMember{})
		storage.DB.Where("channel_id IN ?", channelIDs).Delete(&models.ChannelPreview{})
	}
	storage.DB.Where("workspace_id = ?", workspaceID).Delete(&models.Channel{})
	storage.DB.Where("workspace_id = ?", workspaceID).Delete(&models.WorkspaceMember{})
	storage.DB.Where("workspace_id = ?", workspaceID).Delete(&models.Mention{})
	if err := storage.DB.Delete(&workspace).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"message": "workspace deleted"})
}

type MemberByEmailInput struct {
	Email string `json:"email" validate:"required,email"`
}

// AddWorkspaceMemberByEmail adds an existing user to the workspace;
// creator only.
func AddWorkspaceMemberByEmail(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	workspaceID, err := ctx.Params().GetUint("workspaceID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input MemberByEmailInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var workspace models.Workspace
	if err := storage.DB.First(&workspace, workspaceID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if workspace.CreatedByID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	var userToAdd models.User
	if err := storage.DB.Where("email = ?", input.Email).First(&userToAdd).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var existing models.WorkspaceMember
	if err := storage.DB.Where("workspace_id = ? AND user_id = ?", workspaceID, userToAdd.ID).First(&existing).Error; err != nil {
		if err := storage.DB.Create(&models.WorkspaceMember{WorkspaceID: workspaceID, UserID: userToAdd.ID}).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	storage.DB.Preload("CreatedBy").Preload("Members.User").First(&workspace, workspaceID)
	ctx.JSON(workspace)
}

// GetWorkspaceMembers lists the workspace's members.
func GetWorkspaceMembers(ctx iris.Context) {
	workspaceID, err := ctx.Params().GetUint("workspaceID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var members []models.WorkspaceMember
	if err := storage.DB.Where("workspace_id = ?", workspaceID).Preload("User").Find(&members).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(members)
}

// RemoveWorkspaceMember removes a member; creator only.
func RemoveWorkspaceMember(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	workspaceID, err := ctx.Params().GetUint("workspaceID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}
	userID, err := ctx.Params().GetUint("userID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var workspace models.Workspace
	if err := storage.DB.First(&workspace, workspaceID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if workspace.CreatedByID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	storage.DB.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).Delete(&models.WorkspaceMember{})

	storage.DB.Preload("CreatedBy").Preload("Members.User").First(&workspace, workspaceID)
	ctx.JSON(workspace)
}

// JoinWorkspace adds the caller to a public workspace.
func JoinWorkspace(ctx iris.Context) {
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
	if workspace.IsPrivate {
		utils.CreateForbidden(ctx)
		return
	}

	var existing models.WorkspaceMember
	if err := storage.DB.Where("workspace_id = ? AND user_id = ?", workspaceID, claims.ID).First(&existing).Error; err != nil {
		if err := storage.DB.Create(&models.WorkspaceMember{WorkspaceID: workspaceID, UserID: claims.ID}).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}
	ctx.JSON(iris.Map{"success": true})
}
