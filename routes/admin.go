package routes

import (
	"net/http"
	"strings"
	"time"

	"supchat-server/models"
	"supchat-server/storage"
	"supchat-server/utils"

	"github.com/kataras/iris/v12"
)

// ListUsers - GET /admin/users?role=&q=&page=&per_page=
func AdminListUsers(ctx iris.Context) {
	// Basic pagination
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	var users []models.User
	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	role := strings.TrimSpace(ctx.URLParamDefault("role", ""))

	query := storage.DB.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)
	query = query.Offset((page - 1) * perPage).Limit(perPage)
	if err := query.Find(&users).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// Change role - PATCH /admin/users/:id/role
func AdminChangeUserRole(ctx iris.Context) {
	// Middleware enforces admin. Here perform change.
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := ctx.ReadJSON(&body); err != nil || !models.ValidRole(body.Role) {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_role"})
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	before := user
	user.Role = body.Role
	if err := storage.DB.Save(&user).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	// Audit
	utils.Audit(ctx, "user.role_update", "user", user.ID, before, user)

	ctx.JSON(iris.Map{"data": user})
}

// GET /admin/stats
func AdminStats(ctx iris.Context) {
	var totalUsers, totalWorkspaces, totalChannels int64
	storage.DB.Model(&models.User{}).Count(&totalUsers)
	storage.DB.Model(&models.Workspace{}).Count(&totalWorkspaces)
	storage.DB.Model(&models.Channel{}).Count(&totalChannels)

	since7 := time.Now().AddDate(0, 0, -7)
	since30 := time.Now().AddDate(0, 0, -30)
	var channelMsgs7, channelMsgs30, directMsgs7, directMsgs30 int64
	storage.DB.Model(&models.ChannelMessage{}).Where("created_at >= ?", since7).Count(&channelMsgs7)
	storage.DB.Model(&models.ChannelMessage{}).Where("created_at >= ?", since30).Count(&channelMsgs30)
	storage.DB.Model(&models.DirectMessage{}).Where("created_at >= ?", since7).Count(&directMsgs7)
	storage.DB.Model(&models.DirectMessage{}).Where("created_at >= ?", since30).Count(&directMsgs30)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"total_users":          totalUsers,
			"total_workspaces":     totalWorkspaces,
			"total_channels":       totalChannels,
			"channel_messages_7d":  channelMsgs7,
			"channel_messages_30d": channelMsgs30,
			"direct_messages_7d":   directMsgs7,
			"direct_messages_30d":  directMsgs30,
		},
		"meta":  iris.Map{},
		"links": iris.Map{},
	})
}

// GET /admin/activity
func AdminActivity(ctx iris.Context) {
	var logs []models.AuditLog
	storage.DB.Order("created_at DESC").Limit(100).Find(&logs)
	ctx.JSON(iris.Map{"data": logs, "meta": iris.Map{}, "links": iris.Map{}})
}
