package main

import (
	"fmt"
	"log"
	"os"

	"supchat-server/routes"
	"supchat-server/services"
	"supchat-server/storage"
	"supchat-server/utils"
	"supchat-server/ws"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Real-time hub and the services that fan out through it
	hub := ws.NewHub()
	presence := services.NewPresenceService(storage.DB, storage.Redis, hub)
	fanout := services.NewFanoutService(
		storage.DB,
		services.NewMessageService(storage.DB),
		services.NewPreviewService(storage.DB),
		services.NewMentionService(storage.DB),
		hub,
	)
	pipeline := &ws.Pipeline{
		Hub:      hub,
		Fanout:   fanout,
		Presence: presence,
		Validate: utils.Validate,
	}
	channelService := services.NewChannelService(storage.DB)

	// Health check endpoint - CRITICAL for Render
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	app.Get("/ws", accessTokenVerifierMiddleware, ws.Serve(hub, pipeline))

	users := app.Party("/api/users", accessTokenVerifierMiddleware)
	{
		users.Get("/", routes.GetAllUsers)
		users.Get("/contacts", routes.GetContacts)
		users.Get("/search", routes.SearchUsers)
		users.Get("/documents", routes.ListDocuments)
		users.Get("/export", routes.ExportData)
		users.Patch("/me", routes.UpdateProfile)
		users.Patch("/me/status", routes.UpdateStatus(presence))
		users.Delete("/me", routes.DeleteMe)
		users.Get("/{userID:uint}", routes.GetUser(presence))
	}

	workspaces := app.Party("/api/workspaces", accessTokenVerifierMiddleware)
	{
		workspaces.Post("/", routes.CreateWorkspace)
		workspaces.Get("/", routes.GetMyWorkspaces)
		workspaces.Get("/public", routes.GetPublicWorkspaces)
		workspaces.Get("/{workspaceID:uint}", routes.GetWorkspace)
		workspaces.Patch("/{workspaceID:uint}", routes.UpdateWorkspace)
		workspaces.Delete("/{workspaceID:uint}", routes.DeleteWorkspace)
		workspaces.Post("/{workspaceID:uint}/members", routes.AddWorkspaceMemberByEmail)
		workspaces.Get("/{workspaceID:uint}/members", routes.GetWorkspaceMembers)
		workspaces.Delete("/{workspaceID:uint}/members/{userID:uint}", routes.RemoveWorkspaceMember)
		workspaces.Post("/{workspaceID:uint}/join", routes.JoinWorkspace)
		workspaces.Post("/{workspaceID:uint}/channels", routes.CreateChannel)
		workspaces.Get("/{workspaceID:uint}/channels", routes.ListWorkspaceChannels)
	}

	channels := app.Party("/api/channels", accessTokenVerifierMiddleware)
	{
		channels.Get("/{channelID:uint}", routes.GetChannel)
		channels.Patch("/{channelID:uint}", routes.UpdateChannel)
		channels.Delete("/{channelID:uint}", routes.DeleteChannel(channelService))
		channels.Post("/{channelID:uint}/members", routes.AddChannelMemberByEmail(hub))
		channels.Get("/{channelID:uint}/members", routes.ListChannelMembers)
		channels.Delete("/{channelID:uint}/members/{userID:uint}", routes.RemoveChannelMember(hub))
		channels.Get("/{channelID:uint}/messages", routes.ListChannelMessages)
		channels.Post("/{channelID:uint}/messages", routes.PostChannelMessage(fanout))
		channels.Post("/messages/{messageID:uint}/reactions", routes.AddChannelReaction(hub))
		channels.Delete("/messages/{messageID:uint}/reactions", routes.RemoveChannelReaction(hub))
		channels.Get("/unread", routes.ChannelUnreadCounts)
		channels.Post("/{channelID:uint}/mark-read", routes.MarkChannelAsRead)
		channels.Post("/{channelID:uint}/typing", routes.Typing)
		channels.Get("/{channelID:uint}/typing", routes.ListTyping)
	}

	messages := app.Party("/api/messages", accessTokenVerifierMiddleware)
	{
		messages.Post("/", routes.CreateDirectMessage(fanout))
		messages.Get("/{contactID:uint}", routes.ListDirectMessages)
		messages.Post("/{messageID:uint}/reactions", routes.AddDirectReaction(hub))
		messages.Delete("/{messageID:uint}/reactions", routes.RemoveDirectReaction(hub))
		messages.Post("/mark-read/{contactID:uint}", routes.MarkDirectRead)
		messages.Get("/unread/counts", routes.DirectUnreadCounts)
	}

	conversations := app.Party("/api/conversations", accessTokenVerifierMiddleware)
	{
		conversations.Get("/{userID:uint}", utils.UserIDMiddleware, routes.GetConversations)
	}

	previews := app.Party("/api/channel-previews", accessTokenVerifierMiddleware)
	{
		previews.Get("/{workspaceID:uint}", routes.GetChannelPreviews)
	}

	mentions := app.Party("/api/mentions", accessTokenVerifierMiddleware)
	{
		mentions.Get("/", routes.GetMyMentions)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Patch("/users/{id:uint}/role", routes.AdminChangeUserRole)
		admin.Get("/stats", routes.AdminStats)
		admin.Get("/activity", routes.AdminActivity)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
