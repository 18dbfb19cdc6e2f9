package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/programming666/personal-blog/internal/middleware"
)

// Handlers groups the API handlers mounted by RegisterRoutes
type Handlers struct {
	Auth       *AuthHandler
	GitHub     *GitHubAuthHandler
	Messages   *MessageHandler
	Broadcasts *BroadcastHandler
	Users      *UserHandler
}

// RouteGuards are the middlewares placed in front of specific routes.
// Authenticate is required; the others may be nil.
type RouteGuards struct {
	Authenticate gin.HandlerFunc
	RateLimit    gin.HandlerFunc // credential endpoints
	Turnstile    gin.HandlerFunc // register and login
}

func chain(handlers ...gin.HandlerFunc) gin.HandlersChain {
	out := make(gin.HandlersChain, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// RegisterRoutes mounts the API below the given group
func RegisterRoutes(api *gin.RouterGroup, h *Handlers, g RouteGuards) {
	adminOnly := chain(g.Authenticate, middleware.AdminMiddleware())

	auth := api.Group("/auth")
	{
		auth.POST("/register", chain(g.RateLimit, g.Turnstile, h.Auth.Register)...)
		auth.POST("/login", chain(g.RateLimit, g.Turnstile, h.Auth.Login)...)
		auth.GET("/me", g.Authenticate, h.Auth.Me)
		if h.GitHub != nil {
			auth.GET("/github", chain(g.RateLimit, h.GitHub.GitHubLogin)...)
			auth.GET("/github/callback", chain(g.RateLimit, h.GitHub.GitHubCallback)...)
		}
	}

	api.POST("/admin/login", chain(g.RateLimit, h.Auth.AdminLogin)...)

	adminMessages := api.Group("/admin/messages", adminOnly...)
	{
		adminMessages.GET("", h.Messages.ListAllMessages)
		adminMessages.POST("", h.Messages.SendMessage)
	}

	adminUsers := api.Group("/admin/users", adminOnly...)
	{
		adminUsers.GET("", h.Users.ListUsers)
		adminUsers.GET("/:id", h.Users.GetUser)
		adminUsers.PUT("/:id/status", h.Users.SetUserStatus)
		adminUsers.DELETE("/:id", h.Users.DeleteUser)
	}

	messages := api.Group("/messages", g.Authenticate)
	{
		messages.GET("", h.Messages.GetMessages)
		messages.GET("/unread-count", h.Messages.GetUnreadCount)
		messages.GET("/all", middleware.AdminMiddleware(), h.Messages.ListAllMessages)
		messages.POST("", middleware.AdminMiddleware(), h.Messages.SendMessage)
		messages.PUT("/:id/read", h.Messages.MarkAsRead)
		messages.DELETE("/:id", h.Messages.DeleteMessage)
	}

	broadcasts := api.Group("/broadcasts", adminOnly...)
	{
		broadcasts.POST("", h.Broadcasts.CreateBroadcast)
		broadcasts.GET("", h.Broadcasts.ListBroadcasts)
		broadcasts.GET("/stats/summary", h.Broadcasts.GetStats)
		broadcasts.GET("/users", h.Broadcasts.ListTargetUsers)
		broadcasts.GET("/:id", h.Broadcasts.GetBroadcast)
		broadcasts.POST("/:id/retry", h.Broadcasts.RetryBroadcast)
	}
}
