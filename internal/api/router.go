package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tableguild/tableguild/internal/handler"
	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/ws"
	"github.com/tableguild/tableguild/middleware/log"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Member       *handler.MemberHandler
	Game         *handler.GameHandler
	Registration *handler.RegistrationHandler
	Invite       *handler.InviteHandler
	Message      *handler.MessageHandler
	Broadcast    *handler.BroadcastHandler
	Resource     *handler.ResourceHandler
	Admin        *handler.AdminHandler
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(mw *MiddlewareManager, h *Handlers, hub *ws.Hub, logger *log.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mw.RequestLogger())
	r.Use(cors.Default())
	r.Use(mw.RateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/ws", mw.JWTAuth(), func(c *gin.Context) {
		ws.ServeWs(hub, logger, c)
	})

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	// Invite viewing is public so external invitees can follow the link.
	api.GET("/invites/:code/view", h.Invite.View)

	protected := api.Group("/")
	protected.Use(mw.JWTAuth())
	{
		members := protected.Group("/members")
		{
			members.GET("/me", h.Member.GetProfile)
			members.PUT("/me", h.Member.UpdateProfile)
			members.PATCH("/me/password", h.Member.ChangePassword)
			members.POST("/me/delete", h.Member.RequestDeletion)
			members.POST("/me/restore", h.Member.Restore)
		}

		games := protected.Group("/games")
		{
			games.GET("", h.Game.List)
			games.POST("", mw.RequireRole(model.RoleGamemaster), h.Game.Create)
			games.GET("/:id", h.Game.Get)
			games.PUT("/:id", h.Game.Update)
			games.DELETE("/:id", h.Game.Delete)
			games.PUT("/:id/schedule", h.Game.UpdateSchedule)
			games.POST("/:id/cover", h.Game.UploadCover)

			games.POST("/:id/registrations", h.Registration.Request)
			games.GET("/:id/registrations", h.Registration.ListByGame)

			games.POST("/:id/invites", h.Invite.Create)
			games.GET("/:id/invites", h.Invite.ListByGame)

			games.POST("/:id/broadcasts", h.Broadcast.SendToGame)
			games.GET("/:id/broadcasts", h.Broadcast.ListByGame)
		}

		protected.PATCH("/registrations/:id/status", h.Registration.UpdateStatus)
		protected.POST("/invites/:code/accept", h.Invite.Accept)

		messages := protected.Group("/messages")
		{
			messages.POST("", h.Message.Send)
			messages.GET("", h.Message.History)
		}

		resources := protected.Group("/resources")
		{
			resources.POST("", h.Resource.Upload)
			resources.GET("", h.Resource.ListMine)
			resources.GET("/:id", h.Resource.Download)
			resources.DELETE("/:id", h.Resource.Delete)
		}

		protected.GET("/broadcasts", h.Broadcast.ListClubWide)

		admin := protected.Group("/admin")
		admin.Use(mw.RequireRole(model.RoleAdmin))
		{
			admin.GET("/games/:id", h.Admin.GetGame)
			admin.PATCH("/games/:id/gamemaster", h.Admin.ReassignGamemaster)
			admin.PATCH("/members/:id/role", h.Admin.ChangeRole)
			admin.GET("/audit", h.Admin.ListAudit)
			admin.POST("/broadcasts", h.Broadcast.SendToClub)
		}
	}

	return r
}
