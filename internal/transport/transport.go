package transport

import (
	"github.com/akulinichev/reminderhub/config"
	"github.com/akulinichev/reminderhub/internal/hub"
	"github.com/akulinichev/reminderhub/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

func InitRoutes(
	cfg *config.Config,
	reminderHandler *ReminderHandler,
	accountHandler *AccountHandler,
	dashboardHandler *DashboardHandler,
	bus *hub.Hub,
) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30))
	router.Use(middleware.Principal(&cfg.JWT))

	// API routes
	api := router.Group("/api/v1")
	{
		// Reminder routes
		reminders := api.Group("/reminders")
		{
			reminders.GET("", reminderHandler.CheckReminders)
			reminders.GET("/:owner_id", reminderHandler.CheckOwnerReminders)
		}

		// Account routes
		accounts := api.Group("/accounts")
		{
			accounts.GET("", accountHandler.GetAccounts)
			accounts.GET("/:id", accountHandler.GetAccount)
			accounts.POST("/:id/visit", accountHandler.VisitAccount)
		}
	}

	// Real-time channel
	router.GET("/ws", hub.ServeWS(bus, cfg.Reminder.GroupName))

	// Dashboard is mounted only when enabled; a disabled dashboard path
	// stays a plain 404.
	if cfg.Dashboard.Enabled {
		dashboard := router.Group(cfg.Dashboard.Path)
		dashboard.Use(middleware.DashboardAuth(&cfg.Dashboard))
		{
			dashboard.GET("/jobs", dashboardHandler.GetJobs)
			dashboard.POST("/jobs/:key/trigger", dashboardHandler.TriggerJob)
			dashboard.POST("/jobs/:key/pause", dashboardHandler.PauseJob)
			dashboard.POST("/jobs/:key/resume", dashboardHandler.ResumeJob)
			dashboard.GET("/connections", dashboardHandler.GetConnections)
			dashboard.GET("/dlq", dashboardHandler.GetDLQStats)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":      "ok",
			"connections": bus.ConnectionCount(),
		})
	})

	return router
}
