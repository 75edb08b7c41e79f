package routes

import (
	"patron-review-api/config"
	"patron-review-api/controllers"
	"patron-review-api/middleware"
	"patron-review-api/monitor"
	"patron-review-api/services"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with the shared middleware stack and every
// route mounted.
func NewRouter(sessions *middleware.SessionManager) *gin.Engine {
	router := gin.New()

	// Add logging middleware
	router.Use(gin.LoggerWithWriter(config.LogWriter))

	// Add recovery middleware
	router.Use(gin.Recovery())

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(config.App.CORSAllowOriginRegex))
	router.Use(sessions.Middleware())

	monitor.RegisterMetricsRoute(router)
	monitor.RegisterMonitorPage(router)
	SetupRoutes(router)
	return router
}

func SetupRoutes(router *gin.Engine) {
	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Patron review API is running",
		})
	})

	// Authentication
	auth := router.Group("/auth")
	{
		auth.GET("/telegram-widget.html", controllers.TelegramWidget)
		auth.POST("/telegram-callback", controllers.TelegramCallback)
		auth.POST("/login-by-password", controllers.LoginByPassword)
		auth.GET("/session", controllers.GetSession)
		auth.POST("/logout", controllers.Logout)
	}

	// Applicants are anonymous and identified by their session
	applicant := router.Group("/applicant")
	{
		applicant.POST("/submit", controllers.SubmitApplication)
		applicant.GET("/my-application", controllers.GetMyApplication)
	}

	// Patron routes
	patron := router.Group("/patron")
	patron.Use(middleware.RequireCapability(services.CapPatron))
	{
		patron.GET("/me", controllers.GetMe)
		patron.GET("/me/rated-applications", controllers.GetRatedApplications)
		patron.GET("/applications", controllers.ListApplications)
		patron.GET("/applications/:id", controllers.GetApplication)
		patron.POST("/rate-application/:id", controllers.RateApplication)
		patron.GET("/ranking", controllers.GetRanking)
		patron.PUT("/ranking", controllers.SetRanking)
	}

	router.GET("/files/*path", middleware.RequireCapability(services.CapPatron), controllers.ServeFile)

	// Admin routes
	admin := router.Group("/admin")
	admin.Use(middleware.RequireCapability(services.CapAdmin))
	{
		admin.POST("/add-patron", controllers.AddPatron)
		admin.DELETE("/delete-patron/:telegram_id", controllers.DeletePatron)
		admin.GET("/patrons", controllers.ListPatrons)

		admin.GET("/applications/ranking", controllers.GetApplicationsRanking)
		admin.GET("/applications/export", controllers.ExportApplications)
		admin.DELETE("/applications/delete/:id", controllers.DeleteApplication)

		admin.GET("/logs", monitor.LogsHandler(config.LogFilePath()))

		admin.GET("/stats", controllers.GetStats)
		admin.GET("/patron-stats/:telegram_id", controllers.GetPatronStats)

		timewindows := admin.Group("/timewindows")
		{
			timewindows.GET("", controllers.ListTimeWindows)
			timewindows.POST("", controllers.CreateTimeWindow)
			timewindows.PATCH("/:id", controllers.UpdateTimeWindow)
			timewindows.PUT("/:id", controllers.UpdateTimeWindow)
			timewindows.DELETE("/:id", controllers.DeleteTimeWindow)
		}
		admin.POST("/create-timewindow", controllers.CreateTimeWindow)

		// Only the superadmin changes roles
		admin.PUT("/promote", middleware.RequireCapability(services.CapSuperadmin), controllers.PromotePatron)
	}
}
