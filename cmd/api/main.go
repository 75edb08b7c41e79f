package main

import (
	"log"
	"os"
	"patron-review-api/config"
	"patron-review-api/middleware"
	"patron-review-api/monitor"
	"patron-review-api/routes"
	"patron-review-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	settings := config.LoadSettings()
	if err := settings.Validate(); err != nil {
		log.Fatal("❌ Invalid configuration: ", err)
	}

	config.InitLogging()

	// Initialize database
	config.InitDB()

	if err := services.NewPatronService(nil, settings.SuperadminTelegramID).EnsureSeeded(settings.DefaultPatrons); err != nil {
		log.Fatal("❌ Failed to seed patrons: ", err)
	}

	// Set Gin mode
	if settings.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	monitor.Register()
	sessions := middleware.NewSessionManager(settings.SessionSecretKey, settings.SessionHTTPSOnly)
	router := routes.NewRouter(sessions)

	// Create files directory if not exists
	if err := os.MkdirAll(settings.FilesDir, os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create files directory: %v", err)
	}

	log.Printf("🚀 Server starting on port %s", settings.ServerPort)
	log.Printf("📊 Database driver: %s", settings.DBDriver)
	log.Printf("🔒 Sessions: https-only=%t", settings.SessionHTTPSOnly)
	log.Printf("🌐 CORS configured for origins matching %s", settings.CORSAllowOriginRegex)
	if settings.MailEnabled() {
		log.Printf("✉️  Confirmation mail via %s", settings.SMTPHost)
	}

	if settings.IsProduction() {
		log.Printf("🏭 Running in production mode")
	} else {
		log.Printf("🔧 Running in development mode")
		log.Printf("📝 Login widget available at http://localhost:%s/auth/telegram-widget.html", settings.ServerPort)
	}

	if err := router.Run(":" + settings.ServerPort); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
}
