package main

import (
	"fmt"
	"log"
	"os"
	"patron-review-api/config"
	"patron-review-api/models"
	"patron-review-api/services"
	"patron-review-api/utils"
	"strings"

	"github.com/joho/godotenv"
)

// check-files reports application documents whose stored path is missing on
// disk or points outside FILES_DIR.
func main() {
	log.Println("🗂  Checking stored application documents...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}
	settings := config.LoadSettings()

	config.ConnectDB()

	var applications []models.Application
	if err := config.DB.Order("id").Find(&applications).Error; err != nil {
		log.Fatalf("failed to load applications: %v", err)
	}

	var (
		checked int
		failed  []string
	)

	for _, application := range applications {
		for _, slot := range services.DocumentSlots {
			rel := slot.Stored(application)
			if rel == "" {
				continue
			}
			checked++

			full, err := utils.ResolveInRoot(settings.FilesDir, rel)
			if err != nil {
				log.Printf("❌ application %d: %s escapes %s", application.ID, rel, settings.FilesDir)
				failed = append(failed, formatFailureLabel(application.ID, rel, "outside files dir"))
				continue
			}
			if info, err := os.Stat(full); err != nil || info.IsDir() {
				log.Printf("❌ application %d: %s not found", application.ID, rel)
				failed = append(failed, formatFailureLabel(application.ID, rel, "missing"))
			}
		}
	}

	log.Printf("✅ Checked %d document(s) across %d application(s)", checked, len(applications))

	if len(failed) > 0 {
		log.Printf("⚠️  %d document(s) need attention: %s", len(failed), strings.Join(failed, "; "))
		os.Exit(1)
	}
}

func formatFailureLabel(applicationID int, path, reason string) string {
	return fmt.Sprintf("application_id=%d path=%s (%s)", applicationID, path, reason)
}
