// Sets or clears the password a patron can use with /auth/login-by-password
// cmd/set-password/main.go
package main

import (
	"errors"
	"flag"
	"log"
	"patron-review-api/config"
	"patron-review-api/models"
	"patron-review-api/utils"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	telegramID := flag.String("telegram-id", "", "patron telegram id")
	password := flag.String("password", "", "new password; empty clears password login")
	flag.Parse()

	if *telegramID == "" {
		log.Fatal("-telegram-id is required")
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.LoadSettings()

	// Initialize database
	config.ConnectDB()

	var patron models.Patron
	if err := config.DB.Where("telegram_id = ?", *telegramID).First(&patron).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("❌ no patron with telegram id %s", *telegramID)
		}
		log.Fatal("Failed to fetch patron:", err)
	}

	hash := ""
	if *password != "" {
		if ok, msg := utils.ValidatePassword(*password); !ok {
			log.Fatal(msg)
		}
		var err error
		if hash, err = utils.HashPassword(*password); err != nil {
			log.Fatalf("Failed to hash password for patron %s: %v", *telegramID, err)
		}
	}

	if err := config.DB.Model(&patron).Update("password_hash", hash).Error; err != nil {
		log.Fatalf("Failed to update password for patron %s: %v", *telegramID, err)
	}

	if hash == "" {
		log.Printf("Password login disabled for patron %s\n", *telegramID)
		return
	}
	log.Printf("Successfully updated password for patron %s\n", *telegramID)
}
