package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Settings holds the runtime configuration read from the environment.
type Settings struct {
	ServerPort  string
	GinMode     string
	Environment string

	DBDriver         string
	DBHost           string
	DBPort           string
	DBDatabase       string
	DBUsername       string
	DBPassword       string
	PostgresDSN      string
	SQLitePath       string
	RecreateDatabase bool
	DebugSQL         bool

	BotToken             string
	BotUsername          string
	SuperadminTelegramID string
	InviteSecret         string
	DefaultPatrons       []string

	SessionSecretKey string
	SessionHTTPSOnly bool

	FilesDir              string
	ApplicantEmailDomains []string
	CORSAllowOriginRegex  string

	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPass          string
	SMTPFrom          string
	SMTPSkipTLSVerify bool
}

// App is the process-wide configuration, populated by LoadSettings.
var App Settings

// LoadSettings reads the environment into App and returns it. Call it after
// godotenv.Load so .env values are visible.
func LoadSettings() Settings {
	App = Settings{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		GinMode:     os.Getenv("GIN_MODE"),
		Environment: strings.ToLower(os.Getenv("ENVIRONMENT")),

		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBHost:           os.Getenv("DB_HOST"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBDatabase:       os.Getenv("DB_DATABASE"),
		DBUsername:       os.Getenv("DB_USERNAME"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		SQLitePath:       getEnv("SQLITE_PATH", "review.db"),
		RecreateDatabase: getBool("RECREATE_DATABASE", false),
		DebugSQL:         getBool("DEBUG_SQL", false),

		BotToken:             os.Getenv("BOT_TOKEN"),
		BotUsername:          os.Getenv("BOT_USERNAME"),
		SuperadminTelegramID: os.Getenv("SUPERADMIN_TELEGRAM_ID"),
		InviteSecret:         os.Getenv("INVITE_SECRET"),
		DefaultPatrons:       splitList(os.Getenv("DEFAULT_PATRONS")),

		SessionSecretKey: os.Getenv("SESSION_SECRET_KEY"),
		SessionHTTPSOnly: getBool("SESSION_HTTPS_ONLY", true),

		FilesDir:              getEnv("FILES_DIR", "./uploads"),
		ApplicantEmailDomains: splitList(getEnv("APPLICANT_EMAIL_DOMAINS", "innopolis.university,innopolis.ru")),
		CORSAllowOriginRegex:  getEnv("CORS_ALLOW_ORIGIN_REGEX", `^https?://localhost(:\d+)?$`),

		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          getInt("SMTP_PORT", 587),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPass:          os.Getenv("SMTP_PASS"),
		SMTPFrom:          os.Getenv("SMTP_FROM"),
		SMTPSkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
	}
	return App
}

// Validate reports missing settings the server cannot start without.
func (s Settings) Validate() error {
	var missing []string
	if s.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if s.SessionSecretKey == "" {
		missing = append(missing, "SESSION_SECRET_KEY")
	}
	if s.SuperadminTelegramID == "" {
		missing = append(missing, "SUPERADMIN_TELEGRAM_ID")
	}
	if len(missing) > 0 {
		return errors.New("missing required settings: " + strings.Join(missing, ", "))
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT=production.
func (s Settings) IsProduction() bool {
	return s.Environment == "production"
}

// MailEnabled reports whether SMTP is configured well enough to send mail.
func (s Settings) MailEnabled() bool {
	return s.SMTPHost != "" && s.SMTPFrom != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v == 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
