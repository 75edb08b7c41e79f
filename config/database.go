package config

import (
	"fmt"
	"log"
	"log/slog"
	"patron-review-api/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB connects to the database selected by DB_DRIVER and migrates the schema.
// With RECREATE_DATABASE=true every table is dropped first.
func InitDB() {
	openDB(App.RecreateDatabase)
}

// ConnectDB is InitDB for the operator tools. It never drops tables, whatever
// RECREATE_DATABASE says.
func ConnectDB() {
	openDB(false)
}

func openDB(recreate bool) {
	dialector, err := dialectorFor(App)
	if err != nil {
		log.Fatal("Failed to configure database: ", err)
	}

	// In production, suppress SQL logs unless explicitly re-enabled via DEBUG_SQL=true.
	logLevel := logger.Info
	if App.IsProduction() && !App.DebugSQL {
		logLevel = logger.Warn
	}

	config := &gorm.Config{
		Logger: logger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			logger.Config{LogLevel: logLevel},
		),
	}

	DB, err = gorm.Open(dialector, config)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if recreate {
		slog.Warn("Recreating database")
		if err := DropAll(DB); err != nil {
			log.Fatal("Failed to drop tables: ", err)
		}
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	slog.Info("Database connected successfully", "driver", App.DBDriver)
}

func dialectorFor(s Settings) (gorm.Dialector, error) {
	switch s.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			s.DBUsername,
			s.DBPassword,
			s.DBHost,
			s.DBPort,
			s.DBDatabase,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		if s.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required for the postgres driver")
		}
		return postgres.Open(s.PostgresDSN), nil
	case "sqlite", "":
		return sqlite.Open(s.SQLitePath + "?_pragma=foreign_keys(1)"), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", s.DBDriver)
	}
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Patron{},
		&models.TimeWindow{},
		&models.Application{},
		&models.PatronRateApplication{},
		&models.PatronRanking{},
		&models.PatronDailyStats{},
	)
}

// DropAll removes every table in reverse dependency order.
func DropAll(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&models.PatronDailyStats{},
		&models.PatronRanking{},
		&models.PatronRateApplication{},
		&models.Application{},
		&models.TimeWindow{},
		&models.Patron{},
	)
}
