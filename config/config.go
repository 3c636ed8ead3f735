package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/peercall/signal-server/models"
)

var DB *gorm.DB

// LoadEnv reads .env if present (development convenience) and configures the
// log level from LOG_LEVEL.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using process environment")
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.Warnf("Invalid LOG_LEVEL %q, keeping default", lvl)
		} else {
			logrus.SetLevel(parsed)
		}
	}
}

// ConnectDB opens the PostgreSQL connection and migrates the three tables.
func ConnectDB() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbName, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}

	if err := MigrateDB(db); err != nil {
		logrus.Fatalf("failed to migrate: %v", err)
	}

	DB = db
	logrus.Info("Connected to PostgreSQL & migrated successfully")
}

// MigrateDB runs AutoMigrate for all models. Exposed separately so tests can
// migrate their own database.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Room{},
		&models.MembershipRecord{},
		&models.SignalingMessage{},
	)
}
