package db

import (
	"fmt"
	"log"
	"os"
	"strings"

	"lung-server/confs"
	"lung-server/entities"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *confs.Config) (Database, error) {
	var dialector gorm.Dialector

	switch cfg.DBDriver {
	case "sqlite":
		log.Printf("Opening SQLite database at %s...", cfg.SQLitePath)
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		dsn, err := postgresDSN()
		if err != nil {
			return nil, err
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := Open(dialector, logger.Default.LogMode(logger.Info))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.GetDB().DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(0)

	log.Println("Database connection established successfully!")
	return db, nil
}

// Open connects through dialector and migrates the schema.
func Open(dialector gorm.Dialector, gormLogger logger.Interface) (Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(&entities.User{}, &entities.CTImage{}, &entities.PatientRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("Database migrations completed successfully!")

	return &GormDatabase{DB: db}, nil
}

func postgresDSN() (string, error) {
	// Check if DB_URL is provided (connection string)
	if dsn := os.Getenv("DB_URL"); dsn != "" {
		if !strings.Contains(dsn, "sslmode=") {
			if strings.Contains(dsn, "?") {
				dsn += "&sslmode=require"
			} else {
				dsn += "?sslmode=require"
			}
		}
		log.Println("Connecting to database using DB_URL...")
		return dsn, nil
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	if dbHost == "" || dbPort == "" || dbUser == "" || dbPassword == "" || dbName == "" {
		return "", fmt.Errorf("missing required database configuration: DB_URL or (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")
	}

	sslMode := "require"
	if dbHost == "localhost" || dbHost == "127.0.0.1" {
		sslMode = "disable"
	}

	log.Printf("Connecting to database using individual parameters (sslmode=%s)...", sslMode)
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		dbHost, dbUser, dbPassword, dbName, dbPort, sslMode), nil
}
