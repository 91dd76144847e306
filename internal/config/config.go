package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/malexstudio/site_api/internal/models"
)

type Config struct {
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	API_SECRET string

	// token lifetimes, in hours
	ACCESS_TOKEN_EXPIRATION_DELAY  int
	REFRESH_TOKEN_EXPIRATION_DELAY int

	BACKEND_IP string

	KAFKA_ADDRESS string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	ASSET_API_URL    string
	ASSET_ACCOUNT_ID string
	ASSET_API_TOKEN  string

	OBJECTS_PER_REQUEST_LIMIT int

	PORT       string
	LOG_LEVEL  string
	LOG_FORMAT string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		API_SECRET: os.Getenv("API_SECRET"),

		ACCESS_TOKEN_EXPIRATION_DELAY:  envIntDefault("ACCESS_TOKEN_EXPIRATION_DELAY", 1),
		REFRESH_TOKEN_EXPIRATION_DELAY: envIntDefault("REFRESH_TOKEN_EXPIRATION_DELAY", 72),

		BACKEND_IP: os.Getenv("BACKEND_IP"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),

		ASSET_API_URL:    os.Getenv("ASSET_API_URL"),
		ASSET_ACCOUNT_ID: os.Getenv("ASSET_ACCOUNT_ID"),
		ASSET_API_TOKEN:  os.Getenv("ASSET_API_TOKEN"),

		OBJECTS_PER_REQUEST_LIMIT: envIntDefault("OBJECTS_PER_REQUEST_LIMIT", 100),

		PORT:       envDefault("PORT", "2000"),
		LOG_LEVEL:  os.Getenv("LOG_LEVEL"),
		LOG_FORMAT: envDefault("LOG_FORMAT", "json"),
	}

	if config.API_SECRET == "" {
		return nil, fmt.Errorf("API_SECRET must be set")
	}

	return config, nil
}

func InitDB(configuration *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		configuration.DB_USER, configuration.DB_PASSWORD,
		configuration.DB_HOST, configuration.DB_PORT, configuration.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}
	if err := db.AutoMigrate(
		&models.RefreshToken{},
		&models.Admin{},
		&models.Appointment{},
		&models.Work{},
		&models.SiteConfig{},
	); err != nil {
		return nil, fmt.Errorf("cannot run migrations: %w", err)
	}
	return db, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
