package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// JWT Configuration
	JWT_SECRET        string
	JWT_ISSUER        string
	JWT_AUDIENCE      string
	ACCESS_TOKEN_TTL  time.Duration
	REFRESH_TOKEN_TTL time.Duration
	CLOCK_SKEW        time.Duration
	// Redis Configuration
	REDIS_URL string
	// CORS
	ALLOWED_ORIGINS string
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),
		PORT:         port,
		// JWT
		JWT_SECRET:        os.Getenv("JWT_SECRET"),
		JWT_ISSUER:        os.Getenv("JWT_ISSUER"),
		JWT_AUDIENCE:      os.Getenv("JWT_AUDIENCE"),
		ACCESS_TOKEN_TTL:  durationEnv("ACCESS_TOKEN_TTL_MINUTES", 20) * time.Minute,
		REFRESH_TOKEN_TTL: durationEnv("REFRESH_TOKEN_TTL_DAYS", 30) * 24 * time.Hour,
		CLOCK_SKEW:        durationEnv("CLOCK_SKEW_SECONDS", 30) * time.Second,
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// CORS
		ALLOWED_ORIGINS: os.Getenv("ALLOWED_ORIGINS"),
	}

	return envVariables, nil
}

// durationEnv reads an integer env var, falling back when unset or invalid.
func durationEnv(key string, fallback int) time.Duration {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil || val <= 0 {
		val = fallback
	}
	return time.Duration(val)
}
