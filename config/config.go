package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	AppEnv string
	JWTKey string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	CertificateBaseURL string // public verification page base
	AssetDir           string // where rendered certificate files are written
	AssetBaseURL       string // URL prefix under which AssetDir is served
	RenderServiceURL   string
	RenderTimeout      time.Duration

	SendgridAPIKey string
	EmailSender    string

	RedisAddr            string
	VerificationCacheTTL time.Duration

	ReissueCron                string
	ReissueRenderMissingAssets bool

	AssessmentPassScore float64
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		AppEnv: getEnv("APP_ENV", "development"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lms"),

		CertificateBaseURL: getEnv("CERTIFICATE_BASE_URL", "http://localhost:3000"),
		AssetDir:           getEnv("ASSET_DIR", "./public/certificates"),
		AssetBaseURL:       getEnv("ASSET_BASE_URL", "/certificates"),
		RenderServiceURL:   getEnv("RENDER_SERVICE_URL", "http://localhost:3001"),
		RenderTimeout:      time.Duration(getEnvInt("RENDER_TIMEOUT_SECONDS", 30)) * time.Second,

		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@example.com"),

		RedisAddr:            getEnv("REDIS_ADDR", ""),
		VerificationCacheTTL: time.Duration(getEnvInt("VERIFICATION_CACHE_TTL_MINUTES", 10)) * time.Minute,

		ReissueCron:                getEnv("REISSUE_CRON", "0 3 * * *"),
		ReissueRenderMissingAssets: getEnvBool("REISSUE_RENDER_MISSING_ASSETS", false),

		AssessmentPassScore: getEnvFloat("ASSESSMENT_PASS_SCORE", 70),
	}

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendgridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Email notifications are disabled.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Error converting environment variable %s to float: %v", key, err)
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return b
}
