package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	PublicURL string

	DBDriver   string // sqlite, postgres, mysql
	DBName     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string

	JWTKey     string
	SaltRound  int
	AdminEmail string

	LogLevel  string
	LogFormat string

	UploadDir            string
	CertificateAutoIssue bool
	OrphanSweepSchedule  string
	OrphanMinAgeMinutes  int

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string

	TeachableBaseURL string

	School SchoolSeed
}

// SchoolSeed is used to create the school row when the table is empty.
type SchoolSeed struct {
	Name                   string
	LicenseNumber          string
	InstructorName         string
	InstructorSignature    string
	BusinessRepresentative string
	BusinessRepSignature   string
	Logo                   string
	Address                string
	Phone                  string
	Email                  string
	Website                string
	TeachableSchoolID      string
	TeachableAPIKey        string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = FromEnv()

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Emails will only be logged.")
	}
	return AppConfig
}

// FromEnv reads the configuration without touching .env files.
func FromEnv() *Config {
	return &Config{
		Port:      getEnv("PORT", "3000"),
		PublicURL: strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:3000"), "/"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBName:     getEnv("DB_NAME", "academy.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", ""),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),

		JWTKey:     getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound:  getEnvInt("SALT_ROUND", 10),
		AdminEmail: strings.ToLower(getEnv("ADMIN_EMAIL", "")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		UploadDir:            getEnv("UPLOAD_DIR", "./uploads"),
		CertificateAutoIssue: getEnvBool("CERTIFICATE_AUTO_ISSUE", false),
		OrphanSweepSchedule:  getEnv("ORPHAN_SWEEP_SCHEDULE", "@hourly"),
		OrphanMinAgeMinutes:  getEnvInt("ORPHAN_MIN_AGE_MINUTES", 30),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@example.com"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "Security Officer Academy"),

		TeachableBaseURL: getEnv("TEACHABLE_BASE_URL", "https://developers.teachable.com/v1"),

		School: SchoolSeed{
			Name:                   getEnv("SCHOOL_NAME", ""),
			LicenseNumber:          getEnv("SCHOOL_LICENSE_NUMBER", ""),
			InstructorName:         getEnv("SCHOOL_INSTRUCTOR_NAME", ""),
			InstructorSignature:    getEnv("SCHOOL_INSTRUCTOR_SIGNATURE", ""),
			BusinessRepresentative: getEnv("SCHOOL_BUSINESS_REPRESENTATIVE", ""),
			BusinessRepSignature:   getEnv("SCHOOL_BUSINESS_REPRESENTATIVE_SIGNATURE", ""),
			Logo:                   getEnv("SCHOOL_LOGO", ""),
			Address:                getEnv("SCHOOL_ADDRESS", ""),
			Phone:                  getEnv("SCHOOL_PHONE", ""),
			Email:                  getEnv("SCHOOL_EMAIL", ""),
			Website:                getEnv("SCHOOL_WEBSITE", ""),
			TeachableSchoolID:      getEnv("TEACHABLE_SCHOOL_ID", ""),
			TeachableAPIKey:        getEnv("TEACHABLE_API_KEY", ""),
		},
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
