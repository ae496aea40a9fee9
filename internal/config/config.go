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
	Env  string
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// OTP
	OTPTTL         time.Duration
	OTPMaxAttempts int

	// WhatsApp Cloud API
	WhatsAppAPIURL      string
	WhatsAppToken       string
	WhatsAppPhoneID     string
	WhatsAppAppSecret   string
	WhatsAppVerifyToken string

	// LLM (OpenAI-compatible chat completions)
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// Market data
	MarketBaseURL      string
	HTTPClientTimeout  time.Duration
	PriceRefreshSpec   string
	AnomalyScanSpec    string
	SchedulerEnabled   bool
	BurnWarningPct     float64
	BurnCriticalPct    float64
	ForecastHorizon    int
	CommitmentsHorizon int

	// SMTP (optional, alert e-mails)
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "cortex"),
		DBPassword: getEnv("DB_PASSWORD", "cortex"),
		DBName:     getEnv("DB_NAME", "cortex"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		OTPMaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 5),

		WhatsAppAPIURL:      getEnv("WHATSAPP_API_URL", "https://graph.facebook.com/v18.0"),
		WhatsAppToken:       getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneID:     getEnv("WHATSAPP_PHONE_ID", ""),
		WhatsAppAppSecret:   getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppVerifyToken: getEnv("WHATSAPP_VERIFY_TOKEN", ""),

		LLMBaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),

		MarketBaseURL:      getEnv("MARKET_BASE_URL", "https://query1.finance.yahoo.com/v7/finance/quote"),
		PriceRefreshSpec:   getEnv("PRICE_REFRESH_SPEC", "*/30 10-18 * * 1-5"),
		AnomalyScanSpec:    getEnv("ANOMALY_SCAN_SPEC", "0 9 * * *"),
		SchedulerEnabled:   getEnvBool("SCHEDULER_ENABLED", true),
		BurnWarningPct:     getEnvFloat("BURN_WARNING_PCT", 80),
		BurnCriticalPct:    getEnvFloat("BURN_CRITICAL_PCT", 100),
		ForecastHorizon:    getEnvInt("FORECAST_HORIZON_MONTHS", 6),
		CommitmentsHorizon: getEnvInt("COMMITMENTS_HORIZON_MONTHS", 12),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "Cortex <no-reply@cortex.local>"),
	}

	config.JWTExpirationDur = getEnvDuration("JWT_EXPIRES_IN", 60*time.Minute)
	config.OTPTTL = getEnvDuration("OTP_TTL", 5*time.Minute)
	config.HTTPClientTimeout = getEnvDuration("HTTP_CLIENT_TIMEOUT", 15*time.Second)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the package-level configuration. Used by tests and cmd wiring.
func Set(cfg *Config) {
	appConfig = cfg
}

// WhatsAppEnabled reports whether outbound WhatsApp messages can be sent.
func (c *Config) WhatsAppEnabled() bool {
	return c.WhatsAppToken != "" && c.WhatsAppPhoneID != ""
}

// SMTPEnabled reports whether alert e-mails can be sent.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %v\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
