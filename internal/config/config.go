package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Secrets (JWT, QR, webhook, cron) are kept
// here and passed explicitly to the components that need them; nothing in
// the application reads the environment after startup.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	JWTSecret        string // secret used to sign JWTs
	QRSecret         string // secret mixed into QR ticket codes
	UserTokenTTLDays int    // user token time-to-live in days
	AdminTokenTTLHrs int    // admin token time-to-live in hours
	BcryptCost       int    // bcrypt cost for password hashing
	AdminEmail       string // fixed admin login email
	AdminPassword    string // fixed admin login password
	PaymentAPIURL    string // base URL of the hosted payment provider (optional)
	PaymentAPIKey    string // API key for the payment provider (optional)
	WebhookSecret    string // shared secret for payment webhook signatures
	CronSecret       string // bearer secret for the reminder sweep endpoint
	RemindersEnabled bool   // feature flag: run the reminder sweep when true
	ReminderLeadMin  int    // minutes before start_time when a reminder is due
	AMQPURL          string // RabbitMQ connection URL (optional)
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Optional values
// fall back to sensible defaults.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty allowed
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		QRSecret:         must("QR_SECRET"),
		UserTokenTTLDays: optInt("USER_TOKEN_TTL_DAYS", 7),
		AdminTokenTTLHrs: optInt("ADMIN_TOKEN_TTL_HOURS", 24),
		BcryptCost:       optInt("BCRYPT_COST", 12),
		AdminEmail:       must("ADMIN_EMAIL"),
		AdminPassword:    must("ADMIN_PASSWORD"),
		PaymentAPIURL:    os.Getenv("PAYMENT_API_URL"),
		PaymentAPIKey:    os.Getenv("PAYMENT_API_KEY"),
		WebhookSecret:    must("PAYMENT_WEBHOOK_SECRET"),
		CronSecret:       must("CRON_SECRET"),
		RemindersEnabled: optBool("REMINDERS_ENABLED", false),
		ReminderLeadMin:  optInt("REMINDER_LEAD_MINUTES", 60),
		AMQPURL:          os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// optInt reads an optional integer environment variable, returning the
// default when unset.  Invalid values are fatal rather than silently
// replaced so misconfiguration is caught at startup.
func optInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// optBool reads an optional boolean environment variable.
func optBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool for %s: %q", key, s)
	}
	return b
}
