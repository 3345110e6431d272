package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; required ones are enforced by must() and halt
// startup when missing.
type Config struct {
	Env                 string        // application environment (dev/test/prod)
	Port                string        // HTTP port to listen on
	DBUser              string        // database username
	DBPass              string        // database password (optional)
	DBHost              string        // database host address
	DBPort              string        // database port number
	DBName              string        // database name
	JWTSecret           string        // secret used to verify bearer tokens
	MigrationsDir       string        // directory holding SQL migrations
	PaymentMode         string        // payment gateway mode (simulated)
	PaymentApprovalRate float64       // fraction of simulated charges approved
	ClaimTTL            time.Duration // how long a claim may stay pending
	SweepInterval       time.Duration // how often expired claims are released
	ProvisionBatchSize  int           // unit insert batch size for provisioning
}

// Load reads configuration from environment variables and returns a Config.
func Load() Config {
	return Config{
		Env:                 must("APP_ENV"),
		Port:                must("APP_PORT"),
		DBUser:              must("DB_USER"),
		DBPass:              os.Getenv("DB_PASS"), // empty allowed
		DBHost:              must("DB_HOST"),
		DBPort:              must("DB_PORT"),
		DBName:              must("DB_NAME"),
		JWTSecret:           must("JWT_SECRET"),
		MigrationsDir:       getenv("MIGRATIONS_DIR", "migrations"),
		PaymentMode:         getenv("PAYMENT_MODE", "simulated"),
		PaymentApprovalRate: envFloat("PAYMENT_APPROVAL_RATE", 0.9),
		ClaimTTL:            time.Duration(envInt("CLAIM_TTL_MIN", 15)) * time.Minute,
		SweepInterval:       envDur("SWEEP_INTERVAL", time.Minute),
		ProvisionBatchSize:  envInt("PROVISION_BATCH_SIZE", 100),
	}
}

// must retrieves a required environment variable. If the variable is unset
// or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}
