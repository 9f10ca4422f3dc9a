package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CatalogStatic   = "static"
	CatalogPostgres = "postgres"

	OrderStoreFirestore = "firestore"
	OrderStorePostgres  = "postgres"
	OrderStoreMongo     = "mongo"
	OrderStoreMemory    = "memory"
)

type Config struct {
	AppPort        string
	AppEnv         string
	SessionSecret  string
	SessionTTL     time.Duration
	AllowedOrigins []string

	CatalogSource string
	OrderStore    string
	StoreTimeout  time.Duration

	FirestoreProjectID       string
	FirestoreCredentialsFile string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),
		AppEnv:         os.Getenv("APP_ENV"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionTTL:     getDuration("SESSION_TTL", 24*time.Hour),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		CatalogSource: getEnv("CATALOG_SOURCE", CatalogStatic),
		OrderStore:    getEnv("ORDER_STORE", OrderStoreFirestore),
		StoreTimeout:  getDuration("STORE_TIMEOUT", 10*time.Second),

		FirestoreProjectID:       os.Getenv("FIRESTORE_PROJECT_ID"),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),

		MongoURI:    os.Getenv("MONGO_URI"),
		MongoDBName: getEnv("MONGO_DB_NAME", "dacsan"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}
}

// NeedsPostgres reports whether any selected backend reads from Postgres.
func (c *Config) NeedsPostgres() bool {
	return c.CatalogSource == CatalogPostgres || c.OrderStore == OrderStorePostgres
}

// Validate checks that the settings required by the selected backends are present.
func (c *Config) Validate() error {
	var errs []error

	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}

	switch c.CatalogSource {
	case CatalogStatic, CatalogPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource))
	}

	switch c.OrderStore {
	case OrderStoreFirestore:
		if c.FirestoreProjectID == "" {
			errs = append(errs, errors.New("FIRESTORE_PROJECT_ID is required for the firestore order store"))
		}
	case OrderStoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo order store"))
		}
	case OrderStorePostgres, OrderStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown ORDER_STORE %q", c.OrderStore))
	}

	if c.NeedsPostgres() && (c.DBHost == "" || c.DBName == "") {
		errs = append(errs, errors.New("DB_HOST and DB_NAME are required for postgres backends"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
