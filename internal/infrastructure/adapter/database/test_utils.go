package database

import (
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/model"
)

// TestDB provisions a throwaway schema against the database named by the
// TEST_DB_* environment variables. Tests that exercise real locking or
// transaction semantics run against it and skip when none is configured.
type TestDB struct {
	Conn   *Connection
	Config *Config
	Logger coreport.Logger
}

// NewTestDB connects to the test database. The test is skipped when
// TEST_DB_HOST is unset, so the suite stays runnable without PostgreSQL.
func NewTestDB(t *testing.T, logger coreport.Logger) *TestDB {
	t.Helper()

	host, ok := os.LookupEnv("TEST_DB_HOST")
	if !ok {
		t.Skip("TEST_DB_HOST not set, skipping database-backed test")
	}

	config := &Config{
		Host:            host,
		Port:            getEnvIntOrDefault("TEST_DB_PORT", 5432),
		Username:        getEnvOrDefault("TEST_DB_USERNAME", "postgres"),
		Password:        getEnvOrDefault("TEST_DB_PASSWORD", "postgres"),
		Database:        getEnvOrDefault("TEST_DB_DATABASE", "storefront_core_test"),
		SSLMode:         getEnvOrDefault("TEST_DB_SSL_MODE", "disable"),
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		QueryTimeout:    5 * time.Second,
		LogLevel:        "silent",
		RetryAttempts:   1,
		RetryDelay:      time.Second,
	}

	conn, err := Connect(config, logger)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{Conn: conn, Config: config, Logger: logger}
}

// DB exposes the raw handle for repositories under test
func (d *TestDB) DB() *gorm.DB {
	return d.Conn.DB
}

// Setup migrates the schema, including the partial unique index the webhook
// idempotency key depends on
func (d *TestDB) Setup(t *testing.T) {
	t.Helper()

	db := d.Conn.DB
	if err := db.AutoMigrate(
		&model.Customer{},
		&model.Transaction{},
		&model.Order{},
		&model.OrderEvent{},
		&model.AccessCode{},
		&model.AccountLock{},
	); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_gateway_payment
		ON transactions (gateway, gateway_payment_id)
		WHERE gateway_payment_id <> ''`).Error; err != nil {
		t.Fatalf("Failed to create gateway payment index: %v", err)
	}
}

// TruncateAll empties every table so each test starts from a clean state
func (d *TestDB) TruncateAll(t *testing.T) {
	t.Helper()

	if err := d.Conn.DB.Exec(`
		DO $$ DECLARE
			r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = current_schema()) LOOP
				EXECUTE 'TRUNCATE TABLE ' || quote_ident(r.tablename) || ' RESTART IDENTITY CASCADE';
			END LOOP;
		END $$;
	`).Error; err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// Close closes the test database connection
func (d *TestDB) Close(t *testing.T) {
	t.Helper()

	if err := d.Conn.Close(); err != nil {
		t.Logf("Warning: failed to close test database connection: %v", err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
