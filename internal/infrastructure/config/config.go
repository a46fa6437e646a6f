package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Logger      LoggerConfig   `mapstructure:"logger"`
	Ledger      LedgerConfig   `mapstructure:"ledger"`
	Payment     PaymentConfig  `mapstructure:"payment"`
	Referral    ReferralConfig `mapstructure:"referral"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// LedgerConfig contains ledger processing settings
type LedgerConfig struct {
	LockTimeoutMs int64 `mapstructure:"lockTimeoutMs"`
}

// PaymentConfig contains payment gateway and deposit policy settings
type PaymentConfig struct {
	Gateway         string        `mapstructure:"gateway"`
	BaseURL         string        `mapstructure:"baseUrl"`
	APIKey          string        `mapstructure:"apiKey"`
	WebhookSecret   string        `mapstructure:"webhookSecret"`
	MinDepositCents int64         `mapstructure:"minDepositCents"`
	MaxDepositCents int64         `mapstructure:"maxDepositCents"`
	InvoiceTimeout  time.Duration `mapstructure:"invoiceTimeout"` // seconds
	RequestTimeout  time.Duration `mapstructure:"requestTimeout"` // seconds
}

// ReferralConfig contains referral commission settings
type ReferralConfig struct {
	CommissionRate     float64 `mapstructure:"commissionRate"`
	MinimumPayoutCents int64   `mapstructure:"minimumPayoutCents"`
}
