package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// AppConfig represents the complete file-based configuration. Secrets
// (database URL, JWT secret, SMTP password) still come from the
// environment; the TOML file carries the tunable settings.
type AppConfig struct {
	Mailer  MailerConfig  `toml:"mailer"`
	Queuing QueuingConfig `toml:"queuing"`
	Billing BillingConfig `toml:"billing"`
}

// MailerConfig contains SMTP settings for OTP and approval mail
type MailerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	FromAddress string `toml:"from_address"`
	FromName    string `toml:"from_name"`
}

// QueuingConfig contains Redis and concurrency settings
type QueuingConfig struct {
	RedisAddr       string         `toml:"redis_addr"`
	RedisPassword   string         `toml:"redis_password"`
	RedisDB         int            `toml:"redis_db"`
	Concurrency     int            `toml:"concurrency"`
	QueuePriorities map[string]int `toml:"queue_priorities"`
}

// BillingConfig contains invoice tunables
type BillingConfig struct {
	OTPTTLMinutes     int  `toml:"otp_ttl_minutes"`
	LowStockHourOfDay int  `toml:"low_stock_hour_of_day"`
	ArchiveInvoicePDF bool `toml:"archive_invoice_pdf"`
}

// Default returns the configuration used when no TOML file is supplied.
func Default() *AppConfig {
	return &AppConfig{
		Mailer: MailerConfig{
			Host:        "localhost",
			Port:        587,
			FromAddress: "noreply@kiranamart.in",
			FromName:    "KiranaMart",
		},
		Queuing: QueuingConfig{
			RedisAddr:   "localhost:6379",
			Concurrency: 10,
			QueuePriorities: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
		Billing: BillingConfig{
			OTPTTLMinutes:     10,
			LowStockHourOfDay: 7,
		},
	}
}

// LoadAppConfig loads configuration from a TOML file. Missing settings fall
// back to the defaults.
func LoadAppConfig(filename string) (*AppConfig, error) {
	config := Default()
	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if config.Billing.OTPTTLMinutes <= 0 {
		config.Billing.OTPTTLMinutes = 10
	}
	if config.Queuing.Concurrency <= 0 {
		config.Queuing.Concurrency = 10
	}
	return config, nil
}
