package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Store        StoreConfig        `mapstructure:"store"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Approval     ApprovalConfig     `mapstructure:"approval"`
	Procurement  ProcurementConfig  `mapstructure:"procurement"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Users        []UserConfig       `mapstructure:"users"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// ApprovalConfig holds approval resolution configuration
type ApprovalConfig struct {
	DefaultApproverID    string `mapstructure:"default_approver_id"`
	DefaultApproverName  string `mapstructure:"default_approver_name"`
	DefaultApproverEmail string `mapstructure:"default_approver_email"`
	EnforceLimits        bool   `mapstructure:"enforce_limits"`
}

// ProcurementConfig holds order creation defaults
type ProcurementConfig struct {
	ShippingAddress   string `mapstructure:"shipping_address"`
	BillingAddress    string `mapstructure:"billing_address"`
	Currency          string `mapstructure:"currency"`
	DocumentOutputDir string `mapstructure:"document_output_dir"`
}

// NotificationConfig selects and configures the notification channel
type NotificationConfig struct {
	// Channel is "log" or "lark".
	Channel string     `mapstructure:"channel"`
	Lark    LarkConfig `mapstructure:"lark"`
}

// LarkConfig holds Lark app credentials
type LarkConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// UserConfig is one entry of the static user directory
type UserConfig struct {
	ID          string   `mapstructure:"id"`
	Email       string   `mapstructure:"email"`
	Name        string   `mapstructure:"name"`
	Role        string   `mapstructure:"role"`
	Department  string   `mapstructure:"department"`
	Permissions []string `mapstructure:"permissions"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Store defaults
	viper.SetDefault("store.driver", "sqlite")

	// Database defaults
	viper.SetDefault("database.path", "data/procurement.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Approval defaults
	viper.SetDefault("approval.enforce_limits", false)

	// Procurement defaults
	viper.SetDefault("procurement.currency", "USD")
	viper.SetDefault("procurement.document_output_dir", "generated_orders")

	// Notification defaults
	viper.SetDefault("notification.channel", "log")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("notification.lark.app_id", "LARK_APP_ID")
	viper.BindEnv("notification.lark.app_secret", "LARK_APP_SECRET")
	viper.BindEnv("approval.default_approver_id", "DEFAULT_APPROVER_ID")
	viper.BindEnv("approval.default_approver_email", "DEFAULT_APPROVER_EMAIL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Store.Driver != "sqlite" && c.Store.Driver != "memory" {
		return fmt.Errorf("store.driver must be sqlite or memory, got %q", c.Store.Driver)
	}

	if c.Approval.DefaultApproverID == "" {
		return fmt.Errorf("approval.default_approver_id is required")
	}
	if c.Approval.DefaultApproverEmail == "" {
		return fmt.Errorf("approval.default_approver_email is required")
	}

	if c.Procurement.Currency == "" {
		return fmt.Errorf("procurement.currency is required")
	}

	if c.Notification.Channel != "log" && c.Notification.Channel != "lark" {
		return fmt.Errorf("notification.channel must be log or lark, got %q", c.Notification.Channel)
	}
	if c.Notification.Channel == "lark" {
		if c.Notification.Lark.AppID == "" {
			return fmt.Errorf("notification.lark.app_id is required")
		}
		if c.Notification.Lark.AppSecret == "" {
			return fmt.Errorf("notification.lark.app_secret is required")
		}
	}

	if len(c.Users) == 0 {
		return fmt.Errorf("at least one user must be configured")
	}

	return nil
}

// DefaultApprover returns the configured fallback approver.
func (c *Config) DefaultApprover() entity.Actor {
	return entity.Actor{
		ID:    c.Approval.DefaultApproverID,
		Name:  c.Approval.DefaultApproverName,
		Email: c.Approval.DefaultApproverEmail,
	}
}

// UserDirectory returns the configured users as domain entities.
func (c *Config) UserDirectory() []entity.User {
	users := make([]entity.User, len(c.Users))
	for i, u := range c.Users {
		users[i] = entity.User{
			ID:          u.ID,
			Email:       u.Email,
			Name:        u.Name,
			Role:        u.Role,
			Department:  u.Department,
			Permissions: u.Permissions,
		}
	}
	return users
}
