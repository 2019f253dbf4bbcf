package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// BlockfrostConfig holds the chain-index service configuration
type BlockfrostConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	ProjectID string `mapstructure:"project_id"`
}

// AnvilConfig holds the transaction-builder service configuration
type AnvilConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// PricingConfig holds the price aggregator configuration
type PricingConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// TreasuryConfig holds treasury key-management configuration
type TreasuryConfig struct {
	// MasterSecret derives the key-encryption key
	MasterSecret string `mapstructure:"master_secret"`
	// KeyID labels the current encryption key for rotation bookkeeping
	KeyID string `mapstructure:"key_id"`
	// AddressPrefix selects the network the derived addresses live on
	AddressPrefix string `mapstructure:"address_prefix"`
}

// SettlementConfig holds the transaction settlement policy
type SettlementConfig struct {
	ConfirmationDepth    uint64        `mapstructure:"confirmation_depth"`
	StuckAfter           time.Duration `mapstructure:"stuck_after"`
	StuckRecheckInterval time.Duration `mapstructure:"stuck_recheck_interval"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// LifecycleSweeperSettings holds configuration for the lifecycle sweep loop
type LifecycleSweeperSettings struct {
	BatchSize          int           `mapstructure:"batch_size"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`
	RevalueBefore      time.Duration `mapstructure:"revalue_before"`
	MaxRecipientsPerTx int           `mapstructure:"max_recipients_per_tx"`
	Worker             WorkerConfig  `mapstructure:"worker"`
}

// ReconcilerSettings holds configuration for the reconciliation sweep loop
type ReconcilerSettings struct {
	BatchSize     int           `mapstructure:"batch_size"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	Worker        WorkerConfig  `mapstructure:"worker"`
}

// LifecycleSweeperConfig holds configuration for the lifecycle-sweeper binary
type LifecycleSweeperConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig           `mapstructure:"database"`
	NATS       NATSConfig               `mapstructure:"nats"`
	Pricing    PricingConfig            `mapstructure:"pricing"`
	Sweeper    LifecycleSweeperSettings `mapstructure:"lifecycle_sweeper"`
}

// ReconcilerConfig holds configuration for the tx-reconciler binary
type ReconcilerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig     `mapstructure:"database"`
	NATS       NATSConfig         `mapstructure:"nats"`
	Blockfrost BlockfrostConfig   `mapstructure:"blockfrost"`
	Anvil      AnvilConfig        `mapstructure:"anvil"`
	Pricing    PricingConfig      `mapstructure:"pricing"`
	Treasury   TreasuryConfig     `mapstructure:"treasury"`
	Settlement SettlementConfig   `mapstructure:"settlement"`
	Reconciler ReconcilerSettings `mapstructure:"reconciler"`
}

// LoadLifecycleSweeperConfig loads configuration for the lifecycle-sweeper binary
func LoadLifecycleSweeperConfig(configFile string, envPath string) (*LifecycleSweeperConfig, error) {
	v := configureViper("lifecycle-sweeper", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "VAULT_EVENTS")
	v.SetDefault("nats.connection_name", "lifecycle-sweeper")
	v.SetDefault("lifecycle_sweeper.batch_size", 100)
	v.SetDefault("lifecycle_sweeper.sweep_interval", "2m")
	v.SetDefault("lifecycle_sweeper.revalue_before", "1h")
	v.SetDefault("lifecycle_sweeper.max_recipients_per_tx", 50)
	v.SetDefault("lifecycle_sweeper.worker.pool_size", 20)
	v.SetDefault("lifecycle_sweeper.worker.queue_size", 100)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg LifecycleSweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if cfg.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}

	return &cfg, nil
}

// LoadReconcilerConfig loads configuration for the tx-reconciler binary
func LoadReconcilerConfig(configFile string, envPath string) (*ReconcilerConfig, error) {
	v := configureViper("tx-reconciler", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "VAULT_EVENTS")
	v.SetDefault("nats.connection_name", "tx-reconciler")
	v.SetDefault("blockfrost.base_url", "https://cardano-mainnet.blockfrost.io/api/v0")
	v.SetDefault("treasury.address_prefix", "addr")
	v.SetDefault("settlement.confirmation_depth", 3)
	v.SetDefault("settlement.stuck_after", "2h")
	v.SetDefault("settlement.stuck_recheck_interval", "30m")
	v.SetDefault("reconciler.batch_size", 200)
	v.SetDefault("reconciler.sweep_interval", "30s")
	v.SetDefault("reconciler.worker.pool_size", 20)
	v.SetDefault("reconciler.worker.queue_size", 200)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg ReconcilerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if cfg.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}
	if cfg.Anvil.BaseURL == "" {
		return nil, errors.New("anvil.base_url is required")
	}
	if cfg.Treasury.MasterSecret == "" {
		return nil, errors.New("treasury.master_secret is required")
	}

	return &cfg, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/lifecycle-sweeper/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("VAULT_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Chain services
		"blockfrost.base_url",
		"blockfrost.project_id",
		"anvil.base_url",
		"anvil.api_key",
		"pricing.base_url",
		"pricing.api_key",
		// Treasury
		"treasury.master_secret",
		"treasury.key_id",
		"treasury.address_prefix",
		// Settlement policy
		"settlement.confirmation_depth",
		"settlement.stuck_after",
		"settlement.stuck_recheck_interval",
		// Lifecycle sweeper
		"lifecycle_sweeper.batch_size",
		"lifecycle_sweeper.sweep_interval",
		"lifecycle_sweeper.revalue_before",
		"lifecycle_sweeper.max_recipients_per_tx",
		"lifecycle_sweeper.worker.pool_size",
		"lifecycle_sweeper.worker.queue_size",
		// Reconciler
		"reconciler.batch_size",
		"reconciler.sweep_interval",
		"reconciler.worker.pool_size",
		"reconciler.worker.queue_size",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
