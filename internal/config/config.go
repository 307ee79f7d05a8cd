// Package config provides configuration management for the parlay
// evaluator service.
package config

import "fmt"

// Config represents the complete application configuration, an
// immutable struct tree constructed once at orchestrator startup and
// never mutated afterwards.
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	Snapshot   SnapshotConfig   `mapstructure:"snapshot" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Features   FeaturesConfig   `mapstructure:"features" validate:"required"`
	Warmup     WarmupConfig     `mapstructure:"warmup" validate:"required"`
	Staking    StakingConfig    `mapstructure:"staking" validate:"required"`
}

// AppConfig represents application-level configuration.
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// SimulationConfig holds the numerical operating parameters. Load and
// Validate read and check them; the orchestrator is not given them and
// uses its own Deadline constant and the per-request sample count
// (copula.DefaultSampleCount when unset).
type SimulationConfig struct {
	DefaultSampleCount  int     `mapstructure:"default_sample_count" validate:"required,gt=0"`
	DeadlineMS          int     `mapstructure:"deadline_ms" validate:"required,gt=0,lte=500"`
	MinDegreesOfFreedom float64 `mapstructure:"min_degrees_of_freedom" validate:"required,gte=2"`
	TargetLatencyMS     int     `mapstructure:"target_latency_ms" validate:"required,gt=0"`
}

// DatabaseConfig represents the Postgres snapshot store's connection
// configuration.
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// SnapshotConfig configures the external marginal/correlation
// snapshot provider: its backing store, cache TTL, and outbound
// rate limit.
type SnapshotConfig struct {
	Database        DatabaseConfig `mapstructure:"database" validate:"required"`
	CacheTTLSeconds int            `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	RateLimitRPS    float64        `mapstructure:"rate_limit_rps" validate:"required,gt=0"`
	RateLimitBurst  int            `mapstructure:"rate_limit_burst" validate:"required,gt=0"`
	OddsFeedAPIKey  string         `mapstructure:"odds_feed_api_key"`
	SecretsRegion   string         `mapstructure:"secrets_region"`
	SecretsName     string         `mapstructure:"secrets_name"`
}

// MetricsConfig represents metrics and monitoring configuration.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Port       int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path       string `mapstructure:"path" validate:"required"`
	HealthPort int    `mapstructure:"health_port" validate:"required,min=1,max=65535"`
}

// FeaturesConfig represents feature flags for optional explanation
// inputs. They are loaded with defaults but no other package reads
// them, so they do not switch the sentiment shift or steam factor.
type FeaturesConfig struct {
	SentimentEnabled   bool `mapstructure:"sentiment_enabled"`
	SteamFactorEnabled bool `mapstructure:"steam_factor_enabled"`
}

// WarmupConfig configures the periodic kernel re-warm and snapshot
// cache eviction schedule.
type WarmupConfig struct {
	RewarmCron        string `mapstructure:"rewarm_cron" validate:"required"`
	CacheEvictionCron string `mapstructure:"cache_eviction_cron"`
}

// StakingConfig configures the reference bankroll used to translate a
// Kelly fraction into a dollar stake recommendation. It has no effect
// on true_prob, EV%, or the Kelly fraction itself — only on the
// advisory stake amount logged alongside a recommendation.
type StakingConfig struct {
	DefaultBankrollUSD string `mapstructure:"default_bankroll_usd" validate:"required,numeric"`
}

// IsDevelopment checks if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode.
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the snapshot store's PostgreSQL DSN string.
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Snapshot.Database.User,
		c.Snapshot.Database.Password,
		c.Snapshot.Database.Host,
		c.Snapshot.Database.Port,
		c.Snapshot.Database.Name,
		c.Snapshot.Database.SSLMode,
	)
}
