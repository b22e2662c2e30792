package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`

	// runtime flags, set from the command line
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioSecure   bool   `mapstructure:"minio_secure"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Range policies for numeric answers and open-text score overrides.
const (
	RangePolicyReject      = "reject"
	RangePolicyClamp       = "clamp"
	RangePolicyPassthrough = "passthrough"
)

// ScoringConfig holds the knobs of the aggregation engine. Everything here
// can be hot-reloaded by pkg/configwatcher.
type ScoringConfig struct {
	// RangePolicy decides what happens to numeric answers and overrides
	// outside [0,4].
	RangePolicy string `mapstructure:"range_policy" validate:"required,oneof=reject clamp passthrough"`

	// DedupResubmissions keeps only the latest submitted Response per
	// (user, role, questionnaire) instead of pooling all of them.
	DedupResubmissions bool `mapstructure:"dedup_resubmissions"`

	RiskTopN         int `mapstructure:"risk_top_n" validate:"min=1,max=100"`
	EvidencePerRisk  int `mapstructure:"evidence_per_risk" validate:"min=0,max=10"`
	EvidenceMinChars int `mapstructure:"evidence_min_chars" validate:"min=0"`
	EvidenceMaxChars int `mapstructure:"evidence_max_chars" validate:"min=20,max=1000"`

	// RecomputeLock serializes score recomputation per triple through redis.
	RecomputeLock    bool          `mapstructure:"recompute_lock"`
	RecomputeLockTTL time.Duration `mapstructure:"recompute_lock_ttl"`

	// BatchConcurrency bounds parallel triples in a project-wide recompute.
	BatchConcurrency int `mapstructure:"batch_concurrency" validate:"min=1,max=64"`
}

// DefaultScoringConfig is used for any scoring key missing from the file.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		RangePolicy:        RangePolicyReject,
		DedupResubmissions: false,
		RiskTopN:           10,
		EvidencePerRisk:    2,
		EvidenceMinChars:   20,
		EvidenceMaxChars:   200,
		RecomputeLock:      false,
		RecomputeLockTTL:   30 * time.Second,
		BatchConcurrency:   4,
	}
}

var validate = validator.New()

// Validate checks the scoring section.
func (s ScoringConfig) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid scoring config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultScoringConfig()
	v.SetDefault("scoring.range_policy", d.RangePolicy)
	v.SetDefault("scoring.dedup_resubmissions", d.DedupResubmissions)
	v.SetDefault("scoring.risk_top_n", d.RiskTopN)
	v.SetDefault("scoring.evidence_per_risk", d.EvidencePerRisk)
	v.SetDefault("scoring.evidence_min_chars", d.EvidenceMinChars)
	v.SetDefault("scoring.evidence_max_chars", d.EvidenceMaxChars)
	v.SetDefault("scoring.recompute_lock", d.RecomputeLock)
	v.SetDefault("scoring.recompute_lock_ttl", d.RecomputeLockTTL)
	v.SetDefault("scoring.batch_concurrency", d.BatchConcurrency)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "reports")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("ETHICS_EVAL")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Scoring
	v.BindEnv("scoring.range_policy", "SCORING_RANGE_POLICY")
	v.BindEnv("scoring.dedup_resubmissions", "SCORING_DEDUP_RESUBMISSIONS")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if err := cfg.Scoring.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
