package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-insights/internal/data/db"
	"github.com/yungbote/neurobridge-insights/internal/jobs/warmer"
	"github.com/yungbote/neurobridge-insights/internal/modules/insights"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
	"github.com/yungbote/neurobridge-insights/internal/platform/envutil"
	"github.com/yungbote/neurobridge-insights/internal/platform/redis"
	"github.com/yungbote/neurobridge-insights/internal/services"
	"github.com/yungbote/neurobridge-insights/internal/temporalx"
)

type Config struct {
	Env      string
	Version  string
	HTTPAddr string

	JWTSecretKey   string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	CORSOrigins    []string

	DB    db.Config
	Redis redis.Config

	LocalCacheBytes int64
	DefaultTimezone string
	Insights        services.InsightsServiceConfig

	ComputePerMinute   int
	ComputeBurst       int
	RefreshConcurrency int

	WarmEnabled bool
	Warmer      warmer.Config

	Temporal  temporalx.Config
	RunWorker bool
}

// fileConfig is the optional YAML overlay named by INSIGHTS_CONFIG_FILE. Zero values leave
// the environment-derived settings untouched.
type fileConfig struct {
	Insights struct {
		LookbackDays       int                        `yaml:"lookback_days"`
		PeerLookbackDays   int                        `yaml:"peer_lookback_days"`
		PeerSampleLimit    int                        `yaml:"peer_sample_limit"`
		CacheTTLSeconds    int                        `yaml:"cache_ttl_seconds"`
		DefaultTimezone    string                     `yaml:"default_timezone"`
		DefaultPreferences *insights.StudyPreferences `yaml:"default_preferences"`
	} `yaml:"insights"`
	Warmer struct {
		Enabled           *bool `yaml:"enabled"`
		IntervalMinutes   int   `yaml:"interval_minutes"`
		ActiveWithinHours int   `yaml:"active_within_hours"`
		MaxUsers          int   `yaml:"max_users"`
	} `yaml:"warmer"`
	RateLimit struct {
		ComputePerMinute int `yaml:"compute_per_minute"`
		ComputeBurst     int `yaml:"compute_burst"`
	} `yaml:"rate_limit"`
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Env:      envutil.String("APP_ENV", "development"),
		Version:  envutil.String("APP_VERSION", "dev"),
		HTTPAddr: ":" + envutil.String("PORT", "8080"),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		JWTIssuer:      envutil.String("JWT_ISSUER", ""),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		CORSOrigins:    splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),

		DB: db.Config{
			Driver:     envutil.String("DB_DRIVER", db.DriverPostgres),
			Host:       envutil.String("POSTGRES_HOST", "localhost"),
			Port:       envutil.String("POSTGRES_PORT", "5432"),
			User:       envutil.String("POSTGRES_USER", "postgres"),
			Password:   envutil.String("POSTGRES_PASSWORD", ""),
			Name:       envutil.String("POSTGRES_NAME", "neurobridge"),
			SSLMode:    envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath: envutil.String("SQLITE_PATH", "insights.db"),
		},
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_INVALIDATION_CHANNEL", "insights.invalidate"),
		},

		LocalCacheBytes: int64(envutil.Int("INSIGHTS_LOCAL_CACHE_MB", 64)) << 20,
		DefaultTimezone: envutil.String("INSIGHTS_DEFAULT_TIMEZONE", "UTC"),
		Insights: services.InsightsServiceConfig{
			LookbackDays:       envutil.Int("INSIGHTS_LOOKBACK_DAYS", 120),
			PeerLookbackDays:   envutil.Int("INSIGHTS_PEER_LOOKBACK_DAYS", 30),
			PeerSampleLimit:    envutil.Int("INSIGHTS_PEER_SAMPLE_LIMIT", 500),
			CacheTTL:           envutil.Seconds("INSIGHTS_CACHE_TTL_SECONDS", 15*time.Minute),
			ComputeTimeout:     envutil.Seconds("INSIGHTS_COMPUTE_TIMEOUT_SECONDS", 30*time.Second),
			FetchMaxTries:      uint(max(1, envutil.Int("INSIGHTS_FETCH_MAX_TRIES", 3))),
			GraphExportTimeout: envutil.Seconds("NEO4J_EXPORT_TIMEOUT_SECONDS", 10*time.Second),
			DefaultPreferences: insights.DefaultPreferences(),
		},

		ComputePerMinute:   envutil.Int("INSIGHTS_COMPUTE_RATE_PER_MINUTE", 30),
		ComputeBurst:       envutil.Int("INSIGHTS_COMPUTE_RATE_BURST", 10),
		RefreshConcurrency: envutil.Int("INSIGHTS_REFRESH_CONCURRENCY", 4),

		WarmEnabled: envutil.Bool("INSIGHTS_WARM_ENABLED", true),
		Warmer: warmer.Config{
			IntervalMinutes: envutil.Int("INSIGHTS_WARM_INTERVAL_MINUTES", 30),
			ActiveWithin:    time.Duration(envutil.Int("INSIGHTS_WARM_ACTIVE_WITHIN_HOURS", 24)) * time.Hour,
			MaxUsers:        envutil.Int("INSIGHTS_WARM_MAX_USERS", 1000),
		},

		Temporal:  temporalx.LoadConfig(),
		RunWorker: envutil.Bool("TEMPORAL_WORKER_ENABLED", true),
	}

	if path := envutil.String("INSIGHTS_CONFIG_FILE", ""); path != "" {
		if err := applyConfigFile(&cfg, path); err != nil {
			return cfg, err
		}
		if log != nil {
			log.Info("Loaded insights config file", "path", path)
		}
	}

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		return cfg, fmt.Errorf("INSIGHTS_DEFAULT_TIMEZONE %q: %w", cfg.DefaultTimezone, err)
	}
	cfg.Insights.DefaultLocation = loc

	prefs := cfg.Insights.DefaultPreferences.Normalize()
	if err := prefs.Validate(); err != nil {
		return cfg, fmt.Errorf("default preferences: %w", err)
	}
	cfg.Insights.DefaultPreferences = prefs

	if cfg.JWTSecretKey == "defaultsecret" && cfg.Env == "production" && log != nil {
		log.Warn("JWT_SECRET_KEY is the built-in default in production")
	}
	return cfg, nil
}

func applyConfigFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	in := fc.Insights
	if in.LookbackDays > 0 {
		cfg.Insights.LookbackDays = in.LookbackDays
	}
	if in.PeerLookbackDays > 0 {
		cfg.Insights.PeerLookbackDays = in.PeerLookbackDays
	}
	if in.PeerSampleLimit > 0 {
		cfg.Insights.PeerSampleLimit = in.PeerSampleLimit
	}
	if in.CacheTTLSeconds > 0 {
		cfg.Insights.CacheTTL = time.Duration(in.CacheTTLSeconds) * time.Second
	}
	if tz := strings.TrimSpace(in.DefaultTimezone); tz != "" {
		cfg.DefaultTimezone = tz
	}
	if in.DefaultPreferences != nil {
		cfg.Insights.DefaultPreferences = *in.DefaultPreferences
	}

	w := fc.Warmer
	if w.Enabled != nil {
		cfg.WarmEnabled = *w.Enabled
	}
	if w.IntervalMinutes > 0 {
		cfg.Warmer.IntervalMinutes = w.IntervalMinutes
	}
	if w.ActiveWithinHours > 0 {
		cfg.Warmer.ActiveWithin = time.Duration(w.ActiveWithinHours) * time.Hour
	}
	if w.MaxUsers > 0 {
		cfg.Warmer.MaxUsers = w.MaxUsers
	}

	if fc.RateLimit.ComputePerMinute > 0 {
		cfg.ComputePerMinute = fc.RateLimit.ComputePerMinute
	}
	if fc.RateLimit.ComputeBurst > 0 {
		cfg.ComputeBurst = fc.RateLimit.ComputeBurst
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
