package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/mia-backend/pkg/env"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	SerpAPI      SerpAPIConfig
	Pricing      PricingConfig
	Tracking     TrackingConfig
	Security     SecurityConfig
	RateLimit    RateLimitConfig
	Sendgrid     SendgridConfig
	Telegram     TelegramConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.applyLegacyFallbacks(); err != nil {
		return nil, err
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MIA_APP_ENV" required:"true"`
	Port         string `envconfig:"MIA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MIA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MIA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MIA_DB_DSN"`
	Driver string `envconfig:"MIA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MIA_DB_HOST"`
	LegacyPort     int    `envconfig:"MIA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MIA_DB_USER"`
	LegacyPassword string `envconfig:"MIA_DB_PASSWORD"`
	LegacyName     string `envconfig:"MIA_DB_NAME"`
	LegacySSLMode  string `envconfig:"MIA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MIA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MIA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MIA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MIA_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQueryThreshold logs statements slower than this; 0 disables it.
	SlowQueryThreshold time.Duration `envconfig:"MIA_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

// IsSQLite reports whether the sqlite driver was selected (local runs only).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"MIA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MIA_REDIS_ADDR"`
	Password     string        `envconfig:"MIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"MIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SerpAPIConfig drives the Google Shopping search client.
type SerpAPIConfig struct {
	APIKey            string        `envconfig:"MIA_SERPAPI_KEY"`
	BaseURL           string        `envconfig:"MIA_SERPAPI_BASE_URL" default:"https://serpapi.com"`
	Engine            string        `envconfig:"MIA_SERPAPI_ENGINE" default:"google_shopping"`
	Country           string        `envconfig:"MIA_SERPAPI_COUNTRY" default:"br"`
	Language          string        `envconfig:"MIA_SERPAPI_LANGUAGE" default:"pt"`
	ResultLimit       int           `envconfig:"MIA_SERPAPI_RESULT_LIMIT" default:"10"`
	Timeout           time.Duration `envconfig:"MIA_SERPAPI_TIMEOUT" default:"10s"`
	RequestsPerSecond float64       `envconfig:"MIA_SERPAPI_RPS" default:"5"`
	Burst             int           `envconfig:"MIA_SERPAPI_BURST" default:"5"`
	CacheTTL          time.Duration `envconfig:"MIA_SERPAPI_CACHE_TTL" default:"6h"`
}

type PricingConfig struct {
	CallTimeout time.Duration `envconfig:"MIA_PRICING_CALL_TIMEOUT" default:"8s"`
}

type TrackingConfig struct {
	BatchSize     int           `envconfig:"MIA_TRACKING_BATCH_SIZE" default:"15"`
	Interval      time.Duration `envconfig:"MIA_TRACKING_INTERVAL" default:"1h"`
	Concurrency   int           `envconfig:"MIA_TRACKING_CONCURRENCY" default:"1"`
	CallTimeout   time.Duration `envconfig:"MIA_TRACKING_CALL_TIMEOUT" default:"15s"`
	DefaultSource string        `envconfig:"MIA_TRACKING_DEFAULT_SOURCE" default:"google_shopping"`
}

type SecurityConfig struct {
	APISharedKey   string   `envconfig:"MIA_SECURITY_API_SHARED_KEY"`
	CronSecret     string   `envconfig:"MIA_SECURITY_CRON_SECRET"`
	AllowedOrigins []string `envconfig:"MIA_SECURITY_ALLOWED_ORIGINS"`
}

type RateLimitConfig struct {
	PricingWindow time.Duration `envconfig:"MIA_RATE_LIMIT_PRICING_WINDOW" default:"1m"`
	PricingLimit  int           `envconfig:"MIA_RATE_LIMIT_PRICING_LIMIT" default:"30"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"MIA_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"MIA_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"MIA_SENDGRID_FROM_NAME" default:"MIA"`
}

// Enabled reports whether outbound email is configured.
func (s SendgridConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != "" && strings.TrimSpace(s.DefaultFrom) != ""
}

// TelegramConfig points price-drop copies at an operations chat.
type TelegramConfig struct {
	BotToken string `envconfig:"MIA_TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `envconfig:"MIA_TELEGRAM_CHAT_ID"`
}

func (t TelegramConfig) Enabled() bool {
	return strings.TrimSpace(t.BotToken) != "" && t.ChatID != 0
}

type FeatureFlagsConfig struct {
	AutoMigrate     bool `envconfig:"MIA_AUTO_MIGRATE" default:"false"`
	SearchCache     bool `envconfig:"MIA_FEATURE_SEARCH_CACHE" default:"true"`
	PriceDropEmails bool `envconfig:"MIA_FEATURE_PRICE_DROP_EMAILS" default:"true"`
}

// applyLegacyFallbacks honours the unprefixed variable names used by the
// serverless deployment so both can run side by side during the cutover.
func (c *Config) applyLegacyFallbacks() error {
	if c.SerpAPI.APIKey == "" {
		c.SerpAPI.APIKey, _ = env.First(LegacyEnvSerpAPIKey)
	}
	if c.Security.APISharedKey == "" {
		c.Security.APISharedKey, _ = env.First(LegacyEnvAPISharedKey)
	}
	if c.Security.CronSecret == "" {
		c.Security.CronSecret, _ = env.First(LegacyEnvCronSecret)
	}
	if _, prefixed := env.First(EnvTrackingBatchSize); !prefixed {
		size, ok, err := env.Int(LegacyEnvBatchSize)
		if err != nil {
			return err
		}
		if ok {
			c.Tracking.BatchSize = size
		}
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
