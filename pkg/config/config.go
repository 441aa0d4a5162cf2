package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Dispatch     DispatchConfig
	Verification VerificationConfig
	SMS          SMSConfig
	Payments     PaymentsConfig
	Realtime     RealtimeConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BAZARLY_APP_ENV" required:"true"`
	Port         string `envconfig:"BAZARLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BAZARLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BAZARLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BAZARLY_DB_DSN"`
	Driver string `envconfig:"BAZARLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BAZARLY_DB_HOST"`
	LegacyPort     int    `envconfig:"BAZARLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BAZARLY_DB_USER"`
	LegacyPassword string `envconfig:"BAZARLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"BAZARLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"BAZARLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BAZARLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BAZARLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BAZARLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BAZARLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BAZARLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BAZARLY_REDIS_ADDR"`
	Password     string        `envconfig:"BAZARLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"BAZARLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BAZARLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BAZARLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BAZARLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BAZARLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BAZARLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BAZARLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BAZARLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BAZARLY_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BAZARLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BAZARLY_AUTO_MIGRATE" default:"false"`
}

// DispatchConfig tunes the assignment dispatcher.
type DispatchConfig struct {
	// RejectCooldown controls how long an order stays hidden from an agent
	// who rejected it before it reappears in their eligible list.
	RejectCooldown time.Duration `envconfig:"BAZARLY_DISPATCH_REJECT_COOLDOWN" default:"15m"`
}

// VerificationConfig tunes the verification code issuer.
type VerificationConfig struct {
	CodeTTL     time.Duration `envconfig:"BAZARLY_VERIFICATION_CODE_TTL" default:"10m"`
	CodeLength  int           `envconfig:"BAZARLY_VERIFICATION_CODE_LENGTH" default:"6"`
	MaxAttempts int           `envconfig:"BAZARLY_VERIFICATION_MAX_ATTEMPTS" default:"3"`
	// Sandbox exposes generated codes in API responses instead of sending SMS.
	Sandbox bool `envconfig:"BAZARLY_VERIFICATION_SANDBOX" default:"false"`
}

type SMSConfig struct {
	ProviderURL string        `envconfig:"BAZARLY_SMS_PROVIDER_URL"`
	APIKey      string        `envconfig:"BAZARLY_SMS_API_KEY"`
	SenderID    string        `envconfig:"BAZARLY_SMS_SENDER_ID" default:"BZRLY"`
	Timeout     time.Duration `envconfig:"BAZARLY_SMS_TIMEOUT" default:"5s"`
}

type PaymentsConfig struct {
	Provider      string        `envconfig:"BAZARLY_PAYMENTS_PROVIDER" default:"cashfree"`
	BaseURL       string        `envconfig:"BAZARLY_PAYMENTS_BASE_URL"`
	ClientID      string        `envconfig:"BAZARLY_PAYMENTS_CLIENT_ID"`
	ClientSecret  string        `envconfig:"BAZARLY_PAYMENTS_CLIENT_SECRET"`
	WebhookSecret string        `envconfig:"BAZARLY_PAYMENTS_WEBHOOK_SECRET"`
	Timeout       time.Duration `envconfig:"BAZARLY_PAYMENTS_TIMEOUT" default:"10s"`
}

type RealtimeConfig struct {
	// ChannelPrefix namespaces the pub/sub rooms so several deployments can
	// share one redis.
	ChannelPrefix  string        `envconfig:"BAZARLY_REALTIME_CHANNEL_PREFIX" default:"bzr:room"`
	PublishTimeout time.Duration `envconfig:"BAZARLY_REALTIME_PUBLISH_TIMEOUT" default:"2s"`
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
