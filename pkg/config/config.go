package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is empty because every field carries its fully qualified
// BRASSERIE_* variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error
// messages).
const (
	EnvAppEnv      = "BRASSERIE_APP_ENV"
	EnvPort        = "BRASSERIE_APP_PORT"
	EnvDBDSN       = "BRASSERIE_DB_DSN"
	EnvDBHost      = "BRASSERIE_DB_HOST"
	EnvDBUser      = "BRASSERIE_DB_USER"
	EnvDBName      = "BRASSERIE_DB_NAME"
	EnvTokenSecret = "BRASSERIE_TOKEN_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Token     TokenConfig
	Password  PasswordConfig
	Lockout   LockoutConfig
	RateLimit RateLimitConfig
	Features  FeatureFlagsConfig
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
	Env          string `envconfig:"BRASSERIE_APP_ENV" required:"true"`
	Port         string `envconfig:"BRASSERIE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BRASSERIE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BRASSERIE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BRASSERIE_DB_DSN"`
	Driver string `envconfig:"BRASSERIE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BRASSERIE_DB_HOST"`
	LegacyPort     int    `envconfig:"BRASSERIE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BRASSERIE_DB_USER"`
	LegacyPassword string `envconfig:"BRASSERIE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BRASSERIE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BRASSERIE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BRASSERIE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BRASSERIE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BRASSERIE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BRASSERIE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional: with no URL configured the login rate limiter is
// disabled and the API runs without Redis.
type RedisConfig struct {
	URL          string        `envconfig:"BRASSERIE_REDIS_URL"`
	PoolSize     int           `envconfig:"BRASSERIE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BRASSERIE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BRASSERIE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BRASSERIE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BRASSERIE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

// TokenConfig drives the HMAC bearer token service. The secret is a
// process-wide value and must never come from a request.
type TokenConfig struct {
	Secret   string `envconfig:"BRASSERIE_TOKEN_SECRET" required:"true"`
	TTLHours int    `envconfig:"BRASSERIE_TOKEN_TTL_HOURS" default:"24"`
}

func (t TokenConfig) TTL() time.Duration {
	if t.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(t.TTLHours) * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BRASSERIE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BRASSERIE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BRASSERIE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BRASSERIE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BRASSERIE_ARGON_KEY_LEN" default:"32"`
}

// LockoutConfig caps failed logins. It only takes effect on deployments whose
// users table carries the counter columns.
type LockoutConfig struct {
	MaxAttempts int           `envconfig:"BRASSERIE_LOCKOUT_MAX_ATTEMPTS" default:"5"`
	Window      time.Duration `envconfig:"BRASSERIE_LOCKOUT_WINDOW" default:"15m"`
}

type RateLimitConfig struct {
	LoginWindow          time.Duration `envconfig:"BRASSERIE_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit         int           `envconfig:"BRASSERIE_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	LoginIdentifierLimit int           `envconfig:"BRASSERIE_RATE_LIMIT_LOGIN_IDENTIFIER_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BRASSERIE_AUTO_MIGRATE" default:"false"`
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
