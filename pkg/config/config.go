package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "FINCALIA_DB_DSN"
	EnvDBHost = "FINCALIA_DB_HOST"
	EnvDBUser = "FINCALIA_DB_USER"
	EnvDBName = "FINCALIA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Media        MediaConfig
	Drafts       DraftsConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"FINCALIA_APP_ENV" required:"true"`
	Port         string `envconfig:"FINCALIA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FINCALIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FINCALIA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FINCALIA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FINCALIA_DB_DSN"`
	Driver string `envconfig:"FINCALIA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FINCALIA_DB_HOST"`
	LegacyPort     int    `envconfig:"FINCALIA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FINCALIA_DB_USER"`
	LegacyPassword string `envconfig:"FINCALIA_DB_PASSWORD"`
	LegacyName     string `envconfig:"FINCALIA_DB_NAME"`
	LegacySSLMode  string `envconfig:"FINCALIA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FINCALIA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FINCALIA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FINCALIA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FINCALIA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FINCALIA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FINCALIA_REDIS_ADDR"`
	Password     string        `envconfig:"FINCALIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"FINCALIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FINCALIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FINCALIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FINCALIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FINCALIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FINCALIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type MediaConfig struct {
	MaxImageBytes    int64 `envconfig:"FINCALIA_MEDIA_MAX_IMAGE_BYTES" default:"20971520"`
	MaxDocumentBytes int64 `envconfig:"FINCALIA_MEDIA_MAX_DOCUMENT_BYTES" default:"31457280"`
	MaxVideoBytes    int64 `envconfig:"FINCALIA_MEDIA_MAX_VIDEO_BYTES" default:"209715200"`
}

type DraftsConfig struct {
	// SessionTTL bounds how long an abandoned wizard session keeps its
	// property lease before the cron worker discards it.
	SessionTTL time.Duration `envconfig:"FINCALIA_DRAFT_SESSION_TTL" default:"2h"`
	LeaseTTL   time.Duration `envconfig:"FINCALIA_DRAFT_LEASE_TTL" default:"3h"`
}

type CronConfig struct {
	LockTTL             time.Duration `envconfig:"FINCALIA_CRON_LOCK_TTL" default:"25h"`
	StaleDraftRetention time.Duration `envconfig:"FINCALIA_CRON_STALE_DRAFT_RETENTION" default:"2h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FINCALIA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FINCALIA_AUTO_MIGRATE" default:"false"`
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
