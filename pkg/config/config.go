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

	EnvDBDSN  = "VENDIO_DB_DSN"
	EnvDBHost = "VENDIO_DB_HOST"
	EnvDBUser = "VENDIO_DB_USER"
	EnvDBName = "VENDIO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Catalog      CatalogConfig
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
	Env          string `envconfig:"VENDIO_APP_ENV" required:"true"`
	Port         string `envconfig:"VENDIO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VENDIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VENDIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VENDIO_DB_DSN"`
	Driver string `envconfig:"VENDIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VENDIO_DB_HOST"`
	LegacyPort     int    `envconfig:"VENDIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VENDIO_DB_USER"`
	LegacyPassword string `envconfig:"VENDIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"VENDIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"VENDIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENDIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENDIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENDIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENDIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VENDIO_REDIS_URL"`
	Address      string        `envconfig:"VENDIO_REDIS_ADDR"`
	Password     string        `envconfig:"VENDIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENDIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENDIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENDIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENDIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENDIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENDIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CatalogConfig carries the per-business limits and SKU settings for the
// catalog core.
type CatalogConfig struct {
	SKUPrefix            string `envconfig:"VENDIO_CATALOG_SKU_PREFIX" default:"I-"`
	SKUMaxAttempts       int    `envconfig:"VENDIO_CATALOG_SKU_MAX_ATTEMPTS" default:"3"`
	ProductCap           int    `envconfig:"VENDIO_CATALOG_PRODUCT_CAP" default:"5000"`
	ModifierGroupCap     int    `envconfig:"VENDIO_CATALOG_MODIFIER_GROUP_CAP" default:"200"`
	ModifierOptionCap    int    `envconfig:"VENDIO_CATALOG_MODIFIER_OPTION_CAP" default:"100"`
	GroupsPerProductCap  int    `envconfig:"VENDIO_CATALOG_GROUPS_PER_PRODUCT_CAP" default:"20"`
	IdempotencyTTLHours  int    `envconfig:"VENDIO_CATALOG_IDEMPOTENCY_TTL_HOURS" default:"24"`
}

// IdempotencyTTL returns the retention window for replayed mutation responses.
func (c CatalogConfig) IdempotencyTTL() time.Duration {
	if c.IdempotencyTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.IdempotencyTTLHours) * time.Hour
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VENDIO_AUTO_MIGRATE" default:"false"`
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
