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
	Backend      BackendConfig
	PublicIP     PublicIPConfig
	Checkout     CheckoutConfig
	Session      SessionConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		// The database is only required when it backs cart storage:
		// sqlite and Redis deployments never open it.
		if !cfg.FeatureFlags.UseSQLite && !cfg.Redis.Enabled() {
			return nil, err
		}
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COMANDA_APP_ENV" required:"true"`
	Port         string `envconfig:"COMANDA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COMANDA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COMANDA_LOG_WARN_STACK" default:"false"`
	// CORSOrigins lists the site origins allowed to call the gateway,
	// comma separated.
	CORSOrigins []string `envconfig:"COMANDA_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COMANDA_DB_DSN"`
	Driver string `envconfig:"COMANDA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COMANDA_DB_HOST"`
	LegacyPort     int    `envconfig:"COMANDA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COMANDA_DB_USER"`
	LegacyPassword string `envconfig:"COMANDA_DB_PASSWORD"`
	LegacyName     string `envconfig:"COMANDA_DB_NAME"`
	LegacySSLMode  string `envconfig:"COMANDA_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"COMANDA_SQLITE_PATH" default:"comanda.db"`

	MaxOpenConns    int           `envconfig:"COMANDA_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"COMANDA_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"COMANDA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COMANDA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COMANDA_REDIS_URL"`
	Address      string        `envconfig:"COMANDA_REDIS_ADDR"`
	Password     string        `envconfig:"COMANDA_REDIS_PASSWORD"`
	DB           int           `envconfig:"COMANDA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COMANDA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COMANDA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COMANDA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COMANDA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COMANDA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// BackendConfig points the gateway at the restaurant backend that owns
// orders, products, and payments.
type BackendConfig struct {
	BaseURL           string        `envconfig:"COMANDA_BACKEND_BASE_URL" required:"true"`
	OrderPath         string        `envconfig:"COMANDA_BACKEND_ORDER_PATH" default:"/caja/api/guardar_pedido_cliente/"`
	PaymentCreatePath string        `envconfig:"COMANDA_BACKEND_PAYMENT_CREATE_PATH" default:"/caja/api/payments/create/"`
	PaymentResultPath string        `envconfig:"COMANDA_BACKEND_PAYMENT_RESULT_PATH" default:"/caja/api/payments/process_result/"`
	Timeout           time.Duration `envconfig:"COMANDA_BACKEND_TIMEOUT" default:"15s"`
	BreakerMaxFails   uint32        `envconfig:"COMANDA_BACKEND_BREAKER_MAX_FAILS" default:"5"`
	BreakerCooldown   time.Duration `envconfig:"COMANDA_BACKEND_BREAKER_COOLDOWN" default:"30s"`
}

func (b BackendConfig) validate() error {
	if _, err := url.ParseRequestURI(b.BaseURL); err != nil {
		return fmt.Errorf("invalid backend base url: %w", err)
	}
	return nil
}

type PublicIPConfig struct {
	LookupURL string        `envconfig:"COMANDA_PUBLIC_IP_URL" default:"https://api.ipify.org?format=json"`
	Timeout   time.Duration `envconfig:"COMANDA_PUBLIC_IP_TIMEOUT" default:"5s"`
}

// CheckoutConfig carries the pieces of the payment handshake the gateway
// templates per table.
type CheckoutConfig struct {
	// ReturnURLTemplate must contain a %s placeholder for the table id,
	// e.g. https://shatalito.ar/%s/pedido_pagado/
	ReturnURLTemplate string `envconfig:"COMANDA_CHECKOUT_RETURN_URL_TEMPLATE" required:"true"`
}

// ReturnURL renders the payment return destination for a table.
func (c CheckoutConfig) ReturnURL(table string) string {
	return fmt.Sprintf(c.ReturnURLTemplate, table)
}

type SessionConfig struct {
	CookieName string        `envconfig:"COMANDA_SESSION_COOKIE" default:"comanda_session"`
	CartTTL    time.Duration `envconfig:"COMANDA_CART_TTL" default:"0"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"COMANDA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"COMANDA_AUTO_MIGRATE" default:"false"`
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
