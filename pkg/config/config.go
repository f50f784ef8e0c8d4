package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Orders        OrdersConfig
	MercadoPago   MercadoPagoConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	SMTP          SMTPConfig
	Store         StoreConfig
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
	Env          string `envconfig:"MR_APP_ENV" required:"true"`
	Port         string `envconfig:"MR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MR_DB_DSN"`
	Driver string `envconfig:"MR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MR_DB_HOST"`
	LegacyPort     int    `envconfig:"MR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MR_DB_USER"`
	LegacyPassword string `envconfig:"MR_DB_PASSWORD"`
	LegacyName     string `envconfig:"MR_DB_NAME"`
	LegacySSLMode  string `envconfig:"MR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MR_REDIS_ADDR"`
	Password     string        `envconfig:"MR_REDIS_PASSWORD"`
	DB           int           `envconfig:"MR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MR_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MR_JWT_EXPIRATION_MINUTES" default:"10080"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MR_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MR_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MR_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MR_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MR_AUTO_MIGRATE" default:"false"`
}

// OrdersConfig carries the knobs of the order creation flow. Values are
// injected into the orders service so nothing reads the environment at
// request time.
type OrdersConfig struct {
	NumberPrefix          string `envconfig:"MR_ORDER_NUMBER_PREFIX" default:"MR"`
	FreeShippingThreshold string `envconfig:"MR_FREE_SHIPPING_THRESHOLD" default:"100000"`
	FlatShippingFee       string `envconfig:"MR_FLAT_SHIPPING_FEE" default:"5000.00"`
	NumberMaxAttempts     int    `envconfig:"MR_ORDER_NUMBER_MAX_ATTEMPTS" default:"3"`
}

type MercadoPagoConfig struct {
	AccessToken    string        `envconfig:"MR_MERCADOPAGO_ACCESS_TOKEN"`
	BaseURL        string        `envconfig:"MR_MERCADOPAGO_BASE_URL" default:"https://api.mercadopago.com"`
	RequestTimeout time.Duration `envconfig:"MR_MERCADOPAGO_TIMEOUT" default:"10s"`
	WebhookTTL     time.Duration `envconfig:"MR_MERCADOPAGO_WEBHOOK_TTL" default:"168h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"MR_GCP_PROJECT_ID" required:"true"`
}

type PubSubConfig struct {
	EventsTopic        string `envconfig:"MR_PUBSUB_EVENTS_TOPIC" default:"mr-domain-events"`
	EventsSubscription string `envconfig:"MR_PUBSUB_EVENTS_SUBSCRIPTION" required:"true"`
}

type SMTPConfig struct {
	Host       string `envconfig:"MR_SMTP_HOST"`
	Port       int    `envconfig:"MR_SMTP_PORT" default:"587"`
	User       string `envconfig:"MR_SMTP_USER"`
	Password   string `envconfig:"MR_SMTP_PASSWORD"`
	FromEmail  string `envconfig:"MR_SMTP_FROM_EMAIL"`
	AdminEmail string `envconfig:"MR_ADMIN_EMAIL"`
}

// Configured reports whether outgoing mail can be sent at all.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.User != "" && s.Password != ""
}

type StoreConfig struct {
	FrontendURL string `envconfig:"MR_FRONTEND_URL" default:"http://localhost:3000"`
	// PublicAPIURL is the externally reachable base URL of this API, used to
	// build the gateway webhook callback. Leave empty to let the gateway use
	// the notification URL configured in its dashboard.
	PublicAPIURL string `envconfig:"MR_PUBLIC_API_URL"`
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
