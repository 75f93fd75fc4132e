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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Sendgrid      SendgridConfig
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
	Env          string `envconfig:"M3CLASS_APP_ENV" required:"true"`
	Port         string `envconfig:"M3CLASS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"M3CLASS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"M3CLASS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"M3CLASS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"M3CLASS_DB_DSN"`
	Driver string `envconfig:"M3CLASS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"M3CLASS_DB_HOST"`
	LegacyPort     int    `envconfig:"M3CLASS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"M3CLASS_DB_USER"`
	LegacyPassword string `envconfig:"M3CLASS_DB_PASSWORD"`
	LegacyName     string `envconfig:"M3CLASS_DB_NAME"`
	LegacySSLMode  string `envconfig:"M3CLASS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"M3CLASS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"M3CLASS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"M3CLASS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"M3CLASS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"M3CLASS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"M3CLASS_REDIS_ADDR"`
	Password     string        `envconfig:"M3CLASS_REDIS_PASSWORD"`
	DB           int           `envconfig:"M3CLASS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"M3CLASS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"M3CLASS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"M3CLASS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"M3CLASS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"M3CLASS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"M3CLASS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"M3CLASS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"M3CLASS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"M3CLASS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"M3CLASS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"M3CLASS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"M3CLASS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"M3CLASS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"M3CLASS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"M3CLASS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"M3CLASS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"M3CLASS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"M3CLASS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"M3CLASS_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"M3CLASS_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"M3CLASS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"M3CLASS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"M3CLASS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	EventsTopic        string `envconfig:"M3CLASS_PUBSUB_EVENTS_TOPIC" default:"m3c-school-events"`
	EventsSubscription string `envconfig:"M3CLASS_PUBSUB_EVENTS_SUBSCRIPTION"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"M3CLASS_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"M3CLASS_SENDGRID_FROM_EMAIL"`
	ContactTo   string `envconfig:"M3CLASS_SENDGRID_CONTACT_EMAIL"`
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
