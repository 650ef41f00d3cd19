package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "lokalmart"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "LOKALMART_DB_DSN"
	EnvDBHost = "LOKALMART_DB_HOST"
	EnvDBUser = "LOKALMART_DB_USER"
	EnvDBName = "LOKALMART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Commerce      CommerceConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
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
	Env          string `envconfig:"LOKALMART_APP_ENV" required:"true"`
	Port         string `envconfig:"LOKALMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOKALMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOKALMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LOKALMART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LOKALMART_DB_DSN"`
	Driver string `envconfig:"LOKALMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOKALMART_DB_HOST"`
	LegacyPort     int    `envconfig:"LOKALMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOKALMART_DB_USER"`
	LegacyPassword string `envconfig:"LOKALMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOKALMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOKALMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOKALMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOKALMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOKALMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOKALMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOKALMART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOKALMART_REDIS_ADDR"`
	Password     string        `envconfig:"LOKALMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOKALMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOKALMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOKALMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOKALMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOKALMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOKALMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LOKALMART_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LOKALMART_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LOKALMART_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"LOKALMART_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LOKALMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LOKALMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LOKALMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LOKALMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LOKALMART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LOKALMART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"LOKALMART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LOKALMART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"LOKALMART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"LOKALMART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"LOKALMART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LOKALMART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LOKALMART_AUTO_MIGRATE" default:"false"`
}

// CommerceConfig tunes storefront business rules ops may adjust without a deploy.
type CommerceConfig struct {
	OrderRewardPoints int           `envconfig:"LOKALMART_ORDER_REWARD_POINTS" default:"100"`
	StoreExpPerOrder  int           `envconfig:"LOKALMART_STORE_EXP_PER_ORDER" default:"10"`
	PendingOrderTTL   time.Duration `envconfig:"LOKALMART_PENDING_ORDER_TTL" default:"24h"`
	CleanupRetention  time.Duration `envconfig:"LOKALMART_CLEANUP_RETENTION" default:"168h"`
	OrderNumberPrefix string        `envconfig:"LOKALMART_ORDER_NUMBER_PREFIX" default:"LM"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LOKALMART_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"LOKALMART_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"LOKALMART_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"LOKALMART_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"LOKALMART_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"LOKALMART_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type MediaConfig struct {
	MaxUploadMB    int `envconfig:"LOKALMART_MAX_UPLOAD_MB" default:"10"`
	ImageMaxWidth  int `envconfig:"LOKALMART_MEDIA_IMAGE_MAX_WIDTH" default:"1920"`
	ImageMaxHeight int `envconfig:"LOKALMART_MEDIA_IMAGE_MAX_HEIGHT" default:"1080"`
	ImageQuality   int `envconfig:"LOKALMART_MEDIA_IMAGE_QUALITY" default:"80"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"LOKALMART_PUBSUB_ORDERS_TOPIC" default:"lm-order-events"`
	OrdersSubscription string `envconfig:"LOKALMART_PUBSUB_ORDERS_SUBSCRIPTION"`
	ChatTopic          string `envconfig:"LOKALMART_PUBSUB_CHAT_TOPIC" default:"lm-chat-events"`
	ChatSubscription   string `envconfig:"LOKALMART_PUBSUB_CHAT_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"LOKALMART_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"LOKALMART_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"LOKALMART_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"LOKALMART_CRON_INTERVAL" default:"1h"`
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
