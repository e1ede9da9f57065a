package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every reelstack environment variable.
const EnvPrefix = "reelstack"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Vision        VisionConfig
	Imaging       ImagingConfig
	Batch         BatchConfig
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
	Env          string `envconfig:"REELSTACK_APP_ENV" required:"true"`
	Port         string `envconfig:"REELSTACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"REELSTACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REELSTACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"REELSTACK_DB_DSN"`
	Driver string `envconfig:"REELSTACK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"REELSTACK_DB_HOST"`
	LegacyPort     int    `envconfig:"REELSTACK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REELSTACK_DB_USER"`
	LegacyPassword string `envconfig:"REELSTACK_DB_PASSWORD"`
	LegacyName     string `envconfig:"REELSTACK_DB_NAME"`
	LegacySSLMode  string `envconfig:"REELSTACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REELSTACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REELSTACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REELSTACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REELSTACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a DSN from the discrete host/port variables when one is
// not provided directly.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.LegacyHost == "" || db.LegacyUser == "" || db.LegacyName == "" {
		return fmt.Errorf("either REELSTACK_DB_DSN or REELSTACK_DB_HOST/USER/NAME must be set")
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(db.LegacyUser, db.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   "/" + db.LegacyName,
	}
	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"REELSTACK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"REELSTACK_REDIS_ADDR"`
	Password     string        `envconfig:"REELSTACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"REELSTACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REELSTACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REELSTACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REELSTACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REELSTACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REELSTACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"REELSTACK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"REELSTACK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"REELSTACK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"REELSTACK_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"REELSTACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"REELSTACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"REELSTACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"REELSTACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"REELSTACK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"REELSTACK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"REELSTACK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"REELSTACK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"REELSTACK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"REELSTACK_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"REELSTACK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REELSTACK_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"REELSTACK_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"REELSTACK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"REELSTACK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"REELSTACK_GCS_BUCKET_NAME" required:"true"`
	PublicURL  string `envconfig:"REELSTACK_GCS_PUBLIC_URL"`
}

type VisionConfig struct {
	MaxTags   int `envconfig:"REELSTACK_VISION_MAX_TAGS" default:"10"`
	MaxColors int `envconfig:"REELSTACK_VISION_MAX_COLORS" default:"5"`
}

type ImagingConfig struct {
	MaxWidth      int `envconfig:"REELSTACK_IMAGE_MAX_WIDTH" default:"1920"`
	MaxHeight     int `envconfig:"REELSTACK_IMAGE_MAX_HEIGHT" default:"1080"`
	JPEGQuality   int `envconfig:"REELSTACK_IMAGE_JPEG_QUALITY" default:"85"`
	ThumbnailSize int `envconfig:"REELSTACK_IMAGE_THUMBNAIL_SIZE" default:"300"`
}

type BatchConfig struct {
	MaxConcurrency int           `envconfig:"REELSTACK_BATCH_MAX_CONCURRENCY" default:"8"`
	TaskTimeout    time.Duration `envconfig:"REELSTACK_BATCH_TASK_TIMEOUT" default:"60s"`
	VersionRetries int           `envconfig:"REELSTACK_BATCH_VERSION_RETRIES" default:"3"`
}
