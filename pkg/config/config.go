package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/vault-client-go"
	"github.com/spf13/viper"
	_ "github.com/spf13/viper/remote"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	config       = viper.New()
	configHolder atomic.Value
	backend      = "consul"
	backendAddr  = "127.0.0.1:8500"
	backendPath  = "development" // e.g., luxlife/<env>/pipeline
	configType   = "yaml"
)

const (
	DefaultFromEmail    = "LuxLife <notifications@luxlifemvp.com>"
	DefaultDashboardURL = "https://luxlifemvp.com/dashboard"
)

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	TLS        struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Otel struct {
		Addr     string `mapstructure:"ADDR"`
		Protocol string `mapstructure:"PROTOCOL"`
	} `mapstructure:"OTEL"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	Sentry struct {
		DSN string `mapstructure:"DSN"`
	} `mapstructure:"SENTRY"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Type           string `mapstructure:"TYPE"`
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`
		Metrics        bool   `mapstructure:"METRICS"`
		MetricsPort    uint32 `mapstructure:"METRICS_PORT"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Worker struct {
		NodeID      int64         `mapstructure:"NODE_ID"`
		Concurrency int           `mapstructure:"CONCURRENCY"`
		LockTTL     time.Duration `mapstructure:"LOCK_TTL"`
		ScratchDir  string        `mapstructure:"SCRATCH_DIR"`
		// Orders idle this long in a triggered state get their trigger
		// republished by the sweeper.
		StaleAfter    time.Duration `mapstructure:"STALE_AFTER"`
		SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`
	} `mapstructure:"WORKER"`
	Flagsmith struct {
		Addr   string `mapstructure:"ADDR"`
		ApiKey string `mapstructure:"API_KEY"`
	} `mapstructure:"FLAGSMITH"`
	Minio struct {
		Endpoint      string `mapstructure:"ENDPOINT"`
		AccessKey     string `mapstructure:"ACCESS_KEY"`
		SecretKey     string `mapstructure:"SECRET_KEY"`
		Secure        bool   `mapstructure:"SECURE"`
		BucketName    string `mapstructure:"BUCKET_NAME"`
		PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`
	} `mapstructure:"MINIO"`
	Replicate struct {
		APIToken     string `mapstructure:"API_TOKEN"`
		ModelVersion string `mapstructure:"MODEL_VERSION"`
		BaseURL      string `mapstructure:"BASE_URL"`
	} `mapstructure:"REPLICATE"`
	DID struct {
		APIKey  string `mapstructure:"API_KEY"`
		BaseURL string `mapstructure:"BASE_URL"`
	} `mapstructure:"DID"`
	TTS struct {
		APIKey          string `mapstructure:"API_KEY"`
		CredentialsFile string `mapstructure:"CREDENTIALS_FILE"`
		Endpoint        string `mapstructure:"ENDPOINT"`
	} `mapstructure:"TTS"`
	Resend struct {
		APIKey    string `mapstructure:"API_KEY"`
		FromEmail string `mapstructure:"FROM_EMAIL"`
		BaseURL   string `mapstructure:"BASE_URL"`
	} `mapstructure:"RESEND"`
	Provider struct {
		RateLimit float64       `mapstructure:"RATE_LIMIT"`
		Timeout   time.Duration `mapstructure:"TIMEOUT"`
	} `mapstructure:"PROVIDER"`
	App struct {
		DashboardURL string `mapstructure:"DASHBOARD_URL"`
	} `mapstructure:"APP"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))
var RemoteModule = fx.Module("remote.config", fx.Provide(LoadRemote))

type Params struct {
	fx.In
	Vault *vault.Client `optional:"true"`
}

func LoadConfig(p Params) *Config {
	config.SetConfigName("config")
	config.SetConfigType(configType)
	config.AddConfigPath(".")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()
	bindEnv(config)

	if err := config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			zap.L().Error("failed to read config file", zap.Error(err))
			os.Exit(1)
		}
	}

	var cfg Config
	if err := config.Unmarshal(&cfg); err != nil {
		zap.L().Error("failed to unmarshal config", zap.Error(err))
		os.Exit(1)
	}

	if p.Vault != nil {
		if err := applyVaultSecrets(context.Background(), p.Vault, &cfg); err != nil {
			zap.L().Error("failed get secret from vault", zap.Error(err))
			os.Exit(1)
		}
	}

	cfg.ApplyDefaults()
	configHolder.Store(&cfg)

	return &cfg
}

func LoadRemote(p Params) *Config {
	if v, ok := os.LookupEnv("REMOTE_CONFIG_PROVIDER"); ok {
		backend = v
	}

	if v, ok := os.LookupEnv("REMOTE_CONFIG_ADDR"); ok {
		backendAddr = v
	}

	if v, ok := os.LookupEnv("REMOTE_CONFIG_PATH"); ok {
		backendPath = v
	}

	config.SetConfigType(configType)
	if err := config.AddRemoteProvider(backend, backendAddr, backendPath); err != nil {
		zap.L().Error("failed to add remote config provider", zap.Error(err))
		os.Exit(1)
	}

	if err := config.ReadRemoteConfig(); err != nil {
		zap.L().Error("failed to read remote config", zap.Error(err))
		os.Exit(1)
	}

	var cfg Config
	if err := config.Unmarshal(&cfg); err != nil {
		os.Exit(1)
	}

	if p.Vault != nil {
		if err := applyVaultSecrets(context.Background(), p.Vault, &cfg); err != nil {
			zap.L().Error("failed get secret from vault", zap.Error(err))
			os.Exit(1)
		}
	}
	cfg.ApplyDefaults()
	configHolder.Store(&cfg)

	go func() {
		for {
			time.Sleep(time.Second * 5)

			if err := config.WatchRemoteConfig(); err != nil {
				zap.L().Error("unable to read remote config", zap.Error(err))
				continue
			}

			var newcfg Config
			if err := config.Unmarshal(&newcfg); err != nil {
				zap.L().Error("unable to unmarshal remote config", zap.Error(err))
				continue
			}
			newcfg.ApplyDefaults()
			configHolder.Store(&newcfg)
		}
	}()

	return &cfg
}

// Current returns the most recently loaded configuration, or nil before the
// first load.
func Current() *Config {
	if cfg, ok := configHolder.Load().(*Config); ok {
		return cfg
	}
	return nil
}

func applyVaultSecrets(ctx context.Context, client *vault.Client, cfg *Config) error {
	zap.L().Info("Starting Get Secrets", zap.String("path", cfg.AppEnv))
	secret, err := client.Secrets.KvV2Read(ctx, cfg.AppEnv, vault.WithMountPath("secret"))
	if err != nil {
		return err
	}
	zap.L().Info("Success Get Secret")

	get := func(key, current string) string {
		if val, ok := secret.Data.Data[key].(string); ok && val != "" {
			return val
		}
		return current
	}

	cfg.Database.User = get("postgres_user", cfg.Database.User)
	cfg.Database.Password = get("postgres_password", cfg.Database.Password)
	cfg.Redis.Password = get("redis_password", cfg.Redis.Password)
	cfg.Minio.SecretKey = get("minio_secret_key", cfg.Minio.SecretKey)
	cfg.Replicate.APIToken = get("replicate_api_token", cfg.Replicate.APIToken)
	cfg.DID.APIKey = get("did_api_key", cfg.DID.APIKey)
	cfg.TTS.APIKey = get("tts_api_key", cfg.TTS.APIKey)
	cfg.Resend.APIKey = get("resend_api_key", cfg.Resend.APIKey)
	cfg.Flagsmith.ApiKey = get("flagsmith_api_key", cfg.Flagsmith.ApiKey)
	return nil
}

// ApplyDefaults fills values that have a documented fallback. Provider
// credentials never get one: their absence is reported by the workflow.
func (c *Config) ApplyDefaults() {
	if c.AppName == "" {
		c.AppName = "luxlife-pipeline"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "8080"
	}
	if c.Worker.Concurrency <= 0 {
		c.Worker.Concurrency = 10
	}
	if c.Worker.LockTTL <= 0 {
		c.Worker.LockTTL = 30 * time.Minute
	}
	if c.Worker.StaleAfter <= 0 {
		c.Worker.StaleAfter = 15 * time.Minute
	}
	if c.Worker.SweepInterval <= 0 {
		c.Worker.SweepInterval = 5 * time.Minute
	}
	if c.Replicate.BaseURL == "" {
		c.Replicate.BaseURL = "https://api.replicate.com"
	}
	if c.DID.BaseURL == "" {
		c.DID.BaseURL = "https://api.d-id.com"
	}
	if c.Resend.BaseURL == "" {
		c.Resend.BaseURL = "https://api.resend.com"
	}
	if c.Resend.FromEmail == "" {
		c.Resend.FromEmail = DefaultFromEmail
	}
	if c.App.DashboardURL == "" {
		c.App.DashboardURL = DefaultDashboardURL
	}
	if c.Provider.Timeout <= 0 {
		c.Provider.Timeout = 30 * time.Second
	}
	if c.Provider.RateLimit <= 0 {
		c.Provider.RateLimit = 5
	}
}
