package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Vision    VisionConfig
	R2        R2Config
	Zitadel   ZitadelConfig
	Tripo     TripoConfig
	Convert   ConvertConfig
	Tracker   TrackerConfig
	Gateway   GatewayConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	PromptPerMin    int
	GeneratePerHour int
	UploadPerHour   int
	HandoffPerHour  int
}

type VisionConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

type ZitadelConfig struct {
	Domain   string
	ClientID string
	Issuer   string
}

type TripoConfig struct {
	APIKey  string
	BaseURL string
}

type ConvertConfig struct {
	ServiceURL string
	Timeout    int // seconds
}

// TrackerConfig holds the polling policy for generation jobs.
// MaxWait of 0 means polling is unbounded and a stuck backend is carried
// on simulated progress indefinitely.
type TrackerConfig struct {
	MaxRetries      int
	PollInterval    time.Duration
	RetryInterval   time.Duration
	RecheckInterval time.Duration
	MaxWait         time.Duration
}

type GatewayConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("VISION_API_KEY")
	readSecret("TRIPO_API_KEY")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")
	readSecret("ZITADEL_CLIENT_ID")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("vision.api_key", "VISION_API_KEY")
	_ = viper.BindEnv("vision.base_url", "VISION_BASE_URL")
	_ = viper.BindEnv("vision.model", "VISION_MODEL")
	_ = viper.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = viper.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = viper.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = viper.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = viper.BindEnv("zitadel.domain", "ZITADEL_DOMAIN")
	_ = viper.BindEnv("zitadel.client_id", "ZITADEL_CLIENT_ID")
	_ = viper.BindEnv("zitadel.issuer", "ZITADEL_ISSUER")
	_ = viper.BindEnv("tripo.api_key", "TRIPO_API_KEY")
	_ = viper.BindEnv("tripo.base_url", "TRIPO_BASE_URL")
	_ = viper.BindEnv("convert.service_url", "CONVERT_SERVICE_URL")
	_ = viper.BindEnv("convert.timeout", "CONVERT_SERVICE_TIMEOUT")
	_ = viper.BindEnv("tracker.max_retries", "TRACKER_MAX_RETRIES")
	_ = viper.BindEnv("tracker.poll_interval", "TRACKER_POLL_INTERVAL")
	_ = viper.BindEnv("tracker.retry_interval", "TRACKER_RETRY_INTERVAL")
	_ = viper.BindEnv("tracker.recheck_interval", "TRACKER_RECHECK_INTERVAL")
	_ = viper.BindEnv("tracker.max_wait", "TRACKER_MAX_WAIT")
	_ = viper.BindEnv("server.api_domain", "API_DOMAIN")
	_ = viper.BindEnv("gateway.enabled", "GATEWAY_ENABLED")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.prompt_per_min", 30)
	viper.SetDefault("ratelimit.generate_per_hour", 10)
	viper.SetDefault("ratelimit.upload_per_hour", 50)
	viper.SetDefault("ratelimit.handoff_per_hour", 30)

	// Vision defaults
	viper.SetDefault("vision.base_url", "https://api.openai.com/v1")
	viper.SetDefault("vision.model", "gpt-4o-mini")

	// Tripo defaults
	viper.SetDefault("tripo.base_url", "https://api.tripo3d.ai")

	// Convert service defaults
	viper.SetDefault("convert.service_url", "http://localhost:8085")
	viper.SetDefault("convert.timeout", 120)

	// Tracker defaults. max_wait 0 keeps the observed retry-forever policy;
	// operators can bound it (e.g. "15m") to fail stuck jobs instead.
	viper.SetDefault("tracker.max_retries", 3)
	viper.SetDefault("tracker.poll_interval", "2s")
	viper.SetDefault("tracker.retry_interval", "3s")
	viper.SetDefault("tracker.recheck_interval", "10s")
	viper.SetDefault("tracker.max_wait", "0")

	// Gateway defaults
	viper.SetDefault("gateway.enabled", false)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			ApiDomain: viper.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			PromptPerMin:    viper.GetInt("ratelimit.prompt_per_min"),
			GeneratePerHour: viper.GetInt("ratelimit.generate_per_hour"),
			UploadPerHour:   viper.GetInt("ratelimit.upload_per_hour"),
			HandoffPerHour:  viper.GetInt("ratelimit.handoff_per_hour"),
		},
		Vision: VisionConfig{
			APIKey:  viper.GetString("vision.api_key"),
			BaseURL: viper.GetString("vision.base_url"),
			Model:   viper.GetString("vision.model"),
		},
		R2: R2Config{
			AccountID:       viper.GetString("r2.account_id"),
			AccessKeyID:     viper.GetString("r2.access_key_id"),
			SecretAccessKey: viper.GetString("r2.secret_access_key"),
			BucketName:      viper.GetString("r2.bucket_name"),
			PublicURL:       viper.GetString("r2.public_url"),
		},
		Zitadel: ZitadelConfig{
			Domain:   viper.GetString("zitadel.domain"),
			ClientID: viper.GetString("zitadel.client_id"),
			Issuer:   viper.GetString("zitadel.issuer"),
		},
		Tripo: TripoConfig{
			APIKey:  viper.GetString("tripo.api_key"),
			BaseURL: viper.GetString("tripo.base_url"),
		},
		Convert: ConvertConfig{
			ServiceURL: viper.GetString("convert.service_url"),
			Timeout:    viper.GetInt("convert.timeout"),
		},
		Tracker: TrackerConfig{
			MaxRetries:      viper.GetInt("tracker.max_retries"),
			PollInterval:    viper.GetDuration("tracker.poll_interval"),
			RetryInterval:   viper.GetDuration("tracker.retry_interval"),
			RecheckInterval: viper.GetDuration("tracker.recheck_interval"),
			MaxWait:         viper.GetDuration("tracker.max_wait"),
		},
		Gateway: GatewayConfig{
			Enabled: viper.GetBool("gateway.enabled"),
		},
	}

	return cfg, nil
}
