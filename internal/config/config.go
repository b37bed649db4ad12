package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type AuthConfig struct {
	TokenTTL      time.Duration
	AdminCode     string
	MaxAttempts   int
	AttemptWindow time.Duration
}

type HumanCheckConfig struct {
	Secret         string
	BypassToken    string
	FailOpen       bool
	ScoreThreshold float64
	VerifyURL      string
	Timeout        time.Duration
}

type UploadConfig struct {
	MaxBytes     int64
	AllowedTypes []string
}

type CORSConfig struct {
	AllowOrigins   []string
	OriginPatterns []string
}

type AppConfig struct {
	Environment string
	HTTP        HTTPConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Auth        AuthConfig
	HumanCheck  HumanCheckConfig
	Upload      UploadConfig
	CORS        CORSConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("RUJUKAN")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.bucket", "rujukan-documents")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("auth.tokenttl", "168h") // 7 days
	v.SetDefault("auth.maxattempts", 3)
	v.SetDefault("auth.attemptwindow", "30m")

	v.SetDefault("humancheck.failopen", false)
	v.SetDefault("humancheck.scorethreshold", 0.5)
	v.SetDefault("humancheck.verifyurl", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("humancheck.timeout", "5s")

	v.SetDefault("upload.maxbytes", 200<<20) // 200 MiB
	v.SetDefault("upload.allowedtypes", []string{
		"application/pdf",
		"application/zip",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"text/plain",
		"text/csv",
		"image/jpeg",
		"image/png",
		"image/webp",
		"image/svg+xml",
	})

	v.SetDefault("cors.alloworigins", []string{
		"http://localhost:5173",
		"http://127.0.0.1:5173",
	})
	v.SetDefault("cors.originpatterns", []string{
		`^https?://([a-z0-9-]+\.)?haniipp\.space$`,
	})
}
