package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port          string `mapstructure:"port"`
		CORSOrigin    string `mapstructure:"cors_origin"`
		PublicBaseURL string `mapstructure:"public_base_url"`
		CookieSecure  bool   `mapstructure:"cookie_secure"`
	} `mapstructure:"server"`
	Database struct {
		URI  string `mapstructure:"uri"`
		Name string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	JWT struct {
		AccessSecret  string `mapstructure:"access_secret"`
		AccessExpiry  string `mapstructure:"access_expiry"`
		RefreshSecret string `mapstructure:"refresh_secret"`
		RefreshExpiry string `mapstructure:"refresh_expiry"`
	} `mapstructure:"jwt"`
	Media struct {
		Provider   string `mapstructure:"provider"`
		CloudName  string `mapstructure:"cloud_name"`
		APIKey     string `mapstructure:"api_key"`
		APISecret  string `mapstructure:"api_secret"`
		TempDir    string `mapstructure:"temp_dir"`
		BucketName string `mapstructure:"bucket_name"`
	} `mapstructure:"media"`
	RateLimit struct {
		Requests int           `mapstructure:"requests"`
		Window   time.Duration `mapstructure:"window"`

		// reverse proxies in front of the server; 0 keys clients on the socket address
		TrustedProxies int `mapstructure:"trusted_proxies"`
	} `mapstructure:"rate_limit"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

var AppConfig Config

// env names kept compatible with the deployment's existing .env files
var envBindings = map[string]string{
	"server.port":                "PORT",
	"server.cors_origin":         "CORS_ORIGIN",
	"server.public_base_url":     "PUBLIC_BASE_URL",
	"server.cookie_secure":       "COOKIE_SECURE",
	"database.uri":               "MONGO_URI",
	"database.name":              "DB_NAME",
	"redis.host":                 "REDIS_HOST",
	"redis.port":                 "REDIS_PORT",
	"redis.password":             "REDIS_PASSWORD",
	"jwt.access_secret":          "ACCESS_TOKEN_SECRET",
	"jwt.access_expiry":          "ACCESS_TOKEN_EXPIRY",
	"jwt.refresh_secret":         "REFRESH_TOKEN_SECRET",
	"jwt.refresh_expiry":         "REFRESH_TOKEN_EXPIRY",
	"media.provider":             "MEDIA_PROVIDER",
	"media.cloud_name":           "CLOUDINARY_CLOUD_NAME",
	"media.api_key":              "CLOUDINARY_API_KEY",
	"media.api_secret":           "CLOUDINARY_API_SECRET",
	"media.temp_dir":             "UPLOAD_TEMP_DIR",
	"media.bucket_name":          "GRIDFS_BUCKET",
	"rate_limit.requests":        "RATE_LIMIT_REQUESTS",
	"rate_limit.window":          "RATE_LIMIT_WINDOW",
	"rate_limit.trusted_proxies": "TRUSTED_PROXIES",
	"log.level":                  "LOG_LEVEL",
	"bcrypt_cost":                "BCRYPT_COST",
}

// LoadConfig reads config.yml from path (optional) and the environment into AppConfig.
// A .env file in the working directory is loaded first when present.
func LoadConfig(path string) error {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cookie_secure", true)
	v.SetDefault("media.provider", "cloudinary")
	v.SetDefault("media.temp_dir", "./public/temp")
	v.SetDefault("media.bucket_name", "media")
	v.SetDefault("rate_limit.requests", 1000)
	v.SetDefault("rate_limit.window", 15*time.Minute)
	v.SetDefault("rate_limit.trusted_proxies", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("bcrypt_cost", 10)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	AppConfig = cfg
	return nil
}

// Validate reports every required setting that is missing or malformed.
func (c *Config) Validate() error {
	var missing []string
	required := map[string]string{
		"CORS_ORIGIN":          c.Server.CORSOrigin,
		"MONGO_URI":            c.Database.URI,
		"DB_NAME":              c.Database.Name,
		"ACCESS_TOKEN_SECRET":  c.JWT.AccessSecret,
		"ACCESS_TOKEN_EXPIRY":  c.JWT.AccessExpiry,
		"REFRESH_TOKEN_SECRET": c.JWT.RefreshSecret,
		"REFRESH_TOKEN_EXPIRY": c.JWT.RefreshExpiry,
	}
	if c.Media.Provider == "cloudinary" {
		required["CLOUDINARY_CLOUD_NAME"] = c.Media.CloudName
		required["CLOUDINARY_API_KEY"] = c.Media.APIKey
		required["CLOUDINARY_API_SECRET"] = c.Media.APISecret
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	switch c.Media.Provider {
	case "cloudinary", "gridfs":
	default:
		return fmt.Errorf("unknown media provider %q", c.Media.Provider)
	}
	if c.RateLimit.TrustedProxies < 0 {
		return fmt.Errorf("TRUSTED_PROXIES must not be negative")
	}
	if _, err := ParseExpiry(c.JWT.AccessExpiry); err != nil {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRY: %w", err)
	}
	if _, err := ParseExpiry(c.JWT.RefreshExpiry); err != nil {
		return fmt.Errorf("REFRESH_TOKEN_EXPIRY: %w", err)
	}
	return nil
}

// ParseExpiry accepts Go durations ("15m", "2h") and whole-day values ("1d", "10d").
// A bare number is read as seconds.
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty expiry")
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid expiry %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("invalid expiry %q", s)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid expiry %q", s)
	}
	return d, nil
}
