package config

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `json:"server"`
	Database    DatabaseConfig    `json:"database"`
	Redis       RedisConfig       `json:"redis"`
	JWT         JWTConfig         `json:"jwt"`
	Admin       AdminConfig       `json:"admin"`
	GitHubOAuth GitHubOAuthConfig `json:"github_oauth"`
	Turnstile   TurnstileConfig   `json:"turnstile"`
	RateLimit   RateLimitConfig   `json:"rate_limit"`
	Broadcast   BroadcastConfig   `json:"broadcast"`
	Messaging   MessagingConfig   `json:"messaging"`
	Log         LogConfig         `json:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port                   string `json:"port"`
	Host                   string `json:"host"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds"`
}

// DatabaseConfig holds database configuration.
// Driver is "mysql" or "sqlite"; Path is only used by sqlite.
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Charset  string `json:"charset"`
	Path     string `json:"path"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	// Key prefix for every key this service writes
	KeyPrefix string `json:"key_prefix"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret          string `json:"secret"`
	ExpireHour      int    `json:"expire_hour"`
	AdminExpireHour int    `json:"admin_expire_hour"`
}

// AdminConfig holds the credentials of the built-in administrator
type AdminConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// GitHubOAuthConfig holds GitHub OAuth configuration
type GitHubOAuthConfig struct {
	Enabled      bool   `json:"enabled"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
	FrontendURL  string `json:"frontend_url"` // Where the browser lands after the callback
}

// TurnstileConfig holds Cloudflare Turnstile configuration
type TurnstileConfig struct {
	Enabled        bool   `json:"enabled"`
	SecretKey      string `json:"secret_key"`
	VerifyURL      string `json:"verify_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// RateLimitConfig holds per-IP rate limiting for the auth endpoints
type RateLimitConfig struct {
	Enabled           bool    `json:"enabled"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
}

// BroadcastConfig holds broadcast dispatcher configuration
type BroadcastConfig struct {
	BatchSize            int    `json:"batch_size"`
	BatchPauseMillis     int    `json:"batch_pause_ms"`
	MaxRetries           int    `json:"max_retries"`
	LockTTLSeconds       int    `json:"lock_ttl_seconds"`
	RecoveryEnabled      bool   `json:"recovery_enabled"`
	RecoverySpec         string `json:"recovery_spec"`          // cron spec, e.g. "@every 1m"
	RecoveryGraceSeconds int    `json:"recovery_grace_seconds"` // pending records younger than this are left alone
}

// BatchPause returns the pause between two dispatcher batches
func (b BroadcastConfig) BatchPause() time.Duration {
	return time.Duration(b.BatchPauseMillis) * time.Millisecond
}

// LockTTL returns the lifetime of a per-broadcast dispatch lock
func (b BroadcastConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

// MessagingConfig holds user messaging configuration
type MessagingConfig struct {
	// LegacyRecipientMatch makes reads match messages stored against the
	// caller's id, email or username. Writes always store the user id.
	LegacyRecipientMatch bool   `json:"legacy_recipient_match"`
	WelcomeEnabled       bool   `json:"welcome_enabled"`
	WelcomeTitle         string `json:"welcome_title"`
	WelcomeContent       string `json:"welcome_content"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `json:"level"`
	Pretty bool   `json:"pretty"`
}

// envOverrides lists every environment variable that may override the file.
// Empty values leave the file/default value untouched.
type envOverrides struct {
	ServerPort         string `envconfig:"SERVER_PORT"`
	DBDriver           string `envconfig:"DB_DRIVER"`
	DBHost             string `envconfig:"DB_HOST"`
	DBPort             string `envconfig:"DB_PORT"`
	DBUser             string `envconfig:"DB_USER"`
	DBPassword         string `envconfig:"DB_PASSWORD"`
	DBName             string `envconfig:"DB_NAME"`
	DBPath             string `envconfig:"DB_PATH"`
	RedisEnabled       string `envconfig:"REDIS_ENABLED"`
	RedisHost          string `envconfig:"REDIS_HOST"`
	RedisPort          string `envconfig:"REDIS_PORT"`
	RedisPassword      string `envconfig:"REDIS_PASSWORD"`
	RedisKeyPrefix     string `envconfig:"REDIS_KEY_PREFIX"`
	JWTSecret          string `envconfig:"JWT_SECRET"`
	AdminUsername      string `envconfig:"ADMIN_USERNAME"`
	AdminPassword      string `envconfig:"ADMIN_PASSWORD"`
	GitHubClientID     string `envconfig:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `envconfig:"GITHUB_CLIENT_SECRET"`
	GitHubRedirectURL  string `envconfig:"GITHUB_REDIRECT_URL"`
	FrontendURL        string `envconfig:"FRONTEND_URL"`
	TurnstileSecretKey string `envconfig:"TURNSTILE_SECRET_KEY"`
	LogLevel           string `envconfig:"LOG_LEVEL"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                   "5000",
			Host:                   "0.0.0.0",
			ShutdownTimeoutSeconds: 30,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "127.0.0.1",
			Port:     "3306",
			User:     "root",
			Password: "",
			DBName:   "personal_blog",
			Charset:  "utf8mb4",
			Path:     "personal_blog.db",
		},
		Redis: RedisConfig{
			Enabled:   false,
			Host:      "127.0.0.1",
			Port:      "6379",
			DB:        0,
			KeyPrefix: "blog:",
		},
		JWT: JWTConfig{
			Secret:          "your-secret-key-change-in-production",
			ExpireHour:      24 * 30,
			AdminExpireHour: 1,
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "admin123",
		},
		GitHubOAuth: GitHubOAuthConfig{
			Enabled:     false,
			FrontendURL: "http://localhost:5173",
		},
		Turnstile: TurnstileConfig{
			Enabled:        false,
			VerifyURL:      "https://challenges.cloudflare.com/turnstile/v0/siteverify",
			TimeoutSeconds: 30,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 1,
			Burst:             10,
		},
		Broadcast: BroadcastConfig{
			BatchSize:            50,
			BatchPauseMillis:     100,
			MaxRetries:           3,
			LockTTLSeconds:       3600,
			RecoveryEnabled:      true,
			RecoverySpec:         "@every 1m",
			RecoveryGraceSeconds: 60,
		},
		Messaging: MessagingConfig{
			LegacyRecipientMatch: true,
			WelcomeEnabled:       true,
			WelcomeTitle:         "欢迎",
			WelcomeContent:       "欢迎使用",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// GetDSN returns the MySQL DSN string
func (d *DatabaseConfig) GetDSN() string {
	return d.User + ":" + d.Password + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.DBName + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}

// Load loads configuration from defaults, the JSON file and the environment.
// A missing config file or .env file is not an error.
func Load(configPath string) (*Config, error) {
	c := Default()

	if configPath != "" {
		file, err := os.Open(configPath)
		if err == nil {
			defer file.Close()
			if err := json.NewDecoder(file).Decode(c); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, err
	}
	applyEnv(c, &env)

	return c, nil
}

func applyEnv(c *Config, env *envOverrides) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setString(&c.Server.Port, env.ServerPort)
	setString(&c.Database.Driver, env.DBDriver)
	setString(&c.Database.Host, env.DBHost)
	setString(&c.Database.Port, env.DBPort)
	setString(&c.Database.User, env.DBUser)
	setString(&c.Database.Password, env.DBPassword)
	setString(&c.Database.DBName, env.DBName)
	setString(&c.Database.Path, env.DBPath)

	if env.RedisEnabled != "" {
		c.Redis.Enabled = env.RedisEnabled == "true" || env.RedisEnabled == "1"
	}
	setString(&c.Redis.Host, env.RedisHost)
	setString(&c.Redis.Port, env.RedisPort)
	setString(&c.Redis.Password, env.RedisPassword)
	setString(&c.Redis.KeyPrefix, env.RedisKeyPrefix)

	setString(&c.JWT.Secret, env.JWTSecret)
	setString(&c.Admin.Username, env.AdminUsername)
	setString(&c.Admin.Password, env.AdminPassword)

	if env.GitHubClientID != "" {
		c.GitHubOAuth.ClientID = env.GitHubClientID
		c.GitHubOAuth.Enabled = true
	}
	setString(&c.GitHubOAuth.ClientSecret, env.GitHubClientSecret)
	setString(&c.GitHubOAuth.RedirectURL, env.GitHubRedirectURL)
	setString(&c.GitHubOAuth.FrontendURL, env.FrontendURL)

	if env.TurnstileSecretKey != "" {
		c.Turnstile.SecretKey = env.TurnstileSecretKey
		c.Turnstile.Enabled = true
	}
	setString(&c.Log.Level, env.LogLevel)
}
