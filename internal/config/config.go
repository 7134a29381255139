// Package config loads service configuration from an optional YAML file
// with environment overrides (prefix PORTFOLIO_, dots become
// underscores, e.g. PORTFOLIO_SMTP_HOST).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	ListenAddr     string
	AllowedOrigins []string
	MaxBodyKB      int
}

type Log struct {
	Level  string
	Format string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Limiter struct {
	Backend string // "memory" or "redis"
	Max     int
	Window  time.Duration
	Redis   Redis
}

type SMTP struct {
	Host          string
	Port          int
	User          string
	Pass          string
	SSL           bool
	From          string
	To            string
	SubjectPrefix string
	Timeout       time.Duration
}

type Telegram struct {
	Token  string
	ChatID int64
}

type Contact struct {
	AllowJSON bool
	AllowForm bool
	// Optional shared secret; when set, submissions must carry a valid
	// X-Signature (hex HMAC-SHA256 of the raw body).
	Secret string
}

type Content struct {
	Path          string
	SummaryLength int
}

type Config struct {
	Server   Server
	Log      Log
	Limiter  Limiter
	SMTP     SMTP
	Telegram Telegram
	Contact  Contact
	Content  Content
}

// Load reads the config file at path (search locations when empty) and
// applies environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.listen_addr", ":3000")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.max_body_kb", 64)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("limiter.backend", "memory")
	v.SetDefault("limiter.max", 5)
	v.SetDefault("limiter.window", time.Hour)
	v.SetDefault("limiter.redis.addr", "localhost:6379")
	v.SetDefault("limiter.redis.password", "")
	v.SetDefault("limiter.redis.db", 0)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.pass", "")
	v.SetDefault("smtp.ssl", false)
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.to", "")
	v.SetDefault("smtp.subject_prefix", "[Portfolio]")
	v.SetDefault("smtp.timeout", 10*time.Second)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("contact.allow_json", true)
	v.SetDefault("contact.allow_form", true)
	v.SetDefault("contact.secret", "")
	v.SetDefault("content.path", "content.yaml")
	v.SetDefault("content.summary_length", 160)

	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Server: Server{
			ListenAddr:     v.GetString("server.listen_addr"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
			MaxBodyKB:      v.GetInt("server.max_body_kb"),
		},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Limiter: Limiter{
			Backend: v.GetString("limiter.backend"),
			Max:     v.GetInt("limiter.max"),
			Window:  v.GetDuration("limiter.window"),
			Redis: Redis{
				Addr:     v.GetString("limiter.redis.addr"),
				Password: v.GetString("limiter.redis.password"),
				DB:       v.GetInt("limiter.redis.db"),
			},
		},
		SMTP: SMTP{
			Host:          v.GetString("smtp.host"),
			Port:          v.GetInt("smtp.port"),
			User:          v.GetString("smtp.user"),
			Pass:          v.GetString("smtp.pass"),
			SSL:           v.GetBool("smtp.ssl"),
			From:          v.GetString("smtp.from"),
			To:            v.GetString("smtp.to"),
			SubjectPrefix: v.GetString("smtp.subject_prefix"),
			Timeout:       v.GetDuration("smtp.timeout"),
		},
		Telegram: Telegram{
			Token:  v.GetString("telegram.token"),
			ChatID: v.GetInt64("telegram.chat_id"),
		},
		Contact: Contact{
			AllowJSON: v.GetBool("contact.allow_json"),
			AllowForm: v.GetBool("contact.allow_form"),
			Secret:    v.GetString("contact.secret"),
		},
		Content: Content{
			Path:          v.GetString("content.path"),
			SummaryLength: v.GetInt("content.summary_length"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SMTP.Host == "" {
		return errors.New("smtp.host is required")
	}
	if c.SMTP.To == "" {
		return errors.New("smtp.to is required")
	}
	if c.SMTP.From == "" {
		c.SMTP.From = c.SMTP.User
	}
	switch c.Limiter.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported limiter backend %q", c.Limiter.Backend)
	}
	if c.Limiter.Max <= 0 {
		return errors.New("limiter.max must be positive")
	}
	if c.Limiter.Window <= 0 {
		return errors.New("limiter.window must be positive")
	}
	return nil
}
