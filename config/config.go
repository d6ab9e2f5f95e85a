package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting. It is loaded once at startup and passed
// into each component at construction; nothing reads the environment after Load.
type Config struct {
	App struct {
		Name string `mapstructure:"name"`
		Port string `mapstructure:"port"`
	} `mapstructure:"app"`
	Database struct {
		Path         string `mapstructure:"path"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
	} `mapstructure:"database"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	News struct {
		APIKey     string        `mapstructure:"api_key"`
		BaseURL    string        `mapstructure:"base_url"`
		MaxResults int           `mapstructure:"max_results"`
		Timeout    time.Duration `mapstructure:"timeout"`
	} `mapstructure:"news"`
	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret"`
		TokenTTL  time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
}

// Load reads an optional config/config.yaml and lets environment variables
// (prefix KURAKANI_, e.g. KURAKANI_NEWS_API_KEY) override it. The news API key
// and the JWT signing secret have no fallback: startup fails without them.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("KURAKANI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "kura-kani")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.path", "kura_kani.db")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("news.base_url", "https://gnews.io/api/v4/top-headlines")
	v.SetDefault("news.max_results", 10)
	v.SetDefault("news.timeout", 10*time.Second)
	v.SetDefault("auth.token_ttl", 30*time.Minute)

	if err := v.ReadInConfig(); err != nil {
		// The file is optional; anything else is a real problem.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// AutomaticEnv alone does not surface env-only keys through Unmarshal;
	// binding each key makes the override explicit.
	for _, key := range []string{
		"app.name", "app.port",
		"database.path", "database.max_idle_conns", "database.max_open_conns",
		"redis.addr", "redis.password", "redis.db",
		"news.api_key", "news.base_url", "news.max_results", "news.timeout",
		"auth.jwt_secret", "auth.token_ttl",
		"cors.allowed_origins",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var missing []string
	if cfg.News.APIKey == "" {
		missing = append(missing, "KURAKANI_NEWS_API_KEY")
	}
	if cfg.Auth.JWTSecret == "" {
		missing = append(missing, "KURAKANI_AUTH_JWT_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}
