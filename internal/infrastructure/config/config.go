package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"nvcompare/internal/domain/model"
)

type Link struct {
	Label string `toml:"label"`
	URL   string `toml:"url"`
}

type Donation struct {
	Label   string `toml:"label"`
	Address string `toml:"address"`
}

type Config struct {
	App struct {
		Addr     string `toml:"addr"`
		LogLevel string `toml:"log_level"`
		Console  bool   `toml:"console"`
	} `toml:"app"`

	Quote struct {
		BaseURL          string  `toml:"base_url"` // e.g. https://www.alphavantage.co
		Symbol           string  `toml:"symbol"`
		APIKeyEnv        string  `toml:"api_key_env"`
		APIKey           string  `toml:"-"`
		ShareCount       float64 `toml:"share_count"`
		UpstreamCacheSec int     `toml:"upstream_cache_sec"`
		TimeoutSec       int     `toml:"timeout_sec"`
	} `toml:"quote"`

	Proxy struct {
		SMaxAgeSec              int `toml:"s_maxage_sec"`
		StaleWhileRevalidateSec int `toml:"stale_while_revalidate_sec"`
	} `toml:"proxy"`

	Crypto struct {
		URL        string `toml:"url"` // e.g. https://api.coingecko.com/api/v3/global
		TimeoutSec int    `toml:"timeout_sec"`
	} `toml:"crypto"`

	View struct {
		QuotePollMin  int    `toml:"quote_poll_min"`
		CryptoPollMin int    `toml:"crypto_poll_min"`
		QuoteProxyURL string `toml:"quote_proxy_url"` // empty: in-process proxy
	} `toml:"view"`

	Analytics struct {
		Enabled       bool   `toml:"enabled"`
		MeasurementID string `toml:"measurement_id"`
	} `toml:"analytics"`

	Site struct {
		Title     string     `toml:"title"`
		Links     []Link     `toml:"links"`
		Donations []Donation `toml:"donations"`
	} `toml:"site"`

	Redis struct {
		Enabled  bool   `toml:"enabled"`
		Addr     string `toml:"addr"`
		Password string `toml:"password"`
		DB       int    `toml:"db"`
		Prefix   string `toml:"prefix"`
		TTLSec   int    `toml:"ttl_sec"`
		Stream   string `toml:"events_stream"`
		Channel  string `toml:"events_channel"`
	} `toml:"redis"`

	SQLite struct {
		Enabled bool   `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"sqlite"`

	Postgres struct {
		Enabled bool   `toml:"enabled"`
		DSN     string `toml:"dsn"`
	} `toml:"postgres"`
}

func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.App.Addr) == "" {
		cfg.App.Addr = ":3000"
	}
	if cfg.Quote.BaseURL == "" {
		cfg.Quote.BaseURL = "https://www.alphavantage.co"
	}
	if cfg.Quote.Symbol == "" {
		cfg.Quote.Symbol = "NVDA"
	}
	if cfg.Quote.APIKeyEnv == "" {
		cfg.Quote.APIKeyEnv = "ALPHA_VANTAGE_API_KEY"
	}
	if cfg.Quote.ShareCount <= 0 {
		cfg.Quote.ShareCount = model.DefaultShareCount
	}
	if cfg.Quote.UpstreamCacheSec <= 0 {
		cfg.Quote.UpstreamCacheSec = 300
	}
	if cfg.Quote.TimeoutSec <= 0 {
		cfg.Quote.TimeoutSec = 10
	}
	if cfg.Proxy.SMaxAgeSec <= 0 {
		cfg.Proxy.SMaxAgeSec = cfg.Quote.UpstreamCacheSec
	}
	if cfg.Proxy.StaleWhileRevalidateSec <= 0 {
		cfg.Proxy.StaleWhileRevalidateSec = 2 * cfg.Proxy.SMaxAgeSec
	}
	if cfg.Crypto.URL == "" {
		cfg.Crypto.URL = "https://api.coingecko.com/api/v3/global"
	}
	if cfg.Crypto.TimeoutSec <= 0 {
		cfg.Crypto.TimeoutSec = 10
	}
	if cfg.View.QuotePollMin <= 0 {
		cfg.View.QuotePollMin = 60
	}
	if cfg.View.CryptoPollMin <= 0 {
		cfg.View.CryptoPollMin = 60
	}
	if cfg.Site.Title == "" {
		cfg.Site.Title = "NVIDIA vs Crypto"
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "nvcap"
	}
	if cfg.Redis.TTLSec <= 0 {
		cfg.Redis.TTLSec = 86400
	}
}

func applyEnv(cfg *Config) {
	cfg.Quote.APIKey = strings.TrimSpace(os.Getenv(cfg.Quote.APIKeyEnv))
	if id := strings.TrimSpace(os.Getenv("GA_MEASUREMENT_ID")); id != "" {
		cfg.Analytics.MeasurementID = id
	}
	if addr := strings.TrimSpace(os.Getenv("NVCAP_ADDR")); addr != "" {
		cfg.App.Addr = addr
	}
}

func validate(cfg *Config) error {
	cfg.Quote.Symbol = strings.ToUpper(strings.TrimSpace(cfg.Quote.Symbol))
	if cfg.Quote.Symbol == "" {
		return errors.New("quote.symbol is empty")
	}
	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return errors.New("redis.addr empty but enabled")
	}
	if cfg.SQLite.Enabled && strings.TrimSpace(cfg.SQLite.Path) == "" {
		return errors.New("sqlite.path empty but enabled")
	}
	if cfg.Postgres.Enabled && strings.TrimSpace(cfg.Postgres.DSN) == "" {
		return errors.New("postgres.dsn empty but enabled")
	}
	return nil
}

func (c *Config) UpstreamCacheTTL() time.Duration {
	return time.Duration(c.Quote.UpstreamCacheSec) * time.Second
}

func (c *Config) ProxySMaxAge() time.Duration {
	return time.Duration(c.Proxy.SMaxAgeSec) * time.Second
}

func (c *Config) ProxyStaleWhileRevalidate() time.Duration {
	return time.Duration(c.Proxy.StaleWhileRevalidateSec) * time.Second
}

func (c *Config) QuotePollInterval() time.Duration {
	return time.Duration(c.View.QuotePollMin) * time.Minute
}

func (c *Config) CryptoPollInterval() time.Duration {
	return time.Duration(c.View.CryptoPollMin) * time.Minute
}

// CacheMismatch reports whether the proxy response lifetime differs from the upstream
// cache lifetime.
func (c *Config) CacheMismatch() bool {
	return c.Proxy.SMaxAgeSec != c.Quote.UpstreamCacheSec
}
