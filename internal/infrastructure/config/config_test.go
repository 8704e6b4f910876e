package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", "demo")
	cfg, err := Load(writeConfig(t, "[quote]\nsymbol = \" nvda \"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Quote.Symbol != "NVDA" {
		t.Errorf("expected NVDA, got %q", cfg.Quote.Symbol)
	}
	if cfg.Quote.APIKey != "demo" {
		t.Errorf("expected api key from env, got %q", cfg.Quote.APIKey)
	}
	if cfg.Quote.ShareCount != 24.4e9 {
		t.Errorf("expected default share count, got %v", cfg.Quote.ShareCount)
	}
	if cfg.UpstreamCacheTTL() != 5*time.Minute {
		t.Errorf("expected 5m upstream ttl, got %v", cfg.UpstreamCacheTTL())
	}
	if cfg.ProxySMaxAge() != 5*time.Minute || cfg.ProxyStaleWhileRevalidate() != 10*time.Minute {
		t.Errorf("unexpected proxy cache values: %v %v", cfg.ProxySMaxAge(), cfg.ProxyStaleWhileRevalidate())
	}
	if cfg.QuotePollInterval() != time.Hour || cfg.CryptoPollInterval() != time.Hour {
		t.Errorf("expected hourly polling")
	}
	if cfg.CacheMismatch() {
		t.Errorf("defaults should not mismatch")
	}
}

func TestLoadCacheMismatch(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[quote]\nupstream_cache_sec = 3600\n[proxy]\ns_maxage_sec = 300\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.CacheMismatch() {
		t.Errorf("expected mismatch between 3600 and 300")
	}
	if cfg.Proxy.StaleWhileRevalidateSec != 600 {
		t.Errorf("expected swr 600, got %d", cfg.Proxy.StaleWhileRevalidateSec)
	}
}

func TestLoadSiteSections(t *testing.T) {
	body := `
[[site.links]]
label = "Telegram"
url = "https://t.me/x"

[[site.donations]]
label = "BTC"
address = "bc1q"
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Site.Links) != 1 || cfg.Site.Links[0].URL != "https://t.me/x" {
		t.Errorf("unexpected links: %+v", cfg.Site.Links)
	}
	if len(cfg.Site.Donations) != 1 || cfg.Site.Donations[0].Address != "bc1q" {
		t.Errorf("unexpected donations: %+v", cfg.Site.Donations)
	}
}

func TestValidateStorage(t *testing.T) {
	if _, err := Load(writeConfig(t, "[sqlite]\nenabled = true\n")); err == nil {
		t.Errorf("expected error for sqlite without path")
	}
	if _, err := Load(writeConfig(t, "[redis]\nenabled = true\n")); err == nil {
		t.Errorf("expected error for redis without addr")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
