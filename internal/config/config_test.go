package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/JakeFAU/lead-hunter/internal/lead"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []lead.Source{lead.SourceKijiji, lead.SourceRSS, lead.SourceGoogleAlerts}
	if got := cfg.EnabledSources(); !reflect.DeepEqual(got, want) {
		t.Fatalf("EnabledSources() = %v, want %v", got, want)
	}
	if cfg.Kijiji.NavigationTimeout != 30*time.Second || cfg.Kijiji.QueryDelay != 3*time.Second {
		t.Fatalf("unexpected kijiji timing defaults: %+v", cfg.Kijiji)
	}
	if cfg.Kijiji.ViewportWidth != 1920 || cfg.Kijiji.ViewportHeight != 1080 {
		t.Fatalf("unexpected viewport defaults: %dx%d", cfg.Kijiji.ViewportWidth, cfg.Kijiji.ViewportHeight)
	}
	if len(cfg.Kijiji.BlockedResources) != 7 {
		t.Fatalf("expected 7 blocked resource patterns, got %v", cfg.Kijiji.BlockedResources)
	}
	if !cfg.GoogleAlerts.Enabled || cfg.GoogleAlerts.DefaultLocation != "Ontario" {
		t.Fatalf("unexpected google_alerts defaults: %+v", cfg.GoogleAlerts)
	}
	if cfg.RSS.DefaultLocation != "Unknown" {
		t.Fatalf("expected rss default location Unknown, got %q", cfg.RSS.DefaultLocation)
	}
	if got := cfg.DedupRetention(); got != 30*24*time.Hour {
		t.Fatalf("expected 30 day retention, got %v", got)
	}
	if cfg.Notifications.Channel != "webchat" || cfg.Notifications.QueueDir != "notifications" {
		t.Fatalf("unexpected notification defaults: %+v", cfg.Notifications)
	}
	if cfg.Schedule.Cron != "0 6 * * *" {
		t.Fatalf("expected daily cron, got %q", cfg.Schedule.Cron)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "agent.toml")
	configTOML := `
[logging]
development = false
level = "debug"

[sources]
enabled = ["rss", "facebook", "rss"]

[search]
locations = ["Timmins"]
keywords = ["deck"]
max_results_per_query = 10

[kijiji]
query_delay = "500ms"

[rss]
feeds = ["https://example.com/feed.xml", "# disabled"]
max_entries_per_feed = 5

[http]
timeout = "5s"
requests_per_second = 2.5

[storage]
path = "state/leads.json"
dedup_retention_days = 7

[notifications]
enabled = false
recipient = "ops"

[schedule]
cron = "*/15 * * * 1-5"
run_on_start = true
`
	if err := os.WriteFile(path, []byte(configTOML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Development || cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging overrides, got %+v", cfg.Logging)
	}
	want := []lead.Source{lead.SourceRSS, lead.SourceFacebook}
	if got := cfg.EnabledSources(); !reflect.DeepEqual(got, want) {
		t.Fatalf("EnabledSources() = %v, want %v", got, want)
	}
	if cfg.Kijiji.QueryDelay != 500*time.Millisecond {
		t.Fatalf("expected 500ms query delay, got %v", cfg.Kijiji.QueryDelay)
	}
	if len(cfg.RSS.Feeds) != 2 || cfg.RSS.MaxEntriesPerFeed != 5 {
		t.Fatalf("unexpected rss config: %+v", cfg.RSS)
	}
	if got := cfg.RSSKeywords(); !reflect.DeepEqual(got, []string{"deck"}) {
		t.Fatalf("expected rss keywords to fall back to search keywords, got %v", got)
	}
	if cfg.HTTP.Timeout != 5*time.Second || cfg.HTTP.RequestsPerSecond != 2.5 {
		t.Fatalf("unexpected http config: %+v", cfg.HTTP)
	}
	if got := cfg.DedupRetention(); got != 7*24*time.Hour {
		t.Fatalf("expected 7 day retention, got %v", got)
	}
	if cfg.Notifications.Enabled || cfg.Notifications.Recipient != "ops" {
		t.Fatalf("unexpected notifications config: %+v", cfg.Notifications)
	}
	if !cfg.Schedule.RunOnStart || cfg.Schedule.Cron != "*/15 * * * 1-5" {
		t.Fatalf("unexpected schedule config: %+v", cfg.Schedule)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestRSSKeywordsPrefersOwnList(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Search: SearchConfig{Keywords: []string{"deck"}},
		RSS:    FeedConfig{Keywords: []string{"permit"}},
	}
	if got := cfg.RSSKeywords(); !reflect.DeepEqual(got, []string{"permit"}) {
		t.Fatalf("RSSKeywords() = %v", got)
	}
	if got := (Config{}).RSSKeywords(); len(got) != 0 {
		t.Fatalf("expected empty keywords, got %v", got)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "invalid level",
			mutate: func(c *Config) { c.Logging.Level = "loud" },
			want:   "logging.level",
		},
		{
			name:   "unknown source",
			mutate: func(c *Config) { c.Sources.Enabled = []string{"craigslist"} },
			want:   "sources.enabled",
		},
		{
			name:   "invalid max results",
			mutate: func(c *Config) { c.Search.MaxResultsPerQuery = 0 },
			want:   "search.max_results_per_query",
		},
		{
			name:   "kijiji without base url",
			mutate: func(c *Config) { c.Kijiji.BaseURL = "" },
			want:   "kijiji.base_url",
		},
		{
			name:   "invalid http timeout",
			mutate: func(c *Config) { c.HTTP.Timeout = 0 },
			want:   "http.timeout",
		},
		{
			name:   "missing storage path",
			mutate: func(c *Config) { c.Storage.Path = "" },
			want:   "storage.path",
		},
		{
			name:   "invalid retention",
			mutate: func(c *Config) { c.Storage.DedupRetentionDays = 0 },
			want:   "storage.dedup_retention_days",
		},
		{
			name:   "missing queue dir",
			mutate: func(c *Config) { c.Notifications.QueueDir = "" },
			want:   "notifications.queue_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateSkipsKijijiChecksWhenDisabled(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.Sources.Enabled = []string{"rss"}
	cfg.Kijiji.BaseURL = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
