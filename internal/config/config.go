// Package config loads and validates lead-hunter configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/JakeFAU/lead-hunter/internal/lead"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Logging       LoggingConfig      `mapstructure:"logging"`
	Sources       SourcesConfig      `mapstructure:"sources"`
	Search        SearchConfig       `mapstructure:"search"`
	Kijiji        KijijiConfig       `mapstructure:"kijiji"`
	RSS           FeedConfig         `mapstructure:"rss"`
	GoogleAlerts  FeedConfig         `mapstructure:"google_alerts"`
	HTTP          HTTPConfig         `mapstructure:"http"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Schedule      ScheduleConfig     `mapstructure:"schedule"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// SourcesConfig lists the sources to run, in order.
type SourcesConfig struct {
	Enabled []string `mapstructure:"enabled"`
}

// SearchConfig is shared by the rendered classifieds source and, for keywords, the RSS source.
type SearchConfig struct {
	Locations          []string `mapstructure:"locations"`
	Keywords           []string `mapstructure:"keywords"`
	MaxResultsPerQuery int      `mapstructure:"max_results_per_query"`
}

// KijijiConfig configures the search URL and the rendering session.
type KijijiConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	ListingPattern    string        `mapstructure:"listing_pattern"`
	WaitSelector      string        `mapstructure:"wait_selector"`
	Headless          bool          `mapstructure:"headless"`
	UserAgent         string        `mapstructure:"user_agent"`
	Locale            string        `mapstructure:"locale"`
	Timezone          string        `mapstructure:"timezone"`
	ViewportWidth     int           `mapstructure:"viewport_width"`
	ViewportHeight    int           `mapstructure:"viewport_height"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	SelectorTimeout   time.Duration `mapstructure:"selector_timeout"`
	QueryDelay        time.Duration `mapstructure:"query_delay"`
	BlockedResources  []string      `mapstructure:"blocked_resources"`
}

// FeedConfig configures one feed-backed source.
type FeedConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	Feeds             []string `mapstructure:"feeds"`
	Keywords          []string `mapstructure:"keywords"`
	MaxEntriesPerFeed int      `mapstructure:"max_entries_per_feed"`
	DefaultLocation   string   `mapstructure:"default_location"`
}

// HTTPConfig configures feed fetches.
type HTTPConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// StorageConfig locates the dedup document.
type StorageConfig struct {
	Path               string `mapstructure:"path"`
	DedupRetentionDays int    `mapstructure:"dedup_retention_days"`
}

// NotificationConfig controls the notification queue.
type NotificationConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Channel   string `mapstructure:"channel"`
	Recipient string `mapstructure:"recipient"`
	QueueDir  string `mapstructure:"queue_dir"`
}

// ScheduleConfig drives the schedule command.
type ScheduleConfig struct {
	Cron       string `mapstructure:"cron"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// MetricsConfig controls the node_exporter textfile output.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LEADHUNTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("sources.enabled", []string{"kijiji", "rss", "google_alerts"})
	v.SetDefault("search.locations", []string{"Sudbury", "North Bay", "Timmins", "Sault Ste Marie"})
	v.SetDefault("search.keywords", []string{
		"renovation", "building permit", "basement apartment", "addition", "deck", "garage",
	})
	v.SetDefault("search.max_results_per_query", 50)
	v.SetDefault("kijiji.base_url", "https://www.kijiji.ca")
	v.SetDefault("kijiji.listing_pattern", "/v-")
	v.SetDefault("kijiji.wait_selector", "div[data-listing-id], div.search-item, article")
	v.SetDefault("kijiji.headless", true)
	v.SetDefault("kijiji.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0")
	v.SetDefault("kijiji.locale", "en-CA")
	v.SetDefault("kijiji.timezone", "America/Toronto")
	v.SetDefault("kijiji.viewport_width", 1920)
	v.SetDefault("kijiji.viewport_height", 1080)
	v.SetDefault("kijiji.navigation_timeout", 30*time.Second)
	v.SetDefault("kijiji.selector_timeout", 10*time.Second)
	v.SetDefault("kijiji.query_delay", 3*time.Second)
	v.SetDefault("kijiji.blocked_resources", []string{
		"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.woff", "*.woff2",
	})
	v.SetDefault("rss.feeds", []string{})
	v.SetDefault("rss.keywords", []string{})
	v.SetDefault("rss.max_entries_per_feed", 50)
	v.SetDefault("rss.default_location", "Unknown")
	v.SetDefault("google_alerts.enabled", true)
	v.SetDefault("google_alerts.feeds", []string{})
	v.SetDefault("google_alerts.keywords", []string{})
	v.SetDefault("google_alerts.max_entries_per_feed", 50)
	v.SetDefault("google_alerts.default_location", "Ontario")
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	v.SetDefault("http.requests_per_second", 1.0)
	v.SetDefault("http.burst", 1)
	v.SetDefault("storage.path", "memory/leads.json")
	v.SetDefault("storage.dedup_retention_days", 30)
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.channel", "webchat")
	v.SetDefault("notifications.recipient", "")
	v.SetDefault("notifications.queue_dir", "notifications")
	v.SetDefault("schedule.cron", "0 6 * * *")
	v.SetDefault("schedule.run_on_start", false)
	v.SetDefault("metrics.textfile", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	for _, name := range c.Sources.Enabled {
		if _, err := lead.ParseSource(name); err != nil {
			return fmt.Errorf("sources.enabled: %w", err)
		}
	}
	if c.Search.MaxResultsPerQuery <= 0 {
		return fmt.Errorf("search.max_results_per_query must be > 0")
	}
	if c.sourceEnabled(lead.SourceKijiji) {
		if c.Kijiji.BaseURL == "" {
			return fmt.Errorf("kijiji.base_url must be set when kijiji is enabled")
		}
		if c.Kijiji.NavigationTimeout <= 0 || c.Kijiji.SelectorTimeout <= 0 {
			return fmt.Errorf("kijiji.navigation_timeout and kijiji.selector_timeout must be > 0")
		}
		if c.Kijiji.QueryDelay < 0 {
			return fmt.Errorf("kijiji.query_delay must be >= 0")
		}
	}
	if c.RSS.MaxEntriesPerFeed <= 0 {
		return fmt.Errorf("rss.max_entries_per_feed must be > 0")
	}
	if c.GoogleAlerts.MaxEntriesPerFeed <= 0 {
		return fmt.Errorf("google_alerts.max_entries_per_feed must be > 0")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if c.HTTP.RequestsPerSecond < 0 {
		return fmt.Errorf("http.requests_per_second must be >= 0")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path must be set")
	}
	if c.Storage.DedupRetentionDays <= 0 {
		return fmt.Errorf("storage.dedup_retention_days must be > 0")
	}
	if c.Notifications.QueueDir == "" {
		return fmt.Errorf("notifications.queue_dir must be set")
	}
	if c.Schedule.Cron == "" {
		return fmt.Errorf("schedule.cron must be set")
	}
	return nil
}

// EnabledSources returns the configured source tags in order, without duplicates.
func (c Config) EnabledSources() []lead.Source {
	out := make([]lead.Source, 0, len(c.Sources.Enabled))
	seen := make(map[lead.Source]bool, len(c.Sources.Enabled))
	for _, name := range c.Sources.Enabled {
		src, err := lead.ParseSource(name)
		if err != nil || seen[src] {
			continue
		}
		seen[src] = true
		out = append(out, src)
	}
	return out
}

// RSSKeywords returns rss.keywords, falling back to search.keywords. An empty result lets the
// RSS source use its built-in keyword set.
func (c Config) RSSKeywords() []string {
	if len(c.RSS.Keywords) > 0 {
		return c.RSS.Keywords
	}
	return c.Search.Keywords
}

// DedupRetention converts the retention window into a duration.
func (c Config) DedupRetention() time.Duration {
	return time.Duration(c.Storage.DedupRetentionDays) * 24 * time.Hour
}

func (c Config) sourceEnabled(kind lead.Source) bool {
	for _, src := range c.EnabledSources() {
		if src == kind {
			return true
		}
	}
	return false
}
