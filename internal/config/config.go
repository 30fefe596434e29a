package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names accepted by data_source.provider.
const (
	ProviderYahooSummary = "yahoo-summary"
	ProviderYahooQuote   = "yahoo-quote"
	ProviderYahooChart   = "yahoo-chart"
	ProviderFinanceGo    = "finance-go"
	ProviderREST         = "rest"
	ProviderMock         = "mock"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider string        `yaml:"provider"`
		BaseURL  string        `yaml:"base_url"`
		APIKey   string        `yaml:"api_key"`
		Delay    time.Duration `yaml:"delay"`
	} `yaml:"data_source"`
	Index struct {
		BaseURL string   `yaml:"base_url"`
		Names   []string `yaml:"names"`
		File    string   `yaml:"file"`
	} `yaml:"index"`
	Output struct {
		HTMLPath     string `yaml:"html_path"`
		HistoryPath  string `yaml:"history_path"`
		SnapshotPath string `yaml:"snapshot_path"`
		Title        string `yaml:"title"`
		Locale       string `yaml:"locale"`
		HistoryRuns  int    `yaml:"history_runs"`
	} `yaml:"output"`
	Schedule struct {
		RunCron string `yaml:"run_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("STOCKBOARD_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("STOCKBOARD_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse STOCKBOARD_DELAY: %w", err)
		}
		cfg.DataSource.Delay = d
	}
	if v := os.Getenv("QUOTE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("QUOTE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("INDEX_BASE_URL"); v != "" {
		cfg.Index.BaseURL = v
	}
	if v := os.Getenv("INDEX_NAMES"); v != "" {
		cfg.Index.Names = splitList(v)
	}
	if v := os.Getenv("INDEX_FILE"); v != "" {
		cfg.Index.File = v
	}
	if v := os.Getenv("OUTPUT_HTML"); v != "" {
		cfg.Output.HTMLPath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_RUN"); v != "" {
		cfg.Schedule.RunCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = ProviderYahooSummary
	}
	if cfg.DataSource.Delay == 0 {
		cfg.DataSource.Delay = 200 * time.Millisecond
	}
	if len(cfg.Index.Names) == 0 {
		cfg.Index.Names = []string{"large-cap", "mid-cap"}
	}
	if cfg.Output.HTMLPath == "" {
		cfg.Output.HTMLPath = "public/index.html"
	}
	if cfg.Output.HistoryPath == "" {
		cfg.Output.HistoryPath = "public/history.html"
	}
	if cfg.Output.Title == "" {
		cfg.Output.Title = "Stockholmsbörsen"
	}
	if cfg.Output.Locale == "" {
		cfg.Output.Locale = "sv"
	}
	if cfg.Output.HistoryRuns == 0 {
		cfg.Output.HistoryRuns = 30
	}
	if cfg.Schedule.RunCron == "" {
		cfg.Schedule.RunCron = "0 30 17 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stockboard.db"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahooSummary, ProviderYahooQuote, ProviderYahooChart, ProviderFinanceGo, ProviderMock:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for provider %q", ProviderREST)
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.Delay < 0 {
		return fmt.Errorf("data_source.delay must not be negative")
	}
	if len(c.Index.Names) == 0 && c.Index.File == "" {
		return fmt.Errorf("index.names or index.file is required")
	}
	if c.Output.Locale != "sv" && c.Output.Locale != "en" {
		return fmt.Errorf("output.locale must be sv or en")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
