package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Local"
	configPathEnv   = "NEWSDIGEST_CONFIG"
	botTokenEnv     = "BOT_TOKEN"
	channelIDEnv    = "CHANNEL_ID"
	ycFolderIDEnv   = "YC_FOLDER_ID"
	ycAPIKeyEnv     = "YC_API_KEY"
	dbPathEnv       = "NEWS_DB_PATH"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	YandexGPT YandexGPTConfig `yaml:"yandexgpt"`
	Feeds     []FeedConfig    `yaml:"feeds"`
	Logging   LoggingConfig   `yaml:"logging"`
	Timezone  string          `yaml:"timezone"`

	location *time.Location
}

// DatabaseConfig describes the embedded SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// YandexGPTConfig defines how to contact the completion API.
type YandexGPTConfig struct {
	FolderID string `yaml:"folderId"`
	APIKey   string `yaml:"apiKey"`
	Model    string `yaml:"model"`
}

// FeedConfig describes one RSS feed endpoint.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Location resolves the configured timezone to a time.Location.
func (c *Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	return time.Local
}

// Load reads the optional .env file and YAML configuration (if present) and
// applies environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Feeds) == 0 {
		cfg.Feeds = defaultConfig().Feeds
	}

	return cfg
}

// Validate reports the first missing required credential; the process must
// not start without all four.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("%s is required", botTokenEnv)
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("%s is required", channelIDEnv)
	}
	if c.YandexGPT.FolderID == "" {
		return fmt.Errorf("%s is required", ycFolderIDEnv)
	}
	if c.YandexGPT.APIKey == "" {
		return fmt.Errorf("%s is required", ycAPIKeyEnv)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(botTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(channelIDEnv); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv(ycFolderIDEnv); v != "" {
		c.YandexGPT.FolderID = v
	}
	if v := os.Getenv(ycAPIKeyEnv); v != "" {
		c.YandexGPT.APIKey = v
	}
	if v := os.Getenv(dbPathEnv); v != "" {
		c.Database.Path = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc = time.Local
	}
	c.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}
	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}
	if override.YandexGPT.FolderID != "" {
		base.YandexGPT.FolderID = override.YandexGPT.FolderID
	}
	if override.YandexGPT.APIKey != "" {
		base.YandexGPT.APIKey = override.YandexGPT.APIKey
	}
	if override.YandexGPT.Model != "" {
		base.YandexGPT.Model = override.YandexGPT.Model
	}
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	if override.Timezone != "" {
		base.Timezone = override.Timezone
	}
	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: "news.db"},
		YandexGPT: YandexGPTConfig{
			Model: "yandexgpt-lite",
		},
		Logging: LoggingConfig{Level: "info"},
		Feeds: []FeedConfig{
			{Name: "WIRED Science", URL: "https://www.wired.com/feed/category/science/latest/rss"},
			{Name: "WIRED Business", URL: "https://www.wired.com/feed/category/business/latest/rss"},
			{Name: "Computer Weekly", URL: "https://www.computerweekly.com/rss/All-Computer-Weekly-content.xml"},
			{Name: "CNET", URL: "https://www.cnet.com/rss/news/"},
			{Name: "Engadget", URL: "https://www.engadget.com/rss.xml"},
		},
	}
}
