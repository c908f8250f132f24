package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateReportsFirstMissingCredential(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no bot token", Config{}, botTokenEnv},
		{
			"no chat id",
			Config{Telegram: TelegramConfig{BotToken: "t"}},
			channelIDEnv,
		},
		{
			"no folder id",
			Config{Telegram: TelegramConfig{BotToken: "t", ChatID: "c"}},
			ycFolderIDEnv,
		},
		{
			"no api key",
			Config{
				Telegram:  TelegramConfig{BotToken: "t", ChatID: "c"},
				YandexGPT: YandexGPTConfig{FolderID: "f"},
			},
			ycAPIKeyEnv,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q should name %s", err, tc.want)
			}
		})
	}
}

func TestValidatePassesWithAllCredentials(t *testing.T) {
	cfg := Config{
		Telegram:  TelegramConfig{BotToken: "t", ChatID: "c"},
		YandexGPT: YandexGPTConfig{FolderID: "f", APIKey: "k"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Database.Path == "" {
		t.Fatal("expected a default database path")
	}
	if cfg.YandexGPT.Model != "yandexgpt-lite" {
		t.Fatalf("unexpected default model %q", cfg.YandexGPT.Model)
	}
	if len(cfg.Feeds) != 5 {
		t.Fatalf("expected 5 default feeds, got %d", len(cfg.Feeds))
	}
	for _, feed := range cfg.Feeds {
		if feed.Name == "" || feed.URL == "" {
			t.Fatalf("incomplete default feed %+v", feed)
		}
	}
}

func TestLoadMergesYAMLFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
database:
  path: /data/custom.db
telegram:
  botToken: from-file
timezone: Europe/Moscow
feeds:
  - name: Only Feed
    url: https://example.com/rss
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(botTokenEnv, "from-env")
	t.Setenv(dbPathEnv, "")

	cfg := Load()

	if cfg.Database.Path != "/data/custom.db" {
		t.Fatalf("file value lost, path %q", cfg.Database.Path)
	}
	if cfg.Telegram.BotToken != "from-env" {
		t.Fatalf("environment must win over the file, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Timezone != "Europe/Moscow" {
		t.Fatalf("unexpected timezone %q", cfg.Timezone)
	}
	if loc := cfg.Location(); loc.String() != "Europe/Moscow" {
		t.Fatalf("unexpected location %s", loc)
	}
	if len(cfg.Feeds) != 1 || cfg.Feeds[0].Name != "Only Feed" {
		t.Fatalf("file feeds lost: %+v", cfg.Feeds)
	}
}

func TestLoadEnvDatabaseOverride(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(dbPathEnv, "/tmp/override.db")

	cfg := Load()
	if cfg.Database.Path != "/tmp/override.db" {
		t.Fatalf("env override lost, path %q", cfg.Database.Path)
	}
}
