package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./motiontsv.db" {
			t.Errorf("expected database path ./motiontsv.db, got %s", config.Database.Path)
		}

		if config.Logging.Level != "info" {
			t.Errorf("expected log level info, got %s", config.Logging.Level)
		}

		if config.Processing.Task != "rest" {
			t.Errorf("expected default task rest, got %s", config.Processing.Task)
		}

		if config.Processing.Record {
			t.Error("expected history recording to default off")
		}

		if config.Report.Format != "text" {
			t.Errorf("expected report format text, got %s", config.Report.Format)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[logging]
level = "debug"
file = "/var/log/motiontsv.log"

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[processing]
task = "nback"
record = true

[report]
directory = "/data/reports"
format = "xlsx"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Processing.Task != "nback" {
			t.Errorf("expected task nback, got %s", config.Processing.Task)
		}

		if !config.Processing.Record {
			t.Error("expected record to be enabled")
		}

		if config.Report.Format != "xlsx" {
			t.Errorf("expected report format xlsx, got %s", config.Report.Format)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("FindConfig", func(t *testing.T) {
		t.Run("explicit path loads", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			if err := CreateConfigFile(configPath); err != nil {
				t.Fatalf("failed to create config file: %v", err)
			}

			config, err := FindConfig(configPath)
			if err != nil {
				t.Fatalf("failed to find config: %v", err)
			}
			if config == nil {
				t.Fatal("expected config")
			}
		})

		t.Run("explicit path missing is an error", func(t *testing.T) {
			_, err := FindConfig(filepath.Join(t.TempDir(), "missing.toml"))
			if err == nil {
				t.Fatal("expected error for missing explicit config")
			}
			if !errors.Is(err, ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("no candidates falls back to defaults", func(t *testing.T) {
			config, err := FindConfig("")
			if err != nil {
				t.Fatalf("expected default config, got error: %v", err)
			}
			if config.Processing.Task == "" {
				t.Error("expected defaults to be populated")
			}
		})
	})
}
