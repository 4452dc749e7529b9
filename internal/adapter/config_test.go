package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.IsConfigured() {
		t.Error("no server URL should mean unconfigured")
	}
	if cfg.Polling.Interval != 3*time.Second {
		t.Errorf("interval = %s, want 3s", cfg.Polling.Interval)
	}
	if cfg.UI.ResultsMode != ResultsModeLatest || cfg.UI.SubmitMode != SubmitModeStartScan {
		t.Errorf("modes = %q / %q", cfg.UI.ResultsMode, cfg.UI.SubmitMode)
	}
	if cfg.UI.DismissAfter != 5*time.Second {
		t.Errorf("dismiss_after = %s", cfg.UI.DismissAfter)
	}
	if !cfg.History.Enabled || cfg.History.Limit != 200 {
		t.Errorf("history = %+v", cfg.History)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := writeConfig(t, `
server:
  url: http://scraper.lan:5000
  timeout: 4s
polling:
  interval: 1500ms
ui:
  results_mode: list
  submit_mode: direct
history:
  enabled: false
`)

	cfg, err := loadConfig(viper.New(), dir)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.URL != "http://scraper.lan:5000" || cfg.Server.Timeout != 4*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Polling.Interval != 1500*time.Millisecond {
		t.Errorf("interval = %s", cfg.Polling.Interval)
	}
	if cfg.UI.ResultsMode != ResultsModeList || cfg.UI.SubmitMode != SubmitModeDirect {
		t.Errorf("modes = %q / %q", cfg.UI.ResultsMode, cfg.UI.SubmitMode)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled")
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, "server:\n  url: http://from-file:5000\n")
	t.Setenv("LORASCAN_SERVER_URL", "http://from-env:5000")
	t.Setenv("LORASCAN_POLLING_INTERVAL", "7s")

	cfg, err := loadConfig(viper.New(), dir)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.URL != "http://from-env:5000" {
		t.Errorf("url = %q", cfg.Server.URL)
	}
	if cfg.Polling.Interval != 7*time.Second {
		t.Errorf("interval = %s", cfg.Polling.Interval)
	}
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"results mode", "ui:\n  results_mode: grid\n"},
		{"submit mode", "ui:\n  submit_mode: batch\n"},
		{"interval", "polling:\n  interval: 0s\n"},
		{"yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(viper.New(), writeConfig(t, tt.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Server.URL = "http://127.0.0.1:5000"
	cfg.Polling.Interval = 2 * time.Second
	cfg.UI.ResultsMode = ResultsModeList

	if err := saveConfig(viper.New(), cfg, dir); err != nil {
		t.Fatalf("saveConfig: %v", err)
	}

	loaded, err := loadConfig(viper.New(), dir)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if loaded.Server.URL != cfg.Server.URL || loaded.Polling.Interval != cfg.Polling.Interval {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.UI.ResultsMode != ResultsModeList {
		t.Errorf("results mode = %q", loaded.UI.ResultsMode)
	}
}
