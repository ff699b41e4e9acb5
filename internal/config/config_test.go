package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Engine.TickRate != 30 {
		t.Errorf("expected tick rate 30, got %d", cfg.Engine.TickRate)
	}
	if cfg.Engine.MaxTicks != 0 {
		t.Errorf("expected unlimited ticks, got %d", cfg.Engine.MaxTicks)
	}
	if !cfg.Engine.SkipSteepSlants {
		t.Error("expected skip_steep_slants to be true by default")
	}
	if cfg.Engine.Realtime {
		t.Error("expected realtime to be false by default")
	}

	if cfg.Data.Scenario != "scenario.yaml" {
		t.Errorf("expected scenario.yaml, got %s", cfg.Data.Scenario)
	}
	if cfg.Debug.InspectAddr != "" {
		t.Errorf("expected inspector disabled, got %s", cfg.Debug.InspectAddr)
	}
	if cfg.Save.Enabled {
		t.Error("expected save to be disabled by default")
	}
	if cfg.Save.AppName != "tr1engine" {
		t.Errorf("expected app name tr1engine, got %s", cfg.Save.AppName)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
engine:
  tick_rate: 60
  max_ticks: 900
  skip_steep_slants: false
  realtime: true

data:
  scenario: "levels/gym.yaml"

debug:
  inspect_addr: "127.0.0.1:8089"
  dump_floor_data: true

save:
  enabled: true
  app_name: "tr1test"

logging:
  level: "debug"
  log_file: "sim.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Engine.TickRate != 60 {
		t.Errorf("expected tick rate 60, got %d", cfg.Engine.TickRate)
	}
	if cfg.Engine.MaxTicks != 900 {
		t.Errorf("expected max ticks 900, got %d", cfg.Engine.MaxTicks)
	}
	if cfg.Engine.SkipSteepSlants {
		t.Error("expected skip_steep_slants to be false")
	}
	if !cfg.Engine.Realtime {
		t.Error("expected realtime to be true")
	}
	if cfg.Data.Scenario != "levels/gym.yaml" {
		t.Errorf("expected scenario levels/gym.yaml, got %s", cfg.Data.Scenario)
	}
	if cfg.Debug.InspectAddr != "127.0.0.1:8089" {
		t.Errorf("expected inspector 127.0.0.1:8089, got %s", cfg.Debug.InspectAddr)
	}
	if !cfg.Debug.DumpFloorData {
		t.Error("expected dump_floor_data to be true")
	}
	if !cfg.Save.Enabled || cfg.Save.AppName != "tr1test" {
		t.Errorf("expected save enabled as tr1test, got %+v", cfg.Save)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "sim.log" {
		t.Errorf("expected log file 'sim.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("engine:\n  max_ticks: 10\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Engine.MaxTicks != 10 {
		t.Errorf("expected max ticks 10, got %d", cfg.Engine.MaxTicks)
	}
	if cfg.Engine.TickRate != 30 {
		t.Errorf("expected default tick rate to survive, got %d", cfg.Engine.TickRate)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
engine:
  tick_rate: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Engine.TickRate = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero tick rate")
	}

	cfg = Default()
	cfg.Engine.MaxTicks = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative max ticks")
	}

	cfg = Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown log format")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("engine:\n  max_ticks: 5\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Debug.DumpFloorData {
					t.Error("expected dump_floor_data to be enabled with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "scenario flag",
			setup: func() { *flagScenario = "caves.yaml" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Data.Scenario != "caves.yaml" {
					t.Errorf("expected scenario caves.yaml, got %s", cfg.Data.Scenario)
				}
			},
			teardown: func() { *flagScenario = "" },
		},
		{
			name:  "ticks flag",
			setup: func() { *flagTicks = 300 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Engine.MaxTicks != 300 {
					t.Errorf("expected max ticks 300, got %d", cfg.Engine.MaxTicks)
				}
			},
			teardown: func() { *flagTicks = 0 },
		},
		{
			name:  "inspect flag",
			setup: func() { *flagInspect = ":9000" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Debug.InspectAddr != ":9000" {
					t.Errorf("expected inspector :9000, got %s", cfg.Debug.InspectAddr)
				}
			},
			teardown: func() { *flagInspect = "" },
		},
		{
			name:  "realtime flag",
			setup: func() { *flagRealtime = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Engine.Realtime {
					t.Error("expected realtime with realtime flag")
				}
			},
			teardown: func() { *flagRealtime = false },
		},
		{
			name:  "cues flag",
			setup: func() { *flagCues = "cues.wav" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Debug.AudioCues != "cues.wav" {
					t.Errorf("expected cue file cues.wav, got %s", cfg.Debug.AudioCues)
				}
			},
			teardown: func() { *flagCues = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
engine:
  max_ticks: 120
data:
  scenario: "from-file.yaml"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagTicks = 600
	defer func() {
		*flagConfig = ""
		*flagTicks = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Ticks come from the flag, not the file.
	if cfg.Engine.MaxTicks != 600 {
		t.Errorf("expected max ticks 600 from flag, got %d", cfg.Engine.MaxTicks)
	}
	if cfg.Data.Scenario != "from-file.yaml" {
		t.Errorf("expected scenario from file, got %s", cfg.Data.Scenario)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Engine.MaxTicks = 42
	cfg.Debug.InspectAddr = ":8080"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Engine.MaxTicks != 42 {
		t.Errorf("expected max ticks 42, got %d", loaded.Engine.MaxTicks)
	}
	if loaded.Debug.InspectAddr != ":8080" {
		t.Errorf("expected inspector :8080, got %s", loaded.Debug.InspectAddr)
	}
}

func TestSaveToRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Engine.TickRate = 0
	if err := cfg.SaveTo(path); err == nil {
		t.Fatal("expected an error for a zero tick rate")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file to be written, got %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	if filepath.Base(DefaultPath()) != "config.yaml" {
		t.Errorf("expected config.yaml, got %s", DefaultPath())
	}
}
