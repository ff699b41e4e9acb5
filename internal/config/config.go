// Package config handles simulator configuration loading and management.
package config

// Config holds all simulator settings.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Data    DataConfig    `yaml:"data"`
	Debug   DebugConfig   `yaml:"debug"`
	Save    SaveConfig    `yaml:"save"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig holds simulation loop settings.
type EngineConfig struct {
	TickRate int `yaml:"tick_rate"` // Simulation ticks per second
	MaxTicks int `yaml:"max_ticks"` // 0 runs until interrupted
	// SkipSteepSlants applies to the player's height queries only.
	SkipSteepSlants bool `yaml:"skip_steep_slants"`
	Realtime        bool `yaml:"realtime"` // Pace ticks against the wall clock
}

// DataConfig holds level data paths.
type DataConfig struct {
	Scenario string `yaml:"scenario"` // Path to a yaml scenario level
}

// DebugConfig holds inspector and dump settings.
type DebugConfig struct {
	InspectAddr   string `yaml:"inspect_addr"` // Empty disables the HTTP inspector
	DumpFloorData bool   `yaml:"dump_floor_data"`
	AudioCues     string `yaml:"audio_cues"` // Wav file receiving rendered sound cues
}

// SaveConfig holds level progress persistence settings.
type SaveConfig struct {
	Enabled bool   `yaml:"enabled"`
	AppName string `yaml:"app_name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	Format  string `yaml:"format"` // File format: console or json
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			TickRate:        30,
			MaxTicks:        0,
			SkipSteepSlants: true,
			Realtime:        false,
		},
		Data: DataConfig{
			Scenario: "scenario.yaml",
		},
		Debug: DebugConfig{
			InspectAddr: "",
		},
		Save: SaveConfig{
			Enabled: false,
			AppName: "tr1engine",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
			Format:  "console",
		},
	}
}
