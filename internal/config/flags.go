package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagScenario = flag.String("scenario", "", "Scenario level file")
	flagTicks    = flag.Int("ticks", 0, "Number of ticks to simulate")
	flagInspect  = flag.String("inspect", "", "Inspector listen address")
	flagRealtime = flag.Bool("realtime", false, "Pace ticks against the wall clock")
	flagCues     = flag.String("cues", "", "Write sound cues to this wav file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Debug.DumpFloorData = true
	}
	if *flagScenario != "" {
		cfg.Data.Scenario = *flagScenario
	}
	if *flagTicks > 0 {
		cfg.Engine.MaxTicks = *flagTicks
	}
	if *flagInspect != "" {
		cfg.Debug.InspectAddr = *flagInspect
	}
	if *flagRealtime {
		cfg.Engine.Realtime = true
	}
	if *flagCues != "" {
		cfg.Debug.AudioCues = *flagCues
	}
}
