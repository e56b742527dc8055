package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile = flag.String("log-file", "", "Write logs to this file")
	flagShading = flag.String("shading", "", "Default shading for new meshes (flat or smooth)")
	flagCells   = flag.Int("cells", 0, "Marching cubes resolution for solid kernel meshes")
	flagTimeout = flag.Duration("timeout", 0, "Script evaluation timeout")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagShading != "" {
		cfg.Editor.DefaultShading = *flagShading
	}
	if *flagCells > 0 {
		cfg.Kernel.MeshCells = *flagCells
	}
	if *flagTimeout > 0 {
		cfg.Engine.EvalTimeout = *flagTimeout
	}
}
