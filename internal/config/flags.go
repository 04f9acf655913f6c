package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagField      = flag.String("field", "", "Path to a field dump (YAML)")
	flagBackend    = flag.String("backend", "", "Render backend: opengl or null")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagHeadless   = flag.Int("headless", 0, "Render N frames on the null backend and exit")
	flagMSAA       = flag.Int("msaa", -1, "MSAA samples (0 disables)")
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
	}
	if *flagField != "" {
		cfg.Data.FieldPath = *flagField
	}
	if *flagBackend != "" {
		cfg.Viewer.Backend = *flagBackend
	}
	if *flagWindowed {
		cfg.Viewer.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
	if *flagMSAA >= 0 {
		cfg.Viewer.Samples = *flagMSAA
	}
	if *flagHeadless > 0 {
		cfg.Viewer.Headless = *flagHeadless
		cfg.Viewer.Backend = BackendNull
	}
}
