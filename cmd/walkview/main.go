// Package main is the entry point for the walkmesh field viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/fieldview/internal/config"
	"github.com/Faultbox/fieldview/internal/logger"
	"github.com/Faultbox/fieldview/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Options()); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== walkview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	src, err := viewer.LoadField(cfg)
	if err != nil {
		logger.Error("failed to load field", zap.Error(err))
		os.Exit(1)
	}

	if cfg.Viewer.NullBackend() {
		frames := cfg.Viewer.Headless
		if frames == 0 {
			frames = 1
		}
		if _, err := viewer.RunHeadless(cfg, src, frames); err != nil {
			logger.Error("headless run failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	app, err := newApp(cfg, src)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
