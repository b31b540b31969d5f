package main

import (
	"flag"
	"log"
	"runtime"

	"glscene/internal/logger"
	"glscene/internal/util"
	"glscene/pkg/config"
	"glscene/pkg/engine"
)

func init() {
	// GLFW requires the program to be running on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	headless := flag.Int("headless", 0, "Run this many frames on the in-memory device instead of opening a window")
	flag.Parse()

	cfg, cfgErr := config.LoadConfig(*configPath)

	var lg *logger.Logger
	if cfg.Logging.File != "" {
		var err error
		lg, err = logger.NewMultiLogger(cfg.Logging.Level, cfg.Logging.File)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
	} else {
		lg = logger.NewLogger(cfg.Logging.Level)
	}
	defer lg.Close()
	switch {
	case !util.FileExists(*configPath):
		lg.Infof("No config at %s, using defaults", *configPath)
	case cfgErr != nil:
		lg.Warnf("%v", cfgErr)
	}
	lg.Info("Starting glscene viewer...")

	var app *engine.App
	if *headless > 0 {
		app = engine.NewHeadlessApp(cfg, lg, *headless)
	} else {
		var err error
		app, err = engine.NewApp(cfg, lg)
		if err != nil {
			log.Fatalf("Failed to initialize engine: %v", err)
		}
	}

	lg.Info("Engine initialized, starting frame loop...")
	if err := app.Run(newViewer()); err != nil {
		log.Fatalf("Viewer failed: %v", err)
	}
	lg.Infof("Rendered %d frames", app.Frames())
}
