// Command facet evaluates a modeling script and writes the resulting scene
// as JSON.
//
// Usage:
//
//	facet [flags] script.facet [out.json]
//
// Without an output path the scene is written to stdout.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/chazu/facet/internal/config"
	"github.com/chazu/facet/internal/logger"
	"github.com/chazu/facet/pkg/scene"
)

func main() {
	os.Exit(run())
}

func run() int {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 2
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(os.Stderr, "usage: facet [flags] script.facet [out.json]")
		return 2
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("reading script", zap.Error(err))
		return 1
	}

	app := NewApp(cfg)
	result := app.Evaluate(string(source))
	for _, w := range result.Warnings {
		logger.Warn(w.Message)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			logger.Error(e.Message, zap.Int("line", e.Line))
		}
		return 1
	}

	if len(args) == 2 {
		if err := app.SaveScene(args[1]); err != nil {
			logger.Error("saving scene", zap.Error(err))
			return 1
		}
		return 0
	}
	data, err := scene.Marshal(app.Scene())
	if err != nil {
		logger.Error("encoding scene", zap.Error(err))
		return 1
	}
	os.Stdout.Write(append(data, '\n'))
	return 0
}
