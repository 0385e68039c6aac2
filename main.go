package main

import (
	"embed"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/sqlongithub/voxelbench/pkg/config"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"gopkg.in/natefinch/lumberjack.v2"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	flag.Parse()
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatal(err)
	}
	level := levelFlag.value
	if !levelFlag.set {
		if level, err = config.ParseLevel(cfg.LogLevel); err != nil {
			log.Fatal(err)
		}
	}
	if *logFileFlag != "" {
		w := &lumberjack.Logger{
			Filename:   *logFileFlag,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	} else {
		slog.SetLogLoggerLevel(level)
	}

	app := NewApp(cfg)
	if cfg.Models != "" {
		n, err := app.LoadModels(cfg.Models)
		if err != nil {
			log.Fatalf("Failed to load block models from %s: %s", cfg.Models, err)
		}
		slog.Info("Loaded block models", "count", n, "dir", cfg.Models)
	}
	if *scriptFlag != "" {
		src, err := os.ReadFile(*scriptFlag)
		if err != nil {
			log.Fatal(err)
		}
		if res := app.Evaluate(string(src)); len(res.Errors) > 0 {
			slog.Warn("Startup script failed", "path", *scriptFlag, "errors", len(res.Errors), "first", res.Errors[0].Message)
		}
	}

	bg := cfg.Colors.Background
	err = wails.Run(&options.App{
		Title:  "voxelbench",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: uint8(bg >> 16), G: uint8(bg >> 8), B: uint8(bg), A: 255},
		OnStartup:        app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
