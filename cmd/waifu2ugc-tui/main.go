package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/handiism/waifu2ugc/internal/config"
	ioutils "github.com/handiism/waifu2ugc/internal/io"
	"github.com/handiism/waifu2ugc/internal/logger"
	"github.com/handiism/waifu2ugc/internal/tui"
)

func main() {
	configFlag := flag.String("config", "waifu2ugc.yaml", "Path to the job settings file (JSON or YAML)")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if dir, err := filepath.Abs(filepath.Dir(*configFlag)); err == nil {
		settings.BaseDir = ioutils.ResolvePath(settings.BaseDir, dir)
	}

	// The terminal belongs to the UI, so logs only go to the file.
	if err := logger.InitWithFileConfig(settings.LogLevel, logger.DefaultFileConfig(settings.LogFile), false); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := tui.Run(settings, logger.Named("export")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
