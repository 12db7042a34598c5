package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/handiism/waifu2ugc/internal/config"
	"github.com/handiism/waifu2ugc/internal/export"
	ioutils "github.com/handiism/waifu2ugc/internal/io"
	"github.com/handiism/waifu2ugc/internal/logger"
)

func main() {
	// Command line flags
	var (
		configFlag  = flag.String("config", "", "Path to the job settings file (JSON or YAML)")
		outputFlag  = flag.String("output", "", "Output directory (overrides config)")
		mkdirFlag   = flag.Bool("mkdir", false, "Create the output directory if it does not exist")
		verboseFlag = flag.Bool("verbose", false, "Show every status line and debug logs")
		logFileFlag = flag.String("log-file", "", "Write logs to this file (overrides config)")
		dryRunFlag  = flag.Bool("dry-run", false, "Validate the settings and print the grid without exporting")
		formatsFlag = flag.Bool("formats", false, "List the supported image formats and exit")
	)

	flag.Parse()

	if *formatsFlag {
		fmt.Println(ioutils.SupportedImageTypes())
		return
	}

	configPath := *configFlag
	if configPath == "" && flag.NArg() > 0 {
		configPath = flag.Arg(0)
	}
	if configPath == "" {
		fmt.Println("waifu2ugc - Cut cube faces into voxel images")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  waifu2ugc -config <file> [options]")
		fmt.Println("  waifu2ugc <file> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: waifu2ugc-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	settings, err := loadSettings(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}
	if *logFileFlag != "" {
		settings.LogFile = *logFileFlag
	}
	level := settings.LogLevel
	if *verboseFlag {
		level = "debug"
	}
	if err := logger.Init(level, settings.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	job, err := settings.Job()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings:\n  %s\n", strings.ReplaceAll(err.Error(), "\n", "\n  "))
		os.Exit(1)
	}

	fmt.Println("waifu2ugc")
	fmt.Println("----------------------------------------")
	fmt.Printf("Template: %s\n", settings.Template)
	for _, f := range job.EnabledFaces() {
		fmt.Printf("  %-6s %dx%d tiles of %dx%d from %s\n", f.Label, f.HorizontalCount, f.VerticalCount, f.Rect.Dx(), f.Rect.Dy(), f.Source)
	}
	dims := job.Dimensions()
	fmt.Printf("Grid: %s (%d voxels)\n\n", dims, dims.Total())

	if *dryRunFlag {
		fmt.Println("[Dry run - not exporting]")
		return
	}

	destination := ioutils.ResolvePath(settings.OutputDir, settings.BaseDir)
	if *mkdirFlag {
		if err := ioutils.EnsureDir(destination); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", destination, err)
			os.Exit(1)
		}
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exporter := export.NewExporter(settings, logger.Named("export"), func(ev export.Event) {
		printEvent(ev, *verboseFlag)
	})

	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		exporter.Cancel()
	}()

	if err := exporter.Start(ctx, job, destination); err != nil {
		os.Exit(1)
	}

	res, err := exporter.Wait(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("----------------------------------------")
	switch res.Outcome {
	case export.OutcomeFinished:
		fmt.Printf("Complete! Wrote %d files for %d voxels into %s\n", res.Written, res.Visited, destination)
	case export.OutcomeAborted:
		fmt.Printf("Export cancelled after %d files.\n", res.Written)
		os.Exit(130)
	default:
		logger.Error("export failed", zap.Error(res.Err))
		os.Exit(1)
	}
}

// loadSettings reads the settings file and resolves its base directory:
// relative references in the file are relative to the file itself.
func loadSettings(path string) (*config.Settings, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	settings.BaseDir = ioutils.ResolvePath(settings.BaseDir, dir)
	return settings, nil
}

// printEvent prints exporter events. Per-voxel status lines are only shown
// in verbose mode.
func printEvent(ev export.Event, verbose bool) {
	switch ev.Kind {
	case export.EventStarted:
		fmt.Println("› Export started")
	case export.EventFinished:
		fmt.Println("✓ Export finished")
	case export.EventAborted:
		fmt.Println("! " + ev.Message)
	case export.EventError:
		fmt.Fprintln(os.Stderr, "✗ "+strings.ReplaceAll(ev.Message, "\r\n", " "))
	case export.EventStatus:
		if ev.Message == "" {
			return
		}
		if !verbose && (strings.HasPrefix(ev.Message, "Processing face") || strings.HasPrefix(ev.Message, "Saving ")) {
			return
		}
		fmt.Printf("  [%5.1f%%] %s\n", ev.Progress, ev.Message)
	}
}
