package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/hailam/chessmg/internal/attacks"
	"github.com/hailam/chessmg/internal/movegen"
	"github.com/hailam/chessmg/internal/storage"
	"github.com/hailam/chessmg/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	dbDir      = flag.String("db", "", "database directory to read magic seeds from; \"default\" uses the data dir")
	verbosity  = flag.Int("v", 0, "log verbosity")
)

func main() {
	flag.Parse()

	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	if err := run(logger); err != nil {
		logger.Error(err, "chessmg-uci failed")
		os.Exit(1)
	}
}

func run(logger logr.Logger) error {
	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		logger.Info("CPU profiling enabled", "path", profilePath)
	}

	cfg := attacks.DefaultConfig()
	cfg.Logger = logger
	if *dbDir != "" {
		if err := loadSeeds(&cfg, *dbDir); err != nil {
			logger.Info("stored seeds not loaded, using defaults", "error", err.Error())
		}
	}

	tables, err := attacks.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	protocol := uci.New(movegen.New(tables), uci.Options{Logger: logger})
	if err := protocol.Run(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// loadSeeds replaces the magic seeds with the best pair stored by magicseed.
func loadSeeds(cfg *attacks.Config, dir string) error {
	opts := storage.Options{Dir: dir, Logger: cfg.Logger}
	if dir == "default" {
		opts.Dir = ""
	}
	db, err := storage.Open(opts)
	if err != nil {
		return err
	}
	defer db.Close()

	best, err := db.BestSeedResult()
	if err != nil {
		return err
	}
	cfg.RookSeed, cfg.BishopSeed = best.RookSeed, best.BishopSeed
	return nil
}
