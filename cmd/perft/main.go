package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/hailam/chessmg/internal/attacks"
	"github.com/hailam/chessmg/internal/movegen"
	"github.com/hailam/chessmg/internal/notation"
	"github.com/hailam/chessmg/internal/perft"
	"github.com/hailam/chessmg/internal/position"
	"github.com/hailam/chessmg/internal/storage"
)

// Approximate bytes per cache entry, used to turn -hash into a capacity.
const cacheEntryBytes = 64

var (
	fen        = flag.String("fen", position.StartFEN, "FEN string (defaults to initial position)")
	depth      = flag.Int("depth", 0, "perft depth (required)")
	divide     = flag.Bool("divide", false, "print per-move node counts at root")
	moves      = flag.String("moves", "", "space separated moves to play first, UCI or SAN, e.g. \"e2e4 Nf6\"")
	threads    = flag.Int("threads", 1, "worker goroutines for the root split")
	hashMB     = flag.Int("hash", 0, "subtree cache size in MB, 0 disables")
	dbDir      = flag.String("db", "", "database directory for results and seeds; \"default\" uses the data dir")
	timeout    = flag.Duration("timeout", 0, "abort after this long, 0 for no limit")
	verbosity  = flag.Int("v", 0, "log verbosity")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	if err := run(logger); err != nil {
		logger.Error(err, "perft failed")
		os.Exit(1)
	}
}

func run(logger logr.Logger) error {
	if *depth <= 0 {
		return errors.New("-depth must be > 0")
	}

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

	var db *storage.Storage
	if *dbDir != "" {
		opts := storage.Options{Dir: *dbDir, Logger: logger}
		if *dbDir == "default" {
			opts.Dir = ""
		}
		var err error
		if db, err = storage.Open(opts); err != nil {
			return err
		}
		defer db.Close()
	}

	cfg := attacks.DefaultConfig()
	cfg.Logger = logger
	if db != nil {
		best, err := db.BestSeedResult()
		switch {
		case err == nil:
			cfg.RookSeed, cfg.BishopSeed = best.RookSeed, best.BishopSeed
			logger.V(1).Info("using stored magic seeds", "rook", best.RookSeed, "bishop", best.BishopSeed)
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}
	}

	tables, err := attacks.New(cfg)
	if err != nil {
		return err
	}
	gen := movegen.New(tables)

	pos, err := position.ParseFEN(tables, *fen)
	if err != nil {
		return err
	}
	if err := pos.Validate(); err != nil {
		return err
	}
	for _, s := range strings.Fields(*moves) {
		m, err := notation.ParseMove(gen, pos, s)
		if err != nil {
			return err
		}
		pos.MakeMove(m)
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	opts := perft.Options{Workers: *threads}
	if *hashMB > 0 {
		cache, err := perft.NewCache(int64(*hashMB) << 20 / cacheEntryBytes)
		if err != nil {
			return err
		}
		defer cache.Close()
		opts.Cache = cache
	}
	counter := perft.NewCounter(gen, opts)

	start := time.Now()
	var nodes uint64
	if *divide {
		entries, err := counter.Divide(ctx, pos, *depth)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s: %d\n", e.Move, e.Nodes)
		}
		nodes = perft.Total(entries)
	} else if *threads > 1 {
		nodes, err = counter.Parallel(ctx, pos, *depth)
	} else {
		nodes, err = counter.Perft(ctx, pos, *depth)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	nps := float64(nodes) / elapsed.Seconds()
	fmt.Printf("Depth: %d\tNodes: %s\tTime: %s\tSpeed: %s\n",
		*depth, humanize.Comma(int64(nodes)), elapsed.Round(time.Millisecond), humanize.SIWithDigits(nps, 2, "nps"))
	if opts.Cache != nil {
		logger.V(1).Info("cache", "hits", opts.Cache.Hits(), "misses", opts.Cache.Misses())
	}

	if db == nil {
		return nil
	}
	key := pos.FEN()
	if prev, err := db.LoadPerft(key, *depth); err == nil && prev.Nodes != nodes {
		logger.Info("node count differs from stored result", "stored", prev.Nodes, "now", nodes)
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return db.SavePerft(storage.PerftRecord{FEN: key, Depth: *depth, Nodes: nodes, Elapsed: elapsed})
}
