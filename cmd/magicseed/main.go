// Command magicseed builds the attack tables with many seed pairs and
// reports the pairs that find every magic with the fewest candidates.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/hailam/chessmg/internal/attacks"
	"github.com/hailam/chessmg/internal/storage"
)

var (
	trials    = flag.Int("trials", 100, "number of seed pairs to try")
	start     = flag.Uint64("start", 1, "first seed; later pairs are derived from it")
	dbDir     = flag.String("db", "", "database directory to record trials; \"default\" uses the data dir")
	verbosity = flag.Int("v", 0, "log verbosity")
)

func main() {
	flag.Parse()

	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	if err := run(logger); err != nil {
		logger.Error(err, "seed search failed")
		os.Exit(1)
	}
}

// splitmix64 spreads consecutive integers into unrelated seeds.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

func run(logger logr.Logger) error {
	if *trials <= 0 {
		return errors.New("-trials must be > 0")
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

	var best storage.SeedResult
	for i := 0; i < *trials; i++ {
		cfg := attacks.DefaultConfig()
		cfg.RookSeed = splitmix64(*start + 2*uint64(i))
		cfg.BishopSeed = splitmix64(*start + 2*uint64(i) + 1)
		cfg.Logger = logger.V(1)

		t, err := attacks.New(cfg)
		if errors.Is(err, attacks.ErrMagicNotFound) {
			logger.Info("seed pair gave up", "rook", cfg.RookSeed, "bishop", cfg.BishopSeed)
			continue
		}
		if err != nil {
			return err
		}

		st := t.Stats()
		r := storage.SeedResult{
			RookSeed:       cfg.RookSeed,
			BishopSeed:     cfg.BishopSeed,
			RookAttempts:   st.RookAttempts,
			BishopAttempts: st.BishopAttempts,
			Elapsed:        st.Elapsed,
		}
		logger.V(1).Info("trial", "n", i, "attempts", r.Total(), "elapsed", r.Elapsed)

		if best.Total() == 0 || r.Total() < best.Total() {
			best = r
		}
		if db != nil {
			if err := db.SaveSeedResult(r); err != nil {
				return err
			}
		}
	}

	if best.Total() == 0 {
		return errors.New("no seed pair completed")
	}

	fmt.Printf("Table: %s entries (%s)\n",
		humanize.Comma(attacks.TableSize), humanize.IBytes(attacks.TableSize*8))
	fmt.Printf("Best of %d: rook %#016x bishop %#016x\n", *trials, best.RookSeed, best.BishopSeed)
	fmt.Printf("Attempts: %s rook, %s bishop, %s total in %s\n",
		humanize.Comma(int64(best.RookAttempts)), humanize.Comma(int64(best.BishopAttempts)),
		humanize.Comma(int64(best.Total())), best.Elapsed)

	if db != nil {
		overall, err := db.BestSeedResult()
		if err != nil {
			return err
		}
		if overall.Total() < best.Total() {
			fmt.Printf("Stored best: rook %#016x bishop %#016x (%s attempts)\n",
				overall.RookSeed, overall.BishopSeed, humanize.Comma(int64(overall.Total())))
		}
	}
	return nil
}
