package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-logr/logr"
)

// Key prefixes
const (
	prefixPerft = "perft:"
	prefixSeed  = "seed:"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("record not found")

// Options configures Open.
type Options struct {
	// Dir is the database directory. Empty means DatabaseDir().
	Dir string

	// InMemory keeps everything in memory and ignores Dir.
	InMemory bool

	// Logger receives badger's log output. The zero value discards it.
	Logger logr.Logger
}

// PerftRecord is a stored perft result.
type PerftRecord struct {
	FEN      string        `json:"fen"`
	Depth    int           `json:"depth"`
	Nodes    uint64        `json:"nodes"`
	Elapsed  time.Duration `json:"elapsed"`
	Recorded time.Time     `json:"recorded"`
}

// SeedResult is the outcome of building attack tables with one seed pair.
type SeedResult struct {
	RookSeed       uint64        `json:"rook_seed"`
	BishopSeed     uint64        `json:"bishop_seed"`
	RookAttempts   uint64        `json:"rook_attempts"`
	BishopAttempts uint64        `json:"bishop_attempts"`
	Elapsed        time.Duration `json:"elapsed"`
	Recorded       time.Time     `json:"recorded"`
}

// Total returns the candidates tried for both piece kinds.
func (r SeedResult) Total() uint64 {
	return r.RookAttempts + r.BishopAttempts
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens or creates the database.
func Open(opts Options) (*Storage, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dir := opts.Dir
		if dir == "" {
			var err error
			if dir, err = DatabaseDir(); err != nil {
				return nil, fmt.Errorf("database dir: %w", err)
			}
		}
		bopts = badger.DefaultOptions(dir)
	}

	bopts.Logger = nil // Disable logging
	if opts.Logger.GetSink() != nil {
		bopts.Logger = badgerLogger{opts.Logger.WithName("badger")}
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// perftKey is the prefix, the FEN hash and the depth. The record itself
// carries the FEN so a hash collision reads as a miss.
func perftKey(fen string, depth int) []byte {
	key := make([]byte, 0, len(prefixPerft)+9)
	key = append(key, prefixPerft...)
	key = binary.BigEndian.AppendUint64(key, xxhash.Sum64String(fen))
	return append(key, byte(depth))
}

// SavePerft stores a perft result, replacing any earlier one.
func (s *Storage) SavePerft(rec PerftRecord) error {
	if rec.Recorded.IsZero() {
		rec.Recorded = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(perftKey(rec.FEN, rec.Depth), data)
	})
}

// LoadPerft returns the stored result for a FEN and depth, or ErrNotFound.
func (s *Storage) LoadPerft(fen string, depth int) (PerftRecord, error) {
	var rec PerftRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(perftKey(fen, depth))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return PerftRecord{}, err
	}
	if rec.FEN != fen || rec.Depth != depth {
		return PerftRecord{}, ErrNotFound
	}
	return rec, nil
}

// seedKey sorts seed results by total attempts, so the first key under the
// prefix is the best seed pair.
func seedKey(r SeedResult) []byte {
	key := make([]byte, 0, len(prefixSeed)+24)
	key = append(key, prefixSeed...)
	key = binary.BigEndian.AppendUint64(key, r.Total())
	key = binary.BigEndian.AppendUint64(key, r.RookSeed)
	return binary.BigEndian.AppendUint64(key, r.BishopSeed)
}

// SaveSeedResult records one seed trial.
func (s *Storage) SaveSeedResult(r SeedResult) error {
	if r.Recorded.IsZero() {
		r.Recorded = time.Now()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(seedKey(r), data)
	})
}

// BestSeedResult returns the trial with the fewest attempts, or ErrNotFound.
func (s *Storage) BestSeedResult() (SeedResult, error) {
	var best SeedResult

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixSeed)
		opts.PrefetchSize = 1
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Rewind()
		if !it.Valid() {
			return ErrNotFound
		}
		return it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &best)
		})
	})
	return best, err
}

// SeedResults returns up to limit trials, best first. A limit of zero
// returns all of them.
func (s *Storage) SeedResults(limit int) ([]SeedResult, error) {
	var results []SeedResult

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixSeed)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && len(results) == limit {
				break
			}
			var r SeedResult
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return err
			}
			results = append(results, r)
		}
		return nil
	})
	return results, err
}

// badgerLogger forwards badger's printf-style logging to logr. Badger is
// chatty at info level, so info and debug go to V(1) and V(2).
type badgerLogger struct {
	l logr.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error(nil, fmt.Sprintf(format, args...))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Info(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.V(1).Info(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.V(2).Info(fmt.Sprintf(format, args...))
}
