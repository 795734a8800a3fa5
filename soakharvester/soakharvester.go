// ════════════════════════════════════════════════════════════════════════════════════════════════
// Channel Soak Harvester
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Fixed-Capacity MPSC Channel
// Component: Scenario Runner & Result Persistence
//
// Description:
//   Drives configurable multi-producer/single-consumer soak scenarios through the
//   channel and harvests the evidence: delivery counts, per-producer ordering,
//   payload digests, and wall-clock timings.  Results accumulate in a sqlite
//   database and a JSON report so regressions across runs stay visible.
//
// Verification model:
//   - Every payload is stamped with a Keccak digest of (producer, seq); the
//     consumer re-derives the stamp, so corruption or duplication is caught at
//     the item level, not just by count.
//   - Per-producer sequence numbers must arrive strictly ascending; cross-producer
//     order is unspecified by the channel and not checked.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package soakharvester

import (
	"context"
	"database/sql"
	"encoding/binary"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"main/channel"
	"main/constants"
	"main/control"
	"main/debug"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/sha3"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Scenario describes one soak run: its channel geometry and load shape.
type Scenario struct {
	Name             string `json:"name"`
	Capacity         int    `json:"capacity"`
	Producers        int    `json:"producers"`
	ItemsPerProducer int    `json:"items_per_producer"`
}

// Config is the root of the optional JSON scenario file.
type Config struct {
	Scenarios []Scenario `json:"scenarios"`
}

// DefaultConfig returns the compiled-in scenario set: a baseline run, a
// capacity-1 hand-off run that maximizes waker traffic, and a wide run
// that keeps the shared producer slot under constant supersession.
func DefaultConfig() Config {
	return Config{Scenarios: []Scenario{
		{
			Name:             "baseline",
			Capacity:         constants.DefaultCapacity,
			Producers:        constants.DefaultProducers,
			ItemsPerProducer: constants.DefaultItemsPerProducer,
		},
		{
			Name:             "handoff",
			Capacity:         1,
			Producers:        2,
			ItemsPerProducer: constants.DefaultItemsPerProducer,
		},
		{
			Name:             "wide",
			Capacity:         2,
			Producers:        16,
			ItemsPerProducer: constants.DefaultItemsPerProducer / 2,
		},
	}}
}

// LoadConfig reads the scenario file at path, falling back to the
// defaults when the file is absent.  Zero-valued scenario fields are
// filled from the defaults so partial configs stay usable.
func LoadConfig(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		debug.DropMessage("CONFIG", "using compiled-in scenarios")
		return DefaultConfig()
	}
	var cfg Config
	if err := sonnet.Unmarshal(data, &cfg); err != nil {
		debug.DropError("CONFIG_PARSE", err)
		return DefaultConfig()
	}
	for i := range cfg.Scenarios {
		sc := &cfg.Scenarios[i]
		if sc.Capacity < 1 {
			sc.Capacity = constants.DefaultCapacity
		}
		if sc.Producers < 1 {
			sc.Producers = constants.DefaultProducers
		}
		if sc.ItemsPerProducer < 1 {
			sc.ItemsPerProducer = constants.DefaultItemsPerProducer
		}
	}
	if len(cfg.Scenarios) == 0 {
		return DefaultConfig()
	}
	return cfg
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PAYLOAD STAMPING
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// record is the payload carried through the channel under test.
type record struct {
	producer uint32
	seq      uint32
	digest   [32]byte
}

// stamp derives the integrity digest for a (producer, seq) pair.
func stamp(producer, seq uint32) [32]byte {
	var b [8]byte
	binary.LittleEndian.PutUint32(b[0:4], producer)
	binary.LittleEndian.PutUint32(b[4:8], seq)
	return sha3.Sum256(b[:])
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SCENARIO EXECUTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Result captures the harvested evidence of one scenario run.
type Result struct {
	Scenario        string `json:"scenario"`
	Produced        int    `json:"produced"`
	Delivered       int    `json:"delivered"`
	OrderViolations int    `json:"order_violations"`
	DigestMismatch  int    `json:"digest_mismatches"`
	ElapsedMicros   int64  `json:"elapsed_micros"`
	Aborted         bool   `json:"aborted"`
}

// Clean reports whether the run delivered everything it accepted with
// no ordering or integrity faults.
func (r Result) Clean() bool {
	return r.Produced == r.Delivered && r.OrderViolations == 0 && r.DigestMismatch == 0
}

// ExecuteSoak runs every configured scenario in order, publishing a
// progress event per scenario.  A shutdown request between scenarios
// stops the suite; one mid-scenario drains that scenario early and
// marks its result aborted.
func ExecuteSoak(cfg Config) []Result {
	results := make([]Result, 0, len(cfg.Scenarios))
	sender, _ := ProgressHandles()
	for _, sc := range cfg.Scenarios {
		if control.Stopped() {
			break
		}
		debug.DropMessage("SOAK", "running "+sc.Name)
		res := runScenario(sc)
		results = append(results, res)
		// Best-effort: a full or closed progress channel must never
		// stall the soak itself.
		_ = sender.TrySend(Progress{
			Scenario:      res.Scenario,
			Delivered:     res.Delivered,
			ElapsedMicros: res.ElapsedMicros,
		})
	}
	return results
}

// runScenario drives one load shape end to end and verifies delivery as
// it drains.  Producers release their handles when done (or when
// shutdown is requested); the consumer then drains to end-of-stream,
// exercising the channel's own termination protocol rather than any
// out-of-band counting.
func runScenario(sc Scenario) Result {
	ch := channel.WithCriticalSections[record](sc.Capacity)
	s0, r := channel.Split(ch)

	var produced atomic.Int64
	start := time.Now()

	for p := 0; p < sc.Producers; p++ {
		s := s0.Clone()
		go func(id uint32) {
			defer s.Release()
			for i := 0; i < sc.ItemsPerProducer; i++ {
				if control.Stopped() {
					return
				}
				control.SignalActivity()
				rec := record{producer: id, seq: uint32(i), digest: stamp(id, uint32(i))}
				if err := s.Send(context.Background(), rec); err != nil {
					return // channel terminated under us
				}
				produced.Add(1)
			}
		}(uint32(p))
	}
	s0.Release()

	res := Result{Scenario: sc.Name}
	nextSeq := make([]uint32, sc.Producers)
	for {
		rec, err := r.Recv(context.Background())
		if err != nil {
			break // end of stream: every producer released
		}
		res.Delivered++
		if rec.seq != nextSeq[rec.producer] {
			res.OrderViolations++
			nextSeq[rec.producer] = rec.seq // resync to keep counting useful
		}
		nextSeq[rec.producer]++
		if rec.digest != stamp(rec.producer, rec.seq) {
			res.DigestMismatch++
		}
	}
	r.Release()

	res.Produced = int(produced.Load())
	res.ElapsedMicros = time.Since(start).Microseconds()
	res.Aborted = control.Stopped()
	return res
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PROGRESS SINGLETON
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Progress is the per-scenario completion event the harness publishes
// for the reporting loop in main.
type Progress struct {
	Scenario      string
	Delivered     int
	ElapsedMicros int64
}

var (
	progressOnce sync.Once
	progressCh   *channel.Channel[Progress]
	progressSnd  *channel.Sender[Progress]
	progressRcv  *channel.Receiver[Progress]
)

// ProgressHandles returns the process-wide progress channel endpoints,
// creating them on first use.  The channel lives for the process
// lifetime; repeat calls return the same handles, so the one-receiver
// contract is never violated by re-initialization.
func ProgressHandles() (*channel.Sender[Progress], *channel.Receiver[Progress]) {
	progressOnce.Do(func() {
		progressCh = channel.WithCriticalSections[Progress](8)
		progressSnd, progressRcv = channel.Split(progressCh)
	})
	return progressSnd, progressRcv
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RESULT PERSISTENCE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

const resultsSchema = `CREATE TABLE IF NOT EXISTS soak_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_at INTEGER NOT NULL,
	scenario TEXT NOT NULL,
	produced INTEGER NOT NULL,
	delivered INTEGER NOT NULL,
	order_violations INTEGER NOT NULL,
	digest_mismatches INTEGER NOT NULL,
	elapsed_micros INTEGER NOT NULL,
	aborted INTEGER NOT NULL
)`

// PersistResults appends the run's results to the sqlite database at
// dbPath, creating the schema on first use.  One transaction per run.
func PersistResults(dbPath string, results []Result) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(resultsSchema); err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO soak_results
		(run_at, scenario, produced, delivered, order_violations, digest_mismatches, elapsed_micros, aborted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, res := range results {
		aborted := 0
		if res.Aborted {
			aborted = 1
		}
		if _, err := stmt.Exec(now, res.Scenario, res.Produced, res.Delivered,
			res.OrderViolations, res.DigestMismatch, res.ElapsedMicros, aborted); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// WriteReport serializes the results to a JSON summary at path.
func WriteReport(path string, results []Result) error {
	data, err := sonnet.Marshal(results)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
