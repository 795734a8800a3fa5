// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Soak-harness tunables and artifact paths
//
// Purpose:
//   - Defines the compiled-in defaults the harness falls back to when no
//     scenario configuration file is present.
//   - Centralizes artifact locations (results database, JSON report).
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Default Scenario ─────────────────────────────

const (
	// DefaultCapacity keeps the ring small enough that producers hit
	// backpressure constantly, which is the behavior under test.
	DefaultCapacity = 4

	// DefaultProducers exercises the shared producer-waker slot: every
	// producer beyond the first forces supersede churn when the buffer
	// saturates.
	DefaultProducers = 8

	// DefaultItemsPerProducer bounds a scenario to a few thousand
	// hand-offs so the full suite finishes in seconds.
	DefaultItemsPerProducer = 2000
)

// ───────────────────────────── Artifact Paths ───────────────────────────────

const (
	// ConfigPath is the optional JSON scenario file; absence selects the
	// compiled-in defaults above.
	ConfigPath = "soak_scenarios.json"

	// ResultsDBPath is the sqlite database soak results accumulate in.
	ResultsDBPath = "soak_results.db"

	// ReportPath is the JSON summary written after each run.
	ReportPath = "soak_report.json"
)
