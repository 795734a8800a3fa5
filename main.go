// ════════════════════════════════════════════════════════════════════════════════════════════════
// Channel Soak Harness - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Fixed-Capacity MPSC Channel
// Component: Main Entry Point & Run Orchestration
//
// Description:
//   System orchestration with phased execution and clean separation of concerns.
//   Configuration → Soak Execution → Persistence → Drain-Then-Close Shutdown
//
// Architecture:
//   - Phase 0: Scenario configuration and progress channel bring-up
//   - Phase 1: Soak execution across all configured scenarios
//   - Phase 2: Result persistence (sqlite) and JSON report
//   - Phase 3: Clean shutdown through the channel's own close protocol
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"main/constants"
	"main/control"
	"main/debug"
	"main/soakharvester"
	"main/utils"
)

// main orchestrates one complete soak run.  Each phase has a single
// responsibility; the progress channel threads through all of them and
// is shut down last, by the book: release the sender, drain to
// end-of-stream, release the receiver.
func main() {
	// PHASE 0: Configuration and progress channel bring-up
	debug.DropMessage("INIT", "Loading soak scenarios")
	cfg := soakharvester.LoadConfig(constants.ConfigPath)
	debug.DropValue("INIT", "scenarios:", len(cfg.Scenarios))

	sender, receiver := soakharvester.ProgressHandles()

	// Reporting loop: consumes progress events until end-of-stream.
	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		for {
			p, err := receiver.Recv(context.Background())
			if err != nil {
				return // channel closed and drained
			}
			debug.DropMessage("PROGRESS", p.Scenario+" delivered "+
				utils.Itoa(p.Delivered)+" items in "+utils.Itoa(int(p.ElapsedMicros))+"us")
			control.PollCooldown()
		}
	}()

	setupSignalHandling()

	// PHASE 1: Soak execution
	results := soakharvester.ExecuteSoak(cfg)
	clean := true
	for _, res := range results {
		if !res.Clean() {
			clean = false
			debug.DropMessage("FAULT", res.Scenario+": delivery or integrity mismatch")
		}
	}
	if clean {
		debug.DropMessage("SOAK", "All scenarios clean")
	}

	// PHASE 2: Persistence and report
	if err := soakharvester.PersistResults(constants.ResultsDBPath, results); err != nil {
		debug.DropError("PERSIST_ERROR", err)
	}
	if err := soakharvester.WriteReport(constants.ReportPath, results); err != nil {
		debug.DropError("REPORT_ERROR", err)
	}

	// PHASE 3: Clean shutdown of the progress channel.  Releasing the
	// last sender starts Closing; the reporter drains buffered events
	// and observes end-of-stream; no progress message is lost.
	sender.Release()
	<-reporterDone
	receiver.Release()

	if !clean {
		os.Exit(1)
	}
	debug.DropMessage("DONE", "Soak run complete")
}

// setupSignalHandling configures graceful shutdown coordination.  The
// handler only flips the control flag; producers notice it, release
// their handles, and the normal drain path finishes the run.
func setupSignalHandling() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		debug.DropMessage("SIGNAL", "Received interrupt, shutting down...")
		control.Shutdown()
	}()
}
