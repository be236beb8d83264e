package migrate

import (
	"context"
	"fmt"

	"github.com/systmms/vaultmig/internal/logging"
	"github.com/systmms/vaultmig/pkg/secretstore"
)

// Status classifies the outcome of one plan entry.
type Status string

const (
	// StatusWouldMigrate is the dry-run outcome: no I/O was issued.
	StatusWouldMigrate Status = "would-migrate"
	// StatusMigrated means written to the destination and destroyed at
	// the source.
	StatusMigrated Status = "migrated"
	// StatusSourceMissing means the source no longer exists, typically
	// because an earlier run already migrated it. Nothing was written.
	StatusSourceMissing Status = "source-missing"
	// StatusFailed means the entry did not complete; Err carries the
	// cause. The source is only ever deleted after a confirmed write.
	StatusFailed Status = "failed"
)

// Result is the outcome for one source path.
type Result struct {
	Source      string
	Destination string
	Status      Status
	Err         error
}

// Report lists the outcome of every plan entry, in plan order.
type Report struct {
	Results []Result
}

// Failed returns the number of failed entries.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			n++
		}
	}
	return n
}

// Migrated returns the number of fully migrated entries.
func (r *Report) Migrated() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusMigrated {
			n++
		}
	}
	return n
}

// Executor applies a plan against the store, one entry at a time, in
// plan order. Failures are per-secret: a failed entry never stops the
// remaining ones, and a source is never deleted without a confirmed
// write of its replacement.
type Executor struct {
	store   secretstore.Store
	logger  *logging.Logger
	metrics *Metrics
}

// NewExecutor creates an executor over store.
func NewExecutor(store secretstore.Store, logger *logging.Logger, metrics *Metrics) *Executor {
	return &Executor{store: store, logger: logger, metrics: metrics}
}

// Execute applies plan. With dryRun set it only reports what would
// happen and issues no store call at all.
//
// Re-running a plan is safe: each entry starts with a probe read of the
// source, so entries whose delete already succeeded report
// source-missing and leave the destination untouched, while entries
// whose write failed are retried from the still-present source. The
// probe's freshly read value-map is what gets written, so a re-run
// never resurrects stale plan data.
func (e *Executor) Execute(ctx context.Context, plan *Plan, dryRun bool) *Report {
	report := &Report{Results: make([]Result, 0, plan.Len())}

	for _, entry := range plan.Entries {
		result := Result{Source: entry.Source, Destination: entry.Destination}

		if dryRun {
			e.logger.Info("would migrate %s -> %s", entry.Source, entry.Destination)
			result.Status = StatusWouldMigrate
			report.Results = append(report.Results, result)
			continue
		}

		result.Status, result.Err = e.migrateOne(ctx, entry)
		switch result.Status {
		case StatusMigrated:
			e.metrics.RecordMigrated()
			e.logger.Info("migrated %s -> %s", entry.Source, entry.Destination)
		case StatusSourceMissing:
			e.logger.Debug("source %s is gone, nothing to migrate", entry.Source)
		case StatusFailed:
			e.metrics.RecordFailed()
			e.logger.Error("failed to migrate %s: %v", entry.Source, result.Err)
		}
		report.Results = append(report.Results, result)
	}

	return report
}

func (e *Executor) migrateOne(ctx context.Context, entry PlanEntry) (Status, error) {
	values, err := e.store.Read(ctx, entry.Source)
	if err != nil {
		if secretstore.IsNotFound(err) {
			return StatusSourceMissing, nil
		}
		return StatusFailed, fmt.Errorf("reading %s: %w", entry.Source, err)
	}

	if _, err := e.store.Write(ctx, entry.Destination, values); err != nil {
		return StatusFailed, fmt.Errorf("writing %s: %w", entry.Destination, err)
	}

	if err := e.store.Delete(ctx, entry.Source); err != nil && !secretstore.IsNotFound(err) {
		// Destination holds the secret, source still does too; the
		// next run retries the delete.
		return StatusFailed, fmt.Errorf("deleting %s after successful write: %w", entry.Source, err)
	}
	return StatusMigrated, nil
}
