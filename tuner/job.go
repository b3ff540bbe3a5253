package tuner

import (
	"context"
	"database/sql"

	"github.com/benbjohnson/clock"

	"github.com/dbrainlab/autoindex/advisor"
	"github.com/dbrainlab/autoindex/optimizer"
	"github.com/dbrainlab/autoindex/utils"
)

// JobDeps are the collaborators of a tuning job. Clock defaults to the wall
// clock when nil.
type JobDeps struct {
	History   QueryHistory
	Schemas   SchemaLoader
	Indexes   IndexCatalog
	Commands  IndexCommands
	Optimizer optimizer.WhatIfOptimizer
	Clock     clock.Clock
}

// Job periodically reads fresh query history and, once enough has
// accumulated, replaces the database's secondary indexes with the advisor's
// recommendation.
type Job struct {
	settings      Settings
	defaultSchema string
	deps          JobDeps

	lastTimestamp int64 // high-water mark over processed history entries
}

// NewJob creates a tuning job.
func NewJob(settings Settings, defaultSchema string, deps JobDeps) *Job {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	return &Job{settings: settings, defaultSchema: defaultSchema, deps: deps}
}

// NewJobFromDB wires a job's history, schema, index-catalog and command
// collaborators to one database connection.
func NewJobFromDB(settings Settings, defaultSchema string, db *sql.DB, opt optimizer.WhatIfOptimizer) *Job {
	return NewJob(settings, defaultSchema, JobDeps{
		History:   NewQueryHistory(db),
		Schemas:   NewSchemaLoader(db),
		Indexes:   NewIndexCatalog(db, defaultSchema),
		Commands:  NewIndexCommands(db),
		Optimizer: opt,
	})
}

// LastTimestamp returns the current high-water mark.
func (j *Job) LastTimestamp() int64 {
	return j.lastTimestamp
}

// Run loops Tick every wait interval until the context is cancelled. Tick
// errors are logged; the next tick retries.
func (j *Job) Run(ctx context.Context) error {
	if !j.settings.BrainEnabled {
		utils.Infof("automatic index tuning is disabled")
		return nil
	}
	ticker := j.deps.Clock.Ticker(j.settings.WaitInterval.Duration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := j.Tick(ctx); err != nil {
				utils.Errorf("index tuning pass failed: %v", err)
			}
		}
	}
}

// Tick performs one tuning pass: read fresh history, gate on the query
// threshold, drop the existing indexes, recommend, create, and advance the
// high-water timestamp.
func (j *Job) Tick(ctx context.Context) error {
	records, err := j.deps.History.QueriesAfter(j.lastTimestamp)
	if err != nil {
		return err
	}
	if len(records) <= j.settings.NumQueriesThreshold {
		utils.Infof("tuning threshold not crossed (%v/%v new queries), not this time",
			len(records), j.settings.NumQueriesThreshold)
		return nil
	}
	utils.Infof("tuning threshold crossed with %v new queries, time to tune", len(records))

	w := buildWorkload(j.defaultSchema, records)
	if w.Size() == 0 {
		j.lastTimestamp = maxTimestamp(records)
		return nil
	}

	catalog, err := j.deps.Schemas.LoadCatalog(w)
	if err != nil {
		return err
	}

	// Existing indexes would distort the what-if costs, drop them first.
	// Drop and create commands are fire-and-forget: failures are logged and
	// retried naturally by a later pass.
	existing, err := j.deps.Indexes.ExistingIndexes()
	if err != nil {
		return err
	}
	for _, idx := range existing {
		if err := j.deps.Commands.DropIndex(idx.SchemaName, idx.TableName, idx.IndexName); err != nil {
			utils.Errorf("drop index %v on %v.%v failed: %v", idx.IndexName, idx.SchemaName, idx.TableName, err)
		}
	}

	recommendation, err := advisor.BestIndexes(ctx, j.deps.Optimizer, catalog, w, j.settings.Knobs())
	if err != nil {
		return err
	}
	for _, idx := range recommendation.List() {
		hypo := idx.Hypo()
		if err := j.deps.Commands.CreateIndex(hypo); err != nil {
			utils.Errorf("create index failed: %v: %v", hypo.DDL(), err)
		}
	}

	j.lastTimestamp = maxTimestamp(records)
	utils.Infof("recommended %v indexes: %v", recommendation.Count(), recommendation)
	return nil
}

func maxTimestamp(records []QueryRecord) int64 {
	ts := int64(0)
	for _, r := range records {
		ts = utils.Max(ts, r.Timestamp)
	}
	return ts
}
