// Package driver runs one batch pass: it walks the case matrix, solves
// each row through a flowsheet engine, grades the result, and persists
// the outcome. The driver owns engine lifecycle and restart policy; the
// writer owns transactional persistence.
package driver

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/reformlab/reformer/internal/biooil"
	"github.com/reformlab/reformer/internal/checkpoint"
	"github.com/reformlab/reformer/internal/event"
	"github.com/reformlab/reformer/internal/flowsheet"
	"github.com/reformlab/reformer/internal/matrix"
	"github.com/reformlab/reformer/internal/metrics"
	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/internal/results"
	"github.com/reformlab/reformer/internal/run"
	"github.com/reformlab/reformer/internal/simulator"
	"github.com/reformlab/reformer/internal/simulator/cache"
	"github.com/reformlab/reformer/internal/validator"
	"github.com/reformlab/reformer/internal/worker"
	pkgflowsheet "github.com/reformlab/reformer/pkg/flowsheet"
	"github.com/reformlab/reformer/pkg/log"
	"gorm.io/gorm"
)

// Skip sources recorded on bypassed rows.
const (
	skipCheckpoint = "checkpoint"
	skipDatabase   = "database"
)

// Config parameterizes one batch pass.
type Config struct {
	// Input is the path to the case matrix CSV.
	Input string
	// Model selects the flowsheet: a registry name, a file path, or
	// empty for the built-in model.
	Model string

	BatchSize    int
	MaxFailures  int
	Workers      int
	SolveTimeout time.Duration
	// Pause is the delay inserted at every interval restart, letting the
	// solver license settle between batches.
	Pause time.Duration

	// CheckpointPath defaults to <input>.checkpoint.json.
	CheckpointPath string
	Resume         bool
	Limit          int
	DryRun         bool
	CacheDir       string
}

func (c *Config) withDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = 5
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.SolveTimeout <= 0 {
		c.SolveTimeout = 300 * time.Second
	}
	if strings.TrimSpace(c.CheckpointPath) == "" {
		c.CheckpointPath = c.Input + ".checkpoint.json"
	}
}

// Summary is the outcome of one pass.
type Summary struct {
	BatchID   string `json:"batch_id,omitempty"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Converged int    `json:"converged"`
	Failed    int    `json:"failed"`
	Warning   int    `json:"warning"`
	Skipped   int    `json:"skipped"`
	DryRun    bool   `json:"dry_run,omitempty"`
}

// Succeeded reports whether the pass counts as a success: every planned
// row reached a terminal state and at least one converged.
func (s Summary) Succeeded() bool {
	if s.DryRun {
		return true
	}
	return s.Completed+s.Skipped == s.Total && s.Converged > 0
}

// Driver executes batch passes against one database.
type Driver struct {
	cfg      Config
	db       *gorm.DB
	bus      event.Bus
	store    *run.Store
	writer   *results.Writer
	importer *flowsheet.Importer
	cache    *cache.Store

	// mu serializes checkpoint and counter updates across workers.
	mu sync.Mutex
}

// New builds a driver. The result cache is opened lazily from
// Config.CacheDir; a driver without a cache dir solves every row.
func New(cfg Config, dbConn *gorm.DB, bus event.Bus) (*Driver, error) {
	cfg.withDefaults()

	d := &Driver{
		cfg:      cfg,
		db:       dbConn,
		bus:      bus,
		store:    run.Default(),
		writer:   results.NewWriter(dbConn),
		importer: flowsheet.NewImporter(dbConn),
	}

	if strings.TrimSpace(cfg.CacheDir) != "" {
		store, err := cache.Open(cfg.CacheDir)
		if err != nil {
			return nil, errors.Wrap(err, "open result cache")
		}
		d.cache = store
	}

	return d, nil
}

// WithStore replaces the live-progress store, used by tests to avoid the
// process-wide default.
func (d *Driver) WithStore(store *run.Store) *Driver {
	d.store = store
	return d
}

// Close releases the result cache if one is open.
func (d *Driver) Close() error {
	if d.cache == nil {
		return nil
	}
	return d.cache.Close()
}

// Run executes one pass over the configured matrix.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	rows, err := matrix.ReadFile(d.cfg.Input)
	if err != nil {
		return nil, errors.Wrap(err, "read matrix")
	}
	if d.cfg.Limit > 0 && d.cfg.Limit < len(rows) {
		rows = rows[:d.cfg.Limit]
	}
	if len(rows) == 0 {
		return nil, errors.New("matrix has no rows")
	}

	def, err := d.importer.Resolve(ctx, d.cfg.Model)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve model %q", d.cfg.Model)
	}
	version := def.Version
	if version == "" {
		version = pkgflowsheet.DefaultVersion
	}

	resume, err := d.resumeState(ctx)
	if err != nil {
		return nil, err
	}

	if d.cfg.DryRun {
		return d.plan(rows, resume), nil
	}

	batchID := uuid.NewString()
	pass := &models.BatchPass{
		ID:          batchID,
		Source:      d.cfg.Input,
		Fingerprint: matrix.Fingerprint(rows),
		Model:       def.Metadata.Name,
		Engine:      def.Engine,
		Status:      models.BatchRunning,
		Total:       len(rows),
		StartedAt:   time.Now().UTC(),
	}
	if err := d.db.WithContext(ctx).Create(pass).Error; err != nil {
		return nil, errors.Wrap(err, "create batch pass")
	}

	d.store.Start(batchID, d.cfg.Input, def.Metadata.Name, def.Engine, len(rows))
	d.bus.Publish(event.Event{
		Type:      event.TypeBatchStarted,
		BatchID:   batchID,
		Timestamp: time.Now().UTC(),
	})

	state := checkpoint.NewState(batchID)
	runErr := d.runRows(run.WithContext(ctx, batchID), batchID, def, version, rows, resume, state)

	summary := &Summary{
		BatchID:   batchID,
		Total:     len(rows),
		Completed: state.Completed,
		Converged: state.Converged,
		Failed:    state.Failed,
		Warning:   state.Warning,
		Skipped:   state.Skipped,
	}

	d.finish(ctx, batchID, summary, runErr)
	return summary, runErr
}

// resumeState loads what an interrupted pass already finished: the file
// checkpoint index and the terminal case keys in the database.
type resumeSet struct {
	lastIndex int
	terminal  map[string]struct{}
}

func (d *Driver) resumeState(ctx context.Context) (*resumeSet, error) {
	resume := &resumeSet{lastIndex: -1}
	if !d.cfg.Resume {
		return resume, nil
	}

	state, err := checkpoint.Load(d.cfg.CheckpointPath)
	if err != nil {
		return nil, errors.Wrap(err, "load checkpoint")
	}
	if state != nil {
		resume.lastIndex = state.LastIndex
	}

	terminal, err := d.writer.Terminal(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load terminal runs")
	}
	resume.terminal = terminal

	return resume, nil
}

func (r *resumeSet) skipSource(index int, row matrix.Row) (string, bool) {
	if index <= r.lastIndex {
		return skipCheckpoint, true
	}
	if r.terminal != nil {
		if _, ok := r.terminal[row.Key()]; ok {
			return skipDatabase, true
		}
	}
	return "", false
}

// plan reports what a pass would do without touching the engine or the
// database.
func (d *Driver) plan(rows []matrix.Row, resume *resumeSet) *Summary {
	summary := &Summary{Total: len(rows), DryRun: true}
	for i, row := range rows {
		if _, skip := resume.skipSource(i, row); skip {
			summary.Skipped++
		}
	}
	log.Info("dry run",
		"total", summary.Total,
		"to_solve", summary.Total-summary.Skipped,
		"to_skip", summary.Skipped,
	)
	return summary
}

func (d *Driver) runRows(ctx context.Context, batchID string, def *pkgflowsheet.Definition, version string, rows []matrix.Row, resume *resumeSet, state *checkpoint.State) error {
	indexes := make(chan int)
	pool := worker.New(d.cfg.Workers)

	feed := func(ctx context.Context) {
		defer close(indexes)
		for i := range rows {
			select {
			case indexes <- i:
			case <-ctx.Done():
				return
			}
		}
	}

	solve := func(ctx context.Context, _ int) error {
		sess := &session{driver: d, def: def}
		defer sess.close()

		for index := range indexes {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := d.processRow(ctx, sess, batchID, version, index, rows[index], resume, state); err != nil {
				return err
			}
		}
		return nil
	}

	feedCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go feed(feedCtx)

	return pool.Each(ctx, solve)
}

// processRow takes one matrix row through its full lifecycle. A solver
// failure is a terminal Failed row, not a pass error; only infrastructure
// failures (database, checkpoint) abort the pass.
func (d *Driver) processRow(ctx context.Context, sess *session, batchID, version string, index int, row matrix.Row, resume *resumeSet, state *checkpoint.State) error {
	if source, skip := resume.skipSource(index, row); skip {
		d.store.SkipCase(batchID, source)
		d.bus.Publish(event.Event{
			Type:      event.TypeRunSkipped,
			BatchID:   batchID,
			BiooilID:  row.BiooilID,
			Timestamp: time.Now().UTC(),
		})

		d.mu.Lock()
		state.Skip(index)
		err := checkpoint.Save(d.cfg.CheckpointPath, state)
		d.mu.Unlock()
		if err != nil {
			return errors.Wrap(err, "save checkpoint")
		}
		return d.bumpPass(ctx, batchID, "skipped")
	}

	d.store.StartCase(batchID, run.Case{
		Index:         index,
		CaseID:        row.CaseID,
		BiooilID:      row.BiooilID,
		TemperatureC:  row.TemperatureC,
		PressureBar:   row.PressureBar,
		SteamToCarbon: row.SteamToCarbon,
	})
	d.bus.Publish(event.Event{
		Type:      event.TypeRunStarted,
		BatchID:   batchID,
		BiooilID:  row.BiooilID,
		Timestamp: time.Now().UTC(),
	})

	sim, err := d.writer.Begin(ctx, row.BiooilID, version)
	if err != nil {
		return err
	}

	start := time.Now()
	result, solveErr := d.solveRow(ctx, sess, version, row)

	findings := validator.Check(result)
	status := validator.Status(result, findings)

	notes := ""
	if solveErr != nil {
		notes = solveErr.Error()
	}

	if err := d.writer.Complete(ctx, &results.CompleteRequest{
		Simulation: sim,
		Row:        row,
		Result:     result,
		Status:     status,
		Findings:   findings,
		Notes:      notes,
	}); err != nil {
		return err
	}

	d.observeRun(sess, status, result, time.Since(start))

	d.mu.Lock()
	state.Observe(index, sim.ID, status)
	err = checkpoint.Save(d.cfg.CheckpointPath, state)
	d.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "save checkpoint")
	}

	if err := d.bumpPass(ctx, batchID, caseColumn(status)); err != nil {
		return err
	}

	d.store.CompleteCase(batchID, index, sim.ID, status, notes)
	d.publishTerminal(batchID, sim.ID, row.BiooilID, status, result)

	return sess.applyFailurePolicy(ctx, status)
}

// solveRow returns the solver result for one row, consulting the cache
// first. A nil result with an error means the solve itself broke down.
func (d *Driver) solveRow(ctx context.Context, sess *session, version string, row matrix.Row) (*simulator.Result, error) {
	modelKey := sess.def.Metadata.Name + "@" + version

	if d.cache != nil {
		cached, err := d.cache.Get(modelKey, row.Key())
		switch {
		case err == nil:
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			return cached, nil
		case errors.Is(err, cache.ErrMiss):
			metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		default:
			return nil, errors.Wrap(err, "cache lookup")
		}
	}

	result, err := sess.solve(ctx, row, d.cfg.SolveTimeout)
	if err != nil {
		return result, err
	}

	if d.cache != nil && result != nil && result.Converged {
		if err := d.cache.Put(modelKey, row.Key(), result); err != nil {
			log.Warn("cache store failed", "case", row.Key(), "error", err)
		}
	}

	return result, nil
}

func (d *Driver) observeRun(sess *session, status models.ConvergenceStatus, result *simulator.Result, elapsed time.Duration) {
	metrics.SimulationDurationSeconds.
		WithLabelValues(sess.def.Engine, string(status)).
		Observe(elapsed.Seconds())

	if result != nil && result.Converged {
		if yield, ok := result.Product["h2_yield_kg"]; ok {
			metrics.H2YieldKg.WithLabelValues(string(status)).Observe(yield)
		}
	}
}

func (d *Driver) publishTerminal(batchID string, simID, biooilID int64, status models.ConvergenceStatus, result *simulator.Result) {
	evt := event.Event{
		BatchID:      batchID,
		SimulationID: simID,
		BiooilID:     biooilID,
		Timestamp:    time.Now().UTC(),
	}

	switch status {
	case models.StatusConverged:
		evt.Type = event.TypeRunConverged
	case models.StatusWarning:
		evt.Type = event.TypeRunWarning
	default:
		evt.Type = event.TypeRunFailed
	}

	if result != nil && result.Converged {
		payload, err := json.Marshal(map[string]float64{
			"h2_yield_kg":        result.Product["h2_yield_kg"],
			"mass_error_percent": result.MassErrorPercent,
		})
		if err == nil {
			evt.Payload = payload
		}
	}

	d.bus.Publish(evt)
}

// caseColumn maps a terminal status onto its BatchPass counter column.
func caseColumn(status models.ConvergenceStatus) string {
	switch status {
	case models.StatusConverged:
		return "converged"
	case models.StatusWarning:
		return "warning"
	default:
		return "failed"
	}
}

// bumpPass increments the pass counters in place, so a crashed pass still
// shows how far it got.
func (d *Driver) bumpPass(ctx context.Context, batchID, column string) error {
	updates := map[string]interface{}{
		column: gorm.Expr(column+" + ?", 1),
	}
	if column != "skipped" {
		updates["completed"] = gorm.Expr("completed + ?", 1)
	}
	return d.db.WithContext(ctx).
		Model(&models.BatchPass{}).
		Where("id = ?", batchID).
		Updates(updates).Error
}

func (d *Driver) finish(ctx context.Context, batchID string, summary *Summary, runErr error) {
	status := models.BatchCompleted
	evtType := event.TypeBatchCompleted
	if runErr != nil {
		status = models.BatchFailed
		evtType = event.TypeBatchFailed
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":       status,
		"completed_at": now,
	}
	if err := d.db.WithContext(ctx).
		Model(&models.BatchPass{}).
		Where("id = ?", batchID).
		Updates(updates).Error; err != nil {
		log.Error("finalize batch pass", "batch_id", batchID, "error", err)
	}

	d.store.Complete(batchID, runErr)
	d.bus.Publish(event.Event{
		Type:      evtType,
		BatchID:   batchID,
		Timestamp: now,
	})

	log.Info("batch pass finished",
		"batch_id", batchID,
		"status", string(status),
		"completed", summary.Completed,
		"converged", summary.Converged,
		"failed", summary.Failed,
		"warning", summary.Warning,
		"skipped", summary.Skipped,
	)
}

// session owns one engine instance and its restart bookkeeping. Sessions
// are confined to a single worker goroutine.
type session struct {
	driver *Driver
	def    *pkgflowsheet.Definition

	engine              simulator.Engine
	sinceRestart        int
	consecutiveFailures int
}

func (s *session) ensure(ctx context.Context) error {
	if s.engine != nil {
		return nil
	}

	engine, err := simulator.New(s.def.Engine)
	if err != nil {
		return err
	}
	if err := engine.Load(ctx, s.def); err != nil {
		_ = engine.Close()
		return errors.Wrap(err, "load model")
	}

	s.engine = engine
	s.sinceRestart = 0
	return nil
}

func (s *session) restart(ctx context.Context, reason string) error {
	if s.engine != nil {
		if err := s.engine.Close(); err != nil {
			log.Warn("engine close failed", "engine", s.def.Engine, "error", err)
		}
		s.engine = nil
	}

	metrics.EngineRestartsTotal.WithLabelValues(s.def.Engine, reason).Inc()
	log.Info("engine restart", "engine", s.def.Engine, "reason", reason)

	return s.ensure(ctx)
}

func (s *session) close() {
	if s.engine == nil {
		return
	}
	if err := s.engine.Close(); err != nil {
		log.Warn("engine close failed", "engine", s.def.Engine, "error", err)
	}
	s.engine = nil
}

// applyFailurePolicy reinitializes the engine after a run of consecutive
// failures or after a full batch of rows, whichever comes first.
func (s *session) applyFailurePolicy(ctx context.Context, status models.ConvergenceStatus) error {
	if status == models.StatusFailed {
		s.consecutiveFailures++
	} else {
		s.consecutiveFailures = 0
	}

	switch {
	case s.consecutiveFailures >= s.driver.cfg.MaxFailures:
		s.consecutiveFailures = 0
		return s.restart(ctx, "failures")
	case s.sinceRestart >= s.driver.cfg.BatchSize:
		if pause := s.driver.cfg.Pause; pause > 0 {
			select {
			case <-time.After(pause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return s.restart(ctx, "interval")
	default:
		return nil
	}
}

// solve pushes one row through the engine: normalized composition,
// conditions, derived steam feed, fixed setpoints.
func (s *session) solve(ctx context.Context, row matrix.Row, timeout time.Duration) (*simulator.Result, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	s.sinceRestart++

	normalized, err := biooil.Normalize(row.Fractions())
	if err != nil {
		return nil, errors.Wrapf(err, "biooil %d", row.BiooilID)
	}

	for name, path := range s.def.Inputs.Fractions {
		if err := s.engine.SetInput(path, normalized[name]); err != nil {
			return nil, errors.Wrapf(err, "set fraction %s", name)
		}
	}
	inputs := map[string]float64{
		s.def.Inputs.FeedRate:    row.FeedRateKgh,
		s.def.Inputs.SteamRate:   row.SteamRateKgh,
		s.def.Inputs.Temperature: row.TemperatureC,
		s.def.Inputs.Pressure:    row.PressureBar,
	}
	for path, value := range inputs {
		if err := s.engine.SetInput(path, value); err != nil {
			return nil, errors.Wrapf(err, "set input %s", path)
		}
	}
	setpoints := map[string]float64{
		"hts_temperature_c": matrix.HTSTemperatureC,
		"lts_temperature_c": matrix.LTSTemperatureC,
		"psa_pressure_bar":  matrix.PSAPressureBar,
	}
	for name, path := range s.def.Inputs.Setpoints {
		if err := s.engine.SetInput(path, setpoints[name]); err != nil {
			return nil, errors.Wrapf(err, "set setpoint %s", name)
		}
	}

	solveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.engine.Run(solveCtx); err != nil {
		// A broken solve leaves the session in an unknown state; the
		// next row starts from a fresh engine.
		if restartErr := s.restart(ctx, "error"); restartErr != nil {
			log.Error("engine restart after solve error failed",
				"engine", s.def.Engine, "error", restartErr)
		}
		return nil, errors.Wrap(err, "solve")
	}

	return simulator.Collect(s.engine, s.def)
}
