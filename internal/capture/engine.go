package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nicofix/internal/fixtures"
	"github.com/desertthunder/nicofix/internal/nicovideo"
	"github.com/desertthunder/nicofix/internal/shared"
	"golang.org/x/time/rate"
)

// EngineOpts contains configuration for a capture run.
type EngineOpts struct {
	FixturesDir string        // root of fixtures/<category>/<name>.json
	MappingDir  string        // type mapping and manifest output (default: parent of FixturesDir)
	Limit       int           // max items kept in list results; 0 keeps all
	Delay       time.Duration // minimum time between API calls; 0 disables pacing
	FailFast    bool          // abort on the first failed target
	Raw         bool          // skip field stabilization
	Rules       []Rule        // extra stabilize rules, checked before the defaults
	RunID       string        // default: random uuid
	Logger      *log.Logger
	Now         func() time.Time
}

// TargetResult is the outcome of one target.
type TargetResult struct {
	Target  Target
	Path    string
	Type    nicovideo.TypeRef
	Change  fixtures.Status
	Err     error
	Skipped bool
}

// RunResult contains everything produced by [Engine.Run].
type RunResult struct {
	RunID        string
	User         *nicovideo.NicoUser
	Results      []TargetResult
	Saved        int
	Failed       int
	Skipped      int
	Summary      fixtures.Summary
	Mapping      fixtures.Mapping
	MappingPath  string
	ManifestPath string
}

// Failures returns the results of failed targets.
func (r *RunResult) Failures() []TargetResult {
	var out []TargetResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Err reports an incomplete run: any failed or skipped target.
func (r *RunResult) Err() error {
	if r.Failed == 0 && r.Skipped == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d targets failed, %d skipped", shared.ErrCaptureIncomplete, r.Failed, len(r.Results), r.Skipped)
}

// Engine captures targets sequentially through a [nicovideo.Client].
type Engine struct {
	client     nicovideo.Client
	opts       EngineOpts
	logger     *log.Logger
	limiter    *rate.Limiter
	stabilizer *Stabilizer
	saver      *fixtures.Saver
	collector  *TypeMappingCollector
}

// NewEngine creates an Engine writing fixtures as configured by opts.
func NewEngine(client nicovideo.Client, opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RunID == "" {
		opts.RunID = shared.GenerateID()
	}
	if opts.MappingDir == "" {
		opts.MappingDir = filepath.Dir(opts.FixturesDir)
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}

	return &Engine{
		client:     client,
		opts:       opts,
		logger:     shared.WithLogger(opts.Logger, "run", opts.RunID),
		limiter:    rate.NewLimiter(limit, 1),
		stabilizer: NewStabilizer(opts.Rules...),
		saver:      fixtures.NewSaver(opts.FixturesDir, opts.Logger),
		collector:  NewTypeMappingCollector(),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run validates targets, verifies the session and captures every target in order.
//
// A failed target is logged and recorded while the run continues, unless FailFast is set.
// Filesystem errors, login failures and cancellation always abort. Except after a failed
// login, the mapping and manifest are still written for whatever was captured. The returned
// error is non-nil only for an aborted run; partial failures are reported by [RunResult.Err].
func (e *Engine) Run(ctx context.Context, targets []Target, progress chan<- ProgressUpdate) (*RunResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: client not initialized", shared.ErrNotAuthenticated)
	}
	if err := Validate(targets); err != nil {
		return nil, err
	}

	started := e.opts.Now()
	result := &RunResult{RunID: e.opts.RunID, Results: make([]TargetResult, 0, len(targets))}

	e.sendProgress(progress, loginUpdate())
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	user, err := e.client.Login(ctx)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: login returned no user", shared.ErrNotAuthenticated)
	}
	result.User = user
	e.logger.Info("logged in", "user", user.ID, "nickname", user.Nickname, "targets", len(targets))

	var abort error
	total := len(targets)
	for i, t := range targets {
		if abort != nil {
			result.Results = append(result.Results, TargetResult{Target: t, Skipped: true})
			result.Skipped++
			continue
		}

		e.sendProgress(progress, captureUpdate(i+1, total, t))

		if err := e.limiter.Wait(ctx); err != nil {
			abort = err
			result.Results = append(result.Results, TargetResult{Target: t, Skipped: true})
			result.Skipped++
			continue
		}

		res := e.capture(ctx, t)
		result.Results = append(result.Results, res)

		if res.Err == nil {
			result.Saved++
			e.sendProgress(progress, savedUpdate(i+1, total, t, string(res.Change)))
			continue
		}

		result.Failed++
		e.logger.Error("capture failed", "target", t.Key(), "operation", t.Operation, "error", res.Err)
		e.sendProgress(progress, failedUpdate(i+1, total, t, res.Err))

		switch {
		case errors.Is(res.Err, shared.ErrFilesystem):
			abort = res.Err
		case ctx.Err() != nil:
			abort = ctx.Err()
		case e.opts.FailFast:
			abort = fmt.Errorf("fail-fast: %w", res.Err)
		}
	}

	// Fixtures written before an abort still need their mapping entries.
	e.sendProgress(progress, mappingUpdate(len(e.collector.Mapping())))
	if err := e.finalize(result, started); err != nil {
		e.logger.Error("could not write mapping or manifest", "error", err)
		abort = errors.Join(abort, err)
	}

	result.Summary = e.saver.Tracker().Summary()
	e.saver.Tracker().LogSummary()
	e.sendProgress(progress, doneUpdate(result.Saved, result.Failed))

	if abort != nil {
		return result, abort
	}
	return result, nil
}

// capture runs a single target: call, truncate, stabilize, record type, save.
func (e *Engine) capture(ctx context.Context, t Target) TargetResult {
	res := TargetResult{Target: t}
	logger := shared.WithLogger(e.logger, "category", t.Category, "name", t.Name)

	op, ok := Lookup(t.Operation)
	if !ok {
		res.Err = fmt.Errorf("%w: %s", shared.ErrUnknownOperation, t.Operation)
		return res
	}

	logger.Debug("calling", "operation", t.Operation, "params", t.Params)
	resp, err := op.Call(ctx, e.client, t.Params)
	if err != nil {
		res.Err = err
		return res
	}
	if nicovideo.IsEmpty(resp) {
		res.Err = fmt.Errorf("%w: %s returned nothing", shared.ErrNoData, t.Operation)
		return res
	}

	if tr, ok := resp.(nicovideo.Truncater); ok {
		if e.opts.Limit > 0 && tr.Len() > e.opts.Limit {
			logger.Debug("truncating list", "from", tr.Len(), "to", e.opts.Limit)
		}
		resp = tr.Truncate(e.opts.Limit)
	}

	if !e.opts.Raw {
		if resp, err = e.stabilizer.Stabilize(resp); err != nil {
			res.Err = err
			return res
		}
	}

	data, err := fixtures.Encode(resp)
	if err != nil {
		res.Err = err
		return res
	}

	path, change, err := e.saver.Save(string(t.Category), t.Name, data)
	res.Path = path
	if err != nil {
		res.Err = err
		return res
	}

	res.Type = e.collector.Record(t, resp)
	res.Change = change.Status
	logger.Debug("recorded type", "type", res.Type.String())
	return res
}

// finalize writes the type mapping files and the run manifest.
//
// Entries from an existing mapping file are kept so partial runs do not drop other categories.
func (e *Engine) finalize(result *RunResult, started time.Time) error {
	dir := e.opts.MappingDir
	result.MappingPath = filepath.Join(dir, fixtures.MappingJSONFile)
	result.ManifestPath = filepath.Join(dir, fixtures.ManifestFile)

	mapping, err := fixtures.LoadMapping(result.MappingPath)
	if err != nil {
		e.logger.Warn("ignoring unreadable type mapping", "path", result.MappingPath, "error", err)
		mapping = fixtures.Mapping{}
	}
	mapping.Merge(e.collector.Mapping())
	result.Mapping = mapping

	if len(mapping) > 0 {
		if err := mapping.WriteJSON(result.MappingPath); err != nil {
			return err
		}
		goPath := filepath.Join(dir, fixtures.MappingGoFile)
		if err := mapping.WriteGo(goPath); err != nil {
			return err
		}
		e.logger.Info("generated type mapping", "path", result.MappingPath, "source", goPath, "entries", len(mapping))
	}

	manifest := &fixtures.Manifest{
		RunID:       result.RunID,
		StartedAt:   started,
		FinishedAt:  e.opts.Now(),
		FixturesDir: e.opts.FixturesDir,
		Entries:     make([]fixtures.ManifestEntry, 0, len(result.Results)),
	}
	for _, res := range result.Results {
		entry := fixtures.ManifestEntry{
			Key:       res.Target.Key(),
			Category:  string(res.Target.Category),
			Name:      res.Target.Name,
			Operation: res.Target.Operation,
			Status:    fixtures.EntrySaved,
			Change:    res.Change,
		}
		switch {
		case res.Skipped:
			entry.Status = fixtures.EntrySkipped
		case res.Err != nil:
			entry.Status = fixtures.EntryFailed
			entry.Error = res.Err.Error()
		default:
			entry.Type = res.Type.String()
		}
		manifest.Entries = append(manifest.Entries, entry)
	}

	if err := manifest.Write(result.ManifestPath); err != nil {
		return err
	}
	return nil
}
