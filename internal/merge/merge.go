// Package merge copies selected pages from the input documents listed in a
// selector file into one output PDF.
package merge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfsm/internal/filetype"
	"github.com/local/pdfsm/internal/inputs"
	"github.com/local/pdfsm/internal/metrics"
	"github.com/local/pdfsm/internal/pdfdoc"
	"github.com/local/pdfsm/internal/repair"
	"github.com/local/pdfsm/internal/selector"
)

// Status is the final outcome of a run.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusWithErrors Status = "success with errors"
	StatusFailed     Status = "failed"
)

var (
	// ErrFatalOpen aborts a run: an input could not be opened even after repair.
	ErrFatalOpen = errors.New("input could not be opened")
	// ErrSave aborts a run: the output could not be written.
	ErrSave = errors.New("output could not be saved")
	// ErrIncompleteRun is returned when one of the three paths is missing.
	ErrIncompleteRun = errors.New("selector file, input directory and output file are all required")
)

// Run is the immutable configuration of one merge.
type Run struct {
	SelectorFile string
	InputDir     string
	OutputFile   string
	// OnLog, when set, receives each run log line as it is appended.
	OnLog func(line string)
}

// Ready reports whether all three paths are set.
func (r Run) Ready() bool {
	return r.SelectorFile != "" && r.InputDir != "" && r.OutputFile != ""
}

// Result describes a finished run.
type Result struct {
	RunID      string        `json:"run_id"`
	Status     Status        `json:"status"`
	Pages      int           `json:"pages"`
	HadErrors  bool          `json:"had_errors"`
	Saved      bool          `json:"saved"`
	OutputFile string        `json:"output_file,omitempty"`
	Log        []string      `json:"log"`
	Duration   time.Duration `json:"duration_ns"`
}

// TypeDetector sniffs the real type of an input file.
type TypeDetector interface {
	Detect(path string) (*filetype.Info, error)
}

// Dependencies are the collaborators of a Merger.
type Dependencies struct {
	Backend  pdfdoc.Backend
	Repairer repair.Repairer
	// Detector is optional. It only annotates the repair message of an
	// input that failed to open.
	Detector TypeDetector
	Inputs   inputs.Options
}

// Merger runs merges one at a time.
type Merger struct {
	deps Dependencies
	mu   sync.Mutex
}

// New returns a Merger.
func New(deps Dependencies) *Merger {
	return &Merger{deps: deps}
}

// TryMerge is Merge that refuses to wait for a run already in progress.
func (m *Merger) TryMerge(ctx context.Context, run Run) (*Result, bool, error) {
	if !m.mu.TryLock() {
		return nil, false, nil
	}
	defer m.mu.Unlock()
	res, err := m.merge(ctx, run)
	return res, true, err
}

// Merge performs one run. The returned Result is never nil; a non-nil
// error means the run aborted (fatal open, save failure or bad arguments).
func (m *Merger) Merge(ctx context.Context, run Run) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.merge(ctx, run)
}

func (m *Merger) merge(ctx context.Context, run Run) (*Result, error) {
	r := &runner{
		deps: m.deps,
		run:  run,
		res:  &Result{RunID: uuid.NewString(), Log: []string{}},
	}
	r.logger = log.With().Str("run_id", r.res.RunID).Logger()
	start := time.Now()

	err := r.execute(ctx)

	r.res.Duration = time.Since(start)
	switch {
	case err != nil || !r.res.Saved:
		r.res.Status = StatusFailed
	case r.res.HadErrors:
		r.res.Status = StatusWithErrors
	default:
		r.res.Status = StatusSuccess
	}
	metrics.ObserveRun(string(r.res.Status), r.res.Duration)
	r.logger.Info().
		Str("status", string(r.res.Status)).
		Int("pages", r.res.Pages).
		Dur("duration", r.res.Duration).
		Err(err).
		Msg("merge finished")
	return r.res, err
}

type runner struct {
	deps   Dependencies
	run    Run
	res    *Result
	logger zerolog.Logger
	outDir string
}

func (r *runner) addf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	r.res.Log = append(r.res.Log, line)
	if r.run.OnLog != nil {
		r.run.OnLog(line)
	}
}

func (r *runner) execute(ctx context.Context) error {
	if !r.run.Ready() {
		r.addf("Select a selector file, an input path and an output file first.")
		return ErrIncompleteRun
	}
	r.outDir = filepath.Dir(r.run.OutputFile)
	r.logger.Info().
		Str("selector", r.run.SelectorFile).
		Str("input_dir", r.run.InputDir).
		Str("output", r.run.OutputFile).
		Msg("merge started")

	sel, err := selector.Load(r.run.SelectorFile)
	if err != nil {
		r.addf("Could not read selector file: %v", err)
		return err
	}
	resolver, err := inputs.New(r.run.InputDir, r.deps.Inputs)
	if err != nil {
		r.addf("Invalid input path: %v", err)
		return err
	}

	if d := sel.Description(); d != "" {
		r.addf("%s", d)
		r.addf("")
	}
	count, err := sel.InputFilesCount()
	if err != nil {
		r.addf("%v; treating it as 0.", err)
		r.res.HadErrors = true
	}

	// A repaired copy never outlives the run, whatever the outcome.
	cleaned := false
	defer func() {
		if !cleaned {
			r.removeRepaired()
		}
	}()

	out := pdfdoc.NewOutput(r.deps.Backend)
	for i := 1; i <= count; i++ {
		if err := r.processInput(ctx, resolver, sel.Input(i), count, out); err != nil {
			return err
		}
	}
	r.removeRepaired()
	cleaned = true
	r.res.Pages = out.PageCount()

	if out.PageCount() == 0 {
		r.addf("No output file has been saved as it would be empty (either input files missing or selection file wrong).")
		return nil
	}
	if err := out.Save(r.run.OutputFile); err != nil {
		r.addf("Could not save output file: %v", err)
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	r.res.Saved = true
	r.res.OutputFile = r.run.OutputFile
	metrics.AddPagesCopied(out.PageCount())
	if r.res.HadErrors {
		r.addf("Finished with errors (check the log!).")
	} else {
		r.addf("Finished.")
	}
	return nil
}

func (r *runner) removeRepaired() {
	if err := repair.RemoveStale(r.outDir); err != nil {
		r.logger.Warn().Err(err).Msg("could not remove repaired copy")
	}
}

func (r *runner) processInput(ctx context.Context, resolver *inputs.Resolver, in selector.Input, count int, out *pdfdoc.Output) error {
	r.addf("Using file %d of %d...", in.Index, count)
	if in.File == "" {
		r.addf("Skipping input %d because it names no InputFile.", in.Index)
		r.addf("")
		metrics.IncInputSkipped()
		return nil
	}
	name := in.File + ".pdf"
	display := resolver.Display(in.File)

	src, err := resolver.Resolve(ctx, in.File)
	if errors.Is(err, inputs.ErrNotFound) {
		r.addf("Skipping file because not found in input path: %s", display)
		r.addf("")
		metrics.IncInputSkipped()
		return nil
	}
	if err != nil {
		r.addf("Skipping file because it could not be fetched: %v", err)
		r.addf("")
		r.res.HadErrors = true
		return nil
	}
	defer src.Close()

	doc, err := r.open(ctx, src.Path, name)
	if err != nil {
		r.addf("Could not open %s even after repair: %v", name, err)
		return err
	}

	if len(in.Pages) == 0 {
		r.addf("No pages selected for %s.", name)
	}
	for _, tok := range in.Pages {
		r.addf("Copying page %s...", tok.Raw)
		if !tok.Valid() {
			r.pageError(name, tok.Raw, tok.Err)
			continue
		}
		if err := out.Append(doc, tok.Page); err != nil {
			r.pageError(name, tok.Raw, err)
		}
	}
	r.addf("")
	return nil
}

func (r *runner) pageError(file, raw string, err error) {
	r.addf("Skipping page %s (does it exist?): %v", raw, err)
	r.res.HadErrors = true
	metrics.IncPageError()
	r.logger.Warn().Str("file", file).Str("page", raw).Err(err).Msg("page skipped")
}

// open opens path, falling back to a repaired copy. Failing to open the
// repaired copy is fatal for the run.
func (r *runner) open(ctx context.Context, path, name string) (pdfdoc.Document, error) {
	doc, err := r.deps.Backend.Open(path)
	if err == nil {
		return doc, nil
	}
	r.logger.Warn().Str("file", path).Err(err).Msg("open failed, repairing")

	if kind := r.detected(path); kind != "" {
		r.addf("Fixing corrupted file %s (detected %s)...", name, kind)
	} else {
		r.addf("Fixing corrupted file %s...", name)
	}
	if r.deps.Repairer == nil {
		return nil, fmt.Errorf("%w: no repair tool configured", ErrFatalOpen)
	}
	if err := repair.RemoveStale(r.outDir); err != nil {
		return nil, fmt.Errorf("%w: remove stale repaired copy: %v", ErrFatalOpen, err)
	}
	fixed, err := r.deps.Repairer.Repair(ctx, path, r.outDir)
	if err != nil {
		metrics.IncRepair(false)
		return nil, fmt.Errorf("%w: %v", ErrFatalOpen, err)
	}
	doc, err = r.deps.Backend.Open(fixed)
	if err != nil {
		metrics.IncRepair(false)
		return nil, fmt.Errorf("%w: repaired copy: %v", ErrFatalOpen, err)
	}
	metrics.IncRepair(true)
	return doc, nil
}

// detected returns the sniffed MIME type of path when it is not a PDF.
func (r *runner) detected(path string) string {
	if r.deps.Detector == nil {
		return ""
	}
	info, err := r.deps.Detector.Detect(path)
	if err != nil || info.IsPDF {
		return ""
	}
	return info.MIMEType
}
