// Package orchestrator runs the registered importers in order and reports
// their results per phase.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
	"github.com/ekaya-inc/heritage-importer/pkg/importers"
)

// maxErrorsShown bounds the errors echoed to the console per importer. The
// log file has all of them.
const maxErrorsShown = 5

// Selection picks the importers of a run. Only wins over StartAt and StopAt;
// StartAt and StopAt are inclusive.
type Selection struct {
	Only    string
	StartAt string
	StopAt  string
}

// UnknownImporterError names a selected key that is not registered.
type UnknownImporterError struct {
	Key string
}

func (e *UnknownImporterError) Error() string { return "Unknown importer: " + e.Key }

func (e *UnknownImporterError) Unwrap() error { return apperrors.ErrUnknownImporter }

// Select returns the keys of the entries to run.
func Select(entries []importers.Entry, sel Selection) (map[string]bool, error) {
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[e.Key] = i
	}
	lookup := func(key string) (int, error) {
		i, ok := index[key]
		if !ok {
			return 0, &UnknownImporterError{Key: key}
		}
		return i, nil
	}

	selected := make(map[string]bool)
	if sel.Only != "" {
		if _, err := lookup(sel.Only); err != nil {
			return nil, err
		}
		selected[sel.Only] = true
		return selected, nil
	}

	start, stop := 0, len(entries)-1
	if sel.StartAt != "" {
		i, err := lookup(sel.StartAt)
		if err != nil {
			return nil, err
		}
		start = i
	}
	if sel.StopAt != "" {
		i, err := lookup(sel.StopAt)
		if err != nil {
			return nil, err
		}
		stop = i
	}
	if start > stop {
		return nil, fmt.Errorf("start-at %s comes after stop-at %s", sel.StartAt, sel.StopAt)
	}
	for _, e := range entries[start : stop+1] {
		selected[e.Key] = true
	}
	return selected, nil
}

// Orchestrator runs importers sequentially against one shared context.
type Orchestrator struct {
	entries []importers.Entry
	ic      *importers.Context
	logger  *zap.Logger
	out     io.Writer
}

// New creates an orchestrator over entries. Console progress goes to out,
// or stdout when out is nil.
func New(entries []importers.Entry, ic *importers.Context, logger *zap.Logger, out io.Writer) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Orchestrator{
		entries: entries,
		ic:      ic,
		logger:  logger.Named("orchestrator"),
		out:     out,
	}
}

// Run executes the selected importers. Unselected importers are logged as
// skipped and still appear in their phase. Run stops early when ctx is
// cancelled and returns the partial summary with the context error.
func (o *Orchestrator) Run(ctx context.Context, sel Selection) (*Summary, error) {
	selected, err := Select(o.entries, sel)
	if err != nil {
		return nil, err
	}

	summary := newSummary()
	started := time.Now()
	defer func() { summary.Elapsed = time.Since(started) }()

	for _, e := range o.entries {
		phase := summary.phase(importers.PhaseOf(e.Key))
		if !selected[e.Key] {
			o.logger.Info("Skipping importer", zap.String("importer", e.Key))
			phase.add(Run{Key: e.Key, Name: e.Name, Skipped: true})
			continue
		}
		if err := ctx.Err(); err != nil {
			o.logger.Warn("Import interrupted", zap.String("next_importer", e.Key), zap.Error(err))
			return summary, fmt.Errorf("import interrupted before %s: %w", e.Key, err)
		}

		color.New(color.FgCyan).Fprintf(o.out, "\n> Starting %s...\n", e.Name)
		o.logger.Info("Starting importer", zap.String("importer", e.Key), zap.String("phase", phase.Phase.String()))

		runStarted := time.Now()
		result := o.runImporter(ctx, e)
		run := Run{Key: e.Key, Name: e.Name, Result: result, Elapsed: time.Since(runStarted)}
		phase.add(run)
		o.report(run)
	}
	return summary, nil
}

// runImporter turns a panic inside Import into a single error entry.
func (o *Orchestrator) runImporter(ctx context.Context, e importers.Entry) (result importers.Result) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Importer panicked",
				zap.String("importer", e.Key),
				zap.Any("panic", r),
				zap.Stack("stack"))
			result = importers.Result{
				Errors:   []string{fmt.Sprintf("%s failed: %v", e.Name, r)},
				Warnings: []string{},
			}
		}
	}()
	return e.New(o.ic).Import(ctx)
}

func (o *Orchestrator) report(run Run) {
	r := run.Result
	if n := len(r.Errors); n > 0 {
		red := color.New(color.FgRed)
		red.Fprintf(o.out, "  x %s completed with %d errors\n", run.Name, n)
		for _, msg := range r.Errors[:min(n, maxErrorsShown)] {
			red.Fprintf(o.out, "    - %s\n", msg)
		}
		if n > maxErrorsShown {
			red.Fprintf(o.out, "    ... and %d more errors\n", n-maxErrorsShown)
		}
	} else {
		color.New(color.FgGreen).Fprintf(o.out, "  ok %s completed: %d imported, %d skipped\n", run.Name, r.Imported, r.Skipped)
	}
	if n := len(r.Warnings); n > 0 {
		color.New(color.FgYellow).Fprintf(o.out, "  ! %d warnings\n", n)
	}
	o.logger.Info("Importer finished",
		zap.String("importer", run.Key),
		zap.Int("imported", r.Imported),
		zap.Int("skipped", r.Skipped),
		zap.Int("errors", len(r.Errors)),
		zap.Int("warnings", len(r.Warnings)),
		zap.Duration("elapsed", run.Elapsed))
}
