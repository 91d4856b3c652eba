// Package importers runs the legacy-to-target import, one importer per legacy
// entity family.
//
// Each importer queries its legacy rows, groups and transforms them, skips keys
// that already exist, writes the rest through the write strategy and records
// the new ids in the tracker so later importers can resolve foreign keys.
package importers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
)

// DryRunPrefix prefixes the placeholder ids registered during a dry run.
const DryRunPrefix = "dry-run:"

// FallbackLanguageID is used when no default language has been imported.
const FallbackLanguageID = "eng"

// Result is the outcome of one importer run.
type Result struct {
	Success  bool     `json:"success"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Importer imports one legacy entity family.
type Importer interface {
	Name() string
	Import(ctx context.Context) Result
}

// Context carries the collaborators shared by every importer of a run.
type Context struct {
	Reader   legacydb.Reader
	Strategy strategy.WriteStrategy
	Tracker  *tracker.Tracker
	Logger   *zap.Logger
	DryRun   bool
}

// base holds the bookkeeping every importer shares.
type base struct {
	name   string
	c      *Context
	logger *zap.Logger
	result Result
}

func newBase(name string, c *Context) base {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{name: name, c: c, logger: logger.Named(name)}
}

func (b *base) Name() string { return b.name }

func (b *base) begin() {
	b.result = Result{Errors: []string{}, Warnings: []string{}}
	b.logger.Info("Starting import", zap.Bool("dry_run", b.c.DryRun))
}

func (b *base) finish(started time.Time) Result {
	b.result.Success = len(b.result.Errors) == 0
	b.logger.Info("Import finished",
		zap.Int("imported", b.result.Imported),
		zap.Int("skipped", b.result.Skipped),
		zap.Int("errors", len(b.result.Errors)),
		zap.Int("warnings", len(b.result.Warnings)),
		zap.Duration("elapsed", time.Since(started)))
	return b.result
}

func (b *base) imported() { b.result.Imported++ }
func (b *base) skipped()  { b.result.Skipped++ }

// fail records a per-record error and lets the importer continue.
func (b *base) fail(key string, err error) {
	msg := fmt.Sprintf("%s: %v", key, err)
	b.result.Errors = append(b.result.Errors, msg)
	b.logger.Error("Record failed", zap.String("key", key), zap.Error(err))
}

func (b *base) warn(messages ...string) {
	for _, m := range messages {
		b.result.Warnings = append(b.result.Warnings, m)
		b.logger.Warn(m)
	}
}

func (b *base) query(ctx context.Context, q string, args ...any) ([]legacydb.Row, error) {
	rows, err := b.c.Reader.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy rows: %w", err)
	}
	b.logger.Debug("Loaded legacy rows", zap.Int("rows", len(rows)))
	return rows, nil
}

func (b *base) register(key, id string, entityType tracker.EntityType) {
	b.c.Tracker.Register(tracker.Record{UUID: id, BackwardCompatibility: key, EntityType: entityType})
}

// exists reports whether key was imported already, by this run or a previous one.
func (b *base) exists(ctx context.Context, table string, entityType tracker.EntityType, key string) (bool, error) {
	if b.c.Tracker.Exists(key, entityType) {
		return true, nil
	}
	if b.c.DryRun {
		return false, nil
	}
	ok, err := b.c.Strategy.Exists(ctx, table, key)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return ok, nil
}

// resolve returns the id of a dependency. Missing dependencies wrap
// apperrors.ErrMissingDependency.
func (b *base) resolve(ctx context.Context, table string, entityType tracker.EntityType, key string) (string, error) {
	if id, ok := b.c.Tracker.GetUUID(key, entityType); ok {
		return id, nil
	}
	if !b.c.DryRun {
		id, err := b.c.Strategy.FindByBackwardCompatibility(ctx, table, key)
		if err == nil {
			b.register(key, id, entityType)
			return id, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%s %s: %w", entityType, key, apperrors.ErrMissingDependency)
}

// write runs fn and registers its id under key. In a dry run fn is not called
// and a placeholder id is registered instead.
func (b *base) write(key string, entityType tracker.EntityType, fn func() (string, error)) (string, error) {
	if b.c.DryRun {
		id := DryRunPrefix + key
		b.register(key, id, entityType)
		return id, nil
	}
	id, err := fn()
	if err != nil {
		return "", err
	}
	b.register(key, id, entityType)
	return id, nil
}

// writeTranslation runs fn, which writes a row without a returned id. The
// strategy registers the row; in a dry run a placeholder is registered instead.
func (b *base) writeTranslation(key string, entityType tracker.EntityType, fn func() error) error {
	if b.c.DryRun {
		if key != "" {
			b.register(key, DryRunPrefix+key, entityType)
		}
		return nil
	}
	return fn()
}

// ensure returns the id of key, writing it with fn when it does not exist yet.
func (b *base) ensure(ctx context.Context, table string, entityType tracker.EntityType, key string,
	fn func() (string, error)) (id string, created bool, err error) {
	exists, err := b.exists(ctx, table, entityType, key)
	if err != nil {
		return "", false, err
	}
	if exists {
		id, err := b.resolve(ctx, table, entityType, key)
		return id, false, err
	}
	id, err = b.write(key, entityType, fn)
	return id, err == nil, err
}

// exec runs fn unless this is a dry run.
func (b *base) exec(fn func() error) error {
	if b.c.DryRun {
		return nil
	}
	return fn()
}

func (b *base) defaultLanguageID() string {
	if id, ok := b.c.Tracker.GetMetadata(tracker.MetaDefaultLanguageID); ok && id != "" {
		return id
	}
	return FallbackLanguageID
}
