// Package imagesync copies or links legacy image files into the images
// directory and replaces the placeholder rows written by the importers.
package imagesync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/otiai10/copy"
	"go.uber.org/zap"

	"github.com/ekaya-inc/heritage-importer/pkg/importers"
)

// Options configures a synchronization run.
type Options struct {
	LegacyRoot string
	ImagesDir  string
	Symlink    bool
	DryRun     bool
}

// Syncer synchronizes the placeholder rows of every image table.
type Syncer struct {
	store  Store
	opts   Options
	logger *zap.Logger
}

func New(store Store, opts Options, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{store: store, opts: opts, logger: logger.Named("image-sync")}
}

// LegacyPath maps a stored legacy path under root.
func LegacyPath(root, legacy string) string {
	return filepath.Join(root, filepath.FromSlash(strings.TrimLeft(legacy, "/\\")))
}

// FileName is the synchronized file name of an image row: its id and the
// lowercased extension of the legacy file.
func FileName(id, legacy string) (string, error) {
	ext := strings.ToLower(filepath.Ext(legacy))
	if ext == "" || ext == "." {
		return "", fmt.Errorf("cannot determine file extension from path %q", legacy)
	}
	return id + ext, nil
}

// Run synchronizes Tables in order. A failing image is recorded and the run
// continues.
func (s *Syncer) Run(ctx context.Context) importers.Result {
	started := time.Now()
	result := importers.Result{Errors: []string{}, Warnings: []string{}}

	mode := "copy"
	if s.opts.Symlink {
		mode = "symlink"
	}
	s.logger.Info("Starting image synchronization",
		zap.String("mode", mode),
		zap.String("legacy_root", s.opts.LegacyRoot),
		zap.String("images_dir", s.opts.ImagesDir),
		zap.Bool("dry_run", s.opts.DryRun))

	if s.opts.LegacyRoot == "" {
		result.Errors = append(result.Errors, "legacy images root is not configured")
		return result
	}
	if !s.opts.DryRun {
		if err := os.MkdirAll(s.opts.ImagesDir, 0o755); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to create images directory: %v", err))
			return result
		}
	}

	var bytes uint64
	for _, table := range Tables {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", table, err))
			break
		}
		images, err := s.store.Placeholders(ctx, table)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		s.logger.Info("Syncing table", zap.String("table", table), zap.Int("images", len(images)))

		for _, img := range images {
			size, synced, err := s.syncImage(ctx, table, img)
			switch {
			case err != nil:
				msg := fmt.Sprintf("%s %s: %v", table, img.ID, err)
				result.Errors = append(result.Errors, msg)
				s.logger.Error("Image failed", zap.String("table", table), zap.String("id", img.ID), zap.Error(err))
			case synced:
				result.Imported++
				bytes += uint64(size)
			default:
				result.Skipped++
			}
		}
	}

	result.Success = len(result.Errors) == 0
	s.logger.Info("Image synchronization finished",
		zap.Int("synced", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
		zap.String("transferred", humanize.Bytes(bytes)),
		zap.Duration("elapsed", time.Since(started)))
	return result
}

// syncImage places one file and updates its row. synced is false when the
// destination already existed; the row is still updated from it.
func (s *Syncer) syncImage(ctx context.Context, table string, img Placeholder) (size int64, synced bool, err error) {
	name, err := FileName(img.ID, img.Path)
	if err != nil {
		return 0, false, err
	}
	src := LegacyPath(s.opts.LegacyRoot, img.Path)
	dst := filepath.Join(s.opts.ImagesDir, name)

	if s.opts.DryRun {
		s.logger.Info("Would sync image", zap.String("table", table), zap.String("id", img.ID),
			zap.String("from", src), zap.String("to", dst))
		return 0, true, nil
	}

	synced = true
	if _, err := os.Lstat(dst); err == nil {
		s.logger.Debug("Destination exists", zap.String("path", dst))
		synced = false
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, false, fmt.Errorf("failed to check %s: %w", dst, err)
	} else if err := s.place(src, dst); err != nil {
		return 0, false, err
	}

	info, err := os.Stat(dst)
	if err != nil {
		return 0, false, fmt.Errorf("failed to stat %s: %w", dst, err)
	}
	if err := s.store.Update(ctx, table, img.ID, name, info.Size(), img.Path); err != nil {
		return 0, false, err
	}
	return info.Size(), synced, nil
}

func (s *Syncer) place(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("legacy image not found: %s", src)
		}
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("legacy image is a directory: %s", src)
	}

	if s.opts.Symlink {
		abs, err := filepath.Abs(src)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", src, err)
		}
		if err := os.Symlink(abs, dst); err != nil {
			return fmt.Errorf("failed to link %s: %w", dst, err)
		}
		return nil
	}
	if err := copy.Copy(src, dst, copy.Options{Sync: true}); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return nil
}
