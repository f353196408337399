package ingestion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/stock-service/internal/logger"
	"github.com/guttosm/stock-service/internal/storage"
)

const (
	filePattern      = "*.csv"
	maxParallelFiles = 8
	defaultBatchSize = 5000
)

// ErrNoInputFiles is returned when the input directory holds no CSV file.
var ErrNoInputFiles = errors.New("no input files")

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.TickerRepository {
	return storage.NewTickerRepository(db)
}

// Options tunes ProcessDirectory.
type Options struct {
	// Parallel is how many files are processed concurrently.
	// 0 means min(8, NumCPU); larger values are clamped to 8.
	Parallel int
	// Force reloads files already recorded in the ingestion log,
	// deleting their previous rows first.
	Force bool
}

// ProcessDirectory loads every *.csv file in dir into ticker_prices.
//
// Behavior:
//   - Files are processed concurrently, bounded by opts.Parallel.
//   - Each file is ingested at most once, keyed by its base name, unless opts.Force.
//   - Rows are inserted in batches via the repository.
//   - If any file returns error, cancels the rest and returns that error.
func ProcessDirectory(ctx context.Context, dir string, db *sql.DB, opts Options) error {
	// use indirection to allow tests to swap repository constructor
	repo := repoCtor(db)

	files, err := filepath.Glob(filepath.Join(dir, filePattern))
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no %s files in %s", ErrNoInputFiles, filePattern, dir)
	}
	sort.Strings(files)

	log := logger.Component("ingestion")
	log.Info().Int("files", len(files)).Str("dir", dir).Msg("ingestion start")

	maxParallel := parallelism(opts.Parallel)
	log.Info().Int("max_parallel", maxParallel).Bool("force", opts.Force).Msg("ingestion configured")

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

	for i, file := range files {
		idx := i
		f := file

		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			return g.Wait()
		}

		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()
			base := filepath.Base(f)
			flog := log.With().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Logger()
			flog.Info().Msg("file start")

			// Idempotency: skip if already ingested, unless force
			exists, err := repo.HasIngestionForFile(gctx, base)
			if err != nil {
				flog.Error().Err(err).Msg("check ingestion log failed")
				return fmt.Errorf("file %s: check ingestion log: %w", f, err)
			}
			if exists && !opts.Force {
				flog.Info().Bool("skipped", true).Msg("already ingested")
				return nil
			}
			// Also clears rows left behind by an earlier failed run of this file.
			if err := repo.DeletePricesByFile(gctx, base); err != nil {
				flog.Error().Err(err).Msg("delete existing failed")
				return fmt.Errorf("file %s: delete existing: %w", f, err)
			}

			total, err := parseAndPersistFile(gctx, f, repo, defaultBatchSize)
			if err != nil {
				flog.Error().Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", f, err)
			}
			if err := repo.UpsertIngestionLog(gctx, base, total); err != nil {
				flog.Error().Err(err).Msg("update ingestion log failed")
				return fmt.Errorf("file %s: upsert ingestion log: %w", f, err)
			}
			flog.Info().Int("rows", total).Dur("elapsed", time.Since(start)).Msg("file done")
			return nil
		})
	}

	return g.Wait()
}

func parallelism(requested int) int {
	if requested > 0 {
		if requested > maxParallelFiles {
			return maxParallelFiles
		}
		return requested
	}
	if c := runtime.NumCPU(); c < maxParallelFiles {
		return c
	}
	return maxParallelFiles
}
