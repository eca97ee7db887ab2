package cadobr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// StageFunc rewrites one document read from a folder of that name.
type StageFunc func(raw []byte, folder string) ([]byte, error)

// StageResult summarizes a tree rewrite.
type StageResult struct {
	Files  int
	Failed []StageFailure
}

// StageFailure is a document a stage could not rewrite. Its file is copied
// unchanged so that later stages report it.
type StageFailure struct {
	Rel string
	Err error
}

// RunStage applies fn to the files of in matching pattern and writes the
// results under out at the same relative paths. Up to workers files are
// processed at once, one per CPU when workers is not positive.
//
// A document fn fails on is not fatal; a file that cannot be read or written is.
func RunStage(ctx context.Context, in, out, pattern string, workers int, fn StageFunc) (*StageResult, error) {
	files, err := FindFiles(in, pattern)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	failures := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := os.ReadFile(f.Path())
			if err != nil {
				return fmt.Errorf("could not read %q: %w", f.Path(), err)
			}
			data, err := fn(raw, f.Folder())
			if err != nil {
				failures[i] = err
				data = raw
			}
			return WriteFile(out, f, data)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &StageResult{Files: len(files)}
	for i, err := range failures {
		if err != nil {
			slog.Warn("document copied unchanged", "file", files[i].Rel, "error", err)
			res.Failed = append(res.Failed, StageFailure{Rel: files[i].Rel, Err: err})
		}
	}
	return res, nil
}
