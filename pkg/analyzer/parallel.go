package analyzer

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/firebird-suite/pymap/pkg/logger"
	"github.com/simonhull/firebird-suite/pymap/pkg/pyparse"
)

// parseModules parses files with a bounded pool of workers, each owning one
// tree-sitter parser. Files that cannot be read or do not parse are skipped.
// The result is sorted by file path.
func (a *Analyzer) parseModules(ctx context.Context, root string, files []string, classifier pyparse.ImportClassifier, numWorkers int) ([]*pyparse.ModuleInfo, error) {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	a.logger.Debug("Parsing modules",
		logger.F("files", len(files)),
		logger.F("workers", numWorkers))

	parsed := make([]*pyparse.ModuleInfo, len(files))
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := range files {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case jobs <- i:
			}
		}
		return nil
	})

	for w := 0; w < numWorkers; w++ {
		g.Go(func() error {
			parser, err := pyparse.NewParser(classifier)
			if err != nil {
				return err
			}
			defer parser.Close()

			for i := range jobs {
				if gctx.Err() != nil {
					continue
				}
				mod, err := parser.ParseFile(root, files[i])
				if err != nil {
					a.logger.Debug("Skipping module", logger.F("file", files[i]), logger.F("error", err))
					continue
				}
				parsed[i] = mod
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	modules := make([]*pyparse.ModuleInfo, 0, len(files))
	for _, mod := range parsed {
		if mod != nil {
			modules = append(modules, mod)
		}
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].File < modules[j].File })

	a.logger.Debug("Parsed modules",
		logger.F("parsed", len(modules)),
		logger.F("skipped", len(files)-len(modules)))

	return modules, nil
}
