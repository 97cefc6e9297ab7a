package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"uidpulse/internal/dataset"
)

// ParsedFile pairs a parsed, enriched dataset with its source filename.
type ParsedFile struct {
	Name string
	Data *dataset.Dataset
}

// LoadDir parses every accepted file in a directory concurrently and returns
// the results sorted by filename. A file that fails to parse fails the whole
// load; bulk loading is an operator action where partial silence would hide
// bad inputs.
func LoadDir(ctx context.Context, dir string, logger *slog.Logger) ([]ParsedFile, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	var mu sync.Mutex
	var parsed []ParsedFile

	for _, entry := range entries {
		if entry.IsDir() || !Allowed(entry.Name()) {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			d, err := Parse(name, f)
			if err != nil {
				return err
			}
			Enrich(d)

			logger.InfoContext(ctx, "parsed data file",
				slog.String("file", name),
				slog.Int("rows", d.Len()))

			mu.Lock()
			parsed = append(parsed, ParsedFile{Name: name, Data: d})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Name < parsed[j].Name })
	return parsed, nil
}
