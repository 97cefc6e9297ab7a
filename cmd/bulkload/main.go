// Command bulkload ingests every CSV and Excel file in a directory into the
// record store, skipping files that were loaded before.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"uidpulse/internal/ingest"
	"uidpulse/internal/store"
)

func main() {
	dir := flag.String("dir", "data_uploads", "directory containing CSV/Excel files")
	dbPath := flag.String("db", "uidpulse.db", "path to the SQLite database")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(context.Background(), *dir, *dbPath, logger); err != nil {
		fmt.Fprintf(os.Stderr, "bulkload failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dir, dbPath string, logger *slog.Logger) error {
	st, err := store.Open(dbPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	files, err := ingest.LoadDir(ctx, dir, logger)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Info("no data files found", slog.String("dir", dir))
		return nil
	}

	loaded, skipped := 0, 0
	for _, f := range files {
		// LoadDir already enriched each dataset during parsing.
		count, err := st.InsertDataset(ctx, f.Data, f.Name)
		if err != nil {
			if errors.Is(err, store.ErrFileAlreadyLoaded) {
				logger.Info("skipping already loaded file", slog.String("file", f.Name))
				skipped++
				continue
			}
			return fmt.Errorf("load %s: %w", f.Name, err)
		}
		logger.Info("file loaded",
			slog.String("file", f.Name),
			slog.Int("records", count))
		loaded++
	}

	logger.Info("bulk load complete",
		slog.Int("loaded", loaded),
		slog.Int("skipped", skipped))
	return nil
}
