package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"conto/internal/config"
	"conto/internal/detect"
	"conto/internal/services"
	"conto/internal/storage"
	"conto/internal/store"
)

// conto-import runs one import against the configured backend and
// prints the outcome. Useful for seeding data and for cron-driven
// ingestion without the HTTP server.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <file.csv|file.json>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read file:", err)
		os.Exit(1)
	}

	backend, err := newBackend(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open backend:", err)
		os.Exit(1)
	}
	defer backend.Close()

	st := store.New(backend)
	ctx := context.Background()
	if err := st.Load(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "load collection:", err)
		os.Exit(1)
	}

	importer := services.NewImportService(st, backend, detect.Default(), nil)
	report, err := importer.ImportFile(ctx, filepath.Base(path), string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, "import failed:", err)
		os.Exit(1)
	}

	fmt.Printf("batch:      %s\n", report.BatchID)
	fmt.Printf("parsed:     %d\n", report.Parsed)
	fmt.Printf("added:      %d\n", report.Added)
	fmt.Printf("duplicates: %d\n", report.Duplicates)
	fmt.Printf("flagged:    %d\n", report.Flagged)
	fmt.Printf("total:      %d\n", report.Total)
	for _, skip := range report.Skipped {
		fmt.Printf("skipped:    %s\n", skip)
	}
}

func newBackend(cfg *config.Config) (store.Backend, error) {
	if cfg.DataBackend == "sqlite" {
		return storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	}
	return storage.NewFileStore(cfg.DataDir)
}
