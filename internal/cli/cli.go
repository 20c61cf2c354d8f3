package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"locedit/internal/config"
	"locedit/internal/filewalker"
	"locedit/internal/session"
	"locedit/internal/state"
	"locedit/internal/table"
	"locedit/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const appVersion = "1.3.0"

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "locedit",
		Short: "Editor for HITMAN-style JSON string tables",
		Long: `locedit loads DLGE and LOCR JSON string tables, exposes their "en"
strings as editable rows, and writes edited files back with structure,
key order, and untouched strings preserved byte for byte.`,
	}

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(replaceCmd())
	rootCmd.AddCommand(shellCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <input-dir>",
		Short: "Inventory the table files in a folder without editing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(args[0])
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <input-dir> <file.tsv>",
		Short: "Export every editable row to a tab-separated transfer file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], args[1])
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <input-dir> <file.tsv> <output-dir>",
		Short: "Apply a transfer file to the tables and save the result",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], args[1], args[2])
		},
	}
}

func replaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replace <input-dir> <output-dir> <term> <replacement>",
		Short: "Replace a term across all rows and save the result",
		Long: `Runs a case-insensitive literal replacement over every editable row
and writes the changed tables to the output folder.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplace(args[0], args[1], args[2], args[3])
		},
	}
}

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell <input-dir> <output-dir>",
		Short: "Edit rows interactively with search, undo, and redo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(args[0], args[1])
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("locedit " + appVersion)
		},
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// ensureDistinct rejects saving a folder onto itself. The originals are
// the only pristine copy of the game's data.
func ensureDistinct(inputDir, outputDir string) error {
	in, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input dir: %w", err)
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}
	if in == out {
		return fmt.Errorf("output folder must differ from input folder")
	}
	return nil
}

// runScan handles the `scan` command. Files are parsed concurrently;
// nothing is modified.
func runScan(inputDir string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	paths, err := filewalker.ListTables(inputDir)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	log.Info().Int("files", len(paths)).Msg("Scanning folder")

	pool := worker.NewPool[string, *table.Document](cfg.WorkerCount,
		func(ctx context.Context, path string) (*table.Document, error) {
			return table.LoadFile(path, 0)
		},
	)
	results := pool.Execute(ctx, paths)

	var dialogue, blocks, unknown, failed, records, rows int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		switch r.Result.Format {
		case table.FormatDLGE:
			dialogue++
		case table.FormatLOCR:
			blocks++
		default:
			unknown++
		}
		records += len(r.Result.Records)
		for _, rec := range r.Result.Records {
			rows += len(rec.Segments)
		}
	}

	fmt.Printf("Scanned %d files in %s\n", len(paths), inputDir)
	fmt.Printf("  DLGE:       %d\n", dialogue)
	fmt.Printf("  LOCR:       %d\n", blocks)
	fmt.Printf("  unknown:    %d\n", unknown)
	fmt.Printf("  unreadable: %d\n", failed)
	fmt.Printf("  en records: %d (%d editable rows)\n", records, rows)
	return nil
}

// runExport handles the `export` command.
func runExport(inputDir, outPath string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	sess, sum, err := session.Load(ctx, inputDir, cfg.UndoLimit)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create transfer file: %w", err)
	}
	defer f.Close()

	if err := sess.ExportTSV(f, appVersion); err != nil {
		return fmt.Errorf("export rows: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close transfer file: %w", err)
	}

	rememberDirs(cfg, inputDir, "")
	fmt.Printf("Exported %d rows from %d files to %s\n", sum.Rows, sum.FilesLoaded, outPath)
	return nil
}

// runImport handles the `import` command.
func runImport(inputDir, transferPath, outputDir string) error {
	if err := ensureDistinct(inputDir, outputDir); err != nil {
		return err
	}

	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	sess, _, err := session.Load(ctx, inputDir, cfg.UndoLimit)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}

	f, err := os.Open(transferPath)
	if err != nil {
		return fmt.Errorf("open transfer file: %w", err)
	}
	defer f.Close()

	report, err := sess.ImportTSV(f, appVersion)
	if err != nil {
		return fmt.Errorf("import rows: %w", err)
	}
	for _, s := range report.Skipped {
		fmt.Println("skipped:", s)
	}
	if report.Updated == 0 {
		fmt.Println("No rows changed, nothing to save")
		return nil
	}

	sum, err := sess.Save(ctx, outputDir)
	if err != nil {
		return fmt.Errorf("save tables: %w", err)
	}

	rememberDirs(cfg, inputDir, outputDir)
	fmt.Printf("Applied %d rows, saved %d files to %s\n", report.Updated, sum.FilesSaved, outputDir)
	return nil
}

// runReplace handles the `replace` command.
func runReplace(inputDir, outputDir, term, replacement string) error {
	if err := ensureDistinct(inputDir, outputDir); err != nil {
		return err
	}

	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	sess, _, err := session.Load(ctx, inputDir, cfg.UndoLimit)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}

	changed := sess.ReplaceAll(term, replacement)
	if changed == 0 {
		fmt.Printf("No rows contain %q, nothing to save\n", term)
		return nil
	}

	sum, err := sess.Save(ctx, outputDir)
	if err != nil {
		return fmt.Errorf("save tables: %w", err)
	}

	st := loadState(cfg)
	st.InputDir, st.OutputDir = inputDir, outputDir
	st.SearchTerm, st.ReplaceTerm = term, replacement
	saveState(cfg, st)

	fmt.Printf("Replaced %q in %d rows, saved %d files to %s\n", term, changed, sum.FilesSaved, outputDir)
	return nil
}

func loadState(cfg *config.Config) *state.State {
	st, err := state.Load(cfg.StateFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.StateFile).Msg("State file unreadable, starting fresh")
		return &state.State{}
	}
	return st
}

func saveState(cfg *config.Config, st *state.State) {
	if err := st.Save(cfg.StateFile); err != nil {
		log.Warn().Err(err).Str("path", cfg.StateFile).Msg("Failed to save state")
	}
}

func rememberDirs(cfg *config.Config, inputDir, outputDir string) {
	st := loadState(cfg)
	st.InputDir = inputDir
	if outputDir != "" {
		st.OutputDir = outputDir
	}
	saveState(cfg, st)
}
