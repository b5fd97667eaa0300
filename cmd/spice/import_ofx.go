package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/ofx"
	"github.com/Veraticus/spice-insights/internal/plaid"
	"github.com/Veraticus/spice-insights/internal/storage"
)

const ofxInstitution = "OFX"

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX (Quicken) files exported from your bank.
Transactions already imported are skipped.

Examples:
  # Import single file
  spice import-ofx ~/Downloads/chase_jan_2024.qfx

  # Import all QFX files in a directory
  spice import-ofx ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Parse files without saving")

	return cmd
}

// importResult summarizes an import across files.
type importResult struct {
	// Changed lists the accounts that received new transactions.
	Changed  []string
	Files    int
	Failed   int
	Accounts int
	Parsed   int
	Inserted int
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	slog.Info("🌶️  Importing OFX files...", "file_count", len(files), "dry_run", dryRun)

	return withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
		handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import")
		ctx, stop := handler.HandleInterrupts(cmd.Context(), true)
		defer stop()

		bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(files), "Importing statements...")
		var saver plaid.Saver = store
		if dryRun {
			saver = nil
		}

		result, err := importFiles(ctx, ofx.NewParser(), saver, files, bar)
		invalidatePatterns(context.WithoutCancel(ctx), store, result.Changed)
		if err != nil && !handler.WasInterrupted() {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Parsed %d transactions from %d file(s)", result.Parsed, result.Files)))
		if result.Failed > 0 {
			fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d file(s) could not be read; see log for details", result.Failed)))
		}
		if dryRun {
			fmt.Fprintln(out, cli.FormatInfo("Dry run: nothing was saved"))
			return nil
		}
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d new transactions saved across %d account(s)", result.Inserted, result.Accounts)))
		return nil
	})
}

// collectFiles expands glob patterns. Patterns with no match are kept when
// they name an existing file.
func collectFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				matches = []string{pattern}
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, errors.New("no files found to import")
	}
	return files, nil
}

// statementParser is the part of the OFX parser imports use.
type statementParser interface {
	ParseStatement(ctx context.Context, reader io.Reader) (*ofx.Statement, error)
}

// importFiles parses each file and saves its accounts and transactions. A
// nil saver parses only. Unreadable files are logged and counted.
func importFiles(ctx context.Context, parser statementParser, saver plaid.Saver, files []string, bar *progressbar.ProgressBar) (result importResult, err error) {
	result.Files = len(files)
	accounts := make(map[string]bool)
	changed := make(map[string]bool)
	defer func() {
		result.Changed = sortedKeys(changed)
	}()

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		stmt, err := parseFile(ctx, parser, path)
		if err != nil {
			common.LogError(err, "Failed to parse OFX file", common.Fields{"file": filepath.Base(path)})
			result.Failed++
			cli.Advance(bar, 1)
			continue
		}
		result.Parsed += len(stmt.Transactions)

		if saver != nil {
			inserted, err := saveStatement(ctx, saver, stmt)
			if err != nil {
				return result, fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
			}
			result.Inserted += inserted
			if inserted > 0 {
				for _, t := range stmt.Transactions {
					changed[t.AccountID] = true
				}
			}
		}
		for _, a := range stmt.Accounts {
			accounts[a.ID] = true
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(stmt.Transactions))
		cli.Advance(bar, 1)
	}

	result.Accounts = len(accounts)
	return result, nil
}

func parseFile(ctx context.Context, parser statementParser, path string) (*ofx.Statement, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return parser.ParseStatement(ctx, f)
}

func saveStatement(ctx context.Context, saver plaid.Saver, stmt *ofx.Statement) (int, error) {
	for i := range stmt.Accounts {
		a := stmt.Accounts[i]
		if a.Institution == "" {
			a.Institution = ofxInstitution
		}
		if err := saver.CreateAccount(ctx, &a); err != nil {
			return 0, err
		}
	}
	if len(stmt.Transactions) == 0 {
		return 0, nil
	}
	return saver.SaveTransactions(ctx, stmt.Transactions)
}

var _ plaid.Saver = (*storage.SQLiteStorage)(nil)

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
