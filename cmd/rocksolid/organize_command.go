package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gvrocha/rocksolid-fits/internal/catalog"
	"github.com/gvrocha/rocksolid-fits/internal/importer"
	"github.com/gvrocha/rocksolid-fits/internal/logging"
	"github.com/gvrocha/rocksolid-fits/internal/organize"
	"github.com/gvrocha/rocksolid-fits/internal/preflight"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var tzOffset float64
	var noCalibLibrary bool
	var noRename bool
	var skipDB bool

	cmd := &cobra.Command{
		Use:   "organize <input_folder> <output_folder>",
		Short: "Sort exposure files into the session/calibration hierarchy",
		Long: "Organize reads every FITS frame under input_folder, groups frames by\n" +
			"acquisition context, bins each group's sensor temperatures, and copies the\n" +
			"files into a deterministic hierarchy under output_folder. Every decision is\n" +
			"appended to a TSV audit log; unless --skip-db is given, frame rows and header\n" +
			"keywords are then imported into the catalog database inside output_folder.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("tz-offset") {
				return fmt.Errorf("--tz-offset is required: session boundaries depend on local time")
			}

			inputDir := args[0]
			outputDir := args[1]
			out := cmd.OutOrStdout()
			colorize := shouldColorize(cmd.OutOrStdout())

			checks := preflight.RunAll(inputDir, outputDir)
			for _, check := range checks {
				kind := statusOK
				if !check.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
			}
			if !preflight.AllPassed(checks) {
				return fmt.Errorf("preflight checks failed for %s", inputDir)
			}

			summary, err := organize.Run(cmd.Context(), organize.Options{
				InputDir:           inputDir,
				OutputDir:          outputDir,
				CalibrationLibrary: cfg.Organize.CalibrationLibrary && !noCalibLibrary,
				RenameFiles:        cfg.Organize.RenameFiles && !noRename,
				TzOffsetHours:      &tzOffset,
				Logger:             logger,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderRunSummary(summary, colorize))

			if skipDB {
				return nil
			}
			store, err := catalog.Open(filepath.Join(outputDir, cfg.Catalog.Filename))
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			imported, err := importer.Run(cmd.Context(), store, importer.Options{
				LogPath:         summary.LogPath,
				HeadersOnly:     true,
				CommitBatchSize: cfg.Import.CommitBatchSize,
				Logger:          logging.NewComponentLogger(logger, "importer"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Cataloged %d frames (%d header keywords) in %s\n",
				imported.FramesInserted, imported.AttributeRows, store.Path())
			return nil
		},
	}

	cmd.Flags().Float64Var(&tzOffset, "tz-offset", 0, "UTC offset in hours for session grouping (required)")
	cmd.Flags().BoolVar(&noCalibLibrary, "no-calib-library", false, "Route darks and bias per session instead of the calibration library")
	cmd.Flags().BoolVar(&noRename, "no-rename", false, "Keep original filenames (timestamp suffix only)")
	cmd.Flags().BoolVar(&skipDB, "skip-db", false, "Skip the catalog import step")
	return cmd
}

func renderRunSummary(summary *organize.Summary, colorize bool) string {
	rows := [][]string{
		{"Copied", fmt.Sprintf("%d", summary.Copied)},
		{"Skipped (exists)", fmt.Sprintf("%d", summary.SkippedExists)},
		{"Skipped (error)", fmt.Sprintf("%d", summary.SkippedError)},
		{"Unreadable", fmt.Sprintf("%d", summary.Unreadable)},
	}
	var b strings.Builder
	for _, line := range renderSectionHeader("Organize run "+summary.RunID, colorize) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(renderTable([]string{"Outcome", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Audit log: %s (%d files in %s)",
		summary.LogPath, summary.Processed(), summary.Elapsed.Round(summaryElapsedUnit)))
	return b.String()
}
