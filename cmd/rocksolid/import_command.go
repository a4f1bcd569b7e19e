package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gvrocha/rocksolid-fits/internal/auditlog"
	"github.com/gvrocha/rocksolid-fits/internal/catalog"
	"github.com/gvrocha/rocksolid-fits/internal/importer"
)

func newImportMetadataCommand(ctx *commandContext) *cobra.Command {
	var dbPath string
	var headersOnly bool

	cmd := &cobra.Command{
		Use:   "import-metadata <organize_log.tsv>",
		Short: "Import an organize run's frames, header keywords, and pixel statistics",
		Long: "Import-metadata replays an organize audit log into the catalog database:\n" +
			"frame rows for every file present at its destination, then per-file header\n" +
			"keywords and computed pixel statistics. Files already carrying metadata are\n" +
			"skipped, so reruns and interrupted imports are safe.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			logPath := args[0]
			target := strings.TrimSpace(dbPath)
			if target == "" {
				// The organizer writes its log and database side by side.
				target = filepath.Join(filepath.Dir(logPath), cfg.Catalog.Filename)
			}

			store, err := catalog.Open(target)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			summary, err := importer.Run(cmd.Context(), store, importer.Options{
				LogPath:         logPath,
				HeadersOnly:     headersOnly,
				CommitBatchSize: cfg.Import.CommitBatchSize,
				Logger:          logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Metadata import", colorize) {
				fmt.Fprintln(out, line)
			}
			rows := [][]string{
				{"Frame rows inserted", fmt.Sprintf("%d", summary.FramesInserted)},
				{"Frame rows existing", fmt.Sprintf("%d", summary.FramesExisting)},
				{"Files processed", fmt.Sprintf("%d", summary.FilesProcessed)},
				{"Files skipped", fmt.Sprintf("%d", summary.FilesSkipped)},
				{"Attribute rows", fmt.Sprintf("%d", summary.AttributeRows)},
			}
			fmt.Fprintln(out, renderTable([]string{"Metric", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

			if breakdown := renderFrameBreakdown(logPath); breakdown != "" {
				fmt.Fprintln(out, breakdown)
			}
			fmt.Fprintf(out, "Catalog: %s\n", store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Catalog database path (default: next to the audit log)")
	cmd.Flags().BoolVar(&headersOnly, "headers-only", false, "Import header keywords only, skipping pixel statistics")
	return cmd
}

// renderFrameBreakdown tallies the log's imported entries by frame type.
// Rendering is best effort; an unreadable log returns an empty string since
// the import itself already succeeded.
func renderFrameBreakdown(logPath string) string {
	entries, err := auditlog.Read(logPath, auditlog.Imported)
	if err != nil || len(entries) == 0 {
		return ""
	}
	counts := make(map[string]int)
	for _, entry := range entries {
		counts[entry.FrameType]++
	}
	types := make([]string, 0, len(counts))
	for frameType := range counts {
		types = append(types, frameType)
	}
	sort.Strings(types)

	title := cases.Title(language.Und)
	rows := make([][]string, 0, len(types))
	for _, frameType := range types {
		rows = append(rows, []string{title.String(frameType), fmt.Sprintf("%d", counts[frameType])})
	}
	return renderTable([]string{"Frame type", "Files"}, rows, []columnAlignment{alignLeft, alignRight})
}
