package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gvrocha/rocksolid-fits/internal/auditlog"
	"github.com/gvrocha/rocksolid-fits/internal/catalog"
	"github.com/gvrocha/rocksolid-fits/internal/fits"
	"github.com/gvrocha/rocksolid-fits/internal/logging"
	"github.com/gvrocha/rocksolid-fits/internal/services"
	"github.com/gvrocha/rocksolid-fits/internal/stats"
)

// skipKeywords are header keys already flattened into the fits_frames row or
// structural cards with no analytic value.
var skipKeywords = map[string]bool{
	"SIMPLE": true,
	"BITPIX": true,
	"NAXIS":  true,
	"NAXIS1": true,
	"NAXIS2": true,
	"EXTEND": true,
	"":       true,
}

// Options configures one import run over an audit log.
type Options struct {
	LogPath string

	// HeadersOnly skips pixel reads and statistics; only header keywords are
	// imported. Much faster, suitable for running right after organizing.
	HeadersOnly bool
	// CommitBatchSize controls how many files are imported per transaction
	// checkpoint. Zero means every file.
	CommitBatchSize int

	Logger *slog.Logger
}

// Summary tallies one import run.
type Summary struct {
	FramesInserted int
	FramesExisting int
	FilesProcessed int
	FilesSkipped   int
	AttributeRows  int
}

// Run imports an organize run's audit log into the catalog: first the frame
// rows for every file present at its destination, then per-file header
// keywords and (unless HeadersOnly) computed pixel statistics. Files already
// carrying metadata and files missing on disk are skipped; per-file read
// failures never abort the run.
func Run(ctx context.Context, store *catalog.Store, opts Options) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	entries, err := auditlog.Read(opts.LogPath, auditlog.Imported)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "import", "read-log",
			fmt.Sprintf("read audit log %s", opts.LogPath), err)
	}

	summary := &Summary{}
	for _, entry := range entries {
		frame := frameFromEntry(entry)
		_, inserted, err := store.InsertFrame(ctx, frame)
		if err != nil {
			return summary, services.Wrap(services.ErrTransient, "import", "frames",
				fmt.Sprintf("insert frame %s", entry.DestFile), err)
		}
		if inserted {
			summary.FramesInserted++
		} else {
			summary.FramesExisting++
		}
	}
	logger.Info("frame rows imported",
		logging.Int("inserted", summary.FramesInserted),
		logging.Int("existing", summary.FramesExisting))

	sinceCommit := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, services.Wrap(services.ErrTransient, "import", "metadata",
				"run interrupted", err)
		}
		processed, rows, err := importFile(ctx, store, entry.DestFile, opts.HeadersOnly, logger)
		if err != nil {
			return summary, err
		}
		if !processed {
			summary.FilesSkipped++
			continue
		}
		summary.FilesProcessed++
		summary.AttributeRows += rows

		sinceCommit++
		if opts.CommitBatchSize > 0 && sinceCommit >= opts.CommitBatchSize {
			sinceCommit = 0
			logger.Debug("import checkpoint",
				logging.Int("processed", summary.FilesProcessed),
				logging.Int("total", len(entries)))
		}
	}

	logger.Info("metadata import complete",
		logging.Int("processed", summary.FilesProcessed),
		logging.Int("skipped", summary.FilesSkipped),
		logging.Int("attribute_rows", summary.AttributeRows))
	return summary, nil
}

// importFile imports one file's keywords and statistics. It returns false
// without error when the file is skipped (already imported, missing on disk,
// or unreadable).
func importFile(ctx context.Context, store *catalog.Store, destFile string, headersOnly bool, logger *slog.Logger) (bool, int, error) {
	frameID, err := store.FrameIDByDestination(ctx, destFile)
	if err != nil {
		return false, 0, services.Wrap(services.ErrTransient, "import", "metadata",
			fmt.Sprintf("lookup frame %s", destFile), err)
	}
	has, err := store.HasMetadata(ctx, frameID)
	if err != nil {
		return false, 0, services.Wrap(services.ErrTransient, "import", "metadata",
			fmt.Sprintf("check metadata %s", destFile), err)
	}
	if has {
		return false, 0, nil
	}
	if _, err := os.Stat(destFile); err != nil {
		logger.Warn("organized file missing on disk", logging.String("path", destFile))
		return false, 0, nil
	}

	rows := 0
	insert := func(key string, numeric *float64, text *string) error {
		inserted, err := store.InsertAttribute(ctx, frameID, key, numeric, text)
		if err != nil {
			return services.Wrap(services.ErrTransient, "import", "metadata",
				fmt.Sprintf("insert %s for %s", key, destFile), err)
		}
		if inserted {
			rows++
		}
		return nil
	}

	if headersOnly {
		header, err := fits.ReadHeader(destFile)
		if err != nil {
			logger.Warn("unreadable frame", logging.String("path", destFile), logging.Error(err))
			return false, 0, nil
		}
		if err := insertHeaderCards(header, insert); err != nil {
			return false, rows, err
		}
		return true, rows, nil
	}

	image, err := fits.ReadImage(destFile)
	if err != nil {
		logger.Warn("unreadable frame", logging.String("path", destFile), logging.Error(err))
		return false, 0, nil
	}
	if err := insertHeaderCards(image.Header, insert); err != nil {
		return false, rows, err
	}

	threshold := image.SaturationCeiling()
	if maxadu, ok := image.Header.Float("MAXADU"); ok {
		threshold = maxadu
	}
	summary, err := stats.Compute(image.Pixels, threshold)
	if err != nil {
		logger.Warn("no pixel data", logging.String("path", destFile), logging.Error(err))
		return true, rows, nil
	}
	for key, value := range statRows(summary) {
		v := value
		if err := insert(key, &v, nil); err != nil {
			return false, rows, err
		}
	}
	return true, rows, nil
}

func insertHeaderCards(header *fits.Header, insert func(key string, numeric *float64, text *string) error) error {
	for _, card := range header.Cards() {
		if skipKeywords[card.Key] {
			continue
		}
		if card.Value.IsNumeric() {
			v, _ := card.Value.AsFloat()
			if err := insert(card.Key, &v, nil); err != nil {
				return err
			}
			continue
		}
		text := card.Value.Text()
		if err := insert(card.Key, nil, &text); err != nil {
			return err
		}
	}
	return nil
}

// statRows flattens a statistics summary into catalog attribute keys.
func statRows(s *stats.Summary) map[string]float64 {
	rows := map[string]float64{
		"stat_mean":                  s.Mean,
		"stat_median":                s.Median,
		"stat_min":                   s.Min,
		"stat_max":                   s.Max,
		"stat_std":                   s.Std,
		"stat_total_pixels":          float64(s.TotalPixels),
		"stat_saturation_threshold":  s.SaturationThreshold,
		"stat_pixels_saturated_low":  float64(s.SaturatedLow),
		"stat_pixels_saturated_high": float64(s.SaturatedHigh),
	}
	for rank, value := range s.Percentiles {
		rows[fmt.Sprintf("stat_percentile_%02d", rank)] = value
	}
	return rows
}

func frameFromEntry(entry auditlog.Entry) *catalog.Frame {
	return &catalog.Frame{
		SessionDate: entry.SessionDate,
		Target:      entry.Target,
		FrameType:   entry.FrameType,
		Filter:      entry.Filter,
		Gain:        entry.Gain,
		ExposureSec: entry.ExposureSec,
		Temperature: entry.Temperature,
		Timestamp:   entry.Timestamp,
		SourceFile:  entry.OriginFile,
		DestFile:    entry.DestFile,
	}
}
