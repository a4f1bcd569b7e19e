package organize

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/gvrocha/rocksolid-fits/internal/auditlog"
	"github.com/gvrocha/rocksolid-fits/internal/fileutil"
	"github.com/gvrocha/rocksolid-fits/internal/frame"
	"github.com/gvrocha/rocksolid-fits/internal/logging"
	"github.com/gvrocha/rocksolid-fits/internal/services"
)

// lockFilename guards the output root against concurrent runs.
const lockFilename = ".rocksolid.lock"

// frameExtensions are the accepted exposure-file suffixes, matched
// case-insensitively.
var frameExtensions = map[string]bool{".fit": true, ".fits": true, ".fts": true}

// Options configures one organizer run.
type Options struct {
	InputDir  string
	OutputDir string

	// CalibrationLibrary routes darks and bias into the session-independent
	// library instead of per-session folders.
	CalibrationLibrary bool
	// RenameFiles rebuilds filenames from frame attributes instead of
	// suffixing the originals.
	RenameFiles bool
	// TzOffsetHours shifts capture timestamps for session grouping and
	// filename stamps. Nil means headers decide or UTC.
	TzOffsetHours *float64

	// Extractor defaults to the on-disk header reader; tests inject fakes.
	Extractor *frame.Extractor
	Logger    *slog.Logger
	// Clock stamps the audit log filename; defaults to time.Now.
	Clock func() time.Time
}

// Summary is the outcome tally of one run.
type Summary struct {
	RunID         string
	LogPath       string
	Found         int
	HiddenSkipped int
	Copied        int
	SkippedExists int
	SkippedError  int
	Unreadable    int
	Elapsed       time.Duration
}

// Processed returns the number of files that reached a terminal state.
func (s *Summary) Processed() int {
	return s.Copied + s.SkippedExists + s.SkippedError + s.Unreadable
}

// Run executes the two-pass batch: extract attributes from every frame under
// InputDir, bin each group's temperatures, then copy files into their derived
// destinations while appending the audit log. Per-file failures are logged
// and never abort the run; only a missing input directory or an unavailable
// output root is fatal.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	extractor := opts.Extractor
	if extractor == nil {
		extractor = frame.NewExtractor(nil, opts.TzOffsetHours, clock)
	}

	if info, err := os.Stat(opts.InputDir); err != nil || !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "organize", "scan",
			fmt.Sprintf("input directory %s does not exist", opts.InputDir), err)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "organize", "prepare",
			"create output directory", err)
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger = logger.With(logging.String(logging.FieldRunID, runID))

	lock := flock.New(filepath.Join(opts.OutputDir, lockFilename))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "organize", "lock",
			"acquire output lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "organize", "lock",
			fmt.Sprintf("output %s is in use by another run", opts.OutputDir), nil)
	}
	defer lock.Unlock()

	start := clock()
	summary := &Summary{RunID: runID}

	paths, hidden, err := scanFrames(opts.InputDir)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "organize", "scan",
			"walk input directory", err)
	}
	summary.Found = len(paths)
	summary.HiddenSkipped = hidden
	if hidden > 0 {
		logger.Info("skipped hidden files", logging.Int("count", hidden))
	}
	logger.Info("pass 1: reading frame attributes", logging.Int("files", len(paths)))

	var records []*frame.Record
	var unreadable []string
	for _, path := range paths {
		rec, err := extractor.Extract(path)
		if err != nil {
			logger.Warn("unreadable frame",
				logging.String("path", path), logging.Error(err))
			unreadable = append(unreadable, path)
			continue
		}
		records = append(records, rec)
	}

	sortRecordsByTimestamp(records)
	tempFolders := assignGroupFolders(records, opts.CalibrationLibrary)
	logger.Info("pass 2: organizing files", logging.Int("files", len(records)))

	logPath := filepath.Join(opts.OutputDir, auditlog.Filename(frame.FormatStamp(start)))
	writer, err := auditlog.NewWriter(logPath)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "organize", "audit",
			"open audit log", err)
	}
	defer writer.Close()
	summary.LogPath = logPath

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, services.Wrap(services.ErrTransient, "organize", "copy",
				"run interrupted", err)
		}
		entry := copyFrame(rec, opts, tempFolders[rec], logger)
		switch entry.Action {
		case auditlog.ActionCopied:
			summary.Copied++
		case auditlog.ActionSkippedExists:
			summary.SkippedExists++
		default:
			summary.SkippedError++
		}
		if err := writer.Append(entry); err != nil {
			return summary, services.Wrap(services.ErrTransient, "organize", "audit",
				"append audit log", err)
		}
	}

	for _, path := range unreadable {
		summary.Unreadable++
		err := writer.Append(auditlog.Entry{
			OriginFile: path,
			Action:     auditlog.ActionSkippedUnreadable,
		})
		if err != nil {
			return summary, services.Wrap(services.ErrTransient, "organize", "audit",
				"append audit log", err)
		}
	}

	summary.Elapsed = clock().Sub(start)
	logger.Info("run complete",
		logging.Int("copied", summary.Copied),
		logging.Int("skipped_exists", summary.SkippedExists),
		logging.Int("skipped_error", summary.SkippedError),
		logging.Int("unreadable", summary.Unreadable),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

// copyFrame places one record and returns its audit entry. All failure modes
// collapse into the entry's action; nothing here is fatal to the run.
func copyFrame(rec *frame.Record, opts Options, tempFolder string, logger *slog.Logger) auditlog.Entry {
	if tempFolder == "" {
		tempFolder = UnknownTempFolder
	}
	destDir := DestinationDir(rec, opts.OutputDir, opts.CalibrationLibrary, tempFolder)
	destPath := filepath.Join(destDir, DestinationFilename(rec, opts.RenameFiles, opts.TzOffsetHours))

	entry := entryForRecord(rec, destPath, tempFolder, opts.TzOffsetHours)

	if _, err := os.Stat(destPath); err == nil {
		entry.Action = auditlog.ActionSkippedExists
		return entry
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		logger.Warn("copy failed",
			logging.String("path", rec.OriginPath), logging.Error(err))
		entry.Action = auditlog.ActionSkippedError
		return entry
	}
	if err := fileutil.CopyFilePreserve(rec.OriginPath, destPath); err != nil {
		logger.Warn("copy failed",
			logging.String("path", rec.OriginPath), logging.Error(err))
		entry.Action = auditlog.ActionSkippedError
		return entry
	}
	entry.Action = auditlog.ActionCopied
	return entry
}

func entryForRecord(rec *frame.Record, destPath, tempFolder string, tzOffset *float64) auditlog.Entry {
	target := ""
	if rec.Class == frame.ClassLight {
		target = rec.Target
	}
	exposure := rec.ExposureSeconds
	return auditlog.Entry{
		OriginFile:  rec.OriginPath,
		DestFile:    destPath,
		FrameType:   rec.FrameType,
		Target:      target,
		Filter:      rec.Filter,
		ExposureSec: &exposure,
		Gain:        rec.Gain,
		Temperature: rec.Temperature,
		TempFolder:  tempFolder,
		Timestamp:   rec.Timestamp,
		SessionDate: frame.SessionFromStamp(rec.Timestamp, tzOffset),
		TzOffset:    tzOffset,
	}
}

// scanFrames walks the input tree in lexical order, collecting exposure files
// and counting skipped hidden entries. Capture software writes incomplete
// frames as dotfiles, so hidden files and directories are ignored.
func scanFrames(root string) ([]string, int, error) {
	var paths []string
	hidden := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			hidden++
			return nil
		}
		if frameExtensions[strings.ToLower(filepath.Ext(name))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return paths, hidden, nil
}

// assignGroupFolders runs the window assigner once per group and maps each
// record to its folder suffix. Records without a temperature, or in groups
// with none, resolve to UnknownTempFolder.
func assignGroupFolders(records []*frame.Record, calibrationLibrary bool) map[*frame.Record]string {
	folders := make(map[*frame.Record]string, len(records))
	for key, group := range Group(records, calibrationLibrary) {
		var temps []float64
		for _, rec := range group {
			if rec.Temperature != nil {
				temps = append(temps, *rec.Temperature)
			}
		}
		labels := AssignTempFolders(temps, key.Kind == KindCalibration)
		for _, rec := range group {
			if rec.Temperature == nil {
				folders[rec] = UnknownTempFolder
				continue
			}
			label, ok := labels[*rec.Temperature]
			if !ok {
				label = UnknownTempFolder
			}
			folders[rec] = label
		}
	}
	return folders
}

func sortRecordsByTimestamp(records []*frame.Record) {
	// Stable keeps the lexical walk order for equal stamps.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
}
