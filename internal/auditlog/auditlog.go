package auditlog

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Action records what the organizer did with one file.
type Action string

const (
	ActionCopied            Action = "copied"
	ActionSkippedExists     Action = "skipped_exists"
	ActionSkippedError      Action = "skipped_error"
	ActionSkippedUnreadable Action = "skipped_unreadable"
)

// columns is the fixed TSV header, one column per Entry field.
var columns = []string{
	"sequence_number",
	"origin_file",
	"destination_file",
	"action",
	"frame_type",
	"target",
	"filter",
	"exposure_sec",
	"gain",
	"temperature_c",
	"temp_folder",
	"timestamp",
	"session_date",
	"tz_offset_hours",
}

// Entry is one audit log line. Optional numeric fields are pointers; nil
// renders as an empty column.
type Entry struct {
	Sequence    int
	OriginFile  string
	DestFile    string
	Action      Action
	FrameType   string
	Target      string
	Filter      string
	ExposureSec *float64
	Gain        string
	Temperature *float64
	TempFolder  string
	Timestamp   string
	SessionDate string
	TzOffset    *float64
}

// Writer appends entries to a tab-separated audit log, flushing after every
// line so a crash mid-run loses at most the line being written.
type Writer struct {
	file *os.File
	buf  *bufio.Writer
	seq  int
}

// Filename derives the audit log name for a run stamp.
func Filename(runStamp string) string {
	return fmt.Sprintf("organize_log_%s.tsv", runStamp)
}

// NewWriter creates the log file and writes the header row.
func NewWriter(path string) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create audit log: %w", err)
	}
	w := &Writer{file: file, buf: bufio.NewWriter(file)}
	if _, err := w.buf.WriteString(strings.Join(columns, "\t") + "\n"); err != nil {
		file.Close()
		return nil, fmt.Errorf("write audit log header: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		file.Close()
		return nil, fmt.Errorf("flush audit log header: %w", err)
	}
	return w, nil
}

// Append writes one entry, assigning the next sequence number, and flushes.
func (w *Writer) Append(entry Entry) error {
	w.seq++
	entry.Sequence = w.seq
	fields := []string{
		strconv.Itoa(entry.Sequence),
		entry.OriginFile,
		entry.DestFile,
		string(entry.Action),
		entry.FrameType,
		entry.Target,
		entry.Filter,
		formatOptFloat(entry.ExposureSec),
		entry.Gain,
		formatOptFloat(entry.Temperature),
		entry.TempFolder,
		entry.Timestamp,
		entry.SessionDate,
		formatOptFloat(entry.TzOffset),
	}
	if _, err := w.buf.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
		return fmt.Errorf("write audit log line: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush audit log line: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Read parses an audit log, returning entries whose action passes the filter.
// A nil filter returns every entry.
func Read(path string, filter func(Entry) bool) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read audit log header: %w", err)
		}
		return nil, fmt.Errorf("audit log %s is empty", path)
	}
	if header := scanner.Text(); header != strings.Join(columns, "\t") {
		return nil, fmt.Errorf("audit log %s has unexpected header", path)
	}

	var entries []Entry
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != len(columns) {
			return nil, fmt.Errorf("audit log %s line %d: %d columns, want %d", path, line, len(fields), len(columns))
		}
		seq, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("audit log %s line %d: bad sequence number: %w", path, line, err)
		}
		entry := Entry{
			Sequence:    seq,
			OriginFile:  fields[1],
			DestFile:    fields[2],
			Action:      Action(fields[3]),
			FrameType:   fields[4],
			Target:      fields[5],
			Filter:      fields[6],
			ExposureSec: parseOptFloat(fields[7]),
			Gain:        fields[8],
			Temperature: parseOptFloat(fields[9]),
			TempFolder:  fields[10],
			Timestamp:   fields[11],
			SessionDate: fields[12],
			TzOffset:    parseOptFloat(fields[13]),
		}
		if filter == nil || filter(entry) {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return entries, nil
}

// Imported reports whether an entry represents a file present at its
// destination (copied this run or already there from a previous one).
func Imported(entry Entry) bool {
	if entry.DestFile == "" {
		return false
	}
	return entry.Action == ActionCopied || entry.Action == ActionSkippedExists
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func parseOptFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
