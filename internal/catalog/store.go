package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrFrameNotFound is returned when a destination path has no frame row.
var ErrFrameNotFound = errors.New("catalog: frame not found")

// Frame is one organized exposure file's row in fits_frames.
type Frame struct {
	ID          int64
	SessionDate string
	Target      string
	FrameType   string
	Filter      string
	Gain        string
	ExposureSec *float64
	Temperature *float64
	Timestamp   string
	SourceFile  string
	DestFile    string
}

// Store manages the statistics catalog backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies
// migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// InsertFrame adds a frame row unless its destination is already cataloged.
// It returns the row ID and whether a new row was inserted.
func (s *Store) InsertFrame(ctx context.Context, frame *Frame) (int64, bool, error) {
	if id, err := s.FrameIDByDestination(ctx, frame.DestFile); err == nil {
		return id, false, nil
	} else if !errors.Is(err, ErrFrameNotFound) {
		return 0, false, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO fits_frames (
            session_date, target, frame_type, filter, gain,
            exposure_sec, temperature_c, timestamp, source_file, destination_file
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		frame.SessionDate,
		frame.Target,
		frame.FrameType,
		frame.Filter,
		frame.Gain,
		frame.ExposureSec,
		frame.Temperature,
		frame.Timestamp,
		frame.SourceFile,
		frame.DestFile,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert frame: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("frame row id: %w", err)
	}
	return id, true, nil
}

// FrameIDByDestination looks up the frame row for an organized file.
func (s *Store) FrameIDByDestination(ctx context.Context, destFile string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM fits_frames WHERE destination_file = ?", destFile,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrFrameNotFound, destFile)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup frame: %w", err)
	}
	return id, nil
}

// InsertAttribute stores one (key, value) pair for a frame unless that key is
// already present. Exactly one of valueNumeric/valueText should be non-nil.
func (s *Store) InsertAttribute(ctx context.Context, frameID int64, key string, valueNumeric *float64, valueText *string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO fits_metadata (fits_file_id, metadata_key, value_numeric, value_text)
         VALUES (?, ?, ?, ?)`,
		frameID, key, valueNumeric, valueText,
	)
	if err != nil {
		return false, fmt.Errorf("insert metadata %s: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("metadata rows affected: %w", err)
	}
	return affected > 0, nil
}

// HasMetadata reports whether a frame already has any attribute rows, which
// the importer uses to skip already-processed files.
func (s *Store) HasMetadata(ctx context.Context, frameID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM fits_metadata WHERE fits_file_id = ?", frameID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count metadata: %w", err)
	}
	return count > 0, nil
}

// AttributeCount returns the number of metadata rows for a frame.
func (s *Store) AttributeCount(ctx context.Context, frameID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM fits_metadata WHERE fits_file_id = ?", frameID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count metadata: %w", err)
	}
	return count, nil
}

// Attribute fetches one metadata value for a frame.
func (s *Store) Attribute(ctx context.Context, frameID int64, key string) (*float64, *string, error) {
	var numeric sql.NullFloat64
	var text sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT value_numeric, value_text FROM fits_metadata WHERE fits_file_id = ? AND metadata_key = ?",
		frameID, key,
	).Scan(&numeric, &text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: attribute %s", ErrFrameNotFound, key)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lookup metadata %s: %w", key, err)
	}
	var n *float64
	if numeric.Valid {
		n = &numeric.Float64
	}
	var t *string
	if text.Valid {
		t = &text.String
	}
	return n, t, nil
}

// FrameCount returns the number of cataloged frames.
func (s *Store) FrameCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM fits_frames").Scan(&count); err != nil {
		return 0, fmt.Errorf("count frames: %w", err)
	}
	return count, nil
}
