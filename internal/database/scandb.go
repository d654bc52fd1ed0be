package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sdstatus/internal/model"
)

// ErrNoScans is returned when the history database contains no scan runs.
var ErrNoScans = errors.New("no scans recorded")

// ScanDB provides SQLite-based storage for scan history.
// It manages connection pooling and provides methods for saving and
// retrieving scan runs.
//
// Design decision: We store each run as a single JSON snapshot rather
// than normalizing outcomes into rows. The l10n subcommand consumes a
// whole run at a time, and a snapshot keeps the schema stable as the
// outcome shape evolves.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, "sdstatus.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- Scan runs store complete scan results as JSON snapshots
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		directory_url TEXT NOT NULL,
		total INTEGER NOT NULL,
		available INTEGER NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveScan stores a completed scan run.
// Returns the database ID of the saved run.
func (sdb *ScanDB) SaveScan(ctx context.Context, directoryURL string, result model.ScanResult) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize scan result: %w", err)
	}

	query := `
	INSERT INTO scans (directory_url, total, available, result_json)
	VALUES (?, ?, ?, ?)
	`

	res, err := sdb.db.ExecContext(ctx, query,
		directoryURL,
		result.Len(),
		result.AvailableCount(),
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan: %w", err)
	}

	return res.LastInsertId()
}

// LatestScan retrieves the most recent scan run.
// Returns ErrNoScans if the database contains no runs.
func (sdb *ScanDB) LatestScan(ctx context.Context) (model.ScanResult, error) {
	query := `
	SELECT result_json FROM scans
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var resultJSON string
	err := sdb.db.QueryRowContext(ctx, query).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScanResult{}, ErrNoScans
	}
	if err != nil {
		return model.ScanResult{}, fmt.Errorf("failed to get latest scan: %w", err)
	}

	var result model.ScanResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return model.ScanResult{}, fmt.Errorf("failed to parse scan result: %w", err)
	}

	return result, nil
}

// ScanByID retrieves a scan run by its database ID.
// Returns ErrNoScans if no run has the given ID.
func (sdb *ScanDB) ScanByID(ctx context.Context, id int64) (model.ScanResult, error) {
	query := `
	SELECT result_json FROM scans
	WHERE id = ?
	`

	var resultJSON string
	err := sdb.db.QueryRowContext(ctx, query, id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScanResult{}, ErrNoScans
	}
	if err != nil {
		return model.ScanResult{}, fmt.Errorf("failed to get scan: %w", err)
	}

	var result model.ScanResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return model.ScanResult{}, fmt.Errorf("failed to parse scan result: %w", err)
	}

	return result, nil
}

// ScanRecord contains summary information about a stored scan run.
// This is used for displaying scan history without loading full results.
type ScanRecord struct {
	// ID is the unique identifier of the scan run in the database.
	ID int64

	// Timestamp is when the scan was performed.
	Timestamp time.Time

	// DirectoryURL is the directory endpoint the instance list came from.
	DirectoryURL string

	// Total is the number of instances probed.
	Total int

	// Available is the number of instances that responded with metadata.
	Available int
}

// History retrieves summaries of all stored scan runs, newest first.
func (sdb *ScanDB) History(ctx context.Context) ([]ScanRecord, error) {
	query := `
	SELECT id, timestamp, directory_url, total, available
	FROM scans
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var timestamp string

		if err := rows.Scan(&rec.ID, &timestamp, &rec.DirectoryURL, &rec.Total, &rec.Available); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		rec.Timestamp = parseTimestamp(timestamp)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
