package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/ofx"
)

// FileName is the database file created inside the data directory.
const FileName = "ofxpostern.db"

// ErrDatabaseNotFound is returned by Open when the database does not exist
// and CreateIfNotExists is false.
var ErrDatabaseNotFound = errors.New("database not found")

// ResponseDB stores probe responses and scan reports in SQLite.
type ResponseDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures ResponseDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database inside dbDir.
func Open(dbDir string, opts Options) (*ResponseDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		mode = "rw"
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; batch scans share this handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ResponseDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return rdb, nil
}

// Path returns the database file path.
func (rdb *ResponseDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *ResponseDB) Close() error {
	return rdb.db.Close()
}

func (rdb *ResponseDB) createTables() error {
	schema := `
	-- One row per probe and request identity
	CREATE TABLE IF NOT EXISTS probe_responses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target_key TEXT NOT NULL,
		target TEXT NOT NULL,
		probe TEXT NOT NULL,
		method TEXT NOT NULL,
		url TEXT NOT NULL,
		status_code INTEGER,
		headers TEXT,
		body TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(target_key, probe)
	);

	CREATE INDEX IF NOT EXISTS idx_responses_key ON probe_responses(target_key);

	-- Scan reports store complete results as JSON
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		fid TEXT,
		org TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_target ON scan_reports(target);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON scan_reports(timestamp);
	`
	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// CacheKey identifies the request side of a scan. The POST bodies depend
// on FID, ORG and version, so all of them take part in the key.
type CacheKey struct {
	Target  string
	FID     string
	Org     string
	Version int
}

// Digest returns the hex SHA3-256 digest stored in the database.
func (k CacheKey) Digest() string {
	sum := sha3.Sum256([]byte(k.Target + "\n" + k.FID + "\n" + k.Org + "\n" + strconv.Itoa(k.Version)))
	return hex.EncodeToString(sum[:])
}

// SaveProbe stores a probe response, replacing an earlier one for the same
// key and probe. Sentinel records are not stored so that unreachable
// servers are tried again on the next run.
func (rdb *ResponseDB) SaveProbe(ctx context.Context, key CacheKey, rec model.ProbeRecord) error {
	if rec.Sentinel {
		return nil
	}
	headersJSON, err := json.Marshal(rec.Headers)
	if err != nil {
		return fmt.Errorf("failed to serialize headers: %w", err)
	}

	query := `
	INSERT INTO probe_responses (target_key, target, probe, method, url, status_code, headers, body)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(target_key, probe) DO UPDATE SET
		method = excluded.method,
		url = excluded.url,
		status_code = excluded.status_code,
		headers = excluded.headers,
		body = excluded.body,
		timestamp = CURRENT_TIMESTAMP
	`
	_, err = rdb.db.ExecContext(ctx, query,
		key.Digest(),
		key.Target,
		string(rec.Name),
		rec.Method,
		rec.URL,
		rec.StatusCode,
		string(headersJSON),
		rec.Body,
	)
	if err != nil {
		return fmt.Errorf("failed to save probe response: %w", err)
	}
	return nil
}

// LoadProbe returns a stored response and whether one was found.
func (rdb *ResponseDB) LoadProbe(ctx context.Context, key CacheKey, name model.ProbeName) (model.ProbeRecord, bool, error) {
	query := `
	SELECT method, url, status_code, headers, body
	FROM probe_responses
	WHERE target_key = ? AND probe = ?
	`
	rec := model.ProbeRecord{Name: name}
	var headersJSON sql.NullString
	err := rdb.db.QueryRowContext(ctx, query, key.Digest(), string(name)).Scan(
		&rec.Method,
		&rec.URL,
		&rec.StatusCode,
		&headersJSON,
		&rec.Body,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProbeRecord{}, false, nil
	}
	if err != nil {
		return model.ProbeRecord{}, false, fmt.Errorf("failed to load probe response: %w", err)
	}

	rec.Headers = model.Headers{}
	if headersJSON.Valid && headersJSON.String != "" {
		if err := json.Unmarshal([]byte(headersJSON.String), &rec.Headers); err != nil {
			return model.ProbeRecord{}, false, fmt.Errorf("failed to parse headers: %w", err)
		}
	}
	return rec, true, nil
}

// LoadProbes returns the stored responses for key in canonical probe
// order. Probes with no stored response are left out.
func (rdb *ResponseDB) LoadProbes(ctx context.Context, key CacheKey) (model.ProbeSet, error) {
	var set model.ProbeSet
	for _, name := range model.ProbeNames() {
		rec, ok, err := rdb.LoadProbe(ctx, key, name)
		if err != nil {
			return nil, err
		}
		if ok {
			set = append(set, rec)
		}
	}
	return set, nil
}

// SaveScanReport stores a finished scan.
func (rdb *ResponseDB) SaveScanReport(ctx context.Context, report *model.ScanReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	summary := map[string]int{
		"passed": report.Ledger.PassCount(),
		"failed": report.Ledger.FailCount(),
	}
	summaryJSON, _ := json.Marshal(summary) //nolint:errcheck,errchkjson // map of ints always marshals

	query := `
	INSERT INTO scan_reports (target, fid, org, timestamp, report_json, summary)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := rdb.db.ExecContext(ctx, query,
		report.Target,
		report.FID,
		report.Org,
		report.DateScanned.UTC().Format(time.RFC3339),
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan report: %w", err)
	}
	return result.LastInsertId()
}

// ScanReportMetadata summarizes a stored report without loading it.
type ScanReportMetadata struct {
	ID        int64
	Target    string
	FID       string
	Org       string
	Timestamp time.Time
	Passed    int
	Failed    int
}

// ListScanReports returns stored reports, newest first. An empty target
// lists every target.
func (rdb *ResponseDB) ListScanReports(ctx context.Context, target string) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, target, fid, org, timestamp, summary
	FROM scan_reports
	`
	var args []any
	if target != "" {
		query += " WHERE target = ?"
		args = append(args, target)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan reports: %w", err)
	}
	defer rows.Close()

	var results []ScanReportMetadata
	for rows.Next() {
		var (
			meta        ScanReportMetadata
			fid, org    sql.NullString
			timestamp   string
			summaryJSON sql.NullString
		)
		if err := rows.Scan(&meta.ID, &meta.Target, &fid, &org, &timestamp, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.FID = fid.String
		meta.Org = org.String
		meta.Timestamp = parseTimestamp(timestamp)

		if summaryJSON.Valid && summaryJSON.String != "" {
			var summary map[string]int
			if err := json.Unmarshal([]byte(summaryJSON.String), &summary); err == nil {
				meta.Passed = summary["passed"]
				meta.Failed = summary["failed"]
			}
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// GetScanReport loads a stored report by ID. It returns nil when no
// report has that ID.
func (rdb *ResponseDB) GetScanReport(ctx context.Context, id int64) (*model.ScanReport, error) {
	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, "SELECT report_json FROM scan_reports WHERE id = ?", id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absence is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	if report.ErrorMessage != "" {
		report.Error = errors.New(report.ErrorMessage)
	}

	// The capability tree is serialized one way only; rebuild the
	// profile from the stored response.
	report.Profile = nil
	if rec, ok := report.Probes.Response(model.ProbeOFXProfile); ok {
		if profile, err := ofx.Decode(rec.Body); err == nil {
			report.Profile = profile
		}
	}
	return &report, nil
}

var timestampFormats = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries the formats SQLite may hand back, returning the
// zero time when none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
