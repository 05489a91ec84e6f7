// audit_backend.go: Storage backends for the kvargs audit trail
//
// Two backends share one interface: SQLite (the default, queryable) and
// JSONL (append-only, grep-able). createAuditBackend picks one from the
// configured output file and degrades from SQLite to JSONL when the
// database cannot be opened.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

const auditSchemaVersion = 1

// auditBackend defines the interface for audit storage backends.
// Implementations must be safe for concurrent use.
type auditBackend interface {
	// Write persists a batch of audit events
	Write(events []AuditEvent) error

	// Flush commits pending writes to durable storage
	Flush() error

	// Close releases all resources. The backend must not be used afterwards.
	Close() error

	// Stats summarizes stored events
	Stats() (*AuditStats, error)

	// Query returns matching events, oldest first
	Query(query AuditQuery) ([]AuditEvent, error)
}

// createAuditBackend creates the backend for config:
//  1. OutputFile ending in .jsonl selects JSONL
//  2. otherwise SQLite, at OutputFile when it ends in .db or .sqlite, at the
//     unified path when OutputFile is empty
//  3. SQLite failures fall back to JSONL next to the intended database
func createAuditBackend(config AuditConfig) (auditBackend, error) {
	if filepath.Ext(config.OutputFile) == ".jsonl" {
		return newJSONLBackend(config.OutputFile)
	}

	dbPath := config.OutputFile
	if dbPath == "" {
		dbPath = getUnifiedAuditPath()
	}

	backend, err := newSQLiteBackend(dbPath)
	if err == nil {
		return backend, nil
	}

	jsonlPath := strings.TrimSuffix(dbPath, filepath.Ext(dbPath)) + ".jsonl"
	jsonlBackend, jsonlErr := newJSONLBackend(jsonlPath)
	if jsonlErr != nil {
		return nil, fmt.Errorf("all audit backends failed - SQLite: %w, JSONL: %v", err, jsonlErr)
	}
	return jsonlBackend, nil
}

// getUnifiedAuditPath returns the default location of the SQLite audit database
func getUnifiedAuditPath() string {
	return filepath.Join(os.TempDir(), "kvargs", "audit.db")
}

// sqliteAuditBackend stores audit events in a SQLite database
type sqliteAuditBackend struct {
	db         *sql.DB
	dbPath     string
	insertStmt *sql.Stmt
	mu         sync.RWMutex
	closed     bool
}

// newSQLiteBackend opens (creating if needed) the database at dbPath
func newSQLiteBackend(dbPath string) (*sqliteAuditBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit database directory: %w", err)
	}

	// WAL keeps readers and the writer from blocking each other; busy_timeout
	// covers several processes sharing the unified database.
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	backend := &sqliteAuditBackend{db: db, dbPath: dbPath}

	if err := backend.initializeSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize audit database schema: %w", err)
	}

	stmt, err := db.Prepare(`
	INSERT INTO audit_events (
		timestamp_ns, timestamp, level, event, component,
		identifiers, process_id, process_name, context, checksum
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare audit insert statement: %w", err)
	}
	backend.insertStmt = stmt

	return backend, nil
}

// initializeSchema creates the events table and records the schema version
func (s *sqliteAuditBackend) initializeSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS schema_info (
			version INTEGER PRIMARY KEY,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS audit_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp_ns INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			level TEXT NOT NULL,
			event TEXT NOT NULL,
			component TEXT NOT NULL,
			identifiers TEXT,
			process_id INTEGER,
			process_name TEXT,
			context TEXT,
			checksum TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp_ns)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_event ON audit_events(event)`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(`INSERT OR IGNORE INTO schema_info (version) VALUES (?)`, auditSchemaVersion)
	return err
}

// Write inserts the batch in a single transaction
func (s *sqliteAuditBackend) Write(events []AuditEvent) (err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("cannot write to closed SQLite audit backend")
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txStmt := tx.Stmt(s.insertStmt)
	defer txStmt.Close()

	for _, event := range events {
		if err = insertEvent(txStmt, event); err != nil {
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit transaction: %w", err)
	}
	return nil
}

func insertEvent(stmt *sql.Stmt, event AuditEvent) error {
	identifiersJSON, err := marshalOptional(event.Identifiers, len(event.Identifiers) > 0)
	if err != nil {
		return fmt.Errorf("failed to serialize identifiers: %w", err)
	}
	contextJSON, err := marshalOptional(event.Context, len(event.Context) > 0)
	if err != nil {
		return fmt.Errorf("failed to serialize context: %w", err)
	}

	_, err = stmt.Exec(
		event.Timestamp.UnixNano(),
		event.Timestamp.Format(time.RFC3339Nano),
		event.Level.String(),
		event.Event,
		event.Component,
		identifiersJSON,
		event.ProcessID,
		event.ProcessName,
		contextJSON,
		event.Checksum,
	)
	return err
}

func marshalOptional(value interface{}, present bool) (string, error) {
	if !present {
		return "", nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Flush forces a WAL checkpoint
func (s *sqliteAuditBackend) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil
	}
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to flush SQLite audit backend: %w", err)
	}
	return nil
}

// Stats summarizes the stored events
func (s *sqliteAuditBackend) Stats() (*AuditStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("SQLite audit backend is closed")
	}

	stats := &AuditStats{
		EventsByLevel: make(map[string]int64),
		EventsByName:  make(map[string]int64),
		Backend:       "sqlite",
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM audit_events").Scan(&stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("failed to count audit events: %w", err)
	}
	if err := s.countBy("level", stats.EventsByLevel); err != nil {
		return nil, err
	}
	if err := s.countBy("event", stats.EventsByName); err != nil {
		return nil, err
	}

	if stats.TotalEvents > 0 {
		var oldest, newest int64
		if err := s.db.QueryRow("SELECT MIN(timestamp_ns), MAX(timestamp_ns) FROM audit_events").Scan(&oldest, &newest); err != nil {
			return nil, fmt.Errorf("failed to read audit time range: %w", err)
		}
		oldestTime, newestTime := time.Unix(0, oldest), time.Unix(0, newest)
		stats.OldestEvent, stats.NewestEvent = &oldestTime, &newestTime
	}

	if info, err := os.Stat(s.dbPath); err == nil {
		stats.StorageSize = info.Size()
	}
	return stats, nil
}

// countBy fills counts grouped by column, which must be a trusted column name
func (s *sqliteAuditBackend) countBy(column string, counts map[string]int64) error {
	rows, err := s.db.Query("SELECT " + column + ", COUNT(*) FROM audit_events GROUP BY " + column) // #nosec G202 -- column is a constant
	if err != nil {
		return fmt.Errorf("failed to group audit events by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan audit %s counts: %w", column, err)
		}
		counts[key] = count
	}
	return rows.Err()
}

// Query returns events matching query, oldest first
func (s *sqliteAuditBackend) Query(query AuditQuery) ([]AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("SQLite audit backend is closed")
	}

	sqlQuery := `SELECT timestamp_ns, level, event, component, identifiers,
		process_id, process_name, context, checksum
		FROM audit_events WHERE timestamp_ns >= ?`
	args := []interface{}{int64(0)}
	if !query.Since.IsZero() {
		args[0] = query.Since.UnixNano()
	}
	if query.Event != "" {
		sqlQuery += " AND event = ?"
		args = append(args, query.Event)
	}
	sqlQuery += " ORDER BY id"
	if query.Limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, query.Limit)
	}

	rows, err := s.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var (
			timestampNs                  int64
			level, identifiers, eventCtx string
			event                        AuditEvent
		)
		if err := rows.Scan(&timestampNs, &level, &event.Event, &event.Component, &identifiers,
			&event.ProcessID, &event.ProcessName, &eventCtx, &event.Checksum); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		event.Timestamp = time.Unix(0, timestampNs)
		event.Level, _ = ParseAuditLevel(level)
		if identifiers != "" {
			if err := json.Unmarshal([]byte(identifiers), &event.Identifiers); err != nil {
				return nil, fmt.Errorf("failed to decode audit identifiers: %w", err)
			}
		}
		if eventCtx != "" {
			if err := json.Unmarshal([]byte(eventCtx), &event.Context); err != nil {
				return nil, fmt.Errorf("failed to decode audit context: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Close flushes the WAL and releases the database. Safe to call twice.
func (s *sqliteAuditBackend) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.insertStmt != nil {
		if err := s.insertStmt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close insert statement: %w", err))
		}
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing SQLite audit backend: %v", errs)
	}
	return nil
}

// jsonlAuditBackend appends one JSON object per event to a file
type jsonlAuditBackend struct {
	file   *os.File
	path   string
	mu     sync.Mutex
	closed bool
}

func newJSONLBackend(path string) (*jsonlAuditBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("JSONL backend requires an output file")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create JSONL audit log directory: %w", err)
	}

	// owner read/write only
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 -- path is caller configured
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL audit log file: %w", err)
	}
	return &jsonlAuditBackend{file: file, path: path}, nil
}

// Write appends the batch
func (j *jsonlAuditBackend) Write(events []AuditEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return fmt.Errorf("cannot write to closed JSONL audit backend")
	}

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to serialize audit event: %w", err)
		}
		data = append(data, '\n')
		if _, err := j.file.Write(data); err != nil {
			return fmt.Errorf("failed to write audit event to JSONL: %w", err)
		}
	}
	return nil
}

// Flush fsyncs the file
func (j *jsonlAuditBackend) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync JSONL audit file: %w", err)
	}
	return nil
}

// readAll decodes every event in the file (caller must hold mu)
func (j *jsonlAuditBackend) readAll() ([]AuditEvent, error) {
	file, err := os.Open(j.path) // #nosec G304 -- path is caller configured
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL audit log: %w", err)
	}
	defer file.Close()

	var events []AuditEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event AuditEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("failed to decode JSONL audit event: %w", err)
		}
		events = append(events, event)
	}
	return events, scanner.Err()
}

// Stats scans the whole file
func (j *jsonlAuditBackend) Stats() (*AuditStats, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	events, err := j.readAll()
	if err != nil {
		return nil, err
	}

	stats := &AuditStats{
		EventsByLevel: make(map[string]int64),
		EventsByName:  make(map[string]int64),
		Backend:       "jsonl",
	}
	for i := range events {
		event := &events[i]
		stats.TotalEvents++
		stats.EventsByLevel[event.Level.String()]++
		stats.EventsByName[event.Event]++
		if stats.OldestEvent == nil || event.Timestamp.Before(*stats.OldestEvent) {
			stats.OldestEvent = &event.Timestamp
		}
		if stats.NewestEvent == nil || event.Timestamp.After(*stats.NewestEvent) {
			stats.NewestEvent = &event.Timestamp
		}
	}
	if info, err := os.Stat(j.path); err == nil {
		stats.StorageSize = info.Size()
	}
	return stats, nil
}

// Query scans the whole file
func (j *jsonlAuditBackend) Query(query AuditQuery) ([]AuditEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	events, err := j.readAll()
	if err != nil {
		return nil, err
	}

	var matched []AuditEvent
	for _, event := range events {
		if query.Event != "" && event.Event != query.Event {
			continue
		}
		if !query.Since.IsZero() && event.Timestamp.Before(query.Since) {
			continue
		}
		matched = append(matched, event)
		if query.Limit > 0 && len(matched) == query.Limit {
			break
		}
	}
	return matched, nil
}

// Close releases the file. Safe to call twice.
func (j *jsonlAuditBackend) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true
	return j.file.Close()
}
