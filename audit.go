// audit.go: Audit trail for kvargs parse outcomes
//
// Every parse call on a Parser configured with an AuditLogger leaves one
// structured event behind: which identifiers were dispatched or ignored,
// which token was malformed, which required identifiers were missing.
// Raw values are never recorded since arguments routinely carry secrets.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// AuditLevel represents the severity of audit events
type AuditLevel int

const (
	AuditInfo AuditLevel = iota
	AuditWarn
	AuditCritical
)

func (al AuditLevel) String() string {
	switch al {
	case AuditInfo:
		return "INFO"
	case AuditWarn:
		return "WARN"
	case AuditCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseAuditLevel parses INFO, WARN or CRITICAL (case insensitive)
func ParseAuditLevel(name string) (AuditLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INFO":
		return AuditInfo, nil
	case "WARN", "WARNING":
		return AuditWarn, nil
	case "CRITICAL":
		return AuditCritical, nil
	default:
		return AuditInfo, errors.New(ErrCodeInvalidConfig, fmt.Sprintf("unknown audit level %q", name))
	}
}

// Audit event names
const (
	EventArgumentsParsed       = "arguments_parsed"
	EventMalformedInput        = "malformed_input"
	EventRequiredMissing       = "required_missing"
	EventValueConversionFailed = "value_conversion_failed"
)

// AuditEvent represents a single auditable event
type AuditEvent struct {
	Timestamp   time.Time              `json:"timestamp"`
	Level       AuditLevel             `json:"level"`
	Event       string                 `json:"event"`
	Component   string                 `json:"component"`
	Identifiers []string               `json:"identifiers,omitempty"`
	ProcessID   int                    `json:"process_id"`
	ProcessName string                 `json:"process_name"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Checksum    string                 `json:"checksum"` // For tamper detection
}

// AuditConfig configures the audit system
type AuditConfig struct {
	Enabled       bool          `json:"enabled"`
	OutputFile    string        `json:"output_file"`
	MinLevel      AuditLevel    `json:"min_level"`
	BufferSize    int           `json:"buffer_size"`
	FlushInterval time.Duration `json:"flush_interval"`
}

// DefaultAuditConfig returns the default audit configuration: enabled,
// stored in the unified SQLite database.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:       true,
		OutputFile:    "", // Empty selects the unified SQLite database
		MinLevel:      AuditInfo,
		BufferSize:    1000,
		FlushInterval: 5 * time.Second,
	}
}

// AuditQuery filters events returned by AuditLogger.Query
type AuditQuery struct {
	Event string    // Exact event name, empty for all
	Since time.Time // Zero for no lower bound
	Limit int       // <= 0 for no limit
}

// AuditStats summarizes the events held by an audit backend
type AuditStats struct {
	TotalEvents   int64            `json:"total_events"`
	EventsByLevel map[string]int64 `json:"events_by_level"`
	EventsByName  map[string]int64 `json:"events_by_name"`
	OldestEvent   *time.Time       `json:"oldest_event,omitempty"`
	NewestEvent   *time.Time       `json:"newest_event,omitempty"`
	StorageSize   int64            `json:"storage_size_bytes"`
	Backend       string           `json:"backend"`
}

// AuditLogger buffers audit events and flushes them to a backend.
// It is safe for concurrent use. A nil *AuditLogger discards every event.
type AuditLogger struct {
	config      AuditConfig
	backend     auditBackend
	buffer      []AuditEvent
	bufferMu    sync.Mutex
	flushTicker *time.Ticker
	stopCh      chan struct{}
	closeOnce   sync.Once
	processID   int
	processName string
}

// NewAuditLogger creates an audit logger, selecting the backend from
// config.OutputFile (see createAuditBackend).
func NewAuditLogger(config AuditConfig) (*AuditLogger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = *config.WithDefaults()

	backend, err := createAuditBackend(config)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeAuditError, "failed to initialize audit backend")
	}

	logger := &AuditLogger{
		config:      config,
		backend:     backend,
		buffer:      make([]AuditEvent, 0, config.BufferSize),
		stopCh:      make(chan struct{}),
		processID:   os.Getpid(),
		processName: getProcessName(),
	}

	if config.FlushInterval > 0 {
		logger.flushTicker = time.NewTicker(config.FlushInterval)
		go logger.flushLoop()
	}

	return logger, nil
}

// Log records an audit event
func (al *AuditLogger) Log(level AuditLevel, event string, identifiers []string, context map[string]interface{}) {
	if al == nil || al.backend == nil || !al.config.Enabled || level < al.config.MinLevel {
		return
	}

	auditEvent := AuditEvent{
		Timestamp:   timecache.CachedTime(),
		Level:       level,
		Event:       event,
		Component:   "kvargs",
		Identifiers: identifiers,
		ProcessID:   al.processID,
		ProcessName: al.processName,
		Context:     context,
	}
	auditEvent.Checksum = generateChecksum(auditEvent)

	al.bufferMu.Lock()
	al.buffer = append(al.buffer, auditEvent)
	if len(al.buffer) >= al.config.BufferSize {
		_ = al.flushBufferUnsafe() // best effort; Flush and Close report errors
	}
	al.bufferMu.Unlock()
}

// LogArgumentsParsed records a successful parse call
func (al *AuditLogger) LogArgumentsParsed(dispatched, ignored []string) {
	var context map[string]interface{}
	if len(ignored) > 0 {
		context = map[string]interface{}{"ignored": ignored}
	}
	al.Log(AuditInfo, EventArgumentsParsed, dispatched, context)
}

// LogMalformedInput records a token rejected for lacking a delimiter or identifier.
// Only the identifier part of the token is kept, when there is one.
func (al *AuditLogger) LogMalformedInput(token string) {
	identifier, _, found := strings.Cut(token, assignmentDelimiter)
	context := map[string]interface{}{"has_delimiter": found}
	if !found {
		// without a delimiter the whole token may be a value
		context["token_length"] = len(token)
		identifier = ""
	}
	var identifiers []string
	if identifier != "" {
		identifiers = []string{identifier}
	}
	al.Log(AuditWarn, EventMalformedInput, identifiers, context)
}

// LogRequiredMissing records a parse call rejected for missing required arguments
func (al *AuditLogger) LogRequiredMissing(missing []string) {
	al.Log(AuditWarn, EventRequiredMissing, missing, nil)
}

// LogConversionFailure records an argument that rejected its value
func (al *AuditLogger) LogConversionFailure(identifier string, err error) {
	context := map[string]interface{}{"code": Code(err)}
	al.Log(AuditWarn, EventValueConversionFailed, []string{identifier}, context)
}

// Flush immediately writes all buffered events
func (al *AuditLogger) Flush() error {
	if al == nil {
		return nil
	}
	al.bufferMu.Lock()
	defer al.bufferMu.Unlock()
	if err := al.flushBufferUnsafe(); err != nil {
		return err
	}
	return al.backend.Flush()
}

// Stats flushes pending events and summarizes the backend contents
func (al *AuditLogger) Stats() (*AuditStats, error) {
	if al == nil {
		return nil, errors.New(ErrCodeAuditError, "audit logging not enabled")
	}
	if err := al.Flush(); err != nil {
		return nil, err
	}
	return al.backend.Stats()
}

// Query flushes pending events and returns matching events, oldest first
func (al *AuditLogger) Query(query AuditQuery) ([]AuditEvent, error) {
	if al == nil {
		return nil, errors.New(ErrCodeAuditError, "audit logging not enabled")
	}
	if err := al.Flush(); err != nil {
		return nil, err
	}
	return al.backend.Query(query)
}

// Close stops the background flusher, flushes and releases the backend.
// It is safe to call more than once.
func (al *AuditLogger) Close() error {
	if al == nil {
		return nil
	}
	var closeErr error
	al.closeOnce.Do(func() {
		close(al.stopCh)
		if al.flushTicker != nil {
			al.flushTicker.Stop()
		}

		if err := al.Flush(); err != nil {
			closeErr = errors.Wrap(err, ErrCodeAuditError, "failed to flush audit logger during close")
			_ = al.backend.Close()
			return
		}
		if err := al.backend.Close(); err != nil {
			closeErr = errors.Wrap(err, ErrCodeAuditError, "failed to close audit backend")
		}
	})
	return closeErr
}

// flushLoop runs the background flush process
func (al *AuditLogger) flushLoop() {
	for {
		select {
		case <-al.flushTicker.C:
			_ = al.Flush()
		case <-al.stopCh:
			return
		}
	}
}

// flushBufferUnsafe writes the buffer to the backend (caller must hold bufferMu)
func (al *AuditLogger) flushBufferUnsafe() error {
	if len(al.buffer) == 0 {
		return nil
	}
	if err := al.backend.Write(al.buffer); err != nil {
		return errors.Wrap(err, ErrCodeAuditError, "failed to write audit events to backend")
	}
	al.buffer = al.buffer[:0]
	return nil
}

// generateChecksum creates a tamper-detection checksum using SHA-256
func generateChecksum(event AuditEvent) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%v",
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		event.Event, event.Component,
		strings.Join(event.Identifiers, ","), event.Context)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// VerifyChecksum reports whether event still matches its checksum
func VerifyChecksum(event AuditEvent) bool {
	return event.Checksum == generateChecksum(event)
}

func getProcessName() string {
	if len(os.Args) > 0 && os.Args[0] != "" {
		return filepath.Base(os.Args[0])
	}
	return "kvargs"
}
