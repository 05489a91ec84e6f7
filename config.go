// config.go: Parser and audit configuration for kvargs
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"path/filepath"
	"time"

	"github.com/agilira/go-errors"
)

// Config configures a Parser
type Config struct {
	// AuditLogger records parse outcomes. Nil disables auditing.
	// Errors are returned to the caller whether or not they are audited.
	AuditLogger *AuditLogger
}

// WithDefaults applies sensible defaults to the audit configuration
func (c *AuditConfig) WithDefaults() *AuditConfig {
	config := *c

	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}

	if config.FlushInterval < 0 {
		config.FlushInterval = 5 * time.Second
	}

	if config.MinLevel < AuditInfo || config.MinLevel > AuditCritical {
		config.MinLevel = AuditInfo
	}

	return &config
}

// Validate checks the audit configuration for values WithDefaults will not fix
func (c *AuditConfig) Validate() error {
	if c.BufferSize < 0 {
		return errors.New(ErrCodeInvalidConfig, "audit buffer size cannot be negative")
	}
	if c.FlushInterval < 0 {
		return errors.New(ErrCodeInvalidConfig, "audit flush interval cannot be negative")
	}
	if c.OutputFile != "" {
		switch filepath.Ext(c.OutputFile) {
		case ".db", ".sqlite", ".jsonl":
		default:
			return errors.New(ErrCodeInvalidConfig,
				"audit output file must end in .db, .sqlite or .jsonl: "+c.OutputFile)
		}
	}
	return nil
}
