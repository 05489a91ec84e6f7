// env_config.go: Environment variable support for kvargs audit configuration
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agilira/go-errors"
)

// Environment variables read by LoadAuditConfigFromEnv
const (
	EnvAuditEnabled       = "KVARGS_AUDIT_ENABLED"
	EnvAuditOutputFile    = "KVARGS_AUDIT_OUTPUT_FILE"
	EnvAuditMinLevel      = "KVARGS_AUDIT_MIN_LEVEL"
	EnvAuditBufferSize    = "KVARGS_AUDIT_BUFFER_SIZE"
	EnvAuditFlushInterval = "KVARGS_AUDIT_FLUSH_INTERVAL"
)

// LoadAuditConfigFromEnv overlays KVARGS_AUDIT_* environment variables on
// DefaultAuditConfig. Unset variables keep their defaults.
func LoadAuditConfigFromEnv() (AuditConfig, error) {
	config := DefaultAuditConfig()

	if value, ok := lookupEnv(EnvAuditEnabled); ok {
		enabled, err := parseBool(value)
		if err != nil {
			return config, errors.Wrap(err, ErrCodeInvalidConfig, "invalid "+EnvAuditEnabled)
		}
		config.Enabled = enabled
	}

	if value, ok := lookupEnv(EnvAuditOutputFile); ok {
		config.OutputFile = value
	}

	if value, ok := lookupEnv(EnvAuditMinLevel); ok {
		level, err := ParseAuditLevel(value)
		if err != nil {
			return config, err
		}
		config.MinLevel = level
	}

	if value, ok := lookupEnv(EnvAuditBufferSize); ok {
		size, err := strconv.Atoi(value)
		if err != nil || size <= 0 {
			return config, errors.New(ErrCodeInvalidConfig, "invalid "+EnvAuditBufferSize+": "+value)
		}
		config.BufferSize = size
	}

	if value, ok := lookupEnv(EnvAuditFlushInterval); ok {
		interval, err := time.ParseDuration(value)
		if err != nil || interval < 0 {
			return config, errors.New(ErrCodeInvalidConfig, "invalid "+EnvAuditFlushInterval+": "+value)
		}
		config.FlushInterval = interval
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// lookupEnv returns the trimmed value of key, treating blank values as unset
func lookupEnv(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != ""
}
