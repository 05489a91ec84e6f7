// env_config_test.go: Tests for environment variable audit configuration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"testing"
	"time"
)

// clearAuditEnv blanks every KVARGS_AUDIT_* variable for the test
func clearAuditEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAuditEnabled, EnvAuditOutputFile, EnvAuditMinLevel, EnvAuditBufferSize, EnvAuditFlushInterval} {
		t.Setenv(key, "")
	}
}

func TestLoadAuditConfigFromEnv_Defaults(t *testing.T) {
	clearAuditEnv(t)

	config, err := LoadAuditConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadAuditConfigFromEnv failed: %v", err)
	}
	if config != DefaultAuditConfig() {
		t.Errorf("Expected defaults %+v, got %+v", DefaultAuditConfig(), config)
	}
}

func TestLoadAuditConfigFromEnv_Overrides(t *testing.T) {
	clearAuditEnv(t)
	t.Setenv(EnvAuditEnabled, "false")
	t.Setenv(EnvAuditOutputFile, "/tmp/kvargs-test.jsonl")
	t.Setenv(EnvAuditMinLevel, "warn")
	t.Setenv(EnvAuditBufferSize, "500")
	t.Setenv(EnvAuditFlushInterval, "3s")

	config, err := LoadAuditConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadAuditConfigFromEnv failed: %v", err)
	}

	if config.Enabled {
		t.Error("Expected audit to be disabled")
	}
	if config.OutputFile != "/tmp/kvargs-test.jsonl" {
		t.Errorf("Expected output file override, got %q", config.OutputFile)
	}
	if config.MinLevel != AuditWarn {
		t.Errorf("Expected WARN, got %s", config.MinLevel)
	}
	if config.BufferSize != 500 {
		t.Errorf("Expected buffer 500, got %d", config.BufferSize)
	}
	if config.FlushInterval != 3*time.Second {
		t.Errorf("Expected 3s flush interval, got %v", config.FlushInterval)
	}
}

func TestLoadAuditConfigFromEnv_BoolSpellings(t *testing.T) {
	for _, value := range []string{"1", "true", "YES", "on"} {
		clearAuditEnv(t)
		t.Setenv(EnvAuditEnabled, value)

		config, err := LoadAuditConfigFromEnv()
		if err != nil || !config.Enabled {
			t.Errorf("%s=%q: expected enabled, got %v (%v)", EnvAuditEnabled, value, config.Enabled, err)
		}
	}
}

func TestLoadAuditConfigFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{EnvAuditEnabled, "sometimes"},
		{EnvAuditMinLevel, "debug"},
		{EnvAuditBufferSize, "many"},
		{EnvAuditBufferSize, "0"},
		{EnvAuditFlushInterval, "soon"},
		{EnvAuditFlushInterval, "-1s"},
		{EnvAuditOutputFile, "/tmp/audit.log"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearAuditEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := LoadAuditConfigFromEnv(); Code(err) != ErrCodeInvalidConfig {
				t.Errorf("Expected %s, got %v", ErrCodeInvalidConfig, err)
			}
		})
	}
}

func TestLoadAuditConfigFromEnv_BlankIsUnset(t *testing.T) {
	clearAuditEnv(t)
	t.Setenv(EnvAuditBufferSize, "   ")

	config, err := LoadAuditConfigFromEnv()
	if err != nil {
		t.Fatalf("Expected blank value to be ignored, got %v", err)
	}
	if config.BufferSize != DefaultAuditConfig().BufferSize {
		t.Errorf("Expected default buffer size, got %d", config.BufferSize)
	}
}
