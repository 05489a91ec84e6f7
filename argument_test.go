// argument_test.go: Tests for typed arguments and value conversion
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"reflect"
	"testing"
	"time"
)

func TestArgument_Conversions(t *testing.T) {
	tests := []struct {
		name     string
		argument Argument
		raw      string
		expected any
	}{
		{"string", String("s"), "hello world", "hello world"},
		{"string_keeps_spaces", String("s"), "  padded ", "  padded "},
		{"int", Int("i"), "42", 42},
		{"int_trimmed", Int("i"), " -7 ", -7},
		{"int64", Int64("i"), "9007199254740993", int64(9007199254740993)},
		{"bool_true", Bool("b"), "true", true},
		{"bool_yes", Bool("b"), "YES", true},
		{"bool_off", Bool("b"), "off", false},
		{"bool_zero", Bool("b"), "0", false},
		{"float", Float64("f"), "3.25", 3.25},
		{"duration", Duration("d"), "1m30s", 90 * time.Second},
		{"slice", StringSlice("l"), "a, b ,c", []string{"a", "b", "c"}},
		{"slice_empty", StringSlice("l"), "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.argument.AcceptValue(tt.raw); err != nil {
				t.Fatalf("AcceptValue(%q) failed: %v", tt.raw, err)
			}
			if !tt.argument.IsSet() {
				t.Error("Expected argument to be set")
			}
			if tt.argument.Raw() != tt.raw {
				t.Errorf("Expected raw %q, got %q", tt.raw, tt.argument.Raw())
			}
			if !reflect.DeepEqual(tt.argument.Value(), tt.expected) {
				t.Errorf("Expected value %#v, got %#v", tt.expected, tt.argument.Value())
			}
		})
	}
}

func TestArgument_ConversionFailureKeepsPreviousValue(t *testing.T) {
	tests := []struct {
		name     string
		argument Argument
		good     string
		bad      string
	}{
		{"int", Int("n"), "1", "abc"},
		{"int64", Int64("n"), "1", "1.5"},
		{"bool", Bool("n"), "true", "maybe"},
		{"float", Float64("n"), "1.5", "x"},
		{"duration", Duration("n"), "1s", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.argument.AcceptValue(tt.good); err != nil {
				t.Fatalf("AcceptValue(%q) failed: %v", tt.good, err)
			}
			before := tt.argument.Value()

			err := tt.argument.AcceptValue(tt.bad)
			if err == nil {
				t.Fatalf("Expected AcceptValue(%q) to fail", tt.bad)
			}
			if Code(err) != ErrCodeValueConversion {
				t.Errorf("Expected code %s, got %s", ErrCodeValueConversion, Code(err))
			}
			if !reflect.DeepEqual(tt.argument.Value(), before) {
				t.Errorf("Expected value to stay %v, got %v", before, tt.argument.Value())
			}
			if tt.argument.Raw() != tt.good {
				t.Errorf("Expected raw to stay %q, got %q", tt.good, tt.argument.Raw())
			}
		})
	}
}

func TestArgument_Options(t *testing.T) {
	plain := String("plain")
	if plain.Identifier() != "plain" || plain.Required() || plain.Description() != "" {
		t.Errorf("Unexpected defaults: %q required=%v description=%q",
			plain.Identifier(), plain.Required(), plain.Description())
	}

	documented := Int("port", Required(), Description("listen port"), nil)
	if !documented.Required() {
		t.Error("Expected Required() option to apply")
	}
	if documented.Description() != "listen port" {
		t.Errorf("Expected description 'listen port', got %q", documented.Description())
	}
	if documented.Kind() != KindInt {
		t.Errorf("Expected kind int, got %s", documented.Kind())
	}
}

func TestArgument_GetAndGetOr(t *testing.T) {
	port := Int("port")
	if port.Get() != 0 {
		t.Errorf("Expected zero value before any parse, got %d", port.Get())
	}
	if port.GetOr(8080) != 8080 {
		t.Errorf("Expected fallback 8080, got %d", port.GetOr(8080))
	}

	// an explicit zero is distinct from unset
	if err := port.AcceptValue("0"); err != nil {
		t.Fatal(err)
	}
	if port.GetOr(8080) != 0 {
		t.Errorf("Expected accepted 0 to win over fallback, got %d", port.GetOr(8080))
	}
}

func TestArgument_Bind(t *testing.T) {
	var timeout time.Duration
	arg := Duration("timeout").Bind(&timeout)

	if err := arg.AcceptValue("250ms"); err != nil {
		t.Fatal(err)
	}
	if timeout != 250*time.Millisecond {
		t.Errorf("Expected bound variable 250ms, got %v", timeout)
	}

	if err := arg.AcceptValue("bogus"); err == nil {
		t.Fatal("Expected conversion error")
	}
	if timeout != 250*time.Millisecond {
		t.Errorf("Expected bound variable untouched by failed conversion, got %v", timeout)
	}
}

func TestArgument_OverwriteOnEveryAccept(t *testing.T) {
	name := String("name")
	for _, value := range []string{"a", "b", "c"} {
		if err := name.AcceptValue(value); err != nil {
			t.Fatal(err)
		}
	}
	if name.Get() != "c" {
		t.Errorf("Expected last value 'c', got %q", name.Get())
	}
}

func TestNewArgument(t *testing.T) {
	kinds := []Kind{KindString, KindInt, KindInt64, KindBool, KindFloat64, KindDuration, KindStringSlice}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			argument, err := NewArgument(kind, "x", Required())
			if err != nil {
				t.Fatalf("NewArgument(%s) failed: %v", kind, err)
			}
			if argument.Kind() != kind {
				t.Errorf("Expected kind %s, got %s", kind, argument.Kind())
			}
			if !argument.Required() {
				t.Error("Expected options to be forwarded")
			}
		})
	}

	if _, err := NewArgument(Kind(200), "x"); Code(err) != ErrCodeInvalidDefinition {
		t.Errorf("Expected %s for unknown kind, got %v", ErrCodeInvalidDefinition, err)
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"":             KindString,
		"string":       KindString,
		"STR":          KindString,
		"int":          KindInt,
		"integer":      KindInt,
		"int64":        KindInt64,
		"boolean":      KindBool,
		"float":        KindFloat64,
		"number":       KindFloat64,
		" duration ":   KindDuration,
		"string_slice": KindStringSlice,
		"list":         KindStringSlice,
	}

	for name, expected := range tests {
		kind, err := ParseKind(name)
		if err != nil {
			t.Errorf("ParseKind(%q) failed: %v", name, err)
			continue
		}
		if kind != expected {
			t.Errorf("ParseKind(%q) = %s, expected %s", name, kind, expected)
		}
	}

	if _, err := ParseKind("uuid"); Code(err) != ErrCodeInvalidDefinition {
		t.Errorf("Expected %s for unknown type, got %v", ErrCodeInvalidDefinition, err)
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("Expected 'unknown' for out of range kind, got %q", Kind(99).String())
	}
}
