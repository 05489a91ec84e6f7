// parser_test.go: Tests for identifier=value parsing
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"errors"
	"reflect"
	"testing"
)

// recordingArgument logs every accepted value
type recordingArgument struct {
	identifier string
	required   bool
	accepted   []string
	failOn     string
}

func newRecording(identifier string, required bool) *recordingArgument {
	return &recordingArgument{identifier: identifier, required: required}
}

var errRecordingRejected = errors.New("rejected by recording argument")

func (r *recordingArgument) Identifier() string { return r.identifier }
func (r *recordingArgument) Required() bool     { return r.required }
func (r *recordingArgument) Kind() Kind         { return KindString }
func (r *recordingArgument) IsSet() bool        { return len(r.accepted) > 0 }
func (r *recordingArgument) Value() any         { return r.Raw() }
func (r *recordingArgument) sealed()            {}

func (r *recordingArgument) Raw() string {
	if len(r.accepted) == 0 {
		return ""
	}
	return r.accepted[len(r.accepted)-1]
}

func (r *recordingArgument) AcceptValue(raw string) error {
	if r.failOn != "" && raw == r.failOn {
		return errRecordingRejected
	}
	r.accepted = append(r.accepted, raw)
	return nil
}

func TestParser_EndToEnd(t *testing.T) {
	name := String("name", Required())
	age := String("age")

	parser := ForArguments(name, age)
	if err := parser.ParseArgumentStrings([]string{"name=Alice", "age=30"}); err != nil {
		t.Fatalf("ParseArgumentStrings failed: %v", err)
	}

	if name.Get() != "Alice" {
		t.Errorf("Expected name='Alice', got '%s'", name.Get())
	}
	if age.Get() != "30" {
		t.Errorf("Expected age='30', got '%s'", age.Get())
	}
}

func TestParser_MissingRequired(t *testing.T) {
	name := newRecording("name", true)
	age := newRecording("age", false)

	err := ForArguments(name, age).ParseArgumentStrings([]string{"age=30"})
	if !IsUnfulfilledRequiredArgument(err) {
		t.Fatalf("Expected UnfulfilledRequiredArgumentError, got %v", err)
	}
	if got := MissingIdentifiers(err); !reflect.DeepEqual(got, []string{"name"}) {
		t.Errorf("Expected missing [name], got %v", got)
	}
	if Code(err) != ErrCodeUnfulfilledRequiredArgument {
		t.Errorf("Expected code %s, got %s", ErrCodeUnfulfilledRequiredArgument, Code(err))
	}

	// validation happens before dispatch
	if len(age.accepted) != 0 {
		t.Errorf("Expected no value dispatched to 'age', got %v", age.accepted)
	}
}

func TestParser_MissingRequiredReportsAll(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []string
		missing []string
	}{
		{"no_tokens", nil, []string{"host", "port", "user"}},
		{"one_present", []string{"port=1"}, []string{"host", "user"}},
		{"only_unknown", []string{"other=1"}, []string{"host", "port", "user"}},
		{"empty_value_counts", []string{"host=", "port=", "user="}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arguments := []*recordingArgument{
				newRecording("user", true),
				newRecording("host", true),
				newRecording("port", true),
				newRecording("verbose", false),
			}
			bound := make([]Argument, len(arguments))
			for i, a := range arguments {
				bound[i] = a
			}

			err := ForArguments(bound...).ParseArgumentStrings(tt.tokens)
			if tt.missing == nil {
				if err != nil {
					t.Fatalf("Expected success, got %v", err)
				}
				return
			}

			if got := MissingIdentifiers(err); !reflect.DeepEqual(got, tt.missing) {
				t.Errorf("Expected missing %v, got %v", tt.missing, got)
			}
			for _, a := range arguments {
				if len(a.accepted) != 0 {
					t.Errorf("Argument '%s' mutated on failed validation: %v", a.identifier, a.accepted)
				}
			}
		})
	}
}

func TestParser_DuplicateIdentifierKeepsFirst(t *testing.T) {
	a := newRecording("a", false)

	if err := ForArguments(a).ParseArgumentStrings([]string{"a=1", "a=2"}); err != nil {
		t.Fatalf("ParseArgumentStrings failed: %v", err)
	}
	if !reflect.DeepEqual(a.accepted, []string{"1"}) {
		t.Errorf("Expected accepted [1], got %v", a.accepted)
	}
}

func TestParser_UnmatchedIdentifiersIgnored(t *testing.T) {
	a := newRecording("a", false)

	if err := ForArguments(a).ParseArgumentStrings([]string{"a=1", "b=2"}); err != nil {
		t.Fatalf("Expected unmatched identifier to be ignored, got %v", err)
	}
	if !reflect.DeepEqual(a.accepted, []string{"1"}) {
		t.Errorf("Expected accepted [1], got %v", a.accepted)
	}
}

func TestParser_MalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		bad    string
	}{
		{"no_delimiter", []string{"a"}, "a"},
		{"empty_identifier", []string{"=value"}, "=value"},
		{"empty_token", []string{""}, ""},
		{"after_valid_token", []string{"a=1", "oops"}, "oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newRecording("a", false)

			err := ForArguments(a).ParseArgumentStrings(tt.tokens)
			if !IsMalformedInput(err) {
				t.Fatalf("Expected MalformedInputError, got %v", err)
			}
			var malformed *MalformedInputError
			if !errors.As(err, &malformed) || malformed.Token != tt.bad {
				t.Errorf("Expected offending token %q, got %+v", tt.bad, malformed)
			}
			if Code(err) != ErrCodeMalformedInput {
				t.Errorf("Expected code %s, got %s", ErrCodeMalformedInput, Code(err))
			}
			if len(a.accepted) != 0 {
				t.Errorf("Expected no dispatch, got %v", a.accepted)
			}
		})
	}
}

func TestParser_MalformedBeatsMissing(t *testing.T) {
	err := ForArguments(newRecording("name", true)).ParseArgumentStrings([]string{"junk"})
	if !IsMalformedInput(err) {
		t.Fatalf("Expected MalformedInputError before required check, got %v", err)
	}
}

func TestParser_ValueSplitOnFirstDelimiter(t *testing.T) {
	query := newRecording("query", false)

	if err := ForArguments(query).ParseArgumentStrings([]string{"query=a=b==c"}); err != nil {
		t.Fatalf("ParseArgumentStrings failed: %v", err)
	}
	if query.Raw() != "a=b==c" {
		t.Errorf("Expected value 'a=b==c', got '%s'", query.Raw())
	}
}

func TestParser_ConversionErrorPropagatesUnchanged(t *testing.T) {
	first := newRecording("first", false)
	second := newRecording("second", false)
	second.failOn = "bad"

	err := ForArguments(first, second).ParseArgumentStrings([]string{"first=ok", "second=bad"})
	if err != errRecordingRejected {
		t.Fatalf("Expected the argument's own error, got %v", err)
	}

	// no rollback of earlier dispatches
	if !reflect.DeepEqual(first.accepted, []string{"ok"}) {
		t.Errorf("Expected 'first' to keep its value, got %v", first.accepted)
	}
}

func TestParser_TypedConversionFailure(t *testing.T) {
	age := Int("age")

	err := ForArguments(age).ParseArgumentStrings([]string{"age=abc"})
	if err == nil {
		t.Fatal("Expected conversion error")
	}
	if Code(err) != ErrCodeValueConversion {
		t.Errorf("Expected code %s, got %s (%v)", ErrCodeValueConversion, Code(err), err)
	}
	if age.IsSet() {
		t.Error("Expected 'age' to stay unset after failed conversion")
	}
}

func TestParser_LastCallWins(t *testing.T) {
	name := String("name", Required())
	parser := ForArguments(name)

	if err := parser.ParseArgumentStrings([]string{"name=Alice"}); err != nil {
		t.Fatalf("First parse failed: %v", err)
	}
	if err := parser.ParseArgumentStrings([]string{"name=Bob"}); err != nil {
		t.Fatalf("Second parse failed: %v", err)
	}
	if name.Get() != "Bob" {
		t.Errorf("Expected 'Bob', got '%s'", name.Get())
	}

	// required-ness is per call, not cumulative
	if err := parser.ParseArgumentStrings(nil); !IsUnfulfilledRequiredArgument(err) {
		t.Errorf("Expected missing 'name' on third call, got %v", err)
	}
	if name.Get() != "Bob" {
		t.Errorf("Expected failed call to leave 'Bob', got '%s'", name.Get())
	}
}

func TestParser_DuplicateDefinitionsFirstMatch(t *testing.T) {
	first := newRecording("dup", false)
	second := newRecording("dup", false)

	if err := ForArguments(first, second).ParseArgumentStrings([]string{"dup=x"}); err != nil {
		t.Fatalf("ParseArgumentStrings failed: %v", err)
	}
	if len(first.accepted) != 1 || len(second.accepted) != 0 {
		t.Errorf("Expected only the first definition to receive the value, got %v / %v",
			first.accepted, second.accepted)
	}
}

func TestParser_DuplicateRequiredDefinitionsReportedOnce(t *testing.T) {
	err := ForArguments(newRecording("dup", true), newRecording("dup", true)).ParseArgumentStrings(nil)
	if got := MissingIdentifiers(err); !reflect.DeepEqual(got, []string{"dup"}) {
		t.Errorf("Expected missing [dup], got %v", got)
	}
}

func TestParser_ArgumentsAndLookup(t *testing.T) {
	a := String("a")
	b := Int("b")
	parser := ForArguments(a, nil, b)

	arguments := parser.Arguments()
	if len(arguments) != 2 {
		t.Fatalf("Expected 2 bound arguments (nil dropped), got %d", len(arguments))
	}

	// the returned slice is a copy
	arguments[0] = nil
	if parser.Arguments()[0] == nil {
		t.Error("Arguments() exposed internal storage")
	}

	found, ok := parser.Lookup("b")
	if !ok || found.Kind() != KindInt {
		t.Errorf("Expected to find int argument 'b', got %v (%v)", found, ok)
	}
	if _, ok := parser.Lookup("missing"); ok {
		t.Error("Lookup found an argument that was never bound")
	}
}

func TestParser_NoArguments(t *testing.T) {
	if err := ForArguments().ParseArgumentStrings([]string{"a=1"}); err != nil {
		t.Errorf("Expected empty parser to ignore tokens, got %v", err)
	}
	if err := ForArguments().ParseArgumentStrings(nil); err != nil {
		t.Errorf("Expected empty input to succeed, got %v", err)
	}
}
