// convert.go: Raw string conversion for argument kinds
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agilira/go-errors"
)

// Kind identifies the value type of an argument
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindInt64
	KindBool
	KindFloat64
	KindDuration
	KindStringSlice
)

var kindNames = [...]string{
	KindString:      "string",
	KindInt:         "int",
	KindInt64:       "int64",
	KindBool:        "bool",
	KindFloat64:     "float64",
	KindDuration:    "duration",
	KindStringSlice: "string_slice",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind parses a kind name as used in definitions files.
// An empty name means string.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "string", "str":
		return KindString, nil
	case "int", "integer":
		return KindInt, nil
	case "int64":
		return KindInt64, nil
	case "bool", "boolean":
		return KindBool, nil
	case "float", "float64", "number":
		return KindFloat64, nil
	case "duration":
		return KindDuration, nil
	case "string_slice", "stringslice", "list":
		return KindStringSlice, nil
	default:
		return 0, errors.New(ErrCodeInvalidDefinition, fmt.Sprintf("unknown argument type %q", name))
	}
}

// convertValue turns raw into the Go value for kind
func convertValue(kind Kind, raw string) (any, error) {
	switch kind {
	case KindString:
		return raw, nil
	case KindInt:
		return strconv.Atoi(strings.TrimSpace(raw))
	case KindInt64:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case KindBool:
		return parseBool(raw)
	case KindFloat64:
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	case KindDuration:
		return time.ParseDuration(strings.TrimSpace(raw))
	case KindStringSlice:
		return parseStringSlice(raw), nil
	default:
		return nil, fmt.Errorf("unsupported argument kind: %d", kind)
	}
}

// parseBool accepts strconv spellings plus yes/no and on/off
func parseBool(raw string) (bool, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(value)
}

func parseStringSlice(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
