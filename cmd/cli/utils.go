// Utility functions for the kvargs CLI
//
// This file provides positional argument collection, value formatting and
// extended duration parsing for the command handlers.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agilira/kvargs"
	"github.com/agilira/orpheus/pkg/orpheus"
)

const unsetValue = "<unset>"

var extendedDurationPattern = regexp.MustCompile(`^(\d+)(d|w)$`)

// positionalArgs collects the positional arguments from index from on
func positionalArgs(ctx *orpheus.Context, from int) []string {
	var args []string
	for i := from; ; i++ {
		arg := ctx.GetArg(i)
		if arg == "" {
			return args
		}
		args = append(args, arg)
	}
}

// formatValue renders the current value of argument for text output
func formatValue(argument kvargs.Argument) string {
	if !argument.IsSet() {
		return unsetValue
	}
	switch value := argument.Value().(type) {
	case []string:
		return strings.Join(value, ",")
	case time.Duration:
		return value.String()
	case string:
		return strconv.Quote(value)
	default:
		return fmt.Sprint(value)
	}
}

// argumentReport is the JSON form of one parsed argument
type argumentReport struct {
	Identifier string      `json:"identifier"`
	Kind       string      `json:"kind"`
	Required   bool        `json:"required"`
	Set        bool        `json:"set"`
	Value      interface{} `json:"value"`
}

func argumentReports(arguments []kvargs.Argument) []argumentReport {
	reports := make([]argumentReport, 0, len(arguments))
	for _, argument := range arguments {
		report := argumentReport{
			Identifier: argument.Identifier(),
			Kind:       argument.Kind().String(),
			Required:   argument.Required(),
			Set:        argument.IsSet(),
		}
		if argument.IsSet() {
			report.Value = argument.Value()
			if d, ok := report.Value.(time.Duration); ok {
				report.Value = d.String()
			}
		}
		reports = append(reports, report)
	}
	return reports
}

func kindNames() []string {
	kinds := []kvargs.Kind{
		kvargs.KindString, kvargs.KindInt, kvargs.KindInt64, kvargs.KindBool,
		kvargs.KindFloat64, kvargs.KindDuration, kvargs.KindStringSlice,
	}
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = kind.String()
	}
	return names
}

func sortedKeys(counts map[string]int64) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// parseExtendedDuration parses duration strings with extended units (d, w).
// Supports all Go standard units (ns, us, ms, s, m, h) plus:
//   - d: days (24 hours)
//   - w: weeks (7 days)
func parseExtendedDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	matches := extendedDurationPattern.FindStringSubmatch(s)
	if len(matches) != 3 {
		_, err := time.ParseDuration(s)
		return 0, err
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %s", matches[1])
	}

	switch matches[2] {
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	}
}
