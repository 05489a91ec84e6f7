// Command handlers for the kvargs CLI
//
// Each handler only pulls arguments and flags out of the Orpheus context and
// delegates to a run* method, so the behaviour is testable without Orpheus.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/kvargs"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// Output formats of the parse command
const (
	outputText = "text"
	outputJSON = "json"
)

func (m *Manager) handleParse(ctx *orpheus.Context) error {
	path := ctx.GetArg(0)
	if path == "" {
		return errors.New(kvargs.ErrCodeInvalidConfig, "usage: kvargs parse <definitions> <identifier=value>...")
	}
	return m.runParse(path, ctx.GetFlagString("format"), ctx.GetFlagString("output"), positionalArgs(ctx, 1))
}

func (m *Manager) handleCheck(ctx *orpheus.Context) error {
	path := ctx.GetArg(0)
	if path == "" {
		return errors.New(kvargs.ErrCodeInvalidConfig, "usage: kvargs check <definitions>")
	}
	return m.runCheck(path, ctx.GetFlagString("format"))
}

func (m *Manager) handleAuditStats(ctx *orpheus.Context) error {
	return m.runAuditStats()
}

func (m *Manager) handleAuditQuery(ctx *orpheus.Context) error {
	return m.runAuditQuery(ctx.GetFlagString("event"), ctx.GetFlagString("since"), ctx.GetFlagInt("limit"))
}

func (m *Manager) handleInfo(ctx *orpheus.Context) error {
	return m.runInfo(ctx.GetFlagBool("verbose"))
}

// runParse loads the definitions at path, parses tokens against them and
// prints every argument
func (m *Manager) runParse(path, formatName, output string, tokens []string) error {
	output = strings.ToLower(strings.TrimSpace(output))
	if output == "" {
		output = outputText
	}
	if output != outputText && output != outputJSON {
		return errors.New(kvargs.ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported output format %q", output))
	}

	arguments, err := m.loadArguments(path, formatName)
	if err != nil {
		return err
	}

	parser := kvargs.ForArgumentsWithConfig(kvargs.Config{AuditLogger: m.auditLogger}, arguments...)
	if err := parser.ParseArgumentStrings(tokens); err != nil {
		return err
	}

	if output == outputJSON {
		return m.writeJSON(argumentReports(arguments))
	}
	for _, argument := range arguments {
		fmt.Fprintf(m.out, "%s = %s\n", argument.Identifier(), formatValue(argument))
	}
	return nil
}

// runCheck validates the definitions at path and lists them
func (m *Manager) runCheck(path, formatName string) error {
	definitions, err := m.loadDefinitions(path, formatName)
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Definitions valid: %d argument(s) in %s\n", len(definitions), path)
	if len(definitions) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tREQUIRED\tDESCRIPTION")
	for _, definition := range definitions {
		kind, _ := kvargs.ParseKind(definition.Type) // validated by loadDefinitions
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", definition.Name, kind, definition.Required, definition.Description)
	}
	return w.Flush()
}

// runAuditStats prints a summary of the audit backend
func (m *Manager) runAuditStats() error {
	if m.auditLogger == nil {
		return errAuditDisabled()
	}

	stats, err := m.auditLogger.Stats()
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Backend: %s\n", stats.Backend)
	fmt.Fprintf(m.out, "Total events: %d\n", stats.TotalEvents)
	fmt.Fprintf(m.out, "Storage size: %d bytes\n", stats.StorageSize)
	if stats.OldestEvent != nil && stats.NewestEvent != nil {
		fmt.Fprintf(m.out, "Time range: %s - %s\n",
			stats.OldestEvent.Format(time.RFC3339), stats.NewestEvent.Format(time.RFC3339))
	}
	for _, level := range []kvargs.AuditLevel{kvargs.AuditInfo, kvargs.AuditWarn, kvargs.AuditCritical} {
		if count := stats.EventsByLevel[level.String()]; count > 0 {
			fmt.Fprintf(m.out, "  %-8s %d\n", level, count)
		}
	}
	for _, name := range sortedKeys(stats.EventsByName) {
		fmt.Fprintf(m.out, "  %-24s %d\n", name, stats.EventsByName[name])
	}
	return nil
}

// runAuditQuery prints matching audit events, oldest first
func (m *Manager) runAuditQuery(event, since string, limit int) error {
	if m.auditLogger == nil {
		return errAuditDisabled()
	}

	query := kvargs.AuditQuery{Event: event, Limit: limit}
	if since != "" {
		window, err := parseExtendedDuration(since)
		if err != nil {
			return errors.Wrap(err, kvargs.ErrCodeInvalidConfig, "invalid --since value")
		}
		query.Since = time.Now().Add(-window)
	}

	events, err := m.auditLogger.Query(query)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(m.out, "No audit events found")
		return nil
	}

	w := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Timestamp.Format(time.RFC3339), e.Level, e.Event, strings.Join(e.Identifiers, ","))
	}
	return w.Flush()
}

// runInfo prints version and environment information
func (m *Manager) runInfo(verbose bool) error {
	fmt.Fprintf(m.out, "kvargs argument parser\n")
	fmt.Fprintf(m.out, "Version: %s\n", Version)
	fmt.Fprintf(m.out, "Definition formats: yaml, json, toml, hcl\n")
	fmt.Fprintf(m.out, "Audit logging: %v\n", m.auditLogger != nil)

	if verbose {
		fmt.Fprintf(m.out, "\nArgument types: %s\n", strings.Join(kindNames(), ", "))
		fmt.Fprintf(m.out, "Audit environment: %s\n", strings.Join([]string{
			kvargs.EnvAuditEnabled, kvargs.EnvAuditOutputFile, kvargs.EnvAuditMinLevel,
			kvargs.EnvAuditBufferSize, kvargs.EnvAuditFlushInterval,
		}, ", "))
	}
	return nil
}

func (m *Manager) loadDefinitions(path, formatName string) (kvargs.Definitions, error) {
	format, err := kvargs.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	return kvargs.LoadDefinitionsWithFormat(path, format)
}

func (m *Manager) loadArguments(path, formatName string) ([]kvargs.Argument, error) {
	definitions, err := m.loadDefinitions(path, formatName)
	if err != nil {
		return nil, err
	}
	return definitions.Build()
}

func (m *Manager) writeJSON(value interface{}) error {
	encoder := json.NewEncoder(m.out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return errors.Wrap(err, kvargs.ErrCodeIOError, "failed to write JSON output")
	}
	return nil
}

func errAuditDisabled() error {
	return errors.New(kvargs.ErrCodeAuditError, "audit logging not enabled (run with --audit)")
}
