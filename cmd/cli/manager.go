// Package cli provides the command-line interface for kvargs.
//
// The CLI is built on the Orpheus framework and exposes the library as
// git-style subcommands:
//
//	kvargs parse <definitions> <identifier=value>...
//	kvargs check <definitions>
//	kvargs audit stats
//	kvargs audit query [--event=] [--since=24h] [--limit=100]
//	kvargs info
//
// Architecture:
//   - Manager: command setup and routing
//   - Handlers: thin orpheus adapters over plain run* methods
//   - Utils: output formatting and duration parsing
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package cli

import (
	"io"
	"os"

	"github.com/agilira/kvargs"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// Version is the CLI version reported by --version and info
const Version = "1.0.0"

const formatFlagUsage = "Definitions format (auto|yaml|json|toml|hcl)"

// Manager wires kvargs operations to Orpheus commands
type Manager struct {
	app         *orpheus.App
	auditLogger *kvargs.AuditLogger // Optional audit integration
	out         io.Writer
}

// NewManager creates a CLI manager with every command registered.
// Output goes to os.Stdout until WithOutput is called.
func NewManager() *Manager {
	app := orpheus.New("kvargs").
		SetDescription("Parse and validate identifier=value arguments").
		SetVersion(Version)

	manager := &Manager{
		app: app,
		out: os.Stdout,
	}

	manager.setupArgumentCommands()
	manager.setupAuditCommands()
	manager.setupUtilityCommands()

	return manager
}

// WithAudit records every parse run by the CLI in auditLogger and enables
// the audit commands
func (m *Manager) WithAudit(auditLogger *kvargs.AuditLogger) *Manager {
	m.auditLogger = auditLogger
	return m
}

// WithOutput redirects command output
func (m *Manager) WithOutput(out io.Writer) *Manager {
	if out != nil {
		m.out = out
	}
	return m
}

// Run executes the CLI with args (without the program name)
func (m *Manager) Run(args []string) error {
	return m.app.Run(args)
}

// setupArgumentCommands registers parse and check
func (m *Manager) setupArgumentCommands() {
	// parse <definitions> <identifier=value>... [--format=auto] [--output=text]
	parseCmd := orpheus.NewCommand("parse", "Parse identifier=value tokens against a definitions file").
		AddFlag("format", "f", "auto", formatFlagUsage).
		AddFlag("output", "o", "text", "Output format (text|json)").
		SetHandler(m.handleParse)
	m.app.AddCommand(parseCmd)

	// check <definitions> [--format=auto]
	checkCmd := orpheus.NewCommand("check", "Validate a definitions file and list its arguments").
		AddFlag("format", "f", "auto", formatFlagUsage).
		SetHandler(m.handleCheck)
	m.app.AddCommand(checkCmd)
}

// setupAuditCommands registers the audit command group
func (m *Manager) setupAuditCommands() {
	auditCmd := orpheus.NewCommand("audit", "Audit trail inspection")

	auditCmd.Subcommand("stats", "Summarize recorded audit events", m.handleAuditStats)

	queryCmd := auditCmd.Subcommand("query", "Query audit events", m.handleAuditQuery)
	queryCmd.AddFlag("since", "s", "24h", "Time range (e.g., 30m, 24h, 7d, 2w)")
	queryCmd.AddFlag("event", "e", "", "Event name filter")
	queryCmd.AddIntFlag("limit", "l", 100, "Maximum results")

	m.app.AddCommand(auditCmd)
}

// setupUtilityCommands registers info
func (m *Manager) setupUtilityCommands() {
	infoCmd := orpheus.NewCommand("info", "Show version, supported formats and audit status")
	infoCmd.SetHandler(m.handleInfo)
	infoCmd.AddBoolFlag("verbose", "v", false, "Verbose information")
	m.app.AddCommand(infoCmd)
}
