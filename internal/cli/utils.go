// Global options for the kvargs command
//
// Global options come before the subcommand and are parsed with FlashFlags;
// everything from the first unrecognized argument on is left for Orpheus:
//
//	kvargs --audit --audit-file=/var/log/kvargs.db parse args.yaml name=Alice
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"strings"

	flashflags "github.com/agilira/flash-flags"
	"github.com/agilira/go-errors"
	"github.com/agilira/kvargs"
)

const (
	flagAudit     = "audit"
	flagAuditFile = "audit-file"
)

// GlobalOptions are the options accepted before the subcommand
type GlobalOptions struct {
	Audit     bool   // Record parse outcomes
	AuditFile string // Audit output file; implies Audit
}

// AuditRequested reports whether the options ask for an audit trail
func (o GlobalOptions) AuditRequested() bool {
	return o.Audit || o.AuditFile != ""
}

// ParseGlobalOptions splits args into global options and the remaining
// command line
func ParseGlobalOptions(args []string) (GlobalOptions, []string, error) {
	var opts GlobalOptions
	globals, split := leadingGlobalArgs(args)

	flags := flashflags.New("kvargs")
	flags.Bool(flagAudit, false, "Record parse outcomes in the audit trail")
	flags.String(flagAuditFile, "", "Audit output file (.db, .sqlite or .jsonl)")
	if err := flags.Parse(globals); err != nil {
		return opts, nil, errors.Wrap(err, kvargs.ErrCodeInvalidConfig, "invalid global options")
	}

	opts.Audit = flags.GetBool(flagAudit)
	opts.AuditFile = flags.GetString(flagAuditFile)
	return opts, args[split:], nil
}

// OpenAuditLogger creates the audit logger requested by opts, configured
// from KVARGS_AUDIT_* with --audit-file taking precedence. It returns nil
// when no audit trail was requested.
func OpenAuditLogger(opts GlobalOptions) (*kvargs.AuditLogger, error) {
	if !opts.AuditRequested() {
		return nil, nil
	}

	config, err := kvargs.LoadAuditConfigFromEnv()
	if err != nil {
		return nil, err
	}
	config.Enabled = true
	if opts.AuditFile != "" {
		config.OutputFile = opts.AuditFile
	}
	return kvargs.NewAuditLogger(config)
}

// leadingGlobalArgs returns the leading global options, normalized to
// --name=value form, and how many args they consumed
func leadingGlobalArgs(args []string) ([]string, int) {
	var globals []string
	i := 0
	for i < len(args) {
		if !strings.HasPrefix(args[i], "--") {
			break
		}
		name, _, hasValue := strings.Cut(strings.TrimPrefix(args[i], "--"), "=")
		switch {
		case name == flagAudit:
			globals = append(globals, args[i])
			i++
		case name == flagAuditFile && hasValue:
			globals = append(globals, args[i])
			i++
		case name == flagAuditFile && i+1 < len(args):
			globals = append(globals, "--"+flagAuditFile+"="+args[i+1])
			i += 2
		default:
			return globals, i
		}
	}
	return globals, i
}
