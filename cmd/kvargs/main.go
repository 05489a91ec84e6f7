// kvargs - command-line front end for the kvargs argument parser
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/agilira/kvargs/cmd/cli"
	options "github.com/agilira/kvargs/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, rest, err := options.ParseGlobalOptions(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	auditLogger, err := options.OpenAuditLogger(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := auditLogger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close audit logger: %v\n", err)
		}
	}()

	manager := cli.NewManager()
	if auditLogger != nil {
		manager.WithAudit(auditLogger)
	}

	if err := manager.Run(rest); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
