// Package kvargs parses identifier=value argument strings into typed,
// named argument definitions and checks that every required argument is
// present.
//
// # Quick Start
//
//	name := kvargs.String("name", kvargs.Required())
//	age := kvargs.Int("age")
//
//	parser := kvargs.ForArguments(name, age)
//	if err := parser.ParseArgumentStrings([]string{"name=Alice", "age=30"}); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(name.Get(), age.Get()) // Alice 30
//
// # Parsing Rules
//
// Every token is split on its first '=' only, so values may contain '='.
// A token without '=' or with an empty identifier fails the whole call with
// a *MalformedInputError. When an identifier appears more than once the
// first value wins. Required arguments are checked before any value is
// dispatched: a call missing one or more of them fails with an
// *UnfulfilledRequiredArgumentError listing all of them and leaves every
// argument untouched. Identifiers without a matching argument are ignored.
//
// Conversion errors (for example "age=abc" on an Int argument) come from
// the argument itself and are returned unchanged. Arguments dispatched
// before the failing one keep their new values.
//
// # Argument Kinds
//
// The set of argument kinds is closed: string, int, int64, bool, float64,
// duration and string_slice (comma separated). Each has a constructor
// returning an *Arg[T] with a typed Get method; NewArgument builds one from
// a Kind at runtime.
//
// # Binding and Definitions
//
// Binder writes values straight into variables:
//
//	var host string
//	var port int
//	err := kvargs.NewBinder().
//	    BindString(&host, "host", kvargs.Required()).
//	    BindInt(&port, "port").
//	    Parse(os.Args[1:])
//
// LoadDefinitions reads argument definitions from YAML, JSON or HCL files
// and Definitions.Build turns them into Arguments.
//
// # Audit Trail
//
// A Parser built with ForArgumentsWithConfig and an AuditLogger records the
// outcome of every call (identifiers only, never values) to SQLite or JSONL.
// Auditing never changes what a call returns.
//
// # Concurrency
//
// Parsers are read-only after construction, but arguments are written by
// every call. Run at most one ParseArgumentStrings at a time per argument
// set. AuditLogger is safe for concurrent use.
//
// # Error Codes
//
// Every error carries a code from the ErrCode* constants, readable with
// Code:
//
//	if kvargs.Code(err) == kvargs.ErrCodeUnfulfilledRequiredArgument {
//	    fmt.Println("missing:", kvargs.MissingIdentifiers(err))
//	}
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package kvargs
