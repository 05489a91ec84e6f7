// binder.go: Fluent bind-to-variable front end for the kvargs Parser
//
// A Binder collects argument definitions that write straight into caller
// variables, then builds a Parser from them:
//
//	var (
//		host string
//		port int
//	)
//	err := kvargs.NewBinder().
//		BindString(&host, "host", kvargs.Required()).
//		BindInt(&port, "port").
//		Parse(os.Args[1:])
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"time"

	"github.com/agilira/go-errors"
)

// Binder builds a Parser from variable bindings. The first definition error
// is kept and returned by Parser and Parse; later Bind calls are no-ops.
type Binder struct {
	arguments   []Argument
	identifiers map[string]struct{}
	config      Config
	err         error
}

// NewBinder creates an empty Binder
func NewBinder() *Binder {
	return &Binder{
		arguments:   make([]Argument, 0, 8),
		identifiers: make(map[string]struct{}),
	}
}

// WithConfig sets the configuration of the Parser the Binder builds
func (b *Binder) WithConfig(config Config) *Binder {
	b.config = config
	return b
}

// BindString binds a string argument to target
func (b *Binder) BindString(target *string, identifier string, opts ...Option) *Binder {
	if b.check(target == nil, identifier) {
		b.add(String(identifier, opts...).Bind(target))
	}
	return b
}

// BindInt binds an int argument to target
func (b *Binder) BindInt(target *int, identifier string, opts ...Option) *Binder {
	if b.check(target == nil, identifier) {
		b.add(Int(identifier, opts...).Bind(target))
	}
	return b
}

// BindInt64 binds an int64 argument to target
func (b *Binder) BindInt64(target *int64, identifier string, opts ...Option) *Binder {
	if b.check(target == nil, identifier) {
		b.add(Int64(identifier, opts...).Bind(target))
	}
	return b
}

// BindBool binds a boolean argument to target
func (b *Binder) BindBool(target *bool, identifier string, opts ...Option) *Binder {
	if b.check(target == nil, identifier) {
		b.add(Bool(identifier, opts...).Bind(target))
	}
	return b
}

// BindFloat64 binds a float64 argument to target
func (b *Binder) BindFloat64(target *float64, identifier string, opts ...Option) *Binder {
	if b.check(target == nil, identifier) {
		b.add(Float64(identifier, opts...).Bind(target))
	}
	return b
}

// BindDuration binds a time.Duration argument to target
func (b *Binder) BindDuration(target *time.Duration, identifier string, opts ...Option) *Binder {
	if b.check(target == nil, identifier) {
		b.add(Duration(identifier, opts...).Bind(target))
	}
	return b
}

// BindStringSlice binds a comma-separated list argument to target
func (b *Binder) BindStringSlice(target *[]string, identifier string, opts ...Option) *Binder {
	if b.check(target == nil, identifier) {
		b.add(StringSlice(identifier, opts...).Bind(target))
	}
	return b
}

// Parser returns a Parser over the bound arguments
func (b *Binder) Parser() (*Parser, error) {
	if b.err != nil {
		return nil, b.err
	}
	return ForArgumentsWithConfig(b.config, b.arguments...), nil
}

// Parse builds the Parser and runs it over tokens. Bound variables are only
// written for arguments that receive a value.
func (b *Binder) Parse(tokens []string) error {
	parser, err := b.Parser()
	if err != nil {
		return err
	}
	return parser.ParseArgumentStrings(tokens)
}

// check validates a binding and records the first failure
func (b *Binder) check(nilTarget bool, identifier string) bool {
	if b.err != nil {
		return false
	}
	if nilTarget {
		b.err = errors.New(ErrCodeInvalidDefinition, "nil target for argument '"+identifier+"'")
		return false
	}
	if err := validateIdentifier(identifier); err != nil {
		b.err = err
		return false
	}
	if _, dup := b.identifiers[identifier]; dup {
		b.err = errors.New(ErrCodeInvalidDefinition, "argument '"+identifier+"' bound twice")
		return false
	}
	return true
}

func (b *Binder) add(argument Argument) {
	b.identifiers[argument.Identifier()] = struct{}{}
	b.arguments = append(b.arguments, argument)
}
