// argument.go: Typed argument definitions for kvargs
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"fmt"
	"time"

	"github.com/agilira/go-errors"
)

// Argument is a named, typed slot that a Parser routes raw values to.
//
// The set of implementations is closed: every Argument is an *Arg[T] built
// by one of the constructors in this package, so every conversion path is
// known to the library.
type Argument interface {
	// Identifier is the key matched against the text before '='
	Identifier() string

	// Required reports whether every parse call must supply this argument
	Required() bool

	// AcceptValue converts raw and stores it, overwriting any previous value.
	// On conversion failure the previous value is kept.
	AcceptValue(raw string) error

	// Kind returns the value type of the argument
	Kind() Kind

	// IsSet reports whether a value has ever been accepted
	IsSet() bool

	// Raw returns the last accepted raw string
	Raw() string

	// Value returns the current typed value as an interface
	Value() any

	sealed()
}

// Option configures an argument at construction time
type Option func(*argOptions)

type argOptions struct {
	required    bool
	description string
}

// Required marks an argument as mandatory in every parse call
func Required() Option {
	return func(o *argOptions) { o.required = true }
}

// Description attaches a human readable description to an argument
func Description(text string) Option {
	return func(o *argOptions) { o.description = text }
}

// Arg is the single Argument implementation, parameterized by its Go value
// type. T always matches Kind: string, int, int64, bool, float64,
// time.Duration or []string.
//
// Arg is not safe for concurrent use; a parse call is its only writer.
type Arg[T any] struct {
	identifier  string
	required    bool
	description string
	kind        Kind

	value  T
	raw    string
	set    bool
	target *T
}

func newArg[T any](kind Kind, identifier string, opts []Option) *Arg[T] {
	var o argOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Arg[T]{
		identifier:  identifier,
		required:    o.required,
		description: o.description,
		kind:        kind,
	}
}

// String creates a string argument
func String(identifier string, opts ...Option) *Arg[string] {
	return newArg[string](KindString, identifier, opts)
}

// Int creates an int argument
func Int(identifier string, opts ...Option) *Arg[int] {
	return newArg[int](KindInt, identifier, opts)
}

// Int64 creates an int64 argument
func Int64(identifier string, opts ...Option) *Arg[int64] {
	return newArg[int64](KindInt64, identifier, opts)
}

// Bool creates a boolean argument
func Bool(identifier string, opts ...Option) *Arg[bool] {
	return newArg[bool](KindBool, identifier, opts)
}

// Float64 creates a float64 argument
func Float64(identifier string, opts ...Option) *Arg[float64] {
	return newArg[float64](KindFloat64, identifier, opts)
}

// Duration creates a time.Duration argument
func Duration(identifier string, opts ...Option) *Arg[time.Duration] {
	return newArg[time.Duration](KindDuration, identifier, opts)
}

// StringSlice creates a comma-separated list argument
func StringSlice(identifier string, opts ...Option) *Arg[[]string] {
	return newArg[[]string](KindStringSlice, identifier, opts)
}

// NewArgument creates the argument variant for kind. It is the entry point
// used when kinds are only known at runtime, e.g. from a definitions file.
func NewArgument(kind Kind, identifier string, opts ...Option) (Argument, error) {
	switch kind {
	case KindString:
		return String(identifier, opts...), nil
	case KindInt:
		return Int(identifier, opts...), nil
	case KindInt64:
		return Int64(identifier, opts...), nil
	case KindBool:
		return Bool(identifier, opts...), nil
	case KindFloat64:
		return Float64(identifier, opts...), nil
	case KindDuration:
		return Duration(identifier, opts...), nil
	case KindStringSlice:
		return StringSlice(identifier, opts...), nil
	default:
		return nil, errors.New(ErrCodeInvalidDefinition, fmt.Sprintf("unsupported argument kind: %d", kind))
	}
}

// Identifier implements Argument
func (a *Arg[T]) Identifier() string { return a.identifier }

// Required implements Argument
func (a *Arg[T]) Required() bool { return a.required }

// Kind implements Argument
func (a *Arg[T]) Kind() Kind { return a.kind }

// IsSet implements Argument
func (a *Arg[T]) IsSet() bool { return a.set }

// Raw implements Argument
func (a *Arg[T]) Raw() string { return a.raw }

// Value implements Argument
func (a *Arg[T]) Value() any { return a.value }

// Description returns the description given at construction
func (a *Arg[T]) Description() string { return a.description }

// Get returns the current value, or the zero value of T if none was accepted
func (a *Arg[T]) Get() T { return a.value }

// GetOr returns the current value, or fallback if none was accepted
func (a *Arg[T]) GetOr(fallback T) T {
	if !a.set {
		return fallback
	}
	return a.value
}

// Bind mirrors every accepted value into target
func (a *Arg[T]) Bind(target *T) *Arg[T] {
	a.target = target
	return a
}

// AcceptValue implements Argument
func (a *Arg[T]) AcceptValue(raw string) error {
	converted, err := convertValue(a.kind, raw)
	if err != nil {
		return errors.Wrap(err, ErrCodeValueConversion,
			fmt.Sprintf("invalid %s value for argument '%s': %q", a.kind, a.identifier, raw))
	}

	value, ok := converted.(T)
	if !ok {
		return errors.New(ErrCodeValueConversion,
			fmt.Sprintf("argument '%s' cannot hold %s values", a.identifier, a.kind))
	}

	a.value = value
	a.raw = raw
	a.set = true
	if a.target != nil {
		*a.target = value
	}
	return nil
}

func (a *Arg[T]) sealed() {}
