// parser.go: identifier=value argument parsing for kvargs
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"sort"
	"strings"
)

const assignmentDelimiter = "="

// Parser parses identifier=value tokens into a fixed set of Arguments.
//
// The argument set is fixed at construction. A Parser holds no state of its
// own between calls, but the Arguments it dispatches to do: callers must not
// run ParseArgumentStrings concurrently over the same Arguments.
type Parser struct {
	arguments []Argument
	audit     *AuditLogger
}

// assignment is one parsed identifier=value token
type assignment struct {
	identifier string
	value      string
}

// ForArguments returns a parser bound to arguments. Duplicate identifiers
// are not rejected; the first matching argument receives the value.
func ForArguments(arguments ...Argument) *Parser {
	return ForArgumentsWithConfig(Config{}, arguments...)
}

// ForArgumentsWithConfig is ForArguments with audit and other options
func ForArgumentsWithConfig(config Config, arguments ...Argument) *Parser {
	bound := make([]Argument, 0, len(arguments))
	for _, argument := range arguments {
		if argument != nil {
			bound = append(bound, argument)
		}
	}
	return &Parser{
		arguments: bound,
		audit:     config.AuditLogger,
	}
}

// Arguments returns the bound arguments in construction order
func (p *Parser) Arguments() []Argument {
	return append([]Argument(nil), p.arguments...)
}

// Lookup returns the argument that would receive values for identifier
func (p *Parser) Lookup(identifier string) (Argument, bool) {
	for _, argument := range p.arguments {
		if argument.Identifier() == identifier {
			return argument, true
		}
	}
	return nil, false
}

// ParseArgumentStrings splits every token on its first '=', checks that all
// required arguments are present and hands each value to its argument.
//
// Errors:
//   - *MalformedInputError when a token has no '=' or an empty identifier
//   - *UnfulfilledRequiredArgumentError listing every missing identifier
//   - the error returned by Argument.AcceptValue, unchanged
//
// No argument is touched unless the first two checks pass. Identifiers seen
// more than once keep their first value; identifiers with no matching
// argument are ignored.
func (p *Parser) ParseArgumentStrings(tokens []string) error {
	assignments := make([]assignment, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))

	for _, token := range tokens {
		pair, err := parseAssignment(token)
		if err != nil {
			p.audit.LogMalformedInput(token)
			return err
		}
		if _, dup := seen[pair.identifier]; dup {
			continue
		}
		seen[pair.identifier] = struct{}{}
		assignments = append(assignments, pair)
	}

	if missing := p.missingRequired(seen); len(missing) > 0 {
		p.audit.LogRequiredMissing(missing)
		return &UnfulfilledRequiredArgumentError{Missing: missing}
	}

	dispatched := make([]string, 0, len(assignments))
	var ignored []string
	for _, pair := range assignments {
		argument, ok := p.Lookup(pair.identifier)
		if !ok {
			ignored = append(ignored, pair.identifier)
			continue
		}
		if err := argument.AcceptValue(pair.value); err != nil {
			p.audit.LogConversionFailure(pair.identifier, err)
			return err
		}
		dispatched = append(dispatched, pair.identifier)
	}

	p.audit.LogArgumentsParsed(dispatched, ignored)
	return nil
}

// parseAssignment splits token on the first delimiter
func parseAssignment(token string) (assignment, error) {
	identifier, value, found := strings.Cut(token, assignmentDelimiter)
	if !found {
		return assignment{}, &MalformedInputError{Token: token, Reason: "missing '" + assignmentDelimiter + "' delimiter"}
	}
	if identifier == "" {
		return assignment{}, &MalformedInputError{Token: token, Reason: "empty identifier"}
	}
	return assignment{identifier: identifier, value: value}, nil
}

// missingRequired returns the sorted identifiers of required arguments
// absent from present
func (p *Parser) missingRequired(present map[string]struct{}) []string {
	var missing []string
	reported := make(map[string]struct{})
	for _, argument := range p.arguments {
		if !argument.Required() {
			continue
		}
		identifier := argument.Identifier()
		if _, ok := present[identifier]; ok {
			continue
		}
		if _, ok := reported[identifier]; ok {
			continue
		}
		reported[identifier] = struct{}{}
		missing = append(missing, identifier)
	}
	sort.Strings(missing)
	return missing
}
