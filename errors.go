// errors.go: Error codes and typed parse errors for kvargs
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/agilira/go-errors"
)

// Error codes for kvargs operations
const (
	ErrCodeMalformedInput              = "KVARGS_MALFORMED_INPUT"
	ErrCodeUnfulfilledRequiredArgument = "KVARGS_UNFULFILLED_REQUIRED_ARGUMENT"
	ErrCodeValueConversion             = "KVARGS_VALUE_CONVERSION"
	ErrCodeInvalidDefinition           = "KVARGS_INVALID_DEFINITION"
	ErrCodeUnsupportedFormat           = "KVARGS_UNSUPPORTED_FORMAT"
	ErrCodeInvalidConfig               = "KVARGS_INVALID_CONFIG"
	ErrCodeIOError                     = "KVARGS_IO_ERROR"
	ErrCodeAuditError                  = "KVARGS_AUDIT_ERROR"
)

// MalformedInputError reports a token that is not an identifier=value pair.
type MalformedInputError struct {
	Token  string // Offending token, verbatim
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed argument %q: %s", e.Token, e.Reason)
}

// ErrorCode implements goerrors.ErrorCoder
func (e *MalformedInputError) ErrorCode() goerrors.ErrorCode {
	return ErrCodeMalformedInput
}

// UnfulfilledRequiredArgumentError reports every required identifier that
// was absent from a parse call. Missing is sorted.
type UnfulfilledRequiredArgumentError struct {
	Missing []string
}

func (e *UnfulfilledRequiredArgumentError) Error() string {
	return "unfulfilled required arguments: " + strings.Join(e.Missing, ", ")
}

// ErrorCode implements goerrors.ErrorCoder
func (e *UnfulfilledRequiredArgumentError) ErrorCode() goerrors.ErrorCode {
	return ErrCodeUnfulfilledRequiredArgument
}

// Code returns the kvargs error code carried by err, or "" when err has none.
func Code(err error) string {
	var coder goerrors.ErrorCoder
	if errors.As(err, &coder) {
		return string(coder.ErrorCode())
	}
	return ""
}

// IsMalformedInput reports whether err is, or wraps, a MalformedInputError.
func IsMalformedInput(err error) bool {
	var target *MalformedInputError
	return errors.As(err, &target)
}

// IsUnfulfilledRequiredArgument reports whether err is, or wraps, an
// UnfulfilledRequiredArgumentError.
func IsUnfulfilledRequiredArgument(err error) bool {
	var target *UnfulfilledRequiredArgumentError
	return errors.As(err, &target)
}

// MissingIdentifiers extracts the missing identifiers from an
// UnfulfilledRequiredArgumentError, or nil.
func MissingIdentifiers(err error) []string {
	var target *UnfulfilledRequiredArgumentError
	if errors.As(err, &target) {
		return append([]string(nil), target.Missing...)
	}
	return nil
}
