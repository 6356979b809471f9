// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package apperrors defines the error taxonomy surfaced at the HTTP boundary.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the boundary translator.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindNotVerified
	KindNotFound
	KindConflict
	KindUpstream
)

// HTTPStatus maps an error kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindNotVerified:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind and a client-safe message. The wrapped cause, if any,
// is for logs only and never reaches the client.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with a client-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and client-safe message to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf extracts the client-safe message from an error chain. Untyped
// errors get a generic message so internals never leak.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
