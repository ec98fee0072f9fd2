// Copyright 2026 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package apperr defines the gateway's error kinds and how they map onto
// HTTP status codes.
package apperr

import "fmt"

// Kind classifies a gateway error into one of the categories the HTTP layer
// knows how to render.
type Kind string

const (
	KindBadRequest     Kind = "BAD_REQUEST"
	KindUnknownTable   Kind = "UNKNOWN_TABLE"
	KindUnresolvedLink Kind = "UNRESOLVED_LINK"
	KindCircularLink   Kind = "CIRCULAR_LINK"
	KindUnauthorized   Kind = "UNAUTHORIZED"
	KindSQLError       Kind = "SQL_ERROR"
	KindVectorStore    Kind = "VECTOR_STORE_ERROR"
	KindConfigError    Kind = "CONFIG_ERROR"
)

var statusByKind = map[Kind]int{
	KindBadRequest:     400,
	KindUnknownTable:   400,
	KindUnresolvedLink: 400,
	KindCircularLink:   400,
	KindUnauthorized:   401,
	KindSQLError:       500,
	KindVectorStore:    500,
	KindConfigError:    500,
}

// Error is the gateway's sole error type: it carries a Kind that the HTTP
// layer maps onto a status code, a human-readable message and an optional
// wrapped cause.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Status returns the HTTP status code this error's Kind maps to.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return 500
}

func New(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Msg: fmt.Sprintf(format, args...)}
}

func UnknownTable(format string, args ...any) *Error {
	return &Error{Kind: KindUnknownTable, Msg: fmt.Sprintf(format, args...)}
}

func UnresolvedLink(format string, args ...any) *Error {
	return &Error{Kind: KindUnresolvedLink, Msg: fmt.Sprintf(format, args...)}
}

func CircularLink(format string, args ...any) *Error {
	return &Error{Kind: KindCircularLink, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Msg: fmt.Sprintf(format, args...)}
}

func SQLError(cause error) *Error {
	return &Error{Kind: KindSQLError, Msg: "sql error", Cause: cause}
}

func VectorStoreError(msg string, cause error) *Error {
	return &Error{Kind: KindVectorStore, Msg: msg, Cause: cause}
}

func ConfigError(msg string, cause error) *Error {
	return &Error{Kind: KindConfigError, Msg: msg, Cause: cause}
}

// StatusOf returns the HTTP status for any error: gateway errors resolve
// through their Kind, anything else defaults to 500.
func StatusOf(err error) int {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
		return e.Status()
	}
	return 500
}
