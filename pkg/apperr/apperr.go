// Package apperr defines the closed error taxonomy shared by services and
// transports. Every error carries a Kind; callers branch on the kind with
// errors.Is against the sentinels below, never on message text.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindForbidden
	KindDuplicateVote
	KindInvalidState
	KindTransient
	KindUnauthorized
)

var kindCodes = map[Kind]string{
	KindInternal:      "internal",
	KindValidation:    "validation_error",
	KindConflict:      "conflict",
	KindNotFound:      "not_found",
	KindForbidden:     "forbidden",
	KindDuplicateVote: "duplicate_vote",
	KindInvalidState:  "invalid_state",
	KindTransient:     "transient",
	KindUnauthorized:  "unauthorized",
}

// Code 是对外稳定的错误码
func (k Kind) Code() string {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return kindCodes[KindInternal]
}

func (k Kind) String() string { return k.Code() }

// Retryable reports whether the same call may succeed unchanged.
func (k Kind) Retryable() bool { return k == KindTransient }

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind.Code(), e.Err)
	}
	return e.Kind.Code()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

var (
	ErrInternal      = &Error{Kind: KindInternal}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrForbidden     = &Error{Kind: KindForbidden}
	ErrDuplicateVote = &Error{Kind: KindDuplicateVote}
	ErrInvalidState  = &Error{Kind: KindInvalidState}
	ErrTransient     = &Error{Kind: KindTransient}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
)

func New(kind Kind, msg string) error { return &Error{Kind: kind, Message: msg} }

func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap 保留底层错误链
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) error   { return New(KindValidation, msg) }
func Conflict(msg string) error     { return New(KindConflict, msg) }
func NotFound(msg string) error     { return New(KindNotFound, msg) }
func Forbidden(msg string) error    { return New(KindForbidden, msg) }
func InvalidState(msg string) error { return New(KindInvalidState, msg) }
func Unauthorized(msg string) error { return New(KindUnauthorized, msg) }

// Transient wraps a storage or network failure that is safe to retry.
func Transient(err error) error { return Wrap(KindTransient, err, "storage unavailable") }

// KindOf 返回错误的分类；非 *Error 的错误按 internal 处理，
// 但 context 超时/取消归为 transient。
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransient
	}
	return KindInternal
}

// MessageOf returns the client-facing message: the error's own message for
// classified errors, a fixed text otherwise so internals don't leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	switch KindOf(err) {
	case KindTransient:
		return "temporarily unavailable, retry later"
	case KindInternal:
		return "internal server error"
	}
	return KindOf(err).Code()
}
