package narrator

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a story failure for the caller.
type Kind int

const (
	// KindUpstream covers network errors, non-2xx replies and malformed model output.
	KindUpstream Kind = iota
	// KindConfig means a provider credential is missing; nothing was sent.
	KindConfig
	// KindRateLimited means the token budget rejected the request; nothing was sent.
	KindRateLimited
	// KindInvalidInput means the request named an unknown length or directive.
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "upstream"
	}
}

// Error is the typed failure returned by the Service.
type Error struct {
	Kind       Kind
	Message    string
	RetryAfter time.Duration // only for KindRateLimited
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// RetryAfterSeconds is RetryAfter rounded up to whole seconds.
func (e *Error) RetryAfterSeconds() int {
	ms := e.RetryAfter.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}

// KindOf returns the kind of err, defaulting to KindUpstream for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// IsRateLimited reports whether err is a budget rejection.
func IsRateLimited(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindRateLimited
}

func invalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}
