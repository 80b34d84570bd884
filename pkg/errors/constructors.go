package errors

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/StricklySoft/stricklysoft-store/pkg/textconv"
)

// Generic creates a [KindGeneric] error from message. It never fails and
// performs no validation; the empty string is accepted verbatim.
//
// Example:
//
//	err := errors.Generic("connection refused")
//	// err.Error() == "Store error: connection refused"
func Generic(message string) *Error {
	return &Error{
		kind:  KindGeneric,
		cause: NewGeneric(message),
	}
}

// Genericf creates a [KindGeneric] error with a formatted message.
//
// Example:
//
//	err := errors.Genericf("key %q must not be empty", key)
func Genericf(format string, args ...any) *Error {
	return Generic(fmt.Sprintf(format, args...))
}

// FromBackend converts a store backend failure into a [KindGeneric] error.
// Only the backend error's message survives: the backend error is not
// retained, so the result's cause chain ends at its [*GenericError].
// If err is nil, FromBackend returns nil.
//
// Example:
//
//	if err := rdb.Ping(ctx).Err(); err != nil {
//	    return errors.FromBackend(err)
//	}
func FromBackend(err error) *Error {
	if err == nil {
		return nil
	}
	return Generic(err.Error())
}

// FromTextDecode wraps a UTF-8 decoding failure into a [KindTextDecode]
// error. The DecodeError is kept as the cause. If err is nil,
// FromTextDecode returns nil.
func FromTextDecode(err *textconv.DecodeError) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:  KindTextDecode,
		cause: err,
	}
}

// FromIntParse wraps an integer parsing failure into a [KindIntParse]
// error. The NumError is kept as the cause and its message is displayed
// unchanged. If err is nil, FromIntParse returns nil.
//
// Example:
//
//	n, err := strconv.ParseInt("abc", 10, 64)
//	var ne *strconv.NumError
//	if errors.As(err, &ne) {
//	    return errors.FromIntParse(ne)
//	}
func FromIntParse(err *strconv.NumError) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:  KindIntParse,
		cause: err,
	}
}

// From converts any error into an *Error and is meant for return sites
// that propagate a collaborator's failure:
//
//   - nil returns nil
//   - an *Error anywhere in the chain is returned unchanged
//   - a *textconv.DecodeError becomes [KindTextDecode]
//   - a *strconv.NumError becomes [KindIntParse]
//   - anything else is treated as a backend failure ([FromBackend])
//
// Decode and parse errors are only recognized at the top of err. A parse
// error wrapped with extra context is rendered through FromBackend so the
// context stays in the message.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch x := err.(type) {
	case *textconv.DecodeError:
		return FromTextDecode(x)
	case *strconv.NumError:
		return FromIntParse(x)
	default:
		return FromBackend(err)
	}
}
