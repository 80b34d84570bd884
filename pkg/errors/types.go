package errors

import (
	"fmt"
	"strconv"

	"github.com/StricklySoft/stricklysoft-store/pkg/textconv"
)

// GenericPrefix is prepended to the message of every generic failure when
// it is displayed.
const GenericPrefix = "Store error: "

// Kind identifies which variant an [Error] holds. The zero value is not a
// valid kind and is reported by [KindOf] for errors that are not store
// errors.
type Kind int

const (
	// KindGeneric is a descriptive failure raised by the library or
	// collapsed from a backend error.
	KindGeneric Kind = iota + 1

	// KindTextDecode is a byte-to-text conversion failure.
	KindTextDecode

	// KindIntParse is a text-to-integer conversion failure.
	KindIntParse
)

// String returns a stable lower-case name for the kind.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindTextDecode:
		return "text_decode"
	case KindIntParse:
		return "int_parse"
	default:
		return "unknown"
	}
}

// GenericError holds the free-form message of a library-originated
// failure. It is immutable and is the leaf of every cause chain it
// appears in.
type GenericError struct {
	message string
}

// NewGeneric creates a GenericError holding its own copy of message. Any
// string is accepted, including the empty string.
func NewGeneric(message string) *GenericError {
	return &GenericError{message: message}
}

// Error returns the message with [GenericPrefix] prepended.
func (e *GenericError) Error() string {
	return GenericPrefix + e.message
}

// Description returns the message without the prefix.
func (e *GenericError) Description() string {
	return e.message
}

// Cause always returns nil.
func (e *GenericError) Cause() error {
	return nil
}

// Error is the store error value. Exactly one variant is active, selected
// at construction by [Generic], [FromBackend], [FromTextDecode],
// [FromIntParse], or [From]. Error values are immutable and safe to share
// between goroutines.
type Error struct {
	kind  Kind
	cause error
}

// Kind returns the active variant.
func (e *Error) Kind() Kind {
	if e == nil {
		return 0
	}
	return e.kind
}

// Error implements the error interface. Generic errors render with
// [GenericPrefix]; the other kinds render as the wrapped error does.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause == nil {
		return GenericPrefix
	}
	return e.cause.Error()
}

// Cause returns the value held by the active variant: the [*GenericError]
// for Generic, the [*textconv.DecodeError] for TextDecode, and the
// [*strconv.NumError] for IntParse.
func (e *Error) Cause() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Unwrap returns [Error.Cause], supporting errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause()
}

// Generic returns the held GenericError if the error is of [KindGeneric].
func (e *Error) Generic() (*GenericError, bool) {
	if e == nil || e.kind != KindGeneric {
		return nil, false
	}
	g, ok := e.cause.(*GenericError)
	return g, ok
}

// TextDecode returns the held DecodeError if the error is of
// [KindTextDecode].
func (e *Error) TextDecode() (*textconv.DecodeError, bool) {
	if e == nil || e.kind != KindTextDecode {
		return nil, false
	}
	d, ok := e.cause.(*textconv.DecodeError)
	return d, ok
}

// IntParse returns the held NumError if the error is of [KindIntParse].
func (e *Error) IntParse() (*strconv.NumError, bool) {
	if e == nil || e.kind != KindIntParse {
		return nil, false
	}
	n, ok := e.cause.(*strconv.NumError)
	return n, ok
}

// Format implements fmt.Formatter.
// Use %v for the display message, %+v to include the kind and cause.
func (e *Error) Format(s fmt.State, verb rune) {
	if e == nil {
		fmt.Fprint(s, "<nil>")
		return
	}
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "Error{Kind: %q, Message: %q", e.Kind(), e.Error())
			if e.cause != nil {
				fmt.Fprintf(s, ", Cause: %+v", e.cause)
			}
			fmt.Fprint(s, "}")
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}
