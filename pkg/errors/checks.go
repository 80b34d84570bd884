package errors

import (
	"errors"
)

// AsError attempts to convert an error to an *Error.
// Returns the Error and true if successful, nil and false otherwise.
// This function traverses the error chain using errors.As.
//
// Example:
//
//	if e, ok := errors.AsError(err); ok {
//	    log.Printf("kind: %s, message: %s", e.Kind(), e)
//	}
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of the first *Error in the chain, or the zero
// Kind if there is none.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind()
	}
	return 0
}

// HasKind reports whether err is a store error of the given kind.
func HasKind(err error, kind Kind) bool {
	return kind != 0 && KindOf(err) == kind
}

// IsGeneric reports whether err is a [KindGeneric] store error. Converted
// backend failures are generic.
func IsGeneric(err error) bool {
	return HasKind(err, KindGeneric)
}

// IsTextDecode reports whether err is a [KindTextDecode] store error.
func IsTextDecode(err error) bool {
	return HasKind(err, KindTextDecode)
}

// IsIntParse reports whether err is a [KindIntParse] store error.
//
// Example:
//
//	if errors.IsIntParse(err) {
//	    // stored value is not numeric
//	}
func IsIntParse(err error) bool {
	return HasKind(err, KindIntParse)
}

// Cause returns the cause of the first *Error in the chain, or nil if err
// is not a store error. It descends one level only.
func Cause(err error) error {
	if e, ok := AsError(err); ok {
		return e.Cause()
	}
	return nil
}
