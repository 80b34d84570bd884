// Package errors provides the single error type returned by every fallible
// operation in the StricklySoft store client. It normalizes the failure
// sources a store client meets into one value that callers can match on,
// display, and follow to an underlying cause.
//
// # Error Kinds
//
// The set of kinds is closed:
//
//   - Generic: a descriptive, library-originated failure. Backend (Redis,
//     PostgreSQL) failures are converted into this kind by rendering the
//     backend error to its message; the backend error itself is not kept.
//   - TextDecode: a stored value is not valid UTF-8. Wraps the
//     [*textconv.DecodeError] unchanged.
//   - IntParse: a stored value is not a valid integer. Wraps the
//     [*strconv.NumError] unchanged.
//
// # Display and Cause
//
// Generic errors render as "Store error: " followed by the message.
// TextDecode and IntParse errors render exactly as the wrapped error does,
// with no prefix. [Error.Cause] (and Unwrap) returns the held value: the
// [*GenericError] leaf for Generic, the external error otherwise. The
// chain is therefore at most one level deep.
//
// # Usage
//
// Construct a generic failure:
//
//	err := errors.Generic("connection refused")
//	fmt.Println(err) // Store error: connection refused
//
// Convert at a return site:
//
//	n, err := strconv.ParseInt(s, 10, 64)
//	if err != nil {
//	    return 0, errors.From(err)
//	}
//
// Inspect:
//
//	switch errors.KindOf(err) {
//	case errors.KindIntParse:
//	    // value is not numeric
//	}
package errors
