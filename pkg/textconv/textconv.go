// Package textconv converts raw store values from bytes to text.
//
// Store backends hand back opaque byte slices. [Decode] turns them into a
// Go string only when they are well-formed UTF-8; otherwise it returns a
// [*DecodeError] that locates the first malformed sequence. The store
// package wraps that error unchanged into the TextDecode error kind.
//
//	s, err := textconv.Decode(raw)
//	if err != nil {
//	    var de *textconv.DecodeError
//	    if errors.As(err, &de) {
//	        log.Printf("valid prefix: %q", raw[:de.ValidUpTo()])
//	    }
//	}
package textconv

import (
	"fmt"
	"unicode/utf8"
)

// DecodeError reports that a byte slice is not valid UTF-8. It keeps a
// private copy of the input so the caller may reuse its buffer.
type DecodeError struct {
	bytes     []byte
	validUpTo int
	errorLen  int
}

// Error renders the failure position. An input that ends in the middle of
// a multi-byte sequence is reported as incomplete.
func (e *DecodeError) Error() string {
	if e.errorLen > 0 {
		return fmt.Sprintf("invalid utf-8 sequence of %d bytes from index %d", e.errorLen, e.validUpTo)
	}
	return fmt.Sprintf("incomplete utf-8 byte sequence from index %d", e.validUpTo)
}

// ValidUpTo returns the length of the longest valid UTF-8 prefix.
func (e *DecodeError) ValidUpTo() int {
	return e.validUpTo
}

// ErrorLen returns the length of the invalid sequence at ValidUpTo. The
// boolean is false when the input ended before the sequence was complete.
func (e *DecodeError) ErrorLen() (int, bool) {
	return e.errorLen, e.errorLen > 0
}

// Bytes returns a copy of the input that failed to decode.
func (e *DecodeError) Bytes() []byte {
	out := make([]byte, len(e.bytes))
	copy(out, e.bytes)
	return out
}

// Decode returns b as a string if it is valid UTF-8. Otherwise it returns
// a *DecodeError describing the first malformed sequence.
func Decode(b []byte) (string, error) {
	for i := 0; i < len(b); {
		if b[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		if r != utf8.RuneError || size > 1 {
			i += size
			continue
		}
		n, complete := invalidSequenceLen(b[i:])
		de := &DecodeError{
			bytes:     append([]byte(nil), b...),
			validUpTo: i,
		}
		if complete {
			de.errorLen = n
		}
		return "", de
	}
	return string(b), nil
}

// invalidSequenceLen measures the maximal prefix of p that could start a
// well-formed sequence. complete is false when p ran out before the
// sequence could be judged, i.e. the input is truncated.
func invalidSequenceLen(p []byte) (n int, complete bool) {
	width, lo, hi := leadInfo(p[0])
	if width == 0 {
		return 1, true
	}
	n = 1
	for n < width {
		if n == len(p) {
			return n, false
		}
		c := p[n]
		if n == 1 {
			if c < lo || c > hi {
				break
			}
		} else if c&0xC0 != 0x80 {
			break
		}
		n++
	}
	return n, true
}

// leadInfo returns the encoded width announced by a lead byte and the
// accepted range of the second byte. width is 0 for bytes that can never
// start a sequence.
func leadInfo(b byte) (width int, lo, hi byte) {
	switch {
	case b >= 0xC2 && b <= 0xDF:
		return 2, 0x80, 0xBF
	case b == 0xE0:
		return 3, 0xA0, 0xBF
	case b == 0xED:
		return 3, 0x80, 0x9F
	case b >= 0xE1 && b <= 0xEF:
		return 3, 0x80, 0xBF
	case b == 0xF0:
		return 4, 0x90, 0xBF
	case b >= 0xF1 && b <= 0xF3:
		return 4, 0x80, 0xBF
	case b == 0xF4:
		return 4, 0x80, 0x8F
	default:
		return 0, 0, 0
	}
}
