// Package fixtures provides shared stored values for the store test
// suites, so the unit tests and the integration suites agree on what a
// malformed value looks like.
package fixtures

// Keys used across store tests.
const (
	// Key is the default unprefixed key for unit tests.
	Key = "user:1"

	// AltKey is a second key for tests that touch two keys.
	AltKey = "user:2"

	// Prefix is the key prefix used when a test exercises WithKeyPrefix.
	Prefix = "svc:"
)

// Values decoded by GetString and GetInt.
var (
	// Text is a valid multi-byte UTF-8 value.
	Text = []byte("héllo, wörld")

	// Number is a valid base-10 int64 value and its parsed form.
	Number      = []byte("-9223372036854775808")
	NumberValue = int64(-9223372036854775808)

	// NotUTF8 is a value whose third byte is a truncated two-byte lead.
	NotUTF8 = []byte("ok\xc3\x28")

	// IncompleteUTF8 ends halfway through a three-byte sequence.
	IncompleteUTF8 = []byte("ok\xe2\x82")

	// NotNumber is valid UTF-8 that does not parse as an integer.
	NotNumber = []byte("abc")

	// OutOfRange is an integer past the int64 range.
	OutOfRange = []byte("9223372036854775808")
)

// Messages produced by the malformed values above.
const (
	NotUTF8Message        = "invalid utf-8 sequence of 1 bytes from index 2"
	IncompleteUTF8Message = "incomplete utf-8 byte sequence from index 2"
	NotNumberMessage      = `strconv.ParseInt: parsing "abc": invalid syntax`
	OutOfRangeMessage     = `strconv.ParseInt: parsing "9223372036854775808": value out of range`
)

// Clone returns a copy of b, for tests that hand a fixture to code that
// may retain or modify it.
func Clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
