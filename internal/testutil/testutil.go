// Package testutil provides shared test helpers for the StricklySoft store
// client.
//
// Helpers accept [testing.TB]. Require* helpers halt the test through
// testify's require; Assert* helpers record a failure and return false.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sserr "github.com/StricklySoft/stricklysoft-store/pkg/errors"
)

// RequireKind halts the test unless err is a *sserr.Error of the given
// kind and returns it.
//
//	_, _, err := st.GetInt(ctx, "name")
//	testutil.RequireKind(t, err, sserr.KindIntParse)
func RequireKind(t testing.TB, err error, kind sserr.Kind, msgAndArgs ...any) *sserr.Error {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
	e, ok := sserr.AsError(err)
	require.True(t, ok, "expected *sserr.Error, got %T: %v", err, err)
	require.Equal(t, kind, e.Kind(),
		"error kind mismatch: got %s, want %s (message: %s)", e.Kind(), kind, e)
	return e
}

// AssertKind is the non-fatal form of [RequireKind], for table-driven
// tests that should check every row.
func AssertKind(t testing.TB, err error, kind sserr.Kind, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Error(t, err, msgAndArgs...) {
		return false
	}
	e, ok := sserr.AsError(err)
	if !assert.True(t, ok, "expected *sserr.Error, got %T: %v", err, err) {
		return false
	}
	return assert.Equal(t, kind, e.Kind(),
		"error kind mismatch: got %s, want %s (message: %s)", e.Kind(), kind, e)
}

// AssertNoStoreError records a failure if err is non-nil, printing the
// kind when it is a store error.
func AssertNoStoreError(t testing.TB, err error) bool {
	t.Helper()
	if err == nil {
		return true
	}
	if e, ok := sserr.AsError(err); ok {
		return assert.Fail(t, "unexpected store error", "kind=%s message=%s", e.Kind(), e)
	}
	return assert.NoError(t, err)
}

// TempConfigFile writes content to config<ext> in t.TempDir() with mode
// 0600 and returns its path.
func TempConfigFile(t testing.TB, content, ext string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config"+ext)
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err, "failed to write temp config file %s", path)
	return path
}

// SetEnv sets an environment variable and restores its previous state
// when the test completes. Tests sharing a variable must not run in
// parallel.
func SetEnv(t testing.TB, key, value string) {
	t.Helper()
	prev, existed := os.LookupEnv(key)
	require.NoError(t, os.Setenv(key, value), "failed to set env var %s", key)
	t.Cleanup(func() {
		if existed {
			_ = os.Setenv(key, prev)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

// UnsetEnv unsets an environment variable and restores it when the test
// completes.
func UnsetEnv(t testing.TB, key string) {
	t.Helper()
	prev, existed := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key), "failed to unset env var %s", key)
	t.Cleanup(func() {
		if existed {
			_ = os.Setenv(key, prev)
		}
	})
}

// AssertJSONNotContains marshals v and asserts the JSON does not contain
// unexpected. Used to check that secrets are redacted.
func AssertJSONNotContains(t testing.TB, v any, unexpected string) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err, "json.Marshal failed")
	assert.NotContains(t, string(data), unexpected,
		"expected JSON to NOT contain %q, got: %s", unexpected, string(data))
}
