package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Shared fixtures
// -----------------------------------------------------------------------------

// userSpecSource declares an interface exercising every signature shape the
// generator handles.
const userSpecSource = `package users

import (
	"time"

	"github.com/sghaida/magenta/fixture"
	str "strings"
)

//go:generate go run ../../cmd/specproxy -spec ./userspec.proxy.json -out ./userspec_proxy.gen.go

// UserSpec describes users.
type UserSpec interface {
	fixture.Specification
	Named

	Names() []string
	Pick(p int, _ string) string
	Join(sep string, parts ...string) string
	Timeout() (d time.Duration, ok bool)
	Builder() *str.Builder
	Explode()
}
`

const namedSource = `package users

type Named interface {
	Name(int) string
}
`

// minimalSpecJSON returns a minimal proxy spec that passes validateSpec.
func minimalSpecJSON() []byte {
	return []byte(`{
  "package": "users",
  "interface": "UserSpec"
}`)
}

//
// -----------------------------------------------------------------------------
// Small helpers
// -----------------------------------------------------------------------------

// writeTempFile writes a file under dir/name and returns its full path.
func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// readFileString reads a file and returns its contents as string (fatal on error).
func readFileString(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

// userPackage lays out a package directory with the user spec sources.
func userPackage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTempFile(t, dir, "userspec.go", userSpecSource)
	writeTempFile(t, dir, "named.go", namedSource)
	writeTempFile(t, dir, "userspec.proxy.json", string(minimalSpecJSON()))
	return dir
}

// requirePanicContains asserts fn panics and the panic message contains wantSub.
func requirePanicContains(t *testing.T, wantSub string, fn func()) {
	t.Helper()

	defer func() {
		recovered := recover()
		require.NotNil(t, recovered)

		var message string
		switch v := recovered.(type) {
		case error:
			message = v.Error()
		case string:
			message = v
		default:
			message = fmt.Sprintf("%v", v)
		}
		require.Contains(t, message, wantSub)
	}()

	fn()
}
