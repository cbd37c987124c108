package main

import (
	"bytes"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// writeFileAtomic() seam helpers
// -----------------------------------------------------------------------------

// fakeTempFile is a controllable file-like object for writeFileAtomic tests.
type fakeTempFile struct {
	fileName string
	writeErr error
	closeErr error
}

func (f *fakeTempFile) Name() string { return f.fileName }

func (f *fakeTempFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *fakeTempFile) Close() error { return f.closeErr }

// restoreWriteFileSeams puts the real file seams back when the test ends.
func restoreWriteFileSeams(t *testing.T) {
	t.Helper()
	origCreate, origRemove, origChmod, origRename := createTempFile, removeFile, chmodFile, renameFile
	t.Cleanup(func() {
		createTempFile = origCreate
		removeFile = origRemove
		chmodFile = origChmod
		renameFile = origRename
	})
}

//
// -----------------------------------------------------------------------------
// must()
// -----------------------------------------------------------------------------

func TestMust_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() { must(nil) })
	require.PanicsWithError(t, "boom", func() { must(errors.New("boom")) })
}

//
// -----------------------------------------------------------------------------
// writeFileAtomic()
// -----------------------------------------------------------------------------

// Covers every writeFileAtomic error branch, including deferred cleanup.
func TestWriteFileAtomic_AllErrorBranches(t *testing.T) {
	// NOT parallel: mutates global seams.

	okTemp := func(dir, pattern string) (tempFile, error) {
		return &fakeTempFile{fileName: filepath.Join(dir, "tmpfile")}, nil
	}

	testCases := []struct {
		name                 string
		createTemp           func(dir, pattern string) (tempFile, error)
		chmodTmp             func(path string, mode os.FileMode) error
		renameTmp            func(oldpath, newpath string) error
		expectedErrSubstring string
		expectedRemoveCount  int
	}{
		{
			name: "create temp error",
			createTemp: func(dir, pattern string) (tempFile, error) {
				return nil, errors.New("create temp failed")
			},
			expectedErrSubstring: "create temp failed",
		},
		{
			name: "write error removes temp",
			createTemp: func(dir, pattern string) (tempFile, error) {
				return &fakeTempFile{fileName: filepath.Join(dir, "tmpfile"), writeErr: errors.New("write failed")}, nil
			},
			expectedErrSubstring: "write failed",
			expectedRemoveCount:  1,
		},
		{
			name: "close error removes temp",
			createTemp: func(dir, pattern string) (tempFile, error) {
				return &fakeTempFile{fileName: filepath.Join(dir, "tmpfile"), closeErr: errors.New("close failed")}, nil
			},
			expectedErrSubstring: "close failed",
			expectedRemoveCount:  1,
		},
		{
			name:                 "chmod error removes temp",
			createTemp:           okTemp,
			chmodTmp:             func(string, os.FileMode) error { return errors.New("chmod failed") },
			expectedErrSubstring: "chmod failed",
			expectedRemoveCount:  1,
		},
		{
			name:                 "rename error removes temp",
			createTemp:           okTemp,
			renameTmp:            func(string, string) error { return errors.New("rename failed") },
			expectedErrSubstring: "rename failed",
			expectedRemoveCount:  1,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			restoreWriteFileSeams(t)

			var removed []string
			createTempFile = tc.createTemp
			removeFile = func(path string) error {
				removed = append(removed, path)
				return nil
			}
			chmodFile = func(path string, mode os.FileMode) error {
				if tc.chmodTmp != nil {
					return tc.chmodTmp(path, mode)
				}
				return nil
			}
			renameFile = func(oldpath, newpath string) error {
				if tc.renameTmp != nil {
					return tc.renameTmp(oldpath, newpath)
				}
				return nil
			}

			err := writeFileAtomic(filepath.Join(t.TempDir(), "out.go"), []byte("x"), 0o644)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedErrSubstring)
			assert.Len(t, removed, tc.expectedRemoveCount)
		})
	}
}

func TestWriteFileAtomic_Success(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "final.go")

	require.NoError(t, writeFileAtomic(outputPath, []byte("hello"), 0o644))
	assert.Equal(t, "hello", readFileString(t, outputPath))
}

//
// -----------------------------------------------------------------------------
// validateSpec()
// -----------------------------------------------------------------------------

func TestValidateSpec_AllBranches(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		spec    Spec
		wantSub string
	}{
		{name: "ok", spec: Spec{Package: "users", Interface: "UserSpec"}},
		{name: "ok with proxy name", spec: Spec{Package: "users", Interface: "UserSpec", ProxyName: "Users"}},
		{name: "missing fields", spec: Spec{Package: " "}, wantSub: "spec missing required fields: [package interface]"},
		{name: "bad interface", spec: Spec{Package: "users", Interface: "User-Spec"}, wantSub: `not a Go identifier: "User-Spec"`},
		{name: "bad proxy name", spec: Spec{Package: "users", Interface: "UserSpec", ProxyName: "1Proxy"}, wantSub: `not a Go identifier: "1Proxy"`},
		{name: "same names", spec: Spec{Package: "users", Interface: "UserSpec", ProxyName: "UserSpec"}, wantSub: "proxyName must differ"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			spec := tc.spec
			if tc.wantSub == "" {
				require.NotPanics(t, func() { validateSpec(&spec) })
				return
			}
			requirePanicContains(t, tc.wantSub, func() { validateSpec(&spec) })
		})
	}
}

//
// -----------------------------------------------------------------------------
// readSpec()
// -----------------------------------------------------------------------------

func TestReadSpec_JSONAndYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jsonSpec := readSpec(writeTempFile(t, dir, "a.proxy.json", `{"package":"users","interface":"UserSpec","proxyName":"Users"}`))
	assert.Equal(t, Spec{Package: "users", Interface: "UserSpec", ProxyName: "Users"}, jsonSpec)

	yamlSpec := readSpec(writeTempFile(t, dir, "a.proxy.yaml", "package: users\ninterface: UserSpec\nsource: userspec.go\n"))
	assert.Equal(t, Spec{Package: "users", Interface: "UserSpec", Source: "userspec.go"}, yamlSpec)

	require.Panics(t, func() { readSpec(filepath.Join(dir, "missing.json")) })
	require.Panics(t, func() { readSpec(writeTempFile(t, dir, "bad.proxy.json", "{")) })
}

//
// -----------------------------------------------------------------------------
// Interface collection
// -----------------------------------------------------------------------------

func TestCollectInterface_FlattensAndRecordsImports(t *testing.T) {
	t.Parallel()

	dir := userPackage(t)
	methods, imports, err := collectInterface(filepath.Join(dir, "userspec.go"), "UserSpec")
	require.NoError(t, err)

	var names []string
	for _, m := range methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"DefaultNumberOfItems", "Name", "Names", "Pick", "Join", "Timeout", "Builder", "Explode"}, names)

	byName := map[string]Method{}
	for _, m := range methods {
		byName[m.Name] = m
	}
	assert.Equal(t, "a0 int", byName["Name"].ParamList())
	assert.Equal(t, "a0 int, a1 string", byName["Pick"].ParamList())
	assert.Equal(t, "sep string, parts ...string", byName["Join"].ParamList())
	assert.Equal(t, "sep, parts...", byName["Join"].ArgList())
	assert.Equal(t, "(time.Duration, bool)", byName["Timeout"].ResultList())
	assert.Equal(t, "*str.Builder", byName["Builder"].ResultList())
	assert.Equal(t, "", byName["Explode"].ResultList())

	assert.Equal(t, []ImportSpec{{Alias: "str", Path: "strings"}, {Path: "time"}}, imports)
}

func TestCollectInterface_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		source  string
		wantSub string
	}{
		{
			name:    "not found",
			source:  "package x\n\ntype Other interface{ M() }\n",
			wantSub: "interface Target not found",
		},
		{
			name:    "foreign embedded",
			source:  "package x\n\nimport \"io\"\n\ntype Target interface{ io.Reader }\n",
			wantSub: "embedded interface io.Reader is declared in another package",
		},
		{
			name:    "self embedding",
			source:  "package x\n\ntype Target interface{ Target }\n",
			wantSub: "interface Target embeds itself",
		},
		{
			name:    "missing local embedded",
			source:  "package x\n\ntype Target interface{ Gone }\n",
			wantSub: "embedded interface Gone not found",
		},
		{
			name:    "no methods",
			source:  "package x\n\ntype Target interface{}\n",
			wantSub: "interface Target has no methods",
		},
		{
			name:    "unknown qualifier",
			source:  "package x\n\ntype Target interface{ M() foo.Bar }\n",
			wantSub: `method M: no import for qualifier "foo"`,
		},
		{
			name:    "unsupported element",
			source:  "package x\n\ntype Target interface{ ~int }\n",
			wantSub: "unsupported element",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := writeTempFile(t, t.TempDir(), "target.go", tc.source)
			_, _, err := collectInterface(p, "Target")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantSub)
		})
	}
}

func TestFindOwnerGoGenerateFile(t *testing.T) {
	t.Parallel()

	dir := userPackage(t)
	owner, err := findOwnerGoGenerateFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "userspec.go"), owner)

	_, err = findOwnerGoGenerateFile(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find owner file")
}

func TestLocateSource(t *testing.T) {
	t.Parallel()

	dir := userPackage(t)

	got, err := locateSource(&Spec{Interface: "Named"}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "named.go"), got, "falls back to scanning when the owner file lacks the type")

	got, err = locateSource(&Spec{Interface: "UserSpec", Source: "elsewhere.go"}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "elsewhere.go"), got)

	_, err = locateSource(&Spec{Interface: "Missing"}, dir)
	require.Error(t, err)
}

func TestResolveImports(t *testing.T) {
	t.Parallel()

	got := resolveImports([]ImportSpec{{Path: "time"}}, defaultRuntimeImport)
	assert.Equal(t, []ImportSpec{{Path: "time"}, {Path: defaultRuntimeImport}}, got)

	got = resolveImports(nil, "example.com/x/runtime")
	assert.Equal(t, []ImportSpec{{Alias: "inject", Path: "example.com/x/runtime"}}, got)

	got = resolveImports([]ImportSpec{{Path: "example.com/other/inject"}}, defaultRuntimeImport)
	assert.Equal(t, []ImportSpec{{Path: "example.com/other/inject"}, {Alias: "magentainject", Path: defaultRuntimeImport}}, got)

	got = resolveImports([]ImportSpec{{Path: defaultRuntimeImport}}, defaultRuntimeImport)
	assert.Equal(t, []ImportSpec{{Path: defaultRuntimeImport}}, got)
}

//
// -----------------------------------------------------------------------------
// run()
// -----------------------------------------------------------------------------

func TestRun_Usage(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stderr))
	assert.Contains(t, stderr.String(), "usage: specproxy")

	stderr.Reset()
	assert.Equal(t, 2, run([]string{"-nope"}, &stderr))
}

func TestRun_GeneratesProxy(t *testing.T) {
	t.Parallel()

	dir := userPackage(t)
	out := filepath.Join(dir, "userspec_proxy.gen.go")

	var stderr bytes.Buffer
	code := run([]string{"-spec", filepath.Join(dir, "userspec.proxy.json"), "-out", out}, &stderr)
	require.Equal(t, 0, code, stderr.String())

	generated := readFileString(t, out)
	_, err := parser.ParseFile(token.NewFileSet(), out, generated, parser.AllErrors)
	require.NoError(t, err)

	for _, want := range []string{
		"// Code generated by specproxy; DO NOT EDIT.",
		"package users",
		`"github.com/sghaida/magenta/inject"`,
		`str "strings"`,
		`"time"`,
		"type UserSpecProxy struct {",
		"func NewUserSpecProxy(resolve func() UserSpec) *UserSpecProxy {",
		"func (p *UserSpecProxy) DefaultNumberOfItems() int {\n\treturn p.resolve().DefaultNumberOfItems()\n}",
		"func (p *UserSpecProxy) Pick(a0 int, a1 string) string {\n\treturn p.resolve().Pick(a0, a1)\n}",
		"func (p *UserSpecProxy) Join(sep string, parts ...string) string {\n\treturn p.resolve().Join(sep, parts...)\n}",
		"func (p *UserSpecProxy) Timeout() (time.Duration, bool) {",
		"func (p *UserSpecProxy) Explode() {\n\tp.resolve().Explode()\n}",
		"func RegisterUserSpecProxy(r *inject.Registry) error {",
		"return inject.Provide(r, func(resolve func() UserSpec) UserSpec {",
	} {
		assert.Contains(t, generated, want)
	}
	assert.NotContains(t, generated, "magenta/fixture\"", "embedding alone does not need the fixture import")
}

func TestRun_YAMLSpecWithProxyName(t *testing.T) {
	t.Parallel()

	dir := userPackage(t)
	specPath := writeTempFile(t, dir, "named.proxy.yaml", "package: users\ninterface: Named\nproxyName: NamedForwarder\nsource: named.go\n")
	out := filepath.Join(dir, "named_proxy.gen.go")

	var stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-spec", specPath, "-out", out}, &stderr), stderr.String())

	generated := readFileString(t, out)
	assert.Contains(t, generated, "type NamedForwarder struct {")
	assert.Contains(t, generated, "func (p *NamedForwarder) Name(a0 int) string {")
	assert.Contains(t, generated, "func RegisterNamedForwarder(r *inject.Registry) error {")
}

func TestRun_FailuresReportAndExitOne(t *testing.T) {
	t.Parallel()

	dir := userPackage(t)
	out := filepath.Join(dir, "x.gen.go")

	testCases := []struct {
		name    string
		spec    string
		wantSub string
	}{
		{name: "invalid spec", spec: `{"package":"users"}`, wantSub: "spec missing required fields"},
		{name: "unknown interface", spec: `{"package":"users","interface":"Ghost"}`, wantSub: "interface Ghost not declared"},
		{name: "malformed json", spec: `{`, wantSub: "specproxy:"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			specPath := writeTempFile(t, t.TempDir(), "s.proxy.json", tc.spec)
			var stderr bytes.Buffer
			assert.Equal(t, 1, run([]string{"-spec", specPath, "-out", out}, &stderr))
			assert.Contains(t, stderr.String(), tc.wantSub)
		})
	}

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

// TestRun_MatchesCheckedInExample regenerates the example proxy and compares it to the committed file.
func TestRun_MatchesCheckedInExample(t *testing.T) {
	t.Parallel()

	source, err := filepath.Abs(filepath.Join("..", "..", "examples", "users", "users.go"))
	require.NoError(t, err)

	dir := t.TempDir()
	specPath := writeTempFile(t, dir, "userspec.proxy.json",
		`{"package":"users","interface":"UserSpec","source":`+strconv.Quote(source)+`}`)
	out := filepath.Join(dir, "userspec_proxy.gen.go")

	var stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-spec", specPath, "-out", out}, &stderr), stderr.String())

	want := readFileString(t, filepath.Join(filepath.Dir(source), "userspec_proxy.gen.go"))
	assert.Equal(t, want, readFileString(t, out))
}
