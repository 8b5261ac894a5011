package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sift/internal/diagfmt"
)

const zeroDivSource = `int main()
{
    // cppcheck-suppress zerodiv
    int res = 100 / 0;
    return res;
}
`

const unmatchedSource = `// cppcheck-suppress some_warning_id
int x = 1;
`

func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	t.Chdir(dir)
	return dir
}

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestCheckReportsUnsuppressed(t *testing.T) {
	workspace(t, map[string]string{"3.cpp": zeroDivSource})

	code, stdout, stderr := run(t, "check", "-q", "3.cpp")
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "3.cpp:4:19: error: Division by zero. [zerodiv]\n", stderr)
}

func TestCheckInlineSuppression(t *testing.T) {
	workspace(t, map[string]string{"3.cpp": zeroDivSource})

	code, _, stderr := run(t, "check", "-q", "--inline-suppr", "3.cpp")
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
}

func TestCheckUnmatchedSuppression(t *testing.T) {
	workspace(t, map[string]string{"2.c": unmatchedSource})

	code, _, stderr := run(t, "check", "-q", "--inline-suppr", "--enable=information", "--error-exitcode=1", "2.c")
	assert.Equal(t, 1, code)
	assert.Equal(t, "2.c:2:0: information: Unmatched suppression: some_warning_id [unmatchedSuppression]\n", stderr)

	code, _, stderr = run(t, "check", "-q", "--inline-suppr", "--enable=information", "--error-exitcode=1",
		"--suppress=unmatchedSuppression", "2.c")
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
}

func TestCheckDefinesSkipGuardedSuppression(t *testing.T) {
	workspace(t, map[string]string{
		"trac/a.c": "void f(int a)\n{\n#ifndef NO_ZERO_DIV\n    // cppcheck-suppress zerodiv\n    a = a / 0;\n#endif\n}\n",
		"trac/b.c": "void f(int a)\n{\n#if 0\n    // cppcheck-suppress zerodiv\n    a = a / 0;\n#endif\n}\n",
	})

	for _, args := range [][]string{
		{"-DNO_ZERO_DIV", "trac/a.c"},
		{"-DNO_ZERO_DIV", "-j2", "trac/a.c"},
		{"trac/b.c"},
	} {
		base := []string{"check", "-q", "--template=simple", "--enable=information", "--disable=missingInclude", "--inline-suppr"}
		code, stdout, stderr := run(t, append(base, args...)...)
		assert.Equal(t, 0, code, "%v", args)
		assert.Empty(t, stdout, "%v", args)
		assert.Empty(t, stderr, "%v", args)
	}

	code, _, stderr := run(t, "check", "-q", "-D", "1BAD", "trac/a.c")
	assert.NotEqual(t, 0, code)
	assert.Contains(t, stderr, "invalid define")
}

func TestCheckProgressLines(t *testing.T) {
	workspace(t, map[string]string{"2.c": unmatchedSource, "3.cpp": zeroDivSource})

	code, stdout, _ := run(t, "check", "--ui=off", "-j", "1", "2.c", "3.cpp")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Checking 2.c ...\n")
	assert.Contains(t, stdout, "Checking 3.cpp ...\n")
	assert.Contains(t, stdout, "1/2 files checked 50% done\n")
	assert.Contains(t, stdout, "2/2 files checked 100% done\n")
}

func TestCheckJSONOutput(t *testing.T) {
	workspace(t, map[string]string{"3.cpp": zeroDivSource})

	code, stdout, stderr := run(t, "check", "-q", "--format=json", "3.cpp")
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)

	var out diagfmt.DiagnosticsOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "zerodiv", out.Diagnostics[0].ID)
	assert.Equal(t, diagfmt.LocationJSON{File: "3.cpp", Line: 4, Column: 19}, out.Diagnostics[0].Location)
}

func TestCheckCustomTemplate(t *testing.T) {
	workspace(t, map[string]string{"3.cpp": zeroDivSource})

	code, _, stderr := run(t, "check", "-q", "--template={id}@{line}", "3.cpp")
	assert.Equal(t, 0, code)
	assert.Equal(t, "zerodiv@4\n", stderr)
}

func TestCheckManifest(t *testing.T) {
	workspace(t, map[string]string{
		"2.c": unmatchedSource,
		"sift.toml": `[check]
inline-suppressions = true
enable = ["information"]
error-exitcode = 3
`,
	})

	code, _, stderr := run(t, "check", "-q", "2.c")
	assert.Equal(t, 3, code)
	assert.Contains(t, stderr, "Unmatched suppression: some_warning_id")

	code, _, stderr = run(t, "check", "-q", "--inline-suppr=false", "2.c")
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
}

func TestCheckManifestSuppressTables(t *testing.T) {
	workspace(t, map[string]string{
		"3.cpp": zeroDivSource,
		"sift.toml": `[[suppress]]
id = "zerodiv"
file = "3.cpp"
`,
	})

	code, _, stderr := run(t, "check", "-q", "3.cpp")
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
}

func TestCheckSuppressionsList(t *testing.T) {
	workspace(t, map[string]string{
		"3.cpp":      zeroDivSource,
		"suppr.txt":  "# project-wide\nzerodiv:3.cpp:4\n",
		"unused.txt": "",
	})

	code, _, stderr := run(t, "check", "-q", "--suppressions-list=suppr.txt", "--suppressions-list=unused.txt", "3.cpp")
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
}

func TestCheckErrors(t *testing.T) {
	workspace(t, map[string]string{"3.cpp": zeroDivSource})

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"no inputs", []string{"check", "-q"}, "no C/C++ source files found"},
		{"missing file", []string{"check", "-q", "missing.c"}, "missing.c"},
		{"bad ui", []string{"check", "--ui=sometimes", "3.cpp"}, "invalid --ui value"},
		{"bad format", []string{"check", "-q", "--format=xml", "3.cpp"}, "unknown format"},
		{"bad suppression", []string{"check", "-q", "--suppress=bad id", "3.cpp"}, "--suppress"},
		{"bad exit code", []string{"check", "-q", "--error-exitcode=300", "3.cpp"}, "--error-exitcode"},
		{"bad enable", []string{"check", "-q", "--enable=nonsense", "3.cpp"}, "nonsense"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := run(t, tc.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, "sift: ")
			assert.Contains(t, stderr, tc.want)
		})
	}
}

func TestCleanRemovesBuildDir(t *testing.T) {
	workspace(t, map[string]string{"3.cpp": zeroDivSource})

	code, _, _ := run(t, "check", "-q", "--build-dir=.cache", "3.cpp")
	require.Equal(t, 0, code)
	assert.DirExists(t, ".cache")

	code, stdout, _ := run(t, "clean", "--build-dir=.cache")
	assert.Equal(t, 0, code)
	assert.Equal(t, "removed .cache\n", stdout)
	assert.NoDirExists(t, ".cache")

	code, stdout, _ = run(t, "clean", "--build-dir=.cache")
	assert.Equal(t, 0, code)
	assert.Equal(t, "nothing to clean at .cache\n", stdout)
}

func TestCleanNeedsDir(t *testing.T) {
	workspace(t, nil)

	code, _, stderr := run(t, "clean")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no build directory configured")
}

func TestVersionJSON(t *testing.T) {
	code, stdout, _ := run(t, "version", "--format=json", "--full")
	require.Equal(t, 0, code)

	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "sift", payload.Tool)
	assert.NotEmpty(t, payload.Version)
	assert.NotEmpty(t, payload.GitCommit)
	assert.NotEmpty(t, payload.BuildDate)
}

func TestVersionPretty(t *testing.T) {
	code, stdout, _ := run(t, "version", "--color=off", "--hash")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "sift ")
	assert.Contains(t, stdout, "commit: ")
}

func TestReadPathMode(t *testing.T) {
	for in, want := range map[string]diagfmt.PathMode{
		"":         diagfmt.PathModeAuto,
		"absolute": diagfmt.PathModeAbsolute,
		"rel":      diagfmt.PathModeRelative,
		"basename": diagfmt.PathModeBasename,
	} {
		got, err := readPathMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := readPathMode("weird")
	assert.Error(t, err)
}

func TestCheckWritesProfiles(t *testing.T) {
	workspace(t, map[string]string{"3.cpp": zeroDivSource})

	code, _, _ := run(t, "check", "-q", "--cpu-profile=cpu.out", "--mem-profile=mem.out", "3.cpp")
	assert.Equal(t, 0, code)
	assert.FileExists(t, "cpu.out")
	assert.FileExists(t, "mem.out")
}

func TestCheckTraceStreamAttributesFiles(t *testing.T) {
	dir := workspace(t, map[string]string{"3.cpp": zeroDivSource})

	code, _, _ := run(t, "check", "-q", "--trace=trace.ndjson", "--trace-level=detail", "--trace-mode=stream",
		"--trace-heartbeat=1ms", "--build-dir=.sift", "3.cpp")
	require.Equal(t, 0, code)

	data, err := os.ReadFile(filepath.Join(dir, "trace.ndjson"))
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"worker":1,"file":"3.cpp","name":"file"`)
	assert.Contains(t, out, `"cache":"miss"`)
}

func TestCheckDumpsRingOnFailure(t *testing.T) {
	workspace(t, map[string]string{"3.cpp": zeroDivSource})

	code, _, stderr := run(t, "check", "-q", "--trace-level=detail", "--trace-mode=ring", "3.cpp", "missing.c")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "sift: ")
	assert.Contains(t, stderr, "--- trace (most recent events) ---")
}
