package check

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sift/internal/diag"
	"sift/internal/source"
)

func parseUnit(t *testing.T, path, src string, includes ...string) *Unit {
	t.Helper()
	u, err := Parse(context.Background(), source.FromBytes(path, []byte(src)), includes)
	require.NoError(t, err)
	t.Cleanup(u.Close)
	return u
}

func runFileCheck(t *testing.T, c FileCheck, u *Unit) []diag.Diagnostic {
	t.Helper()
	bag := diag.NewBag(0)
	require.NoError(t, c.Run(context.Background(), u, diag.BagReporter{Bag: bag}))
	return bag.Items()
}

func TestZeroDiv(t *testing.T) {
	t.Parallel()
	src := "int f(int a) {\n" +
		"    int b = a / 2;\n" +
		"    int c = a % 0;\n" +
		"    b /= (0);\n" +
		"    return 100 / 0x0;\n" +
		"}\n" +
		"double g(double x) { return x / 0.0; }\n"

	got := runFileCheck(t, ZeroDiv{}, parseUnit(t, "3.cpp", src))

	require.Len(t, got, 3)
	assert.Equal(t, "3.cpp:3:15: error: Division by zero. [zerodiv]", got[0].String())
	assert.Equal(t, 4, got[1].Line)
	assert.Equal(t, 7, got[1].Column)
	assert.Equal(t, 5, got[2].Line)
	assert.Equal(t, 16, got[2].Column)
}

func TestZeroDivCFile(t *testing.T) {
	t.Parallel()
	got := runFileCheck(t, ZeroDiv{}, parseUnit(t, "a.c", "int x = 1 / 0u;\n"))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, 11, got[0].Column)
}

func TestMissingInclude(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	inc := filepath.Join(dir, "inc")
	require.NoError(t, os.MkdirAll(inc, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "near.h"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(inc, "far.h"), nil, 0o600))

	src := "#include \"near.h\"\n#include \"far.h\"\n#include \"gone.h\"\n#include <stdio.h>\n"
	u := parseUnit(t, filepath.Join(dir, "m.c"), src, inc)

	got := runFileCheck(t, MissingInclude{}, u)

	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Line)
	assert.Equal(t, 0, got[0].Column)
	assert.Equal(t, `Include file: "gone.h" not found.`, got[0].Message)
	assert.Equal(t, diag.SevInformation, got[0].Severity)
}

func TestMissingIncludeRecordsLookups(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "near.h"), nil, 0o600))

	u := parseUnit(t, filepath.Join(dir, "m.c"), "#include \"near.h\"\n#include \"later.h\"\n")
	got := runFileCheck(t, MissingInclude{}, u)
	require.Len(t, got, 1)

	lookups := u.Lookups()
	require.Equal(t, []Lookup{
		{Path: filepath.Join(dir, "later.h"), Exists: false},
		{Path: filepath.Join(dir, "near.h"), Exists: true},
	}, lookups)
	for _, p := range lookups {
		assert.True(t, p.Holds(), p.Path)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "later.h"), nil, 0o600))
	assert.False(t, lookups[0].Holds())
	assert.True(t, lookups[1].Holds())
}

func TestUnusedFunctionAcrossFiles(t *testing.T) {
	t.Parallel()
	a := parseUnit(t, "A.cpp", "void used();\n"+
		"int helper(int x) { return x; }\n"+
		"int main() { used(); return 0; }\n")
	b := parseUnit(t, "B.cpp", "void used() {}\n"+
		"\n"+
		"static int twice(int x) { return helper(x) * 2; }\n"+
		"\n"+
		"\n"+
		"void unusedFunctionTest() {}\n")

	var fa, fb Facts
	UnusedFunction{}.Collect(a, &fa)
	UnusedFunction{}.Collect(b, &fb)

	bag := diag.NewBag(0)
	UnusedFunction{}.Resolve([]FileFacts{{File: "A.cpp", Facts: fa}, {File: "B.cpp", Facts: fb}}, diag.BagReporter{Bag: bag})

	var lines []string
	for _, d := range bag.Items() {
		lines = append(lines, d.String())
	}
	assert.Equal(t, []string{
		"B.cpp:3:0: style: The function 'twice' is never used. [unusedFunction]",
		"B.cpp:6:0: style: The function 'unusedFunctionTest' is never used. [unusedFunction]",
	}, lines)
	assert.Equal(t, "twice", bag.Items()[0].Symbol)
}

func TestUnusedFunctionSingleFileSeesPrototypeAsDeclaration(t *testing.T) {
	t.Parallel()
	u := parseUnit(t, "p.c", "int lonely(void);\nint lonely(void) { return 1; }\n")
	var f Facts
	UnusedFunction{}.Collect(u, &f)

	require.Len(t, f.Functions, 1)
	assert.Equal(t, FuncDef{Name: "lonely", Line: 2}, f.Functions[0])
	assert.NotContains(t, f.Uses, "lonely")
}

func TestUnusedFunctionSkipsConstructors(t *testing.T) {
	t.Parallel()
	u := parseUnit(t, "k.cpp", "struct K { K(); ~K(); };\nK::K() {}\nK::~K() {}\nint K_helper() { return 0; }\n")
	var f Facts
	UnusedFunction{}.Collect(u, &f)

	require.Len(t, f.Functions, 1)
	assert.Equal(t, "K_helper", f.Functions[0].Name)
}

func TestSelection(t *testing.T) {
	t.Parallel()
	known := Default()

	sel, err := NewSelection([]string{"information"}, []string{"missingInclude"}, known)
	require.NoError(t, err)
	assert.True(t, sel.SeverityEnabled(diag.SevInformation))
	assert.True(t, sel.SeverityEnabled(diag.SevError))
	assert.False(t, sel.SeverityEnabled(diag.SevStyle))
	assert.Equal(t, []string{"zerodiv"}, known.Select(sel).Names())
	assert.Equal(t, map[string]bool{"missingInclude": true, "unusedFunction": true}, known.Skipped(sel))

	all, err := NewSelection([]string{"all"}, nil, known)
	require.NoError(t, err)
	assert.Equal(t, []string{"zerodiv", "missingInclude", "unusedFunction"}, known.Select(all).Names())

	style, err := NewSelection([]string{"style"}, nil, known)
	require.NoError(t, err)
	assert.True(t, style.SeverityEnabled(diag.SevWarning))
	assert.False(t, style.CheckEnabled(UnusedFunction{}))

	named, err := NewSelection([]string{"unusedFunction,missingInclude"}, nil, known)
	require.NoError(t, err)
	assert.True(t, named.CheckEnabled(UnusedFunction{}))
	assert.True(t, named.CheckEnabled(MissingInclude{}))

	_, err = NewSelection([]string{"bogus"}, nil, known)
	assert.Error(t, err)
	_, err = NewSelection(nil, []string{"information"}, known)
	assert.Error(t, err)
}

func TestLanguageForFile(t *testing.T) {
	t.Parallel()
	lang, ok := LanguageForFile("x/2.C")
	assert.True(t, ok)
	assert.Equal(t, LangC, lang)
	lang, _ = LanguageForFile("3.cpp")
	assert.Equal(t, LangCPP, lang)
	assert.False(t, IsSource("README.md"))
}
