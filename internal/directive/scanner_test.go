package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanOwnLineTargetsNextCodeLine(t *testing.T) {
	t.Parallel()
	src := "int f(int a) {\n" +
		"    // sift-suppress zerodiv\n" +
		"\n" +
		"    return a / 0;\n" +
		"}\n"

	got := Collect([]byte(src))

	require.Len(t, got, 1)
	assert.Equal(t, LineScoped, got[0].Kind)
	assert.Equal(t, []string{"zerodiv"}, got[0].IDs)
	assert.Equal(t, 2, got[0].Line)
	assert.Equal(t, 4, got[0].Target)
}

func TestScanFirstLineDirective(t *testing.T) {
	t.Parallel()
	src := "// cppcheck-suppress some_warning_id\n" +
		"int main() { return 0; }\n"

	got := Collect([]byte(src))

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, 2, got[0].Target)
}

func TestScanTrailingDirectiveTargetsOwnLine(t *testing.T) {
	t.Parallel()
	src := "int x = 1;\nint y = x / 0; // sift-suppress zerodiv - intended\n"

	got := Collect([]byte(src))

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Target)
	assert.Equal(t, "intended", got[0].Reason)
}

func TestScanStackedDirectivesShareTarget(t *testing.T) {
	t.Parallel()
	src := "// sift-suppress a\n" +
		"/* sift-suppress b */\n" +
		"// unrelated comment\n" +
		"x = 1;\n"

	got := Collect([]byte(src))

	require.Len(t, got, 2)
	assert.Equal(t, 4, got[0].Target)
	assert.Equal(t, 4, got[1].Target)
	assert.Equal(t, []string{"b"}, got[1].IDs)
}

func TestScanFileScopedAndOrder(t *testing.T) {
	t.Parallel()
	src := "// sift-suppress a\n" +
		"// sift-suppress-file missingInclude\n" +
		"#include \"gone.h\"\n"

	got := Collect([]byte(src))

	require.Len(t, got, 2)
	assert.Equal(t, LineScoped, got[0].Kind)
	assert.Equal(t, 3, got[0].Target)
	assert.Equal(t, FileScoped, got[1].Kind)
	assert.Equal(t, 0, got[1].Target)
	assert.Equal(t, 2, got[1].Line)
}

func TestScanIDListsAndSymbol(t *testing.T) {
	t.Parallel()
	src := "// sift-suppress[zerodiv, nullPointer]\n" +
		"a();\n" +
		"// sift-suppress unusedFunction,knownConditionTrueFalse symbolName=helper\n" +
		"static void helper() {}\n" +
		"// sift-suppress-file unusedFunction symbolName=ns::other\n"

	got := Collect([]byte(src))

	require.Len(t, got, 3)
	assert.Equal(t, []string{"zerodiv", "nullPointer"}, got[0].IDs)
	assert.Equal(t, WithSymbol, got[1].Kind)
	assert.Equal(t, []string{"unusedFunction", "knownConditionTrueFalse"}, got[1].IDs)
	assert.Equal(t, "helper", got[1].Symbol)
	assert.Equal(t, 4, got[1].Target)
	assert.Equal(t, WithSymbol, got[2].Kind)
	assert.Equal(t, 0, got[2].Target)
	assert.Equal(t, "ns::other", got[2].Symbol)
}

func TestScanIgnoresMalformed(t *testing.T) {
	t.Parallel()
	src := "// sift-suppress\n" +
		"// sift-suppressed zerodiv\n" +
		"// sift-suppress-begin zerodiv\n" +
		"// sift-suppress [zerodiv\n" +
		"// sift-suppress 9lives\n" +
		"// sift-suppress zerodiv;x\n" +
		"// sift-suppress zerodiv symbolName=\n" +
		"// please sift-suppress zerodiv\n" +
		"x = 1 / 0;\n"

	assert.Empty(t, Collect([]byte(src)))
}

func TestScanSkipsLiterals(t *testing.T) {
	t.Parallel()
	src := "const char *s = \"// sift-suppress a\";\n" +
		"char c = '/'; const char *r = R\"x(\n" +
		"/* sift-suppress b */\n" +
		")x\";\n" +
		"int z; // sift-suppress c\n"

	got := Collect([]byte(src))

	require.Len(t, got, 1)
	assert.Equal(t, []string{"c"}, got[0].IDs)
	assert.Equal(t, 5, got[0].Target)
}

func TestScanDropsDirectiveWithoutCode(t *testing.T) {
	t.Parallel()
	got := Collect([]byte("int a;\n// sift-suppress zerodiv\n\n"))
	assert.Empty(t, got)
}

func TestScanBlockCommentBeforeCodeOnSameLine(t *testing.T) {
	t.Parallel()
	got := Collect([]byte("/* sift-suppress zerodiv */ int q = 1 / 0;\n"))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Target)
}

func TestScanIsRestartable(t *testing.T) {
	t.Parallel()
	seq := Scan([]byte("// sift-suppress a\nx;\n// sift-suppress b\ny;\n"))

	var first, second []Directive
	for d := range seq {
		first = append(first, d)
	}
	for d := range seq {
		second = append(second, d)
		break
	}
	require.Len(t, first, 2)
	require.Len(t, second, 1)
	assert.Equal(t, first[0], second[0])
}

func TestScanDigitSeparatorsAreNotCharLiterals(t *testing.T) {
	t.Parallel()
	src := "unsigned mask = 0x1'0000; // sift-suppress shiftTooManyBits\n" +
		"long big = 1'000'000 / 0; // cppcheck-suppress zerodiv\n" +
		"char c = u8'a'; // sift-suppress charLiteral\n" +
		"double e = 1e-5'0; // sift-suppress expo\n"

	got := Collect([]byte(src))

	require.Len(t, got, 4)
	for i, want := range []string{"shiftTooManyBits", "zerodiv", "charLiteral", "expo"} {
		assert.Equal(t, []string{want}, got[i].IDs)
		assert.Equal(t, i+1, got[i].Target)
	}
}
