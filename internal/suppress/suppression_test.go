package suppress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sift/internal/directive"
)

func TestParseForms(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in            string
		id, file, sym string
		line          int
	}{
		{in: "zerodiv", id: "zerodiv"},
		{in: "zerodiv:3.cpp", id: "zerodiv", file: "3.cpp"},
		{in: "zerodiv:src/3.cpp:4", id: "zerodiv", file: "src/3.cpp", line: 4},
		{in: "zerodiv=./src/3.cpp:4", id: "zerodiv", file: "src/3.cpp", line: 4},
		{in: "*:src/*.c", id: "*", file: "src/*.c"},
		{in: "unusedFunction:lib.c symbolName=helper", id: "unusedFunction", file: "lib.c", sym: "helper"},
		{in: "  unmatchedSuppression  ", id: "unmatchedSuppression"},
		{in: "id:weird:name.c", id: "id", file: "weird:name.c"},
	}
	for _, tc := range cases {
		s, err := Parse(tc.in, ID{Origin: OriginCommandLine})
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.id, s.ErrorID, tc.in)
		assert.Equal(t, tc.file, s.FileName, tc.in)
		assert.Equal(t, tc.line, s.Line, tc.in)
		assert.Equal(t, tc.sym, s.Symbol, tc.in)
	}
}

func TestParseRejects(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", ":file.c", "9x", "id::5", "bad id", "id symbolName="} {
		_, err := Parse(in, ID{})
		assert.ErrorIs(t, err, ErrSyntax, in)
	}
}

func TestTextRoundTrip(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"zerodiv", "zerodiv:a.c", "zerodiv:a.c:4", "x:a.c symbolName=f"} {
		s, err := Parse(in, ID{})
		require.NoError(t, err)
		assert.Equal(t, in, s.Text())
	}
}

func TestFromDirectives(t *testing.T) {
	t.Parallel()
	ds := directive.Collect([]byte(
		"// sift-suppress-file missingInclude\n" +
			"// sift-suppress [a,b]\n" +
			"x = 1;\n"))

	got := FromDirectives("./src/f.c", ds)

	require.Len(t, got, 3)
	assert.Equal(t, "missingInclude", got[0].ErrorID)
	assert.Equal(t, 0, got[0].Line)
	assert.Equal(t, "src/f.c", got[0].FileName)
	assert.Equal(t, 3, got[1].Line)
	assert.Equal(t, 3, got[2].Line)
	assert.Equal(t, OriginInline, got[2].Origin())
	assert.NotEqual(t, got[1].ID, got[2].ID)
	assert.Equal(t, 2, got[1].ID.Pos)
}
