package suppress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sift/internal/diag"
)

func mustParse(t *testing.T, text string, pos int) Suppression {
	t.Helper()
	s, err := Parse(text, ID{Origin: OriginList, Source: "list.txt", Pos: pos})
	require.NoError(t, err)
	return s
}

func zerodivAt(file string, line int) diag.Diagnostic {
	return diag.New(diag.SevError, "zerodiv", file, line, 19, "Division by zero.")
}

func TestFindMatchPrecedence(t *testing.T) {
	t.Parallel()
	texts := []string{
		"*",               // 1 wildcard global
		"*:3.cpp",         // 2 wildcard file
		"*:3.cpp:4",       // 3 wildcard line
		"zerodiv",         // 4 exact global
		"zerodiv:3.cpp",   // 5 exact file
		"zerodiv:3.cpp:4", // 6 exact line
	}
	var sups []Suppression
	for i, text := range texts {
		sups = append(sups, mustParse(t, text, i+1))
	}

	// removing the winner each time walks the tiers in order
	for want := len(texts); want >= 1; want-- {
		r := NewRegistry(sups[:want]...)
		got := r.FindMatch(zerodivAt("3.cpp", 4))
		require.NotNil(t, got)
		assert.Equal(t, want, got.ID.Pos, "with %d suppressions", want)
	}
}

func TestFindMatchIsOrderIndependent(t *testing.T) {
	t.Parallel()
	a := mustParse(t, "zerodiv:3.cpp", 1)
	b := mustParse(t, "zerodiv:3.cpp:4", 2)
	c := mustParse(t, "*", 3)

	r1 := NewRegistry(a, b, c)
	r2 := NewRegistry(c, b, a)
	assert.Equal(t, r1.FindMatch(zerodivAt("3.cpp", 4)).ID, r2.FindMatch(zerodivAt("3.cpp", 4)).ID)
	assert.Equal(t, r1.FindMatch(zerodivAt("3.cpp", 9)).ID, r2.FindMatch(zerodivAt("3.cpp", 9)).ID)
}

func TestFindMatchScope(t *testing.T) {
	t.Parallel()
	r := NewRegistry(mustParse(t, "zerodiv:src/3.cpp:4", 1))

	assert.NotNil(t, r.FindMatch(zerodivAt("src/3.cpp", 4)))
	assert.Nil(t, r.FindMatch(zerodivAt("src/3.cpp", 5)), "other line")
	assert.Nil(t, r.FindMatch(zerodivAt("lib/3.cpp", 4)), "other file")
	other := diag.New(diag.SevError, "nullPointer", "src/3.cpp", 4, 1, "Null pointer dereference")
	assert.Nil(t, r.FindMatch(other), "other id")
}

func TestFindMatchDuplicatesPreferFirst(t *testing.T) {
	t.Parallel()
	r := NewRegistry(mustParse(t, "zerodiv:3.cpp", 7), mustParse(t, "zerodiv:3.cpp", 2))
	assert.Equal(t, 7, r.FindMatch(zerodivAt("3.cpp", 1)).ID.Pos)
	assert.Equal(t, 2, r.Len())
}

func TestFindMatchSymbol(t *testing.T) {
	t.Parallel()
	plain := mustParse(t, "unusedFunction:lib.c", 1)
	sym := mustParse(t, "unusedFunction:lib.c symbolName=helper", 2)
	r := NewRegistry(plain, sym)

	d := diag.New(diag.SevStyle, "unusedFunction", "lib.c", 3, 0, "The function 'helper' is never used.").WithSymbol("helper")
	assert.Equal(t, 2, r.FindMatch(d).ID.Pos)

	d2 := diag.New(diag.SevStyle, "unusedFunction", "lib.c", 8, 0, "The function 'other' is never used.").WithSymbol("other")
	assert.Equal(t, 1, r.FindMatch(d2).ID.Pos)

	only := NewRegistry(sym)
	assert.Nil(t, only.FindMatch(d2))
}

func TestForkIsolation(t *testing.T) {
	t.Parallel()
	base := NewRegistry(mustParse(t, "a:x.c", 1))
	w1 := base.Fork()
	w2 := base.Fork()
	w1.Register(mustParse(t, "b:x.c", 2))
	w2.Register(mustParse(t, "c:x.c", 3))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, w1.Len())
	assert.Nil(t, w2.FindMatch(diag.New(diag.SevError, "b", "x.c", 1, 1, "")))
	assert.NotNil(t, w2.FindMatch(diag.New(diag.SevError, "c", "x.c", 1, 1, "")))
	assert.Nil(t, base.FindMatch(diag.New(diag.SevError, "c", "x.c", 1, 1, "")))

	union := base.Fork()
	union.Absorb(w1, base.Len())
	union.Absorb(w2, base.Len())
	require.Equal(t, 3, union.Len())
	assert.Equal(t, []string{"a", "b", "c"}, []string{union.All()[0].ErrorID, union.All()[1].ErrorID, union.All()[2].ErrorID})
}

func TestInlineSuppressionStaysInItsFile(t *testing.T) {
	t.Parallel()
	inline := Suppression{
		ErrorID:  "zerodiv",
		FileName: "a/x.c",
		Line:     4,
		ID:       ID{Origin: OriginInline, Source: "a/x.c", Pos: 3},
	}
	r := NewRegistry(inline)
	assert.NotNil(t, r.FindMatch(zerodivAt("a/x.c", 4)))
	assert.Nil(t, r.FindMatch(zerodivAt("b/a/x.c", 4)))

	// list entries keep suffix matching
	r.Register(mustParse(t, "zerodiv:a/x.c:4", 1))
	got := r.FindMatch(zerodivAt("b/a/x.c", 4))
	require.NotNil(t, got)
	assert.Equal(t, OriginList, got.Origin())
}
