package objectfilter

import (
	"context"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/objectfilter/ast"
)

// H mirrors spec.md §8's H("...") fixture: a hash entry exposing md5.
type H struct {
	Md5 string
}

// Dll mirrors spec.md §8's Dll(name, functions) fixture.
type Dll struct {
	Name              string
	ImportedFunctions []string
}

func (d Dll) NumImportedFunctions() int { return len(d.ImportedFunctions) }

// fixture is spec.md §8's end-to-end scenario object F.
type fixture struct {
	Name           string
	Size           int
	Float          float64
	Attributes     []string
	Hash           []H
	ImportedDlls   []Dll
	Callable       func() string
	DeferredValues chan string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	deferred := make(chan string, 2)
	deferred <- "a"
	deferred <- "b"
	close(deferred)

	return &fixture{
		Name:       "yay.exe",
		Size:       10,
		Float:      123.9823,
		Attributes: []string{"Backup", "Archive"},
		Hash: []H{
			{Md5: "123abc"},
			{Md5: "456def"},
		},
		ImportedDlls: []Dll{
			{Name: "a.dll", ImportedFunctions: []string{"FindWindow", "CreateFileA"}},
			{Name: "b.dll", ImportedFunctions: []string{"RegQueryValueEx"}},
		},
		Callable:       func() string { return "x" },
		DeferredValues: deferred,
	}
}

func mustMatch(t *testing.T, query string, root interface{}) bool {
	t.Helper()
	engine := NewEngine(nil)
	matched, err := engine.Matches(context.Background(), query, root)
	require.NoError(t, err, query)
	return matched
}

// TestEndToEndScenarios runs spec.md §8's numbered table against the
// fixture object F.
func TestEndToEndScenarios(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		n     int
		query string
		want  bool
	}{
		{1, "size < 11", true},
		{2, "size < 10", false},
		{3, "float >= 123.9823", true},
		{4, "name contains 'yay'", true},
		{5, "importeddlls.importedfunctions contains 'FindWindow'", true},
		{6, "attributes inset ['Archive', 'Backup', 'X']", true},
		{7, "attributes inset ['Executable', 'Sparse']", false},
		{8, "hash.md5 == '456def'", true},
		{9, "callable == 'x'", false},
		{10, "@importeddlls(importedfunctions contains 'RegQueryValueEx' and numimportedfunctions == 1)", true},
		{11, "@importeddlls(importedfunctions contains 'RegQueryValueEx' and numimportedfunctions == 2)", false},
		{12, "importeddlls.numimportedfunctions == 2 and importeddlls.importedfunctions contains 'RegQueryValueEx'", true},
	}

	for _, c := range cases {
		got := mustMatch(t, c.query, f)
		assert.Equal(t, c.want, got, "scenario %d: %s", c.n, c.query)
	}
}

// TestDeferredValuesIsALazySequence exercises the fixture's lazy
// channel member against Contains, beyond what spec.md's numbered
// table covers.
func TestDeferredValuesIsALazySequence(t *testing.T) {
	assert.True(t, mustMatch(t, "deferredvalues contains 'a'", newFixture(t)))
	assert.False(t, mustMatch(t, "deferredvalues contains 'z'", newFixture(t)))
}

// TestInvariantTotalityOnMissingAttribute covers spec.md §8 invariant 1:
// matching never panics on an absent attribute, and simply yields false.
func TestInvariantTotalityOnMissingAttribute(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.False(t, mustMatch(t, "nonexistent == 'x'", newFixture(t)))
	})
}

// TestInvariantCaseInsensitiveLookup covers spec.md §8 invariant 2.
func TestInvariantCaseInsensitiveLookup(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t,
		mustMatch(t, "name == 'yay.exe'", f),
		mustMatch(t, "NAME == 'yay.exe'", f))
}

// TestInvariantDoubleNegation covers spec.md §8 invariant 3.
func TestInvariantDoubleNegation(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t,
		mustMatch(t, "name == 'yay.exe'", f),
		mustMatch(t, "not not name == 'yay.exe'", f))
}

// TestInvariantEmptySequenceSemantics covers spec.md §8 invariant 4:
// an empty expansion makes every binary operator false, and
// NotContains obeys not(Contains).
func TestInvariantEmptySequenceSemantics(t *testing.T) {
	empty := &fixture{}
	assert.False(t, mustMatch(t, "importeddlls.importedfunctions contains 'x'", empty))
	assert.True(t, mustMatch(t, "importeddlls.importedfunctions notcontains 'x'", empty))
}

// TestInvariantInSetSubsetSemantics covers spec.md §8 invariant 5.
func TestInvariantInSetSubsetSemantics(t *testing.T) {
	empty := &fixture{}
	assert.True(t, mustMatch(t, "attributes inset ['Archive']", empty))
	assert.False(t, mustMatch(t, "attributes notinset ['Archive']", empty))
}

// TestHexIntegerLiteralMatches covers spec.md §4.4's hex integer
// literal end to end: size (10) equals 0x0a.
func TestHexIntegerLiteralMatches(t *testing.T) {
	f := newFixture(t)
	assert.True(t, mustMatch(t, "size == 0x0a", f))
	assert.False(t, mustMatch(t, "size == 0x0b", f))
}

// TestParseErrorScenarios covers spec.md §8's "must raise ParseError"
// table.
func TestParseErrorScenarios(t *testing.T) {
	cases := []string{
		"",
		"attribute",
		"attribute is",
		"attribute is 3 AND",
		"attribute == 1a",
		"something == red",
		"(a is 3",
		"()a is 3",
		"a is (3)",
		"@attributes",
		"a is ['cannot', ['nest', 'lists']]",
		`a is '\z'`,
	}
	for _, src := range cases {
		_, err := Parse(src)
		require.Error(t, err, src)
		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr, src)
	}
}

// TestParseSuccessScenarios covers spec.md §8's "must parse" table.
func TestParseSuccessScenarios(t *testing.T) {
	cases := []string{
		"a is 3 AND b is 4",
		"a is []",
		"a is [,,]",
		"@imported_dlls(name is 'a' and imported_functions contains 'b')",
	}
	for _, src := range cases {
		_, err := Parse(src)
		assert.NoError(t, err, src)
	}
}

// TestRoundTripParseTreesAreStructurallyEqual exercises spec.md §8's
// round-trip property with a structural (not just string) comparison,
// using go-test/deep the way the teacher's suite leans on it for
// whole-tree diffs when testify's reflect.DeepEqual output alone
// would be too terse to debug a mismatch.
func TestRoundTripParseTreesAreStructurallyEqual(t *testing.T) {
	queries := []string{
		"size < 11",
		"name contains 'yay'",
		"attributes inset ['Archive', 'Backup', 'X']",
		"not a is 3",
		"@importeddlls(name == 'a')",
	}
	for _, src := range queries {
		first, err := Parse(src)
		require.NoError(t, err, src)

		rendered := first.ToString()
		second, err := Parse(rendered)
		require.NoError(t, err, rendered)

		if diff := deep.Equal(first, second); diff != nil {
			t.Errorf("round-trip %q produced a structurally different tree: %v", src, diff)
		}
	}
}

// TestContextRequiresCoOccurrence covers spec.md §8 invariant 6 at
// the engine level (filters package carries the unit-level version).
func TestContextRequiresCoOccurrence(t *testing.T) {
	f := newFixture(t)
	plain := "importeddlls.numimportedfunctions == 2 and importeddlls.importedfunctions contains 'RegQueryValueEx'"
	contextual := "@importeddlls(numimportedfunctions == 2 and importedfunctions contains 'RegQueryValueEx')"

	assert.True(t, mustMatch(t, plain, f), "plain AND matches across distinct DLLs")
	assert.False(t, mustMatch(t, contextual, f), "Context requires the same DLL to satisfy both halves")
}

// TestCompileErrorsSurfaceTheRootVocabulary exercises the aliased
// compiler error types objectfilter/errors.go exposes.
func TestCompileErrorsSurfaceTheRootVocabulary(t *testing.T) {
	engine := NewEngine(nil)

	// A hand-assembled ast.Node (as objectfilter/marshal might produce
	// from an untrusted wire payload) can carry an operator keyword the
	// parser itself would never emit; that is what UnknownOperator
	// guards against, so it is exercised directly against the compiler
	// rather than through query text.
	_, err := engine.Compiler.Compile(&ast.BinaryExpr{
		Path: []string{"name"}, Op: "frobnicate", Literal: ast.Literal{Kind: ast.LitString, Str: "x"},
	})
	require.Error(t, err)
	var unknown *UnknownOperator
	assert.ErrorAs(t, err, &unknown)

	_, err = engine.Compile("name regexp '(unclosed'")
	require.Error(t, err)
	var bad *BadRegex
	assert.ErrorAs(t, err, &bad)
}
