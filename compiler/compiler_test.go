package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashwinvis/zsh/compiler"
	"github.com/ashwinvis/zsh/diag"
	"github.com/ashwinvis/zsh/wordcode"
)

func compile(t *testing.T, src string) *compiler.Result {
	t.Helper()
	r := compiler.ParseString(src, "test.sh", false, diag.Report)
	return r
}

func hasKind(r *compiler.Result, k wordcode.Kind) bool {
	for i := 0; i < r.Ctx.Buf.Len(); i++ {
		if r.Ctx.Buf.Get(i).Kind() == k {
			return true
		}
	}
	return false
}

func TestSimpleCommandCompiles(t *testing.T) {
	r := compile(t, "echo hi\n")
	require.Truef(t, r.Ok, "expected ok, errors: %v", r.Ctx.Errors.Errors)
	require.NotZero(t, r.Ctx.Buf.Len(), "expected non-empty program")
}

func TestPipelineCompiles(t *testing.T) {
	r := compile(t, "a | b\n")
	require.Truef(t, r.Ok, "expected ok, errors: %v", r.Ctx.Errors.Errors)
	require.True(t, hasKind(r, wordcode.KPipe), "expected a PIPE word in the program")
}

func TestIfCompiles(t *testing.T) {
	r := compile(t, "if true; then echo yes; fi\n")
	require.Truef(t, r.Ok, "expected ok, errors: %v", r.Ctx.Errors.Errors)
	require.True(t, hasKind(r, wordcode.KIf), "expected an IF word in the program")
}

func TestForLoopCompiles(t *testing.T) {
	r := compile(t, "for i in a b; do echo $i; done\n")
	require.Truef(t, r.Ok, "expected ok, errors: %v", r.Ctx.Errors.Errors)
	require.True(t, hasKind(r, wordcode.KFor), "expected a FOR word in the program")
}

func TestCondCompiles(t *testing.T) {
	r := compile(t, "[[ -n foo && bar = baz ]]\n")
	require.Truef(t, r.Ok, "expected ok, errors: %v", r.Ctx.Errors.Errors)
	require.True(t, hasKind(r, wordcode.KCond), "expected a COND word in the program")
}

func TestFuncdefCompiles(t *testing.T) {
	r := compile(t, "f() { :; }\n")
	require.Truef(t, r.Ok, "expected ok, errors: %v", r.Ctx.Errors.Errors)
	require.True(t, hasKind(r, wordcode.KFuncdef), "expected a FUNCDEF word in the program")
}

func TestEmptyInputProducesNothing(t *testing.T) {
	r := compile(t, "")
	require.False(t, r.Ok, "expected empty input to report not-ok (nothing parsed)")
	require.False(t, r.Ctx.ErrFlag, "empty input should not be a syntax error, just EOF")
}

func TestLoneSeparatorsAreSkipped(t *testing.T) {
	r := compile(t, "; ;\n\n")
	require.Zero(t, r.Ctx.Buf.Len(), "lone separators should not emit any words")
	require.False(t, r.Ctx.ErrFlag, "lone separators should not be a syntax error")
}

func TestUnterminatedIfReportsSyntaxError(t *testing.T) {
	r := compile(t, "if true; then echo hi\n")
	require.False(t, r.Ok, "expected failure on unterminated if")
	require.True(t, r.Ctx.ErrFlag, "expected ErrFlag set")
}

func TestSimplificationCollapsesTrivialList(t *testing.T) {
	r := compile(t, "echo hi\n")
	require.True(t, r.Ok)
	first := r.Ctx.Buf.Get(0)
	require.Equal(t, wordcode.KList, first.Kind())
	require.NotZero(t, first.Flags()&wordcode.ZSimple, "expected a single simple command to collapse to Z_SIMPLE")
}

func TestRedirectionMarksListComplex(t *testing.T) {
	r := compile(t, "echo hi > out\n")
	require.True(t, r.Ok)
	first := r.Ctx.Buf.Get(0)
	require.Equal(t, wordcode.KList, first.Kind())
	require.Zero(t, first.Flags()&wordcode.ZSimple,
		"a command with a redirection is complex and must not collapse to Z_SIMPLE")
}

func TestRedirCustomFdIsHonored(t *testing.T) {
	r := compile(t, "a 2>&1\n")
	require.Truef(t, r.Ok, "expected ok, errors: %v", r.Ctx.Errors.Errors)
	for i := 0; i < r.Ctx.Buf.Len(); i++ {
		if r.Ctx.Buf.Get(i).Kind() == wordcode.KRedir {
			fd := uint32(r.Ctx.Buf.Get(i + 1))
			require.Equal(t, uint32(2), fd, "expected the explicit fd 2 from '2>&1' to be carried through")
			return
		}
	}
	t.Fatal("expected a REDIR word in the program")
}

func TestFuncdefEmitsStringPoolAndPatternHeader(t *testing.T) {
	r := compile(t, "f() { :; }\n")
	require.Truef(t, r.Ok, "expected ok, errors: %v", r.Ctx.Errors.Errors)

	var idx int
	for i := 0; i < r.Ctx.Buf.Len(); i++ {
		if r.Ctx.Buf.Get(i).Kind() == wordcode.KFuncdef {
			idx = i
			break
		}
	}
	require.NotZero(t, r.Ctx.Buf.Get(idx).Kind(), "expected to find the FUNCDEF word")

	namesCount := uint32(r.Ctx.Buf.Get(idx + 1))
	require.Equal(t, uint32(1), namesCount)
	// idx+2 is the name string ref; idx+3..idx+5 are base/length/npats.
	npats := r.Ctx.Buf.Get(idx + 5)
	require.Equal(t, uint32(0), uint32(npats), "f's body has no [[ ]] or case patterns")

	last := r.Ctx.Buf.Get(r.Ctx.Buf.Len() - 1)
	require.Equal(t, wordcode.KEnd, last.Kind(), "funcdef body must end on an explicit END")
}

func TestCondStrEqReservesPatternSlot(t *testing.T) {
	r := compile(t, "[[ a == b ]]\n")
	require.Truef(t, r.Ok, "expected ok, errors: %v", r.Ctx.Errors.Errors)
	require.Equal(t, 1, r.Ctx.Patterns.Len(), "expected '== b' to reserve one pattern slot")
}
