package avm1

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// assertTraceEqual compares two avm_trace transcripts line by line, failing
// with a unified diff instead of testify's single-line "not equal" message.
// Mirrors the line-by-line comparison regression_tests.rs does, with a
// richer failure message than a bare assert_eq!.
func assertTraceEqual(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		t.Fatalf("trace mismatch (diff render failed: %v)\nwant: %q\ngot:  %q", err, want, got)
	}
	t.Fatalf("trace mismatch:\n%s", diff)
}
