package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/annoset/dataset"
)

// RequireEqualDatasets fails the test when the datasets differ, listing
// every difference.
func RequireEqualDatasets(t testing.TB, want, got dataset.Source, opts ...dataset.CompareOption) {
	t.Helper()
	diffs := dataset.Compare(want, got, opts...)
	if len(diffs) == 0 {
		return
	}
	lines := make([]string, len(diffs))
	for i, d := range diffs {
		lines[i] = d.String()
	}
	require.Failf(t, "datasets differ", "%d differences:\n%s", len(diffs), strings.Join(lines, "\n"))
}
