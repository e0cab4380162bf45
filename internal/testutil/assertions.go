package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertFinished checks the closing line of a run for the expected counts.
func AssertFinished(t *testing.T, result *HarnessResult, applied, rejected int) {
	t.Helper()

	want := fmt.Sprintf("%d event(s) applied, %d rejected", applied, rejected)
	require.True(t,
		strings.Contains(result.Output, want),
		"expected %q in console output:\n%s", want, result.Output,
	)
}

// AssertRejected checks that an event with action was reported as rejected
// with the given error kind.
func AssertRejected(t *testing.T, result *HarnessResult, action, kind string) {
	t.Helper()

	want := fmt.Sprintf("✗ %s (%s)", action, kind)
	require.True(t,
		strings.Contains(result.Output, want),
		"expected rejection %q in console output:\n%s", want, result.Output,
	)
}
