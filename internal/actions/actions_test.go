package actions_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xuzuoyang/gitbro/internal/config"
	"github.com/xuzuoyang/gitbro/internal/output"
	"github.com/xuzuoyang/gitbro/internal/runtime"
)

// newTestContext returns a context for dir that writes command output to the
// returned buffer
func newTestContext(t *testing.T, dir string) (*runtime.Context, *bytes.Buffer) {
	t.Helper()
	output.ConfigureColors(true)

	var buf bytes.Buffer
	splog, err := output.NewSplogWithConfig(output.SplogOptions{Writer: &buf})
	require.NoError(t, err)
	return runtime.NewContext(splog, config.Default(), dir), &buf
}
