package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsValidProject(t *testing.T) {
	dir := writeCLIProject(t)

	out, err := execute(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "project demo is valid")
}

func TestValidateReportsMissingProject(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "C001", resp.Error.Code)
}
