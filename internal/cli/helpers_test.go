package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// response is CLIResponse with the payload left undecoded.
type response struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	Error     *CLIError       `json:"error"`
	PassToken string          `json:"pass_token"`
}

// decodeResponse parses JSON output, decoding the payload into data when
// data is non-nil.
func decodeResponse(t *testing.T, out string, data any) response {
	t.Helper()

	var resp response
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data), "data: %s", resp.Data)
	}
	return resp
}

// importProject imports a testdata project into a fresh database and
// returns the database path.
func importProject(t *testing.T, project string) string {
	t.Helper()

	db := filepath.Join(t.TempDir(), "project.db")
	_, _, err := execute(t, "import", filepath.Join("testdata", project), "--db", db)
	require.NoError(t, err)
	return db
}
