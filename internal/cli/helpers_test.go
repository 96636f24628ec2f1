package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func init() {
	// Plain output regardless of the terminal running the tests.
	color.NoColor = true
}

// chainGraph has two matches of the chain motif: e1,e2 (span 3) and
// e1,e3 (span 10).
const chainGraph = "e1,0,X,Y,Logon\n" +
	"e2,3,Y,Z,Connect\n" +
	"e3,10,Y,W,Connect\n"

const motifsCUE = `package motifs

motif: chain: {
	description: "two hops"
	edges: [
		{tail: "A", head: "B"},
		{tail: "B", head: "C"},
	]
}

motif: short: {
	description: "two hops within five ticks"
	delta:       5
	edges: [
		{tail: "A", head: "B"},
		{tail: "B", head: "C"},
	]
}
`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// fixtures writes the chain graph and the motifs directory into a temp dir.
func fixtures(t *testing.T) (dir, graphPath, motifsDir string) {
	t.Helper()
	dir = t.TempDir()
	graphPath = writeFile(t, filepath.Join(dir, "graph.txt"), chainGraph)
	motifsDir = filepath.Join(dir, "motifs")
	writeFile(t, filepath.Join(motifsDir, "motifs.cue"), motifsCUE)
	return dir, graphPath, motifsDir
}

// execute runs cmd with args and returns stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errBuf)
	// nil args would make cobra fall back to os.Args.
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errBuf.String(), err
}

// decodeData decodes the data of a JSON envelope into v.
func decodeData(t *testing.T, raw string, v any) CLIResponse {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	if v != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, v))
	}
	return CLIResponse{Status: resp.Status, Error: resp.Error}
}
