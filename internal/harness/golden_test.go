package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_StreamFlowChange(t *testing.T) {
	result, err := RunWithGolden(t, loadScenario(t, "stream_flow_change"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestTraceSnapshot_Bytes(t *testing.T) {
	s := TraceSnapshot{
		ScenarioName: "demo",
		PassToken:    "pass-1",
		Trace:        trace("data_updated stream S1", "sync_completed ok stream->streams: synchronized"),
	}
	assert.Equal(t, "scenario: demo\n"+
		"pass_token: pass-1\n"+
		"trace:\n"+
		"  001 data_updated stream S1\n"+
		"  002 sync_completed ok stream->streams: synchronized\n", string(s.Bytes()))

	empty := TraceSnapshot{ScenarioName: "empty"}
	assert.Equal(t, "scenario: empty\ntrace:\n", string(empty.Bytes()))
}

func TestScenario_SnapshotDefaultsPassToken(t *testing.T) {
	s := &Scenario{Name: "demo"}
	snap := s.Snapshot(&Result{Trace: trace("data_updated unit U1")})

	assert.Equal(t, DefaultPassToken, snap.PassToken)
	assert.Equal(t, "demo", snap.ScenarioName)
	assert.Len(t, snap.Trace, 1)

	s.PassToken = "pass-9"
	assert.Equal(t, "pass-9", s.Snapshot(&Result{}).PassToken)
}
