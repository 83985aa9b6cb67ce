package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/store"
)

func TestParseCalcTypes(t *testing.T) {
	tests := []struct {
		in      string
		want    []balance.CalcType
		wantErr bool
	}{
		{"", allCalcs, false},
		{"all", allCalcs, false},
		{"mass", []balance.CalcType{balance.CalcMass}, false},
		{"heat_balance", []balance.CalcType{balance.CalcHeat}, false},
		{"water", []balance.CalcType{balance.CalcWater}, false},
		{"energy", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCalcTypes(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalc_AllIsOnePass(t *testing.T) {
	db := importProject(t, "line.yaml")

	out, _, err := execute(t, "calc", "--db", db, "--format", "json")
	require.NoError(t, err)

	var summary PassSummary
	resp := decodeResponse(t, out, &summary)
	assert.NotEmpty(t, resp.PassToken)
	assert.True(t, summary.Dispatched)
	assert.Len(t, summary.Outcomes, 6)
}

func TestCalc_SelectedUnitsAndType(t *testing.T) {
	db := importProject(t, "line.yaml")

	out, _, err := execute(t, "calc", "U1", "--type", "mass", "--db", db, "--format", "json")
	require.NoError(t, err)

	var summary PassSummary
	resp := decodeResponse(t, out, &summary)
	assert.Empty(t, resp.PassToken, "direct runs are outside any pass")
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, balance.CalcMass, summary.Outcomes[0].Calc)
	assert.Equal(t, "U1", summary.Outcomes[0].Unit)
	assert.Equal(t, balance.Computed, summary.Outcomes[0].Kind)
}

func TestCalc_TypeOnlyRunsEveryUnit(t *testing.T) {
	db := importProject(t, "line.yaml")

	out, _, err := execute(t, "calc", "--type", "heat", "--db", db, "--format", "json")
	require.NoError(t, err)

	var summary PassSummary
	decodeResponse(t, out, &summary)
	require.Len(t, summary.Outcomes, 2)
	assert.Equal(t, "U1", summary.Outcomes[0].Unit)
	assert.Equal(t, "U2", summary.Outcomes[1].Unit)
}

func TestCalc_UnknownUnitIsSkipped(t *testing.T) {
	db := importProject(t, "line.yaml")

	out, _, err := execute(t, "calc", "U9", "--db", db)
	require.NoError(t, err, "skipped runs are not failures")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, string(balance.ErrCodeUnitNotFound))
}

func TestCalc_InvalidType(t *testing.T) {
	out, _, err := execute(t, "calc", "--type", "energy", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCalc, resp.Error.Code)
}

func TestPassSummary_Failed(t *testing.T) {
	assert.False(t, PassSummary{Outcomes: []OutcomeSummary{{Kind: balance.Skipped}}}.Failed())
	assert.True(t, PassSummary{Outcomes: []OutcomeSummary{{Kind: balance.Failed}}}.Failed())
	assert.True(t, PassSummary{Errors: []string{"heat_balance: boom"}}.Failed())
}

func TestSync_StreamUpdate(t *testing.T) {
	db := importProject(t, "line.yaml")

	out, _, err := execute(t, "sync", "stream", "update", "S1", "--data", "testdata/s1_cut.yaml", "--db", db, "--format", "json")
	require.NoError(t, err)

	var summary PassSummary
	resp := decodeResponse(t, out, &summary)
	require.NotEmpty(t, resp.PassToken)
	assert.True(t, summary.Dispatched)
	assert.Contains(t, summary.Outcomes, OutcomeSummary{Calc: balance.CalcMass, Unit: "U1", Kind: balance.Computed, Status: "unbalanced"})
	assert.Contains(t, summary.Outcomes, OutcomeSummary{Calc: balance.CalcMass, Unit: "U2", Kind: balance.Computed, Status: "unbalanced"})

	out, _, err = execute(t, "trace", "--pass", resp.PassToken, "--db", db, "--format", "json")
	require.NoError(t, err)

	var trace TraceResult
	decodeResponse(t, out, &trace)
	require.Len(t, trace.Changes, 1)
	assert.Equal(t, "S1", trace.Changes[0].EntityID)
	assert.EqualValues(t, "update", trace.Changes[0].Operation)
	assert.Equal(t, "cli", trace.Changes[0].ChangedBy)
	assert.Equal(t, 1, trace.Stats.Passes)
}

func TestSync_ChangedBy(t *testing.T) {
	db := importProject(t, "line.yaml")

	_, _, err := execute(t, "sync", "stream", "delete", "S2", "--changed-by", "alice", "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "trace", "--entity", "stream:S2", "--db", db, "--format", "json")
	require.NoError(t, err)

	var trace TraceResult
	decodeResponse(t, out, &trace)
	require.Len(t, trace.Changes, 1)
	assert.Equal(t, "alice", trace.Changes[0].ChangedBy)
}

func TestSync_VerboseEchoesEvents(t *testing.T) {
	db := importProject(t, "line.yaml")

	_, errOut, err := execute(t, "sync", "stream", "update", "S1", "--data", "testdata/s1_cut.yaml", "--db", db, "-v")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Applying stream update S1")
	assert.Contains(t, errOut, "event: data_updated stream S1")
}

func TestSync_UnknownEntity(t *testing.T) {
	db := importProject(t, "line.yaml")

	out, _, err := execute(t, "sync", "stream", "delete", "ghost", "--db", db, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestSync_BadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown kind", []string{"sync", "widget", "add", "W1"}},
		{"unknown operation", []string{"sync", "stream", "rename", "S1"}},
		{"update without data", []string{"sync", "stream", "update", "S1"}},
		{"missing data file", []string{"sync", "stream", "add", "S9", "--data", "testdata/missing.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestShow(t *testing.T) {
	db := importProject(t, "line.yaml")

	out, _, err := execute(t, "show", "U1", "--db", db, "--format", "json")
	require.NoError(t, err)

	var result ShowResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "U1", result.Unit.ID)
	assert.NotNil(t, result.Mass)
	assert.NotNil(t, result.Heat)
	assert.NotNil(t, result.Water)

	out, _, err = execute(t, "show", "U1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Unit: U1 (Feed mixer, mixer)")
}

func TestShow_UnknownUnit(t *testing.T) {
	db := importProject(t, "line.yaml")

	out, _, err := execute(t, "show", "U9", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_NOT_FOUND]")
}

func TestTrace_EmptyLog(t *testing.T) {
	db := importProject(t, "line.yaml")

	out, _, err := execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No changes recorded.\n", out)
}

func TestTrace_BadEntity(t *testing.T) {
	_, _, err := execute(t, "trace", "--entity", "S1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseEntityRef(t *testing.T) {
	kind, id, err := parseEntityRef("unit:U1")
	require.NoError(t, err)
	assert.EqualValues(t, "unit", kind)
	assert.Equal(t, "U1", id)

	for _, bad := range []string{"U1", "widget:W1", "stream:"} {
		_, _, err := parseEntityRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestTraceStats(t *testing.T) {
	stats := traceStats([]store.ChangeRecord{
		{Module: "stream", PassToken: "p1"},
		{Module: "stream", PassToken: "p2"},
		{Module: "unit", PassToken: "p2"},
	})
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Passes)
	assert.Equal(t, map[string]int{"stream": 2, "unit": 1}, stats.ByModule)

	assert.Len(t, filterByPass([]store.ChangeRecord{{PassToken: "p1"}, {PassToken: "p2"}}, "p2"), 1)
}
