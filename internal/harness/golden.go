package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string
	PassToken    string
	Trace        []TraceEvent
}

// Bytes renders the snapshot as text: a header, then one numbered trace
// line per event.
func (s TraceSnapshot) Bytes() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", s.ScenarioName)
	if s.PassToken != "" {
		fmt.Fprintf(&b, "pass_token: %s\n", s.PassToken)
	}
	b.WriteString("trace:\n")
	for _, e := range s.Trace {
		fmt.Fprintf(&b, "  %03d %s\n", e.Seq, e.Line)
	}
	return []byte(b.String())
}

// Snapshot captures a run of s for golden comparison.
func (s *Scenario) Snapshot(r *Result) TraceSnapshot {
	token := s.PassToken
	if token == "" {
		token = DefaultPassToken
	}
	return TraceSnapshot{ScenarioName: s.Name, PassToken: token, Trace: r.Trace}
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check assertions as well.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, opts...)
	if err != nil {
		return nil, err
	}

	snapshot := scenario.Snapshot(result)
	AssertGolden(t, snapshot.ScenarioName, snapshot.PassToken, result)
	return result, nil
}

// AssertGolden compares a result's trace against the golden file named
// after the scenario, without re-running it.
func AssertGolden(t *testing.T, scenarioName, passToken string, result *Result) {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		PassToken:    passToken,
		Trace:        result.Trace,
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshot.Bytes())
}
