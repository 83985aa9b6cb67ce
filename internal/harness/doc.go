// Package harness runs propagation scenarios against a fresh project
// database and checks the events and balances they produce.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: stream_flow_change
//	description: "What this scenario validates"
//	project: ../projects/line.yaml
//	pass_token: pass-1
//	changes:
//	  - source: stream
//	    op: update
//	    data: { stream_id: S1, flow_rate: 90, ... }
//	  - source: material
//	    op: delete
//	    id: A
//	assertions:
//	  - type: trace_contains
//	    line: calculation_completed material_balance U1 unbalanced
//	  - type: balance_status
//	    calc: material_balance
//	    unit: U1
//	    status: unbalanced
//
// The project is a project file path, relative to the scenario file, in
// the format read by the flowsheet package. It is imported and fully
// recomputed before the changes run; events from the import are not part
// of the trace. Change data is the complete entity after the change and
// is decoded into the model type named by source.
//
// # Assertion Types
//
//   - trace_contains: a trace line equals line
//   - trace_order: the lines appear in the trace in the given order
//   - trace_count: exactly count trace lines start with prefix
//   - balance_status: the stored balance of calc for unit has status
//   - changes_recorded: the change log holds count rows, optionally for
//     one source kind
//
// # Deterministic Testing
//
// Every pass of a scenario carries pass_token (or "scenario-pass" when it
// is empty) and the store clock is stopped at testutil.Epoch, so traces
// compare byte for byte against golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/stream_update.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
