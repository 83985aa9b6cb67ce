// Package engine implements the change propagation engine.
//
// The engine sits above the balance calculators. When an entity changes it
// looks up the rule registered for the entity's kind, and for every target
// of that rule invokes the target's handler. Handlers resolve the affected
// process units and run the matching calculators on them.
//
// ARCHITECTURE:
//
// Synchronous passes:
// Every Sync call is one propagation pass. A pass runs to completion on the
// calling goroutine before Sync returns. There is no queue and no background
// scheduler; callers must not invoke the engine concurrently.
//
// Pass Flow:
// 1. Rule lookup by source kind; unknown kinds and non-trigger operations are no-ops
// 2. A pass token is generated and the change is appended to the change log
// 3. Targets run in rule order, each handler isolated from the others
// 4. A sync_completed event reports success or the collected failures
//
// Within a pass each (calculator, unit) pair runs at most once. The
// processed set is keyed by pass token and cleared when the pass ends.
//
// Handler failures never abort the pass. A failed calculation leaves the
// unit's balance record at its last stored state.
package engine
