// Package balance implements the per-unit mass, heat and water balance
// calculators and the network-level heat integration and water reuse
// analyses.
//
// # Calculators
//
// Calculator.Mass, Calculator.Heat and Calculator.Water read a unit's
// streams through the Store interface, compute a result, persist the
// balance record and emit a calculation_completed event. Each returns an
// Outcome:
//
//   - Computed: the record was written
//   - Skipped: preconditions were not met (unknown unit, no streams);
//     nothing was written
//   - Failed: a store or internal error; nothing was written
//
// Failures are logged with the unit id and never panic. A failed run leaves
// the previous record untouched because each record is written in a single
// transaction.
//
// # Network analyses
//
// PinchAnalysis, MatchNetwork, Rate and OptimizeNetwork work on network
// heat streams and exchangers. OverallWaterBalance, ContaminantBalance,
// ReuseOpportunities, OptimizeWaterNetwork and WaterFootprint work on
// network water streams and treatment units. They are pure functions of
// their inputs.
//
// # Units
//
// Process streams carry kg/h; unit heat balances are in kW. Network heat
// streams produce kJ/h duties. Network water streams carry m³/h and mg/L.
package balance
