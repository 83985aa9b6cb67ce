// Package model defines the typed records of a process flowsheet and the
// balance records computed from it.
//
// Entities (materials, streams, process units, equipment) are plain data with
// a few derived-value helpers. Balance records are produced only by the
// calculators in internal/balance and persisted by internal/store.
//
// Units used throughout:
//   - flow rates of process streams in kg/h
//   - temperatures in °C
//   - specific heat in kJ/(kg·K)
//   - per-unit heat contributions in kW
//   - water network flows in m³/h, concentrations in mg/L
package model
