// Package guard implements the brute-force admission gate: a persistent address
// block list consulted before any credential work, fed by windowed failure
// counters. Blocks are monotonic; nothing in this package removes one. Removal is
// an explicit administrative action through the engine.
package guard
