// Package rate tracks failed authentication attempts per identifier inside a
// fixed window anchored at the first failure.
//
// # Window semantics
//
// The window opens on the first recorded failure and closes after the
// configured duration regardless of later failures. While open, Check fails
// once the attempt count reaches the budget, without touching the counter:
// rate-limited attempts are rejected before any credential work and are never
// themselves counted. A successful authentication clears the counter.
//
// Counters live behind [CounterStore]: a mutex-guarded map in memory, or
// Redis INCR with an EXPIRE applied on the first hit of each window.
package rate
