// Package stores provides the per-entity repositories backing the auth
// engine: user records, refresh-token records, and password-reset tickets.
//
// Each entity is defined by a narrow interface so the engine's logic is
// independent of the backing medium. Memory implementations guard their maps
// with a mutex and suit single-process deployments and tests; Redis
// implementations lean on key TTLs for the entities whose lifetime is a fixed
// window (refresh records, reset tickets).
//
// One-shot consumption (refresh rotation, reset redemption) is atomic at the
// store level: delete-and-return under the mutex in memory, GETDEL in Redis.
// No two callers can both consume the same record.
package stores
