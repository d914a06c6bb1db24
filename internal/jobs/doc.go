// Package jobs implements the in-memory job state store.
//
// A Store tracks one row per submitted job plus one row per source file
// within it. All access funnels through a single serialized SQLite
// connection, so readers always observe a consistent snapshot and
// aggregate counters can be recomputed atomically with every file
// update. The database lives in memory: job state is ephemeral and does
// not survive a daemon restart.
package jobs
