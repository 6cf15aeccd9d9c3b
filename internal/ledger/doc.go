// Package ledger persists one row per processing attempt in a SQLite
// database so failures can be audited and replayed across process restarts.
//
// The store is append/update-only: runs are never deleted, and the ledger
// does not validate status-transition order. Drivers own the transition
// discipline; a run stuck at "start" or "working" after an unclean shutdown
// is a diagnosable state, not corruption.
package ledger
