// Package core runs dotlink's pipeline: configuration, then the dot registry
// and the variable model, then one reconciliation per active dot in
// declaration order, with hooks after each dot and around the whole run.
//
// # Error scopes
//
// Anything wrong with the configuration (unreadable documents, unknown or
// cyclic profile imports, two active dots claiming one target with different
// sources, a source outside the repository) is returned as an error before
// the filesystem is touched. Everything that goes wrong with a single dot
// (an unresolved variable, a protected target, an I/O failure) is recorded
// on that dot's result and the run carries on. Hook failures are warnings.
//
// # Idempotence
//
// No state is persisted between runs. Each run inspects the targets as they
// are and only changes what differs, so running link twice in a row makes
// no filesystem changes the second time.
package core
