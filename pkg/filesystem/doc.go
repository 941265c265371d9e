// Package filesystem provides the filesystem abstraction used by dotlink.
//
// Every component that inspects or mutates the repository or the deployment
// locations goes through the FS interface, so the reconciler can be exercised
// against a scratch directory in tests and wrapped (for example to count
// mutations) without touching the callers.
package filesystem
