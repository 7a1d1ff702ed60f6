// Package history records runs in a local SQLite database.
//
// Every run and each of its per-URL results are stored so that past runs can
// be listed with "imgfetcher history". The database is an audit log only: it
// is never consulted for duplicate detection, which is strictly per run.
//
// The database lives in the XDG data directory by default and uses
// modernc.org/sqlite, so no cgo toolchain is required.
package history
