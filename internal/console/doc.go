// Package console prints the human-readable progress of a fetch run.
//
// Every processed URL produces exactly one outcome on the console: a success
// pair, a not-an-image skip, a duplicate skip, a connection error or a save
// error. Lines start with a check mark for success and a cross otherwise.
// The output is meant for people, not for parsing; use the JSON report for that.
package console
