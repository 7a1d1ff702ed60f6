// Package pipeline runs the fetch loop of a run.
//
// The Runner owns the URL list and the run's digest set. It prints the
// banner, makes sure the output directory exists, hands each URL to the
// fetcher in list order, prints the outcome and then runs the post-fetch
// steps on the result. Steps see every result but typically act only on
// saved images (for example to read their EXIF metadata).
//
// URLs are processed one at a time. The digest set is shared across the
// whole run and needs no locking.
package pipeline
