// Package model defines the data structures shared by the fetcher, the
// orchestrator and the report writers.
//
// This package contains the following main types:
//   - Kind: the closed set of per-URL outcomes
//   - Result: what happened to one URL
//   - Run: one invocation of the fetch loop and its results
//   - ImageMetadata: EXIF fields read from a saved image
//
// Keeping them in their own package lets fetcher, pipeline, report and
// history share the types without import cycles. All types serialize to JSON.
package model
