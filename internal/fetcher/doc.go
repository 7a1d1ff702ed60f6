// Package fetcher implements the fetch-validate-deduplicate-persist routine.
//
// For a single URL the Fetcher:
//  1. Issues a GET request bounded by the client timeout
//  2. Skips the URL if the declared Content-Type does not mention "image"
//  3. Derives the destination filename from the final URL path segment
//  4. Reads the body into memory, up to a size limit
//  5. Skips the URL if the body's digest is already in the run's digest set
//  6. Writes the body to the output directory and records the digest
//
// Every outcome, including failures, is reported as a *model.Result with
// exactly one model.Kind. Nothing is returned as an error to the caller, so
// one bad URL never stops a run.
package fetcher
