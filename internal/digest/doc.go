// Package digest computes content digests of fetched images and tracks the
// digests already seen during a run.
//
// The default algorithm is MD5. It is used only to tell images apart, never
// for integrity or security, so a 128-bit digest is sufficient. SHA-1, SHA-256,
// SHA3-256 and BLAKE2b-256 are available for callers that prefer a longer digest.
package digest
