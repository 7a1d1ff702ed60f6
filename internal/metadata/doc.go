// Package metadata reads EXIF metadata from saved images.
//
// Extraction is opt-in and informational: it never changes the outcome of a
// fetch. Only formats that carry EXIF (JPEG, TIFF, HEIC and some PNG/WebP
// files) yield data.
package metadata
