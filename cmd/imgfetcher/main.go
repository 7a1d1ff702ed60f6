// Package main provides the entry point for the imgfetcher CLI.
//
// imgfetcher downloads images from a list of URLs into Fetched_Images/,
// skipping anything that is not an image and any image whose content was
// already saved during the same run.
//
// Usage:
//
//	imgfetcher
//	imgfetcher https://example.com/a.jpg https://example.com/b.png
//	imgfetcher --list urls.txt
//
// See --help for all available options.
package main

// main is the entry point for imgfetcher.
func main() {
	Execute()
}
