// Package source provides the list of URLs a run fetches.
//
// URLs come from, in decreasing priority: command-line arguments and a list
// file, the configuration file, and the built-in default list. HTML pages can
// additionally be scanned for <img> sources, which are appended to the list.
package source
