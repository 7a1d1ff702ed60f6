// Package robots checks URLs against the robots.txt of their host.
//
// The check is opt-in. A robots.txt that cannot be fetched or parsed allows
// everything, and each host's rules are fetched once per run.
package robots
