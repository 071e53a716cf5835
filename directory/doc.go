// Package directory reads the cores and key material of a search
// subscription from the remote directory API, memoizing results in a
// core.Cache for the configured TTL.
package directory
