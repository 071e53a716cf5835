// Package core holds the search core resolution domain: identity signals,
// the candidate resolver, the connection policy and the read-only gate.
// Adapters for transport, caching and persistence depend on this package;
// core never imports them.
package core
