// Package cache provides core.Cache backends for directory snapshots:
// an in-process map, a go-repository-cache service and Redis for caches
// shared across worker processes.
package cache
