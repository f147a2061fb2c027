// Package cache provides a result cache for lending query handlers.
//
// QueryWrapper decorates any shell.QueryHandler. Results are encoded as JSON and kept in a
// ResultStore under a key built from the query type and Query.CacheKey. Two stores are provided:
// RedisStore for a shared cache and MemoryStore, an expiring in-process LRU.
//
// The cache never changes query semantics. Invalid queries bypass the cache. Store failures fall
// back to the wrapped handler. Handler errors are never cached. Results that cannot be encoded,
// e.g. an infinite reading pace, are returned uncached.
//
// Warmer refreshes cached results on a cron schedule so the first reader after a data load does
// not pay for the full scan. With WithRetry, jobs that fail with a transient error are retried
// with exponential backoff.
package cache
