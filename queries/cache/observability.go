package cache

import (
	"context"

	"github.com/cecbur/RebtelAssignment-sub000/queries/shell"
)

const (
	// CacheHitsMetric counts queries answered from the store.
	CacheHitsMetric = "querycache_hits_total"

	// CacheMissesMetric counts queries that had to run the wrapped handler.
	CacheMissesMetric = "querycache_misses_total"

	// CacheErrorsMetric counts failed store operations.
	CacheErrorsMetric = "querycache_errors_total"

	// CacheSkippedMetric counts results that were returned without being stored.
	CacheSkippedMetric = "querycache_skipped_total"
)

const (
	operationGet    = "get"
	operationSet    = "set"
	operationDecode = "decode"
	operationEncode = "encode"
)

const (
	logMsgLookupFailed  = "query cache lookup failed"
	logMsgCorruptEntry  = "query cache entry could not be decoded"
	logMsgStoreFailed   = "query cache store failed"
	logMsgNotCacheable  = "query result not cacheable"
	logMsgWarmFailed    = "cache warm job failed"
	logMsgWarmCompleted = "cache warm run completed"

	logAttrCacheKey  = "cache_key"
	logAttrOperation = "operation"
	logAttrJob       = "job"
	logAttrJobs      = "jobs"
	logAttrFailed    = "failed"
)

func cacheLabels(queryType, operation string) map[string]string {
	return map[string]string{
		shell.LogAttrQueryType: queryType,
		logAttrOperation:       operation,
	}
}

type loggers struct {
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
}

func (l loggers) warn(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.WarnContext(ctx, msg, args...)
	} else if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}

func (l loggers) debug(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.DebugContext(ctx, msg, args...)
	} else if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l loggers) info(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.InfoContext(ctx, msg, args...)
	} else if l.logger != nil {
		l.logger.Info(msg, args...)
	}
}
