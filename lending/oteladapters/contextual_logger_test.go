package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/log/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/cecbur/RebtelAssignment-sub000/lending/oteladapters"
)

func Test_SlogBridgeLoggerWithHandler_WritesAllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "executed sql for: all_loans", "duration_ms", 1.5)
	logger.InfoContext(ctx, "loan store operation: query completed", "row_count", 3)
	logger.WarnContext(ctx, "failed to close database rows")
	logger.ErrorContext(ctx, "database query execution failed", "error", "boom")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"level":"INFO"`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"level":"ERROR"`)
	assert.Contains(t, output, `"row_count":3`)
	assert.Contains(t, output, `"duration_ms":1.5`)
}

func Test_SlogBridgeLogger_DoesNotPanic_InsideSpan(t *testing.T) {
	// arrange
	provider := sdktrace.NewTracerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	ctx, span := provider.Tracer("lending-test").Start(context.Background(), "queryhandler.handle")
	defer span.End()
	logger := oteladapters.NewSlogBridgeLogger("lending-test")

	// act & assert
	assert.NotPanics(t, func() {
		logger.InfoContext(ctx, "query handler: started", "query_type", "MostLoanedBooks")
	})
}

func Test_OTelLogger_HandlesTypedAndOddArguments(t *testing.T) {
	// arrange
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("lending-test"))
	ctx := context.Background()

	// act & assert
	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "typed", "int", 1, "int64", int64(2), "float", 0.5, "bool", true)
		logger.InfoContext(ctx, "error value", "error", errors.New("boom"))
		logger.WarnContext(ctx, "dangling key", "row_count")
		logger.ErrorContext(ctx, "non-string key", 42, "ignored")
	})
}
