package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/cecbur/RebtelAssignment-sub000/lending/oteladapters"
)

func givenTracingCollector() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("lending-test")), exporter
}

func Test_TracingCollector_RecordsStartAndFinishAttributes(t *testing.T) {
	// arrange
	collector, exporter := givenTracingCollector()

	// act
	_, span := collector.StartSpan(context.Background(), "lendingstore.query", map[string]string{"operation": "all_loans"})
	collector.FinishSpan(span, "success", map[string]string{"row_count": "3"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "lendingstore.query", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "operation", "all_loans")
	assertSpanHasAttribute(t, spans[0], "row_count", "3")
}

func Test_TracingCollector_MapsStatuses(t *testing.T) {
	testCases := []struct {
		status       string
		expectedCode codes.Code
		description  string
	}{
		{status: "success", expectedCode: codes.Ok},
		{status: "error", expectedCode: codes.Error, description: "Operation failed"},
		{status: "canceled", expectedCode: codes.Error, description: "Operation canceled"},
		{status: "timeout", expectedCode: codes.Error, description: "Operation timed out"},
		{status: "invalid_argument", expectedCode: codes.Error, description: "Invalid argument"},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			collector, exporter := givenTracingCollector()

			// act
			_, span := collector.StartSpan(context.Background(), "queryhandler.handle", nil)
			collector.FinishSpan(span, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)
			assert.Equal(t, tc.description, spans[0].Status.Description)
		})
	}
}

func Test_TracingCollector_KeepsUnknownStatusAsAttribute(t *testing.T) {
	// arrange
	collector, exporter := givenTracingCollector()

	// act
	_, span := collector.StartSpan(context.Background(), "queryhandler.handle", nil)
	collector.FinishSpan(span, "partial", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "status", "partial")
}

func Test_TracingCollector_NestsChildSpans(t *testing.T) {
	// arrange
	collector, exporter := givenTracingCollector()

	// act
	ctx, parent := collector.StartSpan(context.Background(), "queryhandler.handle", nil)
	_, child := collector.StartSpan(ctx, "lendingstore.query", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
}

func Test_TracingCollector_IgnoresForeignSpanContexts(t *testing.T) {
	// arrange
	collector, exporter := givenTracingCollector()

	// act & assert
	assert.NotPanics(t, func() {
		collector.FinishSpan(foreignSpanContext{}, "success", nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

type foreignSpanContext struct{}

func (foreignSpanContext) SetStatus(string)            {}
func (foreignSpanContext) AddAttribute(string, string) {}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expectedValue string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) && attr.Value.AsString() == expectedValue {
			return
		}
	}

	assert.Failf(t, "missing span attribute", "%s=%s", key, expectedValue)
}
