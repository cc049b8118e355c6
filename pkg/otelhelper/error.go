package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent("error_occurred", trace.WithAttributes(
		attrs...,
	))
}

// StepAttributes builds the attribute set every step span carries.
func StepAttributes(runID, stepID, integration, operation string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(RunIDKey, runID),
		attribute.String(StepIDKey, stepID),
		attribute.String(IntegrationKey, integration),
		attribute.String(OperationKey, operation),
	}
}
