package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	operationKey contextKey = "operation"
	dataSetKey   contextKey = "data_set"
)

// WithRunID annotates context with a correlation identifier for one scan or move run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithOperation annotates context with the engine operation name (scan, check, plan, move).
func WithOperation(ctx context.Context, operation string) context.Context {
	if operation == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, operation)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(operationKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDataSet annotates context with the data set being processed.
func WithDataSet(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, dataSetKey, name)
}

// DataSetFromContext returns the data set name if present. An empty data set
// name is valid, so presence is reported separately.
func DataSetFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(dataSetKey).(string)
	return v, ok
}
