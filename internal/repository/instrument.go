package repository

import (
	"context"

	"chirper/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// observe opens a span and a latency timer for one repository call. The
// returned finish records the call's error on the span and must always run.
func observe(ctx context.Context, table, operation string) (context.Context, func(error)) {
	span, ctx := observability.NewSpan(ctx, "repository."+table+"."+operation)
	span.AddAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.table", table),
	)
	stop := observability.TrackQuery(operation, table)
	return ctx, func(err error) {
		stop()
		span.SetError(err)
		span.End()
	}
}
