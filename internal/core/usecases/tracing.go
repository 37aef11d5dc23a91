package usecases

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("github.com/samirrijal/crimereport/internal/core/usecases")
