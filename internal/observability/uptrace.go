package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/rift-scout/internal/config"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// routingAttributes tag the tracer resource so spans from separate shards stay apart.
func routingAttributes(cfg config.Config) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if cfg.RiotPlatform != "" {
		attrs = append(attrs, attribute.String("riot.platform", cfg.RiotPlatform))
	}
	if cfg.RiotRegion != "" {
		attrs = append(attrs, attribute.String("riot.region", cfg.RiotRegion))
	}
	if cfg.CacheBackend != "" {
		attrs = append(attrs, attribute.String("cache.backend", cfg.CacheBackend))
	}
	return attrs
}

// InitUptrace configures the global OpenTelemetry providers that the http, usecase and
// riot spans report to. The returned func flushes pending spans.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("tracing")
	noop := func(context.Context) error { return nil }

	switch {
	case !cfg.UptraceEnabled:
		logger.Info("tracing export off", "reason", "UPTRACE_ENABLED=false")
		return noop, nil
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		logger.Info("tracing export off", "reason", "UPTRACE_DSN empty")
		return noop, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(routingAttributes(cfg)...),
	)

	logger.Info("tracing export to uptrace",
		"service_name", cfg.ServiceName,
		"service_version", cfg.ServiceVersion,
		"environment", cfg.AppEnv,
		"riot_platform", cfg.RiotPlatform,
		"riot_region", cfg.RiotRegion,
	)

	return uptrace.Shutdown, nil
}
