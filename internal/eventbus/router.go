package eventbus

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// NewRouter builds the watermill router that subscription handlers attach to.
// Metrics are only wired when a registry is provided; tests pass nil.
func NewRouter(logger *slog.Logger, registry *prometheus.Registry) (*message.Router, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(middleware.Recoverer)

	if registry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(registry, "leaguehub", "eventbus")
		builder.AddPrometheusRouterMetrics(router)
	}

	return router, nil
}
