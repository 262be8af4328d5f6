package server

import (
	"strings"

	"github.com/iota-uz/orgchart/pkg/application"
	"github.com/iota-uz/orgchart/pkg/configuration"
	"github.com/iota-uz/orgchart/pkg/constants"
	"github.com/iota-uz/orgchart/pkg/metrics"
	"github.com/iota-uz/orgchart/pkg/middleware"
	"github.com/iota-uz/orgchart/pkg/server"
)

type DefaultOptions struct {
	Configuration *configuration.Configuration
	Application   application.Application
}

// Default assembles the HTTP server with the standard middleware chain.
// Tenant resolution is attached per-controller, not here, so /health and the
// metrics endpoint stay reachable without a tenant header.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	app.RegisterMiddleware(
		middleware.WithLogger(app.Logger()),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, app.Pool()),
		middleware.Cors(strings.Split(conf.AllowedOrigins, ",")...),
		metrics.RequestMetrics(),
	)

	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	return server.NewHTTPServer(app), nil
}
