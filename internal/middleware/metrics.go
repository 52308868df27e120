package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// SessionRotations counts session token rotations.
	SessionRotations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ripple_session_rotations_total",
		Help: "Total number of session token rotations",
	})

	// ToggleOps counts like/follow toggle operations by kind and outcome.
	ToggleOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_toggle_operations_total",
		Help: "Total like/follow toggle operations by kind and outcome",
	}, []string{"kind", "outcome"})
)

// InitMetrics creates the Prometheus HTTP metrics middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler recording HTTP metrics.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
