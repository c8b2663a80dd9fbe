package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traveldesk_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StatusTransitions counts travel request status transitions by outcome.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traveldesk_status_transitions_total",
		Help: "Total travel request status transitions by previous and new status",
	}, []string{"from", "to"})

	// MailJobs counts mail notification jobs by final outcome.
	MailJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traveldesk_mail_jobs_total",
		Help: "Total mail notification jobs by outcome (sent, retried, dropped)",
	}, []string{"outcome"})
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
