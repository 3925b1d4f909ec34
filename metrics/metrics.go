package metrics

import (
	"github.com/KeremAR/notification-service/utils"
	"github.com/gofiber/adaptor/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Notifications persisted from inbound issue events.",
	})

	EmailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_email_failures_total",
		Help: "Best-effort email deliveries that were attempted and failed.",
	})

	NotificationsRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_read_total",
		Help: "Notifications marked as read.",
	})

	NotificationsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_deleted_total",
		Help: "Notifications permanently deleted.",
	})
)

func RegisterMetricsHandler(r *utils.Router) {
	r.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
