package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/rinawarp/downloads/pkg/models"
)

// MetricsService owns the Prometheus counters for the authorization
// pipeline. Registration ignores AlreadyRegisteredError so repeated
// construction in tests is harmless.
type MetricsService struct {
	logger *logrus.Logger

	tokensIssued     prometheus.Counter
	downloadsServed  *prometheus.CounterVec
	rateLimitRejects prometheus.Counter
	authFailures     *prometheus.CounterVec
}

func NewMetricsService(logger *logrus.Logger) *MetricsService {
	ms := &MetricsService{logger: logger}

	ms.tokensIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "download_tokens_issued_total",
		Help: "Number of download tokens minted",
	})

	ms.downloadsServed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "downloads_served_total",
		Help: "Number of installer downloads streamed, by platform",
	}, []string{"platform"})

	ms.rateLimitRejects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_rejections_total",
		Help: "Number of token requests rejected by the rate limiter",
	})

	ms.authFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authorization_failures_total",
		Help: "Number of failed authorization checks, by error code",
	}, []string{"code"})

	for _, c := range []prometheus.Collector{
		ms.tokensIssued, ms.downloadsServed, ms.rateLimitRejects, ms.authFailures,
	} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				logger.WithError(err).Warn("Failed to register metric")
			}
		}
	}

	return ms
}

func (m *MetricsService) TokenIssued() {
	m.tokensIssued.Inc()
}

func (m *MetricsService) DownloadServed(platform string) {
	m.downloadsServed.WithLabelValues(platform).Inc()
}

func (m *MetricsService) RateLimitRejected() {
	m.rateLimitRejects.Inc()
}

func (m *MetricsService) AuthFailure(code models.ErrorCode) {
	m.authFailures.WithLabelValues(string(code)).Inc()
}
