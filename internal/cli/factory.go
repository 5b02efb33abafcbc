package cli

import (
	"context"

	"taskdesk/internal/backend/httpapi"
	"taskdesk/internal/config"
	"taskdesk/internal/logging"
	"taskdesk/internal/service"
	"taskdesk/internal/session"
	"taskdesk/internal/transport"
)

// HTTPServiceFactory returns a factory for the task HTTP API at the
// configured base URL. metrics may be nil.
func HTTPServiceFactory(metrics *transport.Metrics) ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, sess *session.Session, log *logging.Logger) (service.Service, error) {
		tr, err := transport.New(cfg.API.BaseURL, sess,
			transport.WithTimeout(cfg.API.Timeout),
			transport.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst),
			transport.WithLogger(log),
			transport.WithMetrics(metrics),
		)
		if err != nil {
			return nil, err
		}
		return httpapi.New(tr), nil
	}
}
