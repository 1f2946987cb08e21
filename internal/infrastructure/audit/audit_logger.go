package audit

import (
	"context"

	"github.com/Brijesh59/kite/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Logger writes audit events as structured log lines and counts them by type and outcome
type Logger struct {
	log    *zap.Logger
	events *prometheus.CounterVec
}

// NewLogger creates an audit logger whose counter is registered on reg
func NewLogger(log *zap.Logger, reg prometheus.Registerer) *Logger {
	return &Logger{
		log: log.Named("audit"),
		events: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kite_auth_events_total",
				Help: "Authentication events by type and outcome",
			},
			[]string{"event", "outcome"},
		),
	}
}

// LogEvent implements domain.AuditLogger
func (l *Logger) LogEvent(ctx context.Context, event *domain.AuditEvent) {
	l.events.WithLabelValues(string(event.EventType), event.Outcome()).Inc()

	fields := []zap.Field{
		zap.String("event", string(event.EventType)),
		zap.String("outcome", event.Outcome()),
		zap.Time("timestamp", event.Timestamp),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	if !event.Success {
		l.log.Warn("audit event", append(fields, zap.String("error", event.ErrorMsg))...)
		return
	}
	l.log.Info("audit event", fields...)
}

var _ domain.AuditLogger = (*Logger)(nil)
