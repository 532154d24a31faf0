package services

import (
	"fmt"
	"strings"

	"github.com/containrrr/shoutrrr"

	"github.com/argus-sec/argus/internal/logger"
	"github.com/argus-sec/argus/internal/models"
)

// NotificationService fans escalated alert reports out to external
// providers via shoutrrr URLs. Send failures are logged, never propagated;
// a broken webhook must not affect the pipeline.
type NotificationService struct {
	urls []string
}

// NewNotificationService builds a notifier from configured shoutrrr URLs.
// An empty URL list yields a notifier that silently does nothing.
func NewNotificationService(urls []string) *NotificationService {
	return &NotificationService{urls: urls}
}

// NotifyEscalation sends a summary of an escalated correlation report.
func (s *NotificationService) NotifyEscalation(report *models.CorrelationReport) {
	if len(s.urls) == 0 || report == nil {
		return
	}

	title := fmt.Sprintf("[%s] security alert: %d correlated group(s)", strings.ToUpper(report.Risk.String()), len(report.Groups))
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	for _, rec := range report.Recommendations {
		b.WriteString("- ")
		b.WriteString(rec)
		b.WriteString("\n")
	}
	message := b.String()

	for _, url := range s.urls {
		if err := shoutrrr.Send(url, message); err != nil {
			logger.WithFields(map[string]interface{}{
				"provider": redactURL(url),
			}).Warnf("escalation notification failed: %v", err)
		}
	}
}

// redactURL keeps only the scheme so tokens never reach the logs.
func redactURL(url string) string {
	if i := strings.Index(url, "://"); i > 0 {
		return url[:i]
	}
	return "unknown"
}
