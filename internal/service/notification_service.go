package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/ppdb-api/pkg/config"
	"github.com/noah-isme/ppdb-api/pkg/jobs"
)

const jobTypeWhatsApp = "whatsapp.send"

type whatsAppMessage struct {
	To      string
	Message string
}

// NotificationService delivers WhatsApp messages through the Fonnte-style
// gateway. Delivery is fire-and-forget via a background queue: enqueue and
// delivery failures are logged, never surfaced to the caller, so a
// committed status change is never rolled back by a notification problem.
type NotificationService struct {
	queue   *jobs.Queue
	client  *http.Client
	metrics *MetricsService
	apiURL  string
	token   string
	logger  *zap.Logger
}

// NewNotificationService constructs the service and its delivery queue.
func NewNotificationService(waCfg config.WhatsAppConfig, notifyCfg config.NotifyConfig, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		client:  &http.Client{Timeout: waCfg.Timeout},
		metrics: metrics,
		apiURL:  waCfg.APIURL,
		token:   waCfg.Token,
		logger:  logger,
	}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    notifyCfg.Workers,
		MaxRetries: notifyCfg.MaxRetries,
		RetryDelay: notifyCfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules a message for delivery. Errors are swallowed after
// logging; callers must not depend on delivery.
func (s *NotificationService) Enqueue(to, message string) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeWhatsApp,
		Payload: whatsAppMessage{To: to, Message: message},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("to", to), zap.Error(err))
	}
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(whatsAppMessage)
	if !ok {
		s.logger.Error("dropping notification with unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	if s.token == "" {
		s.logger.Info("whatsapp token not configured, skipping send",
			zap.String("to", msg.To), zap.String("message", msg.Message))
		return nil
	}

	form := url.Values{}
	form.Set("target", msg.To)
	form.Set("message", msg.Message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.RecordNotification(false)
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.metrics.RecordNotification(false)
		return fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
	}

	s.metrics.RecordNotification(true)
	s.logger.Debug("whatsapp message delivered", zap.String("to", msg.To))
	return nil
}
