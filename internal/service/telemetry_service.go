package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/config"
	"github.com/spec-kit/ticketdesk/internal/events"
	"github.com/spec-kit/ticketdesk/internal/observability"
)

// TelemetryService turns domain events into breadcrumbs and forwards them to
// the external collector. It observes only; a sink failure never fails the
// request that produced the event.
type TelemetryService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	crumbs     *observability.Breadcrumbs
	cfg        config.TelemetryConfig
	client     *http.Client
}

// NewTelemetryService creates the service.
func NewTelemetryService(dispatcher events.Dispatcher, logger *zap.Logger, crumbs *observability.Breadcrumbs, cfg config.TelemetryConfig) *TelemetryService {
	return &TelemetryService{
		dispatcher: dispatcher,
		logger:     logger,
		crumbs:     crumbs,
		cfg:        cfg,
		client:     &http.Client{Timeout: 2 * time.Second},
	}
}

// RegisterHandlers subscribes to events.
func (t *TelemetryService) RegisterHandlers() {
	if t.dispatcher == nil {
		return
	}
	t.dispatcher.Subscribe(events.EventUserRegistered, t.handleUserRegistered)
	t.dispatcher.Subscribe(events.EventLoginFailed, t.handleLoginFailed)
	t.dispatcher.Subscribe(events.EventTicketCreated, t.handleTicketCreated)
	t.dispatcher.Subscribe(events.EventTicketClosed, t.handleTicketClosed)
}

func (t *TelemetryService) handleUserRegistered(_ context.Context, event events.Event) error {
	t.crumbs.Record("auth", "info", "user registered", map[string]any{
		"user_id":  event.UserID,
		"event_id": event.ID,
	})
	t.sendWebhook(event)
	return nil
}

func (t *TelemetryService) handleLoginFailed(_ context.Context, event events.Event) error {
	t.crumbs.Record("auth", "warning", "login failed", map[string]any{
		"user_id":  event.UserID,
		"event_id": event.ID,
		"payload":  event.Payload,
	})
	t.sendWebhook(event)
	return nil
}

func (t *TelemetryService) handleTicketCreated(_ context.Context, event events.Event) error {
	t.crumbs.Record("ticket", "info", "ticket created", map[string]any{
		"user_id":   event.UserID,
		"ticket_id": event.TicketID,
		"event_id":  event.ID,
	})
	t.sendWebhook(event)
	return nil
}

func (t *TelemetryService) handleTicketClosed(_ context.Context, event events.Event) error {
	t.crumbs.Record("ticket", "info", "ticket closed", map[string]any{
		"user_id":   event.UserID,
		"ticket_id": event.TicketID,
		"event_id":  event.ID,
	})
	t.sendWebhook(event)
	return nil
}

// sendWebhook posts the event to the configured collector. Delivery is
// best-effort with a short client timeout; failures are logged and dropped.
func (t *TelemetryService) sendWebhook(event events.Event) {
	if strings.TrimSpace(t.cfg.WebhookURL) == "" {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		t.logger.Warn("telemetry event not serializable", zap.String("event_id", event.ID), zap.Error(err))
		return
	}

	resp, err := t.client.Post(t.cfg.WebhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.logger.Warn("telemetry webhook unreachable",
			zap.String("event_id", event.ID),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		t.logger.Warn("telemetry webhook rejected event",
			zap.String("event_id", event.ID),
			zap.Int("status", resp.StatusCode))
	}
}
