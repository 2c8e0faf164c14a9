package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/notify"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	mailer     notify.Mailer
}

// NewNotificationService creates the service. mailer may be nil, in which case
// email notifications are only logged.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, mailer notify.Mailer) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		mailer:     mailer,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketPriorityChanged, n.handleWebhookOnly)
	n.dispatcher.Subscribe(events.EventTicketDeleted, n.handleWebhookOnly)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendEmailNotification(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned", zap.String("ticket_id", event.TicketID), zap.String("actor", event.Actor.Username), zap.Any("payload", event.Payload))
	n.sendEmailNotification(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.String("actor", event.Actor.Username), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleWebhookOnly(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("CommentAdded", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendEmailNotification(ctx, event)
	return nil
}

// sendEmailNotification hands the event to the mailer off the request path.
func (n *NotificationService) sendEmailNotification(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	if n.mailer == nil || len(n.cfg.EmailTo) == 0 {
		n.logger.Debug("email notification skipped",
			zap.String("from", n.cfg.EmailFrom),
			zap.String("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)))
		return
	}

	msg := notify.Message{
		To:      n.cfg.EmailTo,
		Subject: fmt.Sprintf("[helpdesk] %s %s", event.Type, event.TicketID),
		Body:    emailBody(event),
	}
	sendCtx := context.WithoutCancel(ctx)
	go func() {
		if err := n.mailer.Send(sendCtx, msg); err != nil {
			n.logger.Warn("email notification failed",
				zap.String("ticket_id", event.TicketID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}()
}

func emailBody(event events.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\n", event.Type)
	fmt.Fprintf(&b, "Ticket: %s\n", event.TicketID)
	if event.Actor.Username != "" {
		fmt.Fprintf(&b, "By: %s (%s)\n", event.Actor.Username, event.Actor.Role)
	}
	fmt.Fprintf(&b, "At: %s\n", event.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))
	if event.Payload != nil {
		fmt.Fprintf(&b, "Details: %+v\n", event.Payload)
	}
	return b.String()
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
