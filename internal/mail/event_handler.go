package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/hrm/internal/core/events"
)

// Queue is the side of the Dispatcher the event handler needs.
type Queue interface {
	Enqueue(msg Message) error
}

type EventHandler struct {
	queue    Queue
	renderer *Renderer
	logger   *slog.Logger
}

func NewEventHandler(queue Queue, renderer *Renderer, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		queue:    queue,
		renderer: renderer,
		logger:   logger,
	}
}

func (h *EventHandler) HandleVerificationCodeIssued(ctx context.Context, event events.Event) error {
	issued, ok := event.(*events.VerificationCodeIssuedEvent)
	if !ok {
		h.logger.Error("invalid event type for verification code handler", "event_type", event.EventType())
		return fmt.Errorf("expected VerificationCodeIssuedEvent, got %T", event)
	}

	msg, err := h.renderer.Render(TemplateVerificationCode, issued.Email, struct {
		Code      string
		ExpiresAt string
	}{
		Code:      issued.Code,
		ExpiresAt: issued.ExpiresAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return err
	}

	if err := h.queue.Enqueue(msg); err != nil {
		return fmt.Errorf("queue verification mail for user %d: %w", issued.UserID, err)
	}

	h.logger.Info("verification mail queued",
		"user_id", issued.UserID,
		"reason", issued.Reason,
		"event_id", issued.EventID())
	return nil
}

func (h *EventHandler) HandlePasswordResetRequested(ctx context.Context, event events.Event) error {
	requested, ok := event.(*events.PasswordResetRequestedEvent)
	if !ok {
		h.logger.Error("invalid event type for password reset handler", "event_type", event.EventType())
		return fmt.Errorf("expected PasswordResetRequestedEvent, got %T", event)
	}

	msg, err := h.renderer.Render(TemplatePasswordReset, requested.Email, struct {
		Email    string
		ResetURL string
	}{
		Email:    requested.Email,
		ResetURL: requested.ResetURL,
	})
	if err != nil {
		return err
	}

	if err := h.queue.Enqueue(msg); err != nil {
		return fmt.Errorf("queue password reset mail for user %d: %w", requested.UserID, err)
	}

	h.logger.Info("password reset mail queued",
		"user_id", requested.UserID,
		"event_id", requested.EventID())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeVerificationCodeIssued, h.HandleVerificationCodeIssued)
	eventBus.Subscribe(events.EventTypePasswordResetRequested, h.HandlePasswordResetRequested)

	h.logger.Info("mail event handlers registered",
		"handlers", []string{events.EventTypeVerificationCodeIssued, events.EventTypePasswordResetRequested})
}
