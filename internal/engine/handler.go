package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/doorro/gatekeeper/internal/models"
)

// HandleMessage processes one inbound bus message. Unknown subtypes and blank
// payloads are ignored. Errors and panics anywhere downstream are converted
// into a single denied UNKNOWN event with reason handler_error, followed by
// the usual deny notification; they never escape to the caller.
func (e *Engine) HandleMessage(ctx context.Context, topic string, payload []byte) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return
	}

	doorKey, subtype := ParseTopic(e.topicBase, topic)

	switch subtype {
	case SubtypeCardInput, SubtypeCodeInput, SubtypeEgressRequest:
	default:
		return
	}

	correlationID := uuid.NewString()
	log := slog.With("msg_id", correlationID, "topic", topic, "subtype", subtype)

	err := e.dispatch(ctx, doorKey, subtype, text, correlationID)
	if err != nil {
		log.Error("handler error", "error", err)
		e.RecordHandlerFailure(ctx, doorKey)
	}
}

func (e *Engine) dispatch(ctx context.Context, doorKey, subtype, text, correlationID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	switch subtype {
	case SubtypeCardInput:
		return e.handleCard(ctx, doorKey, text)
	case SubtypeCodeInput:
		// The bcrypt scan is deliberately slow; hand it to the worker pool.
		return e.queue.EnqueuePinVerify(doorKey, text, correlationID)
	case SubtypeEgressRequest:
		return e.handleEgress(ctx, doorKey)
	}
	return nil
}

func (e *Engine) handleCard(ctx context.Context, doorKey, cardUID string) error {
	doorID, err := e.resolver.Resolve(ctx, doorKey)
	if err != nil {
		return err
	}

	userID, err := e.store.FindCardUser(ctx, cardUID)
	if err != nil {
		return err
	}

	o := outcome{
		doorID:         doorID,
		doorKey:        doorKey,
		credentialType: models.CredentialRFID,
		presentedUID:   &cardUID,
	}

	if userID == nil {
		reason := ReasonRfidNotFound
		o.reason = &reason
		e.recordAndNotify(ctx, o)
		return nil
	}

	allowed, err := e.checkAccess(ctx, doorID, *userID)
	if err != nil {
		return err
	}

	if allowed {
		o.granted = true
		o.userID = userID
	} else {
		reason := ReasonNoAccessToDoor
		o.reason = &reason
	}

	e.recordAndNotify(ctx, o)
	return nil
}

// handleEgress is the manual exit button: always granted, no credential, no
// user attribution.
func (e *Engine) handleEgress(ctx context.Context, doorKey string) error {
	doorID, err := e.resolver.Resolve(ctx, doorKey)
	if err != nil {
		return err
	}

	reason := ReasonEgress
	e.recordAndNotify(ctx, outcome{
		doorID:         doorID,
		doorKey:        doorKey,
		credentialType: models.CredentialUnknown,
		granted:        true,
		reason:         &reason,
	})
	return nil
}

// checkAccess is the grant lookup. A nil door id can never be granted: the
// relation is keyed by concrete (door, user) pairs and there is no
// default-allow.
func (e *Engine) checkAccess(ctx context.Context, doorID *int64, userID int64) (bool, error) {
	if doorID == nil {
		return false, nil
	}
	return e.store.IsAllowed(ctx, *doorID, userID)
}
