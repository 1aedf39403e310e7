// Package engine implements the access decision pipeline: topic routing, door
// resolution, credential verification, the door/user grant check, and audit
// recording with a grant/deny notification back to the originating hardware.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/doorro/gatekeeper/internal/models"
	"github.com/doorro/gatekeeper/internal/store"
)

// Store is the persistence surface the engine needs. *store.Store satisfies
// it; tests substitute an in-memory fake.
type Store interface {
	FindActiveDoorID(ctx context.Context, doorKey string) (*int64, error)
	FindCardUser(ctx context.Context, uid string) (*int64, error)
	ActivePinCandidates(ctx context.Context) ([]store.PinCandidate, error)
	IsAllowed(ctx context.Context, doorID, userID int64) (bool, error)
	InsertEvent(ctx context.Context, e models.Event) (int64, error)
	AttachPinForensics(ctx context.Context, eventID int64, pinSHA string, pinLen int) error
}

// Publisher sends a message to the bus. Outcome notifications carry an empty
// payload; the topic alone conveys the result.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// PinQueue hands a PIN verification off to the worker pool so the slow hash
// scan never runs on the bus-dispatch path.
type PinQueue interface {
	EnqueuePinVerify(doorKey, pin, correlationID string) error
}

const (
	ReasonRfidNotFound   = "rfid_not_found"
	ReasonPinNoMatch     = "pin_no_match"
	ReasonNoAccessToDoor = "no_access_to_door"
	ReasonEgress         = "egress"
	ReasonHandlerError   = "handler_error"
)

type Engine struct {
	store     Store
	resolver  *DoorResolver
	bus       Publisher
	queue     PinQueue
	topicBase string
}

// New wires an engine. queue may be nil in the worker process, which only
// consumes the queue.
func New(st Store, resolver *DoorResolver, bus Publisher, queue PinQueue, topicBase string) *Engine {
	return &Engine{
		store:     st,
		resolver:  resolver,
		bus:       bus,
		queue:     queue,
		topicBase: topicBase,
	}
}

// outcome is one decided credential event, ready to record and notify.
type outcome struct {
	doorID         *int64
	doorKey        string
	credentialType string
	presentedUID   *string
	userID         *int64
	granted        bool
	reason         *string
}

// recordAndNotify inserts the audit row and publishes the result topic. A
// failed insert is logged and the notification still goes out: hardware must
// always hear an answer, even when the audit trail loses the row. Returns the
// event id, or 0 when no row was written.
func (e *Engine) recordAndNotify(ctx context.Context, o outcome) int64 {
	var userID *int64
	if o.granted {
		userID = o.userID
	}

	ev := models.Event{
		DoorID:         o.doorID,
		UserID:         userID,
		CredentialType: o.credentialType,
		PresentedUID:   o.presentedUID,
		Result:         models.ResultDenied,
		Reason:         o.reason,
	}
	if o.granted {
		ev.Result = models.ResultGranted
	}

	eventID, err := e.store.InsertEvent(ctx, ev)
	if err != nil {
		slog.Error("event insert failed", "error", err, "door_key", o.doorKey)
		eventID = 0
	}

	resultTopic := "access_denied"
	if o.granted {
		resultTopic = "access_granted"
	}
	topic := resultTopic
	if o.doorKey != "" {
		topic = e.topicBase + "/" + o.doorKey + "/" + resultTopic
	}

	if err := e.bus.Publish(topic, nil); err != nil {
		slog.Error("notify publish failed", "error", err, "topic", topic)
	}

	return eventID
}

// RecordHandlerFailure converts an internal failure into a single denied
// UNKNOWN-credential event plus a deny notification, so a credential event is
// never left unanswered.
func (e *Engine) RecordHandlerFailure(ctx context.Context, doorKey string) {
	doorID, err := e.resolver.Resolve(ctx, doorKey)
	if err != nil {
		doorID = nil
	}
	reason := ReasonHandlerError
	e.recordAndNotify(ctx, outcome{
		doorID:         doorID,
		doorKey:        doorKey,
		credentialType: models.CredentialUnknown,
		granted:        false,
		reason:         &reason,
	})
}

func pinDigest(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}
