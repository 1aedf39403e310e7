package engine

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/doorro/gatekeeper/internal/models"
)

// VerifyPin runs the PIN decision for one code_input message. The submitted
// PIN is compared against every currently enabled current-pin hash in turn;
// bcrypt hashes are non-invertible, so a linear scan is the only option and
// cost grows with the number of enabled PINs. Runs on the worker pool, not
// the bus-dispatch path.
//
// After the audit insert, the row gets a deferred forensic update: a sha256
// digest of the submitted PIN and its length. Neither the PIN nor its bcrypt
// hash is ever stored on the event.
func (e *Engine) VerifyPin(ctx context.Context, doorKey, pin string) error {
	doorID, err := e.resolver.Resolve(ctx, doorKey)
	if err != nil {
		return err
	}

	candidates, err := e.store.ActivePinCandidates(ctx)
	if err != nil {
		return err
	}

	var matched *int64
	for _, c := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(c.PinHash), []byte(pin)) == nil {
			userID := c.UserID
			matched = &userID
			break
		}
	}

	o := outcome{
		doorID:         doorID,
		doorKey:        doorKey,
		credentialType: models.CredentialPIN,
	}

	if matched == nil {
		reason := ReasonPinNoMatch
		o.reason = &reason
	} else {
		allowed, err := e.checkAccess(ctx, doorID, *matched)
		if err != nil {
			return err
		}
		if allowed {
			o.granted = true
			o.userID = matched
		} else {
			reason := ReasonNoAccessToDoor
			o.reason = &reason
		}
	}

	eventID := e.recordAndNotify(ctx, o)

	if eventID != 0 {
		if err := e.store.AttachPinForensics(ctx, eventID, pinDigest(pin), len(pin)); err != nil {
			slog.Error("pin forensics update failed", "error", err, "event_id", eventID)
		}
	}

	return nil
}
