package store_test

import (
	"context"
	"testing"

	"github.com/doorro/gatekeeper/internal/models"
	"github.com/doorro/gatekeeper/internal/store"
)

func TestListEvents_LimitClampedAt500(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	reason := "rfid_not_found"
	for i := 0; i < 510; i++ {
		if _, err := st.InsertEvent(ctx, models.Event{
			CredentialType: models.CredentialRFID,
			Result:         models.ResultDenied,
			Reason:         &reason,
		}); err != nil {
			t.Fatalf("insert event %d: %v", i, err)
		}
	}

	events, err := st.ListEvents(ctx, store.EventQuery{Limit: 10000})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 500 {
		t.Errorf("expected limit clamped to 500, got %d rows", len(events))
	}

	events, err = st.ListEvents(ctx, store.EventQuery{})
	if err != nil {
		t.Fatalf("list default: %v", err)
	}
	if len(events) != 100 {
		t.Errorf("expected default limit 100, got %d rows", len(events))
	}
}

func TestListEvents_Filters(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	egress := "egress"
	if _, err := st.InsertEvent(ctx, models.Event{
		CredentialType: models.CredentialUnknown,
		Result:         models.ResultGranted,
		Reason:         &egress,
	}); err != nil {
		t.Fatalf("insert granted: %v", err)
	}
	noMatch := "pin_no_match"
	if _, err := st.InsertEvent(ctx, models.Event{
		CredentialType: models.CredentialPIN,
		Result:         models.ResultDenied,
		Reason:         &noMatch,
	}); err != nil {
		t.Fatalf("insert denied: %v", err)
	}

	events, err := st.ListEvents(ctx, store.EventQuery{Result: models.ResultDenied})
	if err != nil {
		t.Fatalf("list denied: %v", err)
	}
	if len(events) != 1 || events[0].CredentialType != models.CredentialPIN {
		t.Errorf("expected the one denied PIN event, got %v", events)
	}

	events, err = st.ListEvents(ctx, store.EventQuery{CredentialType: models.CredentialUnknown})
	if err != nil {
		t.Fatalf("list unknown: %v", err)
	}
	if len(events) != 1 || events[0].Result != models.ResultGranted {
		t.Errorf("expected the one UNKNOWN grant, got %v", events)
	}
}

func TestAttachPinForensics(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	id, err := st.InsertEvent(ctx, models.Event{
		CredentialType: models.CredentialPIN,
		Result:         models.ResultDenied,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := st.AttachPinForensics(ctx, id, "abcd1234", 4); err != nil {
		t.Fatalf("attach: %v", err)
	}

	events, err := st.ListEvents(ctx, store.EventQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].PinSHA == nil || *events[0].PinSHA != "abcd1234" {
		t.Errorf("expected pin_sha attached, got %v", events[0].PinSHA)
	}
	if events[0].PinLen == nil || *events[0].PinLen != 4 {
		t.Errorf("expected pin_len 4, got %v", events[0].PinLen)
	}
}
