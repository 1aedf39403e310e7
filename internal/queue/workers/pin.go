package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/doorro/gatekeeper/internal/engine"
	"github.com/doorro/gatekeeper/internal/queue"
)

// PinWorker executes pin:verify tasks. Verification failures are converted
// into a denied handler_error event here rather than retried; the task is
// considered consumed either way.
type PinWorker struct {
	engine *engine.Engine
}

func NewPinWorker(eng *engine.Engine) *PinWorker {
	return &PinWorker{engine: eng}
}

func (w *PinWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p queue.PinVerifyPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal pin verify payload: %w", err)
	}

	log := slog.With("msg_id", p.CorrelationID, "door_key", p.DoorKey)

	if err := w.engine.VerifyPin(ctx, p.DoorKey, p.Pin); err != nil {
		log.Error("pin verification failed", "error", err)
		w.engine.RecordHandlerFailure(ctx, p.DoorKey)
	}
	return nil
}
