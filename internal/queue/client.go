package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/doorro/gatekeeper/internal/config"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueuePinVerify hands a submitted PIN to the verification workers. No
// retries: a PIN event that cannot be processed promptly is worthless to the
// person standing at the door.
func (c *Client) EnqueuePinVerify(doorKey, pin, correlationID string) error {
	return c.enqueue(TypePinVerify, PinVerifyPayload{
		DoorKey:       doorKey,
		Pin:           pin,
		CorrelationID: correlationID,
	}, asynq.MaxRetry(0), asynq.Timeout(30*time.Second))
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
