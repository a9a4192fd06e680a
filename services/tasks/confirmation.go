package tasks

import (
	"encoding/json"
	"fmt"

	"quotewizard/models"

	"github.com/hibiken/asynq"
)

const TypeBookingConfirm = "booking:confirm"

// NewBookingConfirmTask builds the confirmation task for a handed off booking.
// The task ID is derived from the idempotency key so a repeated handoff enqueues nothing.
func NewBookingConfirmTask(payload models.BookingConfirmPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingConfirm, b)
	opts := []asynq.Option{
		asynq.TaskID("booking-confirm:" + payload.IdempotencyKey),
		asynq.MaxRetry(10),
	}

	return task, opts, nil
}

func ParseBookingConfirmPayload(task *asynq.Task) (models.BookingConfirmPayload, error) {
	var p models.BookingConfirmPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", TypeBookingConfirm, err)
	}
	if p.BookingID == "" {
		return p, fmt.Errorf("invalid %s payload: missing booking id", TypeBookingConfirm)
	}
	return p, nil
}
