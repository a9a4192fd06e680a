package checkout

import (
	"context"
	"errors"
	"fmt"

	"quotewizard/database/repository"
	"quotewizard/models"
	"quotewizard/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of *asynq.Client used for handoff.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service records submitted bookings and schedules their confirmation.
type Service struct {
	repo   repository.BookingRepository
	queue  Enqueuer
	logger *zap.Logger
}

// NewService wires checkout. queue may be nil, in which case bookings are stored
// but never confirmed asynchronously.
func NewService(repo repository.BookingRepository, queue Enqueuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, queue: queue, logger: logger}
}

// Handoff is safe to repeat for the same idempotency key.
func (s *Service) Handoff(ctx context.Context, booking models.Booking) error {
	log := s.logger.With(
		zap.String("booking_id", booking.ID),
		zap.String("idempotency_key", booking.IdempotencyKey))

	created, err := s.repo.Upsert(ctx, &booking)
	if err != nil {
		return fmt.Errorf("failed to store booking: %w", err)
	}
	if !created {
		stored, err := s.repo.GetByIdempotencyKey(ctx, booking.IdempotencyKey)
		if err != nil {
			return fmt.Errorf("failed to load existing booking: %w", err)
		}
		log.Info("booking already recorded", zap.String("stored_id", stored.ID))
		booking = *stored
	}

	if s.queue == nil {
		return nil
	}

	task, opts, err := tasks.NewBookingConfirmTask(models.BookingConfirmPayload{
		BookingID:      booking.ID,
		IdempotencyKey: booking.IdempotencyKey,
	})
	if err != nil {
		return fmt.Errorf("failed to build confirmation task: %w", err)
	}

	if _, err := s.queue.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			log.Debug("confirmation already queued")
			return nil
		}
		return fmt.Errorf("failed to enqueue confirmation: %w", err)
	}
	log.Info("booking handed off")
	return nil
}
