package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quotewizard/config"
	"quotewizard/database/repository"
	"quotewizard/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitConfirmationWorker runs the booking confirmation worker in background and
// returns the server so the caller can shut it down.
func InitConfirmationWorker(repo repository.BookingRepository, logger *zap.Logger) *asynq.Server {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingConfirm, handleBookingConfirmTask(repo, time.Now, logger))

	go func() {
		logger.Info("starting confirmation worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("confirmation worker failed to start",
				zap.Int("attempt", attempts), zap.Int("max_attempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("confirmation worker gave up")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return srv
}

func handleBookingConfirmTask(repo repository.BookingRepository, now func() time.Time, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseBookingConfirmPayload(task)
		if err != nil {
			logger.Error("dropping confirmation task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		err = repo.MarkConfirmed(ctx, p.BookingID, now())
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			logger.Warn("confirmation for unknown booking", zap.String("booking_id", p.BookingID))
			return fmt.Errorf("booking %s: %w", p.BookingID, asynq.SkipRetry)
		case err != nil:
			logger.Error("failed to confirm booking", zap.String("booking_id", p.BookingID), zap.Error(err))
			return err
		}

		logger.Info("booking confirmed",
			zap.String("booking_id", p.BookingID),
			zap.String("idempotency_key", p.IdempotencyKey))
		return nil
	}
}
