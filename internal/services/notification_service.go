package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pollwise/internal/domain/notification"
	"pollwise/internal/repository"
	"pollwise/pkg/logger"
)

// NotificationService owns the pending-notification queue: lifecycle events
// enqueue, the flush job delivers. Delivery failures are retried with a
// one-hour backoff and dropped after three attempts; they are logged, never
// surfaced to end users.
type NotificationService struct {
	repo         repository.NotificationRepository
	settingsRepo repository.SettingsRepository
	winnerRepo   repository.WinnerRepository
	mailer       Mailer
	logger       *logger.Logger
}

func NewNotificationService(repo repository.NotificationRepository, settingsRepo repository.SettingsRepository, winnerRepo repository.WinnerRepository, mailer Mailer, l *logger.Logger) *NotificationService {
	return &NotificationService{
		repo:         repo,
		settingsRepo: settingsRepo,
		winnerRepo:   winnerRepo,
		mailer:       mailer,
		logger:       l,
	}
}

// Enqueue queues a notification for a specific recipient.
func (s *NotificationService) Enqueue(ctx context.Context, kind notification.Kind, pollID uuid.NullUUID, recipient, subject, body string) error {
	if recipient == "" {
		return nil
	}
	return s.repo.Enqueue(ctx, &notification.PendingNotification{
		ID:          uuid.New(),
		Kind:        kind,
		PollID:      pollID,
		Recipient:   recipient,
		Subject:     subject,
		Body:        body,
		Status:      notification.StatusPending,
		ScheduledAt: time.Now(),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	})
}

// EnqueueAdmin queues a notification for the configured admin recipient,
// honoring the global notification toggle.
func (s *NotificationService) EnqueueAdmin(ctx context.Context, kind notification.Kind, pollID uuid.UUID, subject, body string) error {
	cfg, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	if !cfg.NotifyEnabled || cfg.NotifyRecipient == "" {
		return nil
	}
	return s.Enqueue(ctx, kind, uuid.NullUUID{UUID: pollID, Valid: true}, cfg.NotifyRecipient, subject, body)
}

// FlushDue delivers every queued notification whose scheduled time has
// arrived. Returns how many were sent and how many were dropped for good.
func (s *NotificationService) FlushDue(ctx context.Context, now time.Time) (sent, dropped int, err error) {
	due, err := s.repo.GetDue(ctx, now, 100)
	if err != nil {
		return 0, 0, err
	}

	for _, n := range due {
		if sendErr := s.mailer.Send(ctx, n.Recipient, n.Subject, n.Body); sendErr != nil {
			if s.logger != nil {
				s.logger.Errorf("notification %s delivery failed (attempt %d): %v", n.ID, n.Attempts+1, sendErr)
			}
			if n.Attempts+1 >= notification.MaxAttempts {
				_ = s.repo.MarkFailed(ctx, n.ID, sendErr.Error())
				dropped++
			} else {
				_ = s.repo.Reschedule(ctx, n.ID, now.Add(notification.RetryDelay), sendErr.Error())
			}
			continue
		}

		if err := s.repo.MarkSent(ctx, n.ID); err != nil {
			continue
		}
		sent++

		if n.Kind == notification.KindWinnerAnnounced && n.PollID.Valid && s.winnerRepo != nil {
			_ = s.winnerRepo.MarkNotified(ctx, n.PollID.UUID)
		}
	}
	return sent, dropped, nil
}
