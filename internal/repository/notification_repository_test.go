package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"pollwise/internal/domain/notification"
)

func newPendingNotification(scheduledAt time.Time) notification.PendingNotification {
	return notification.PendingNotification{
		ID:          uuid.New(),
		Kind:        notification.KindPollSubmitted,
		Recipient:   "admin@example.com",
		Subject:     "subject",
		Body:        "body",
		Status:      notification.StatusPending,
		ScheduledAt: scheduledAt,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestNotificationRepositoryGetDue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	now := time.Now()

	due := newPendingNotification(now.Add(-time.Minute))
	future := newPendingNotification(now.Add(time.Hour))
	exhausted := newPendingNotification(now.Add(-time.Minute))
	exhausted.Attempts = notification.MaxAttempts

	for _, n := range []*notification.PendingNotification{&due, &future, &exhausted} {
		if err := repo.Enqueue(ctx, n); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	got, err := repo.GetDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("GetDue failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != due.ID {
		t.Errorf("GetDue = %+v, want only %s", got, due.ID)
	}

	// Sent notifications drop out of the queue.
	if err := repo.MarkSent(ctx, due.ID); err != nil {
		t.Fatalf("MarkSent failed: %v", err)
	}
	got, _ = repo.GetDue(ctx, now, 10)
	if len(got) != 0 {
		t.Errorf("GetDue after MarkSent = %+v, want empty", got)
	}
}

func TestNotificationRepositoryRetryAccounting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	now := time.Now()

	n := newPendingNotification(now.Add(-time.Minute))
	if err := repo.Enqueue(ctx, &n); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if err := repo.Reschedule(ctx, n.ID, now.Add(time.Hour), "boom"); err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}

	var got notification.PendingNotification
	if err := db.First(&got, "id = ?", n.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Attempts != 1 || got.LastError != "boom" || got.Status != notification.StatusPending {
		t.Errorf("after reschedule: %+v, want attempts=1 last_error=boom pending", got)
	}

	if err := repo.MarkFailed(ctx, n.ID, "boom again"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}
	if err := db.First(&got, "id = ?", n.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Status != notification.StatusFailed || got.Attempts != 2 {
		t.Errorf("after fail: %+v, want failed with attempts=2", got)
	}
}
