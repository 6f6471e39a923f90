package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"pollwise/internal/domain/contest"
	"pollwise/internal/domain/notification"
	"pollwise/internal/domain/vote"
)

func TestEnqueueAdminHonorsToggle(t *testing.T) {
	env := newTestEnv(t)
	svc := NewNotificationService(env.notifRepo, env.settingsRepo, env.winnerRepo, &fakeMailer{}, nil)
	ctx := context.Background()

	// No recipient configured: nothing is queued.
	if err := svc.EnqueueAdmin(ctx, notification.KindPollSubmitted, uuid.New(), "s", "b"); err != nil {
		t.Fatalf("EnqueueAdmin failed: %v", err)
	}
	due, _ := env.notifRepo.GetDue(ctx, time.Now().Add(time.Second), 10)
	if len(due) != 0 {
		t.Fatalf("queued = %+v, want empty without recipient", due)
	}

	cfg, _ := env.settingsRepo.Get(ctx)
	cfg.NotifyRecipient = "admin@example.com"
	cfg.NotifyEnabled = false
	if err := env.settingsRepo.Save(ctx, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := svc.EnqueueAdmin(ctx, notification.KindPollSubmitted, uuid.New(), "s", "b"); err != nil {
		t.Fatalf("EnqueueAdmin failed: %v", err)
	}
	due, _ = env.notifRepo.GetDue(ctx, time.Now().Add(time.Second), 10)
	if len(due) != 0 {
		t.Fatalf("queued = %+v, want empty while notifications are off", due)
	}

	cfg.NotifyEnabled = true
	if err := env.settingsRepo.Save(ctx, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := svc.EnqueueAdmin(ctx, notification.KindPollSubmitted, uuid.New(), "s", "b"); err != nil {
		t.Fatalf("EnqueueAdmin failed: %v", err)
	}
	due, _ = env.notifRepo.GetDue(ctx, time.Now().Add(time.Second), 10)
	if len(due) != 1 || due[0].Recipient != "admin@example.com" {
		t.Errorf("queued = %+v, want one for the configured recipient", due)
	}
}

func TestFlushDueDelivers(t *testing.T) {
	env := newTestEnv(t)
	mailer := &fakeMailer{}
	svc := NewNotificationService(env.notifRepo, env.settingsRepo, env.winnerRepo, mailer, nil)
	ctx := context.Background()
	now := time.Now()

	if err := svc.Enqueue(ctx, notification.KindManagerInvite, uuid.NullUUID{}, "a@example.com", "s", "b"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := svc.Enqueue(ctx, notification.KindManagerInvite, uuid.NullUUID{}, "b@example.com", "s", "b"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	sent, dropped, err := svc.FlushDue(ctx, now.Add(time.Second))
	if err != nil {
		t.Fatalf("FlushDue failed: %v", err)
	}
	if sent != 2 || dropped != 0 {
		t.Errorf("sent/dropped = %d/%d, want 2/0", sent, dropped)
	}
	if got := mailer.sentTo(); len(got) != 2 {
		t.Errorf("deliveries = %v, want both recipients", got)
	}

	// Queue drained.
	due, _ := env.notifRepo.GetDue(ctx, now.Add(time.Minute), 10)
	if len(due) != 0 {
		t.Errorf("queue after flush = %+v, want empty", due)
	}
}

func TestFlushDueRetriesThenDrops(t *testing.T) {
	env := newTestEnv(t)
	mailer := &fakeMailer{fail: true, err: errors.New("smtp down")}
	svc := NewNotificationService(env.notifRepo, env.settingsRepo, env.winnerRepo, mailer, nil)
	ctx := context.Background()
	now := time.Now()

	if err := svc.Enqueue(ctx, notification.KindManagerInvite, uuid.NullUUID{}, "a@example.com", "s", "b"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	// First two failures reschedule with a one-hour backoff.
	at := now
	for attempt := 1; attempt < notification.MaxAttempts; attempt++ {
		at = at.Add(notification.RetryDelay + time.Second)
		sent, dropped, err := svc.FlushDue(ctx, at)
		if err != nil {
			t.Fatalf("FlushDue failed: %v", err)
		}
		if sent != 0 || dropped != 0 {
			t.Fatalf("attempt %d: sent/dropped = %d/%d, want 0/0", attempt, sent, dropped)
		}
		// Not due again until the backoff elapses.
		due, _ := env.notifRepo.GetDue(ctx, at, 10)
		if len(due) != 0 {
			t.Fatalf("attempt %d: still due immediately after reschedule", attempt)
		}
	}

	// Third failure drops it for good.
	at = at.Add(notification.RetryDelay + time.Second)
	sent, dropped, err := svc.FlushDue(ctx, at)
	if err != nil {
		t.Fatalf("FlushDue failed: %v", err)
	}
	if sent != 0 || dropped != 1 {
		t.Errorf("final attempt: sent/dropped = %d/%d, want 0/1", sent, dropped)
	}
	due, _ := env.notifRepo.GetDue(ctx, at.Add(24*time.Hour), 10)
	if len(due) != 0 {
		t.Errorf("queue after drop = %+v, want empty", due)
	}
}

func TestFlushDueMarksWinnerNotified(t *testing.T) {
	env := newTestEnv(t)
	svc := NewNotificationService(env.notifRepo, env.settingsRepo, env.winnerRepo, &fakeMailer{}, nil)
	ctx := context.Background()

	pollID := uuid.New()
	w := contest.Winner{
		ID:            uuid.New(),
		PollID:        pollID,
		VoterID:       uuid.New(),
		WinningOption: vote.OptionA,
		WinningVotes:  1,
		Status:        contest.WinnerAnnounced,
		AnnouncedAt:   time.Now(),
	}
	if err := env.winnerRepo.Create(ctx, &w); err != nil {
		t.Fatalf("winner Create failed: %v", err)
	}

	if err := svc.Enqueue(ctx, notification.KindWinnerAnnounced,
		uuid.NullUUID{UUID: pollID, Valid: true}, "winner@example.com", "You won!", "b"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if _, _, err := svc.FlushDue(ctx, time.Now().Add(time.Second)); err != nil {
		t.Fatalf("FlushDue failed: %v", err)
	}

	got, err := env.winnerRepo.GetByPollID(ctx, pollID)
	if err != nil {
		t.Fatalf("GetByPollID failed: %v", err)
	}
	if got.Status != contest.WinnerNotified {
		t.Errorf("winner status = %s, want notified after delivery", got.Status)
	}
}
