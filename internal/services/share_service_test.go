package services

import (
	"context"
	"errors"
	"testing"

	"pollwise/internal/domain/poll"
	"pollwise/internal/domain/share"
	pollwise_errors "pollwise/pkg/errors"
)

func TestRecordShareValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewShareService(env.pollRepo, env.shareRepo, env.settingsRepo)
	ctx := context.Background()

	p := env.createPoll(t, nil)
	pending := env.createPoll(t, func(p *poll.Poll) { p.Status = poll.StatusPending })

	if _, err := svc.Record(ctx, RecordShareInput{PollID: p.ID, Platform: "myspace"}); !errors.Is(err, pollwise_errors.ErrInvalidPlatform) {
		t.Errorf("unknown platform: got %v, want ErrInvalidPlatform", err)
	}
	// Telegram is off by default.
	if _, err := svc.Record(ctx, RecordShareInput{PollID: p.ID, Platform: share.PlatformTelegram}); !errors.Is(err, pollwise_errors.ErrInvalidPlatform) {
		t.Errorf("disabled platform: got %v, want ErrInvalidPlatform", err)
	}
	if _, err := svc.Record(ctx, RecordShareInput{PollID: pending.ID, Platform: share.PlatformTwitter}); !errors.Is(err, pollwise_errors.ErrNotFound) {
		t.Errorf("pending poll: got %v, want ErrNotFound", err)
	}
}

func TestShareCountsAccumulate(t *testing.T) {
	env := newTestEnv(t)
	svc := NewShareService(env.pollRepo, env.shareRepo, env.settingsRepo)
	ctx := context.Background()

	p := env.createPoll(t, nil)
	for _, platform := range []share.Platform{share.PlatformFacebook, share.PlatformFacebook, share.PlatformTwitter} {
		if _, err := svc.Record(ctx, RecordShareInput{PollID: p.ID, Platform: platform, IPAddress: "10.0.0.1"}); err != nil {
			t.Fatalf("Record(%s) failed: %v", platform, err)
		}
	}

	counts, err := svc.CountByPlatform(ctx, p.ID)
	if err != nil {
		t.Fatalf("CountByPlatform failed: %v", err)
	}
	if counts[share.PlatformFacebook] != 2 || counts[share.PlatformTwitter] != 1 {
		t.Errorf("counts = %v, want facebook 2 twitter 1", counts)
	}
}
