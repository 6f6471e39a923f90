package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pollwise/internal/domain/notification"
	"pollwise/internal/domain/poll"
	"pollwise/internal/domain/settings"
	"pollwise/internal/repository"
	"pollwise/internal/services"
	pollwise_errors "pollwise/pkg/errors"
	"pollwise/pkg/logger"
)

// weeklyMaxAge is how long a weekly poll stays current before rotation
// archives it.
const weeklyMaxAge = 7 * 24 * time.Hour

// Jobs holds the periodic maintenance routines. Each one is idempotent:
// running it twice in the same period does no extra work.
type Jobs struct {
	pollRepo      repository.PollRepository
	voteRepo      repository.VoteRepository
	shareRepo     repository.ShareRepository
	winnerRepo    repository.WinnerRepository
	userRepo      repository.UserRepository
	settingsRepo  repository.SettingsRepository
	polls         *services.PollService
	contests      *services.ContestService
	notifications *services.NotificationService
	adminUsername string
	logger        *logger.Logger
}

func NewJobs(
	pollRepo repository.PollRepository,
	voteRepo repository.VoteRepository,
	shareRepo repository.ShareRepository,
	winnerRepo repository.WinnerRepository,
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	polls *services.PollService,
	contests *services.ContestService,
	notifications *services.NotificationService,
	adminUsername string,
	l *logger.Logger,
) *Jobs {
	return &Jobs{
		pollRepo:      pollRepo,
		voteRepo:      voteRepo,
		shareRepo:     shareRepo,
		winnerRepo:    winnerRepo,
		userRepo:      userRepo,
		settingsRepo:  settingsRepo,
		polls:         polls,
		contests:      contests,
		notifications: notifications,
		adminUsername: adminUsername,
		logger:        l,
	}
}

// RotateWeekly archives weekly polls older than a week and, when auto-create
// is enabled and no active weekly poll remains, creates the next one from
// the configured question pool.
func (j *Jobs) RotateWeekly(ctx context.Context, now time.Time) error {
	cfg, err := j.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}

	stale, err := j.pollRepo.GetStaleWeekly(ctx, now.Add(-weeklyMaxAge))
	if err != nil {
		return err
	}
	for _, p := range stale {
		// Clear the flag together with the archive so no archived poll is
		// ever the weekly one.
		if err := j.pollRepo.UpdateFields(ctx, p.ID, map[string]any{
			"is_weekly": false,
			"status":    poll.StatusArchived,
		}); err != nil {
			return err
		}
	}

	if _, err := j.pollRepo.GetLatestActive(ctx, poll.KindWeekly); err == nil {
		return nil
	} else if !errors.Is(err, pollwise_errors.ErrNotFound) {
		return err
	}
	if !cfg.WeeklyAutoCreate {
		return nil
	}

	entry := j.pickPoolEntry(cfg, now)
	owner, err := j.userRepo.GetByUsername(ctx, j.adminUsername)
	if err != nil {
		return fmt.Errorf("weekly rotation: resolving owner %q: %w", j.adminUsername, err)
	}

	p, err := j.polls.Create(ctx, services.CreatePollInput{
		OwnerID:  owner.ID,
		Question: entry.Question,
		OptionA:  entry.OptionA,
		OptionB:  entry.OptionB,
		IsWeekly: true,
		Status:   poll.StatusActive,
	})
	if err != nil {
		return err
	}
	if err := j.polls.MakeWeekly(ctx, p.ID); err != nil {
		return err
	}

	if j.notifications != nil {
		_ = j.notifications.EnqueueAdmin(ctx, notification.KindWeeklyCreated, p.ID,
			"Weekly poll rotated",
			fmt.Sprintf("The weekly poll rotated to %q.", p.Question))
	}
	if j.logger != nil {
		j.logger.Infof("weekly rotation created poll %s (%q)", p.ID, p.Question)
	}
	return nil
}

// pickPoolEntry selects this week's question deterministically, so reruns
// within the same week pick the same entry.
func (j *Jobs) pickPoolEntry(cfg settings.Settings, now time.Time) settings.PoolEntry {
	pool := cfg.ParsePool()
	if len(pool) == 0 {
		return settings.PoolEntry{
			Question: "What's your pick this week?",
			OptionA:  "Option A",
			OptionB:  "Option B",
		}
	}
	year, week := now.ISOWeek()
	return pool[(year*53+week)%len(pool)]
}

// CloseContests ends contests whose deadline has passed and, when
// auto-announce is on, draws their winners. Contests without votes just end.
func (j *Jobs) CloseContests(ctx context.Context, now time.Time) error {
	cfg, err := j.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}

	expired, err := j.pollRepo.GetExpiredContests(ctx, now)
	if err != nil {
		return err
	}

	for _, p := range expired {
		if p.Status == poll.StatusActive {
			if err := j.pollRepo.SetStatus(ctx, p.ID, poll.StatusEnded); err != nil {
				return err
			}
		}

		if cfg.ContestAutoAnnounce {
			if _, err := j.contests.Announce(ctx, p.ID, ""); err != nil &&
				!errors.Is(err, pollwise_errors.ErrNoVotes) &&
				!errors.Is(err, pollwise_errors.ErrWinnerAnnounced) {
				return err
			}
		}

		if j.notifications != nil {
			_ = j.notifications.EnqueueAdmin(ctx, notification.KindContestClosed, p.ID,
				"Contest closed",
				fmt.Sprintf("The contest %q reached its end date and was closed.", p.Question))
		}
	}
	return nil
}

// CleanupRetention hard-deletes archived and ended polls older than the
// retention window, with their votes, shares and winners. A window of 0
// disables cleanup. Expired role invitations and orphaned popup dismissals
// go in the same sweep.
func (j *Jobs) CleanupRetention(ctx context.Context, now time.Time) error {
	cfg, err := j.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	if cfg.RetentionDays <= 0 {
		return nil
	}

	before := now.AddDate(0, 0, -cfg.RetentionDays)
	// Soft-deleted polls are kept for audit; only archived and ended ones
	// age out.
	ids, err := j.pollRepo.HardDeleteOlderThan(ctx,
		[]poll.Status{poll.StatusArchived, poll.StatusEnded}, before)
	if err != nil {
		return err
	}

	if len(ids) > 0 {
		if err := j.voteRepo.DeleteByPollIDs(ctx, ids); err != nil {
			return err
		}
		if err := j.shareRepo.DeleteByPollIDs(ctx, ids); err != nil {
			return err
		}
		if err := j.winnerRepo.DeleteByPollIDs(ctx, ids); err != nil {
			return err
		}
		if j.logger != nil {
			j.logger.Infof("retention removed %d polls older than %s", len(ids), before.Format(time.DateOnly))
		}
	}

	if _, err := j.userRepo.DeleteOrphanDismissals(ctx); err != nil {
		return err
	}
	if _, err := j.userRepo.DeleteExpiredInvitations(ctx, now); err != nil {
		return err
	}
	return nil
}

// FlushNotifications delivers due queued notifications.
func (j *Jobs) FlushNotifications(ctx context.Context, now time.Time) error {
	sent, dropped, err := j.notifications.FlushDue(ctx, now)
	if err != nil {
		return err
	}
	if (sent > 0 || dropped > 0) && j.logger != nil {
		j.logger.Infof("notification flush: %d sent, %d dropped", sent, dropped)
	}
	return nil
}

// RegisterAll wires the four jobs onto a runner with the given intervals.
func (j *Jobs) RegisterAll(r *Runner, weekly, contest, retention, flush time.Duration) {
	r.Register(Job{Name: "weekly_rotation", Interval: weekly, Run: func(ctx context.Context) error {
		return j.RotateWeekly(ctx, time.Now())
	}})
	r.Register(Job{Name: "contest_closure", Interval: contest, Run: func(ctx context.Context) error {
		return j.CloseContests(ctx, time.Now())
	}})
	r.Register(Job{Name: "retention_cleanup", Interval: retention, Run: func(ctx context.Context) error {
		return j.CleanupRetention(ctx, time.Now())
	}})
	r.Register(Job{Name: "notification_flush", Interval: flush, Run: func(ctx context.Context) error {
		return j.FlushNotifications(ctx, time.Now())
	}})
}
