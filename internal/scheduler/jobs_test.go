package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pollwise/internal/domain/contest"
	"pollwise/internal/domain/notification"
	"pollwise/internal/domain/poll"
	"pollwise/internal/domain/settings"
	"pollwise/internal/domain/share"
	"pollwise/internal/domain/user"
	"pollwise/internal/domain/vote"
	"pollwise/internal/repository"
	"pollwise/internal/services"
	pollwise_errors "pollwise/pkg/errors"
)

type jobsEnv struct {
	db           *gorm.DB
	pollRepo     repository.PollRepository
	voteRepo     repository.VoteRepository
	shareRepo    repository.ShareRepository
	winnerRepo   repository.WinnerRepository
	userRepo     repository.UserRepository
	notifRepo    repository.NotificationRepository
	settingsRepo repository.SettingsRepository
	jobs         *Jobs
}

type sinkMailer struct{}

func (sinkMailer) Send(context.Context, string, string, string) error { return nil }

func newJobsEnv(t *testing.T) *jobsEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&user.User{},
		&user.RoleInvitation{},
		&user.PopupDismissal{},
		&poll.Poll{},
		&vote.Vote{},
		&share.ShareEvent{},
		&contest.Winner{},
		&notification.PendingNotification{},
		&settings.Settings{},
	); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	env := &jobsEnv{
		db:           db,
		pollRepo:     repository.NewPollRepository(db),
		voteRepo:     repository.NewVoteRepository(db),
		shareRepo:    repository.NewShareRepository(db),
		winnerRepo:   repository.NewWinnerRepository(db),
		userRepo:     repository.NewUserRepository(db),
		notifRepo:    repository.NewNotificationRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
	}

	notifications := services.NewNotificationService(env.notifRepo, env.settingsRepo, env.winnerRepo, sinkMailer{}, nil)
	polls := services.NewPollService(env.pollRepo, env.userRepo, notifications)
	contests := services.NewContestService(env.pollRepo, env.voteRepo, env.winnerRepo, env.userRepo, notifications,
		rand.New(rand.NewSource(1)))

	env.jobs = NewJobs(env.pollRepo, env.voteRepo, env.shareRepo, env.winnerRepo, env.userRepo, env.settingsRepo,
		polls, contests, notifications, "admin", nil)
	return env
}

func (e *jobsEnv) seedAdmin(t *testing.T) user.User {
	t.Helper()
	u := user.User{
		ID:           uuid.New(),
		Email:        "admin@example.com",
		Username:     "admin",
		PasswordHash: "x",
		Role:         user.RoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := e.userRepo.Create(context.Background(), &u); err != nil {
		t.Fatalf("seed admin failed: %v", err)
	}
	return u
}

func (e *jobsEnv) createPoll(t *testing.T, mutate func(*poll.Poll)) poll.Poll {
	t.Helper()
	p := poll.Poll{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Question:  "Coffee or tea?",
		OptionA:   "Coffee",
		OptionB:   "Tea",
		Status:    poll.StatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if mutate != nil {
		mutate(&p)
	}
	if err := e.pollRepo.Create(context.Background(), &p); err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	return p
}

func (e *jobsEnv) saveSettings(t *testing.T, mutate func(*settings.Settings)) {
	t.Helper()
	ctx := context.Background()
	cfg, err := e.settingsRepo.Get(ctx)
	if err != nil {
		t.Fatalf("settings Get failed: %v", err)
	}
	mutate(&cfg)
	if err := e.settingsRepo.Save(ctx, cfg); err != nil {
		t.Fatalf("settings Save failed: %v", err)
	}
}

func TestRotateWeeklyArchivesAndCreates(t *testing.T) {
	env := newJobsEnv(t)
	ctx := context.Background()
	now := time.Now()

	env.seedAdmin(t)
	env.saveSettings(t, func(s *settings.Settings) {
		s.WeeklyAutoCreate = true
		s.WeeklyQuestionPool = "Cats or dogs?|Cats|Dogs\nRain or shine?|Rain|Shine"
		s.NotifyRecipient = "admin@example.com"
	})

	stale := env.createPoll(t, func(p *poll.Poll) {
		p.IsWeekly = true
		p.CreatedAt = now.Add(-8 * 24 * time.Hour)
	})

	if err := env.jobs.RotateWeekly(ctx, now); err != nil {
		t.Fatalf("RotateWeekly failed: %v", err)
	}

	old, err := env.pollRepo.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if old.IsWeekly || old.Status != poll.StatusArchived {
		t.Errorf("stale weekly = %s/weekly=%v, want archived and unflagged", old.Status, old.IsWeekly)
	}

	current, err := env.pollRepo.GetLatestActive(ctx, poll.KindWeekly)
	if err != nil {
		t.Fatalf("no weekly poll after rotation: %v", err)
	}
	if current.ID == stale.ID {
		t.Error("rotation kept the stale poll as weekly")
	}

	// Rerun within the same week is a no-op.
	if err := env.jobs.RotateWeekly(ctx, now.Add(time.Hour)); err != nil {
		t.Fatalf("second RotateWeekly failed: %v", err)
	}
	again, _ := env.pollRepo.GetLatestActive(ctx, poll.KindWeekly)
	if again.ID != current.ID {
		t.Errorf("rerun replaced the weekly poll: %s -> %s", current.ID, again.ID)
	}

	due, _ := env.notifRepo.GetDue(ctx, now.Add(time.Minute), 10)
	var rotated int
	for _, n := range due {
		if n.Kind == notification.KindWeeklyCreated {
			rotated++
		}
	}
	if rotated != 1 {
		t.Errorf("weekly_created notifications = %d, want 1", rotated)
	}
}

func TestRotateWeeklyRespectsAutoCreateToggle(t *testing.T) {
	env := newJobsEnv(t)
	ctx := context.Background()

	env.seedAdmin(t)
	// Auto-create is off by default: nothing appears.
	if err := env.jobs.RotateWeekly(ctx, time.Now()); err != nil {
		t.Fatalf("RotateWeekly failed: %v", err)
	}
	if _, err := env.pollRepo.GetLatestActive(ctx, poll.KindWeekly); !errors.Is(err, pollwise_errors.ErrNotFound) {
		t.Errorf("weekly lookup: got %v, want ErrNotFound with auto-create off", err)
	}
}

func TestCloseContestsEndsAndAnnounces(t *testing.T) {
	env := newJobsEnv(t)
	ctx := context.Background()
	now := time.Now()

	env.saveSettings(t, func(s *settings.Settings) { s.NotifyRecipient = "admin@example.com" })

	expired := env.createPoll(t, func(p *poll.Poll) {
		p.IsContest = true
		p.ContestEndsAt = sql.NullTime{Time: now.Add(-time.Hour), Valid: true}
	})
	voter := uuid.New()
	v := vote.Vote{
		ID:        uuid.New(),
		PollID:    expired.ID,
		VoterID:   uuid.NullUUID{UUID: voter, Valid: true},
		VoterKey:  vote.KeyForUser(voter),
		Option:    vote.OptionA,
		CreatedAt: now,
	}
	if err := env.voteRepo.Create(ctx, &v); err != nil {
		t.Fatalf("vote Create failed: %v", err)
	}

	empty := env.createPoll(t, func(p *poll.Poll) {
		p.IsContest = true
		p.ContestEndsAt = sql.NullTime{Time: now.Add(-time.Hour), Valid: true}
	})
	running := env.createPoll(t, func(p *poll.Poll) {
		p.IsContest = true
		p.ContestEndsAt = sql.NullTime{Time: now.Add(time.Hour), Valid: true}
	})

	if err := env.jobs.CloseContests(ctx, now); err != nil {
		t.Fatalf("CloseContests failed: %v", err)
	}

	got, _ := env.pollRepo.GetByID(ctx, expired.ID)
	if got.Status != poll.StatusEnded {
		t.Errorf("expired contest status = %s, want ended", got.Status)
	}
	w, err := env.winnerRepo.GetByPollID(ctx, expired.ID)
	if err != nil {
		t.Fatalf("winner not drawn: %v", err)
	}
	if w.VoterID != voter {
		t.Errorf("winner = %s, want the only voter %s", w.VoterID, voter)
	}

	// Voteless contest ends without a winner.
	got, _ = env.pollRepo.GetByID(ctx, empty.ID)
	if got.Status != poll.StatusEnded {
		t.Errorf("voteless contest status = %s, want ended", got.Status)
	}
	if exists, _ := env.winnerRepo.Exists(ctx, empty.ID); exists {
		t.Error("voteless contest got a winner")
	}

	// Future deadline untouched.
	got, _ = env.pollRepo.GetByID(ctx, running.ID)
	if got.Status != poll.StatusActive {
		t.Errorf("running contest status = %s, want active", got.Status)
	}
}

func TestCloseContestsHonorsAutoAnnounceToggle(t *testing.T) {
	env := newJobsEnv(t)
	ctx := context.Background()
	now := time.Now()

	env.saveSettings(t, func(s *settings.Settings) { s.ContestAutoAnnounce = false })

	p := env.createPoll(t, func(p *poll.Poll) {
		p.IsContest = true
		p.ContestEndsAt = sql.NullTime{Time: now.Add(-time.Hour), Valid: true}
	})
	voter := uuid.New()
	v := vote.Vote{
		ID:       uuid.New(),
		PollID:   p.ID,
		VoterID:  uuid.NullUUID{UUID: voter, Valid: true},
		VoterKey: vote.KeyForUser(voter),
		Option:   vote.OptionA,
	}
	if err := env.voteRepo.Create(ctx, &v); err != nil {
		t.Fatalf("vote Create failed: %v", err)
	}

	if err := env.jobs.CloseContests(ctx, now); err != nil {
		t.Fatalf("CloseContests failed: %v", err)
	}

	got, _ := env.pollRepo.GetByID(ctx, p.ID)
	if got.Status != poll.StatusEnded {
		t.Errorf("status = %s, want ended", got.Status)
	}
	if exists, _ := env.winnerRepo.Exists(ctx, p.ID); exists {
		t.Error("winner drawn despite auto-announce being off")
	}
}

func TestCleanupRetentionZeroIsNoop(t *testing.T) {
	env := newJobsEnv(t)
	ctx := context.Background()

	env.saveSettings(t, func(s *settings.Settings) { s.RetentionDays = 0 })
	ancient := env.createPoll(t, func(p *poll.Poll) {
		p.Status = poll.StatusArchived
		p.CreatedAt = time.Now().AddDate(-3, 0, 0)
	})

	if err := env.jobs.CleanupRetention(ctx, time.Now()); err != nil {
		t.Fatalf("CleanupRetention failed: %v", err)
	}
	if _, err := env.pollRepo.GetByID(ctx, ancient.ID); err != nil {
		t.Errorf("poll removed with retention disabled: %v", err)
	}
}

func TestCleanupRetentionCascades(t *testing.T) {
	env := newJobsEnv(t)
	ctx := context.Background()
	now := time.Now()

	env.saveSettings(t, func(s *settings.Settings) { s.RetentionDays = 30 })

	old := env.createPoll(t, func(p *poll.Poll) {
		p.Status = poll.StatusArchived
		p.CreatedAt = now.AddDate(0, 0, -60)
	})
	v := vote.Vote{ID: uuid.New(), PollID: old.ID, VoterKey: vote.KeyForIP("10.0.0.1"), Option: vote.OptionA}
	if err := env.voteRepo.Create(ctx, &v); err != nil {
		t.Fatalf("vote Create failed: %v", err)
	}
	e := share.ShareEvent{ID: uuid.New(), PollID: old.ID, Platform: share.PlatformTwitter, CreatedAt: now}
	if err := env.shareRepo.Create(ctx, &e); err != nil {
		t.Fatalf("share Create failed: %v", err)
	}
	w := contest.Winner{ID: uuid.New(), PollID: old.ID, VoterID: uuid.New(), WinningOption: vote.OptionA, WinningVotes: 1, Status: contest.WinnerAnnounced}
	if err := env.winnerRepo.Create(ctx, &w); err != nil {
		t.Fatalf("winner Create failed: %v", err)
	}

	// These survive: recent archived, old but soft-deleted, old but active.
	recent := env.createPoll(t, func(p *poll.Poll) {
		p.Status = poll.StatusArchived
		p.CreatedAt = now.AddDate(0, 0, -5)
	})
	softDeleted := env.createPoll(t, func(p *poll.Poll) {
		p.Status = poll.StatusDeleted
		p.CreatedAt = now.AddDate(0, 0, -60)
	})
	active := env.createPoll(t, func(p *poll.Poll) {
		p.CreatedAt = now.AddDate(0, 0, -60)
	})

	// Expired invitation swept alongside.
	inv := user.RoleInvitation{
		Token:     uuid.New(),
		Email:     "late@example.com",
		Role:      user.RolePollManager,
		InvitedBy: uuid.New(),
		ExpiresAt: now.Add(-time.Hour),
		CreatedAt: now.AddDate(0, 0, -8),
	}
	if err := env.userRepo.CreateInvitation(ctx, &inv); err != nil {
		t.Fatalf("CreateInvitation failed: %v", err)
	}

	if err := env.jobs.CleanupRetention(ctx, now); err != nil {
		t.Fatalf("CleanupRetention failed: %v", err)
	}

	if _, err := env.pollRepo.GetByID(ctx, old.ID); !errors.Is(err, pollwise_errors.ErrNotFound) {
		t.Errorf("old archived poll: got %v, want ErrNotFound", err)
	}
	countA, countB, err := env.voteRepo.CountByOption(ctx, old.ID)
	if err != nil || countA+countB != 0 {
		t.Errorf("votes after cleanup = %d/%d, %v; want none", countA, countB, err)
	}
	shares, err := env.shareRepo.CountByPlatform(ctx, old.ID)
	if err != nil || len(shares) != 0 {
		t.Errorf("shares after cleanup = %v, %v; want none", shares, err)
	}
	if exists, _ := env.winnerRepo.Exists(ctx, old.ID); exists {
		t.Error("winner row survived cleanup")
	}

	for _, keep := range []uuid.UUID{recent.ID, softDeleted.ID, active.ID} {
		if _, err := env.pollRepo.GetByID(ctx, keep); err != nil {
			t.Errorf("poll %s removed by cleanup: %v", keep, err)
		}
	}

	if _, err := env.userRepo.GetInvitation(ctx, inv.Token); !errors.Is(err, pollwise_errors.ErrNotFound) {
		t.Errorf("expired invitation: got %v, want ErrNotFound", err)
	}
}

func TestRunnerRecordsRuns(t *testing.T) {
	r := NewRunner(nil)
	var runs atomic.Int32
	r.Register(Job{Name: "tick", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}})
	r.Register(Job{Name: "boom", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
		return errors.New("broken")
	}})

	r.Start()
	time.Sleep(30 * time.Millisecond)
	r.Stop()

	if runs.Load() == 0 {
		t.Fatal("job never ran")
	}

	entries := r.Log().Entries()
	if len(entries) == 0 {
		t.Fatal("no runs recorded")
	}
	var sawTick, sawBoom bool
	for _, e := range entries {
		switch e.Job {
		case "tick":
			sawTick = true
			if e.Error != "" {
				t.Errorf("tick recorded error %q", e.Error)
			}
		case "boom":
			sawBoom = true
			if e.Error != "broken" {
				t.Errorf("boom error = %q, want broken", e.Error)
			}
		}
	}
	if !sawTick || !sawBoom {
		t.Errorf("log entries missing jobs: tick=%v boom=%v", sawTick, sawBoom)
	}
}

func TestJobLogRollsOver(t *testing.T) {
	l := NewJobLog(3)
	for i := 0; i < 5; i++ {
		l.Record(LogEntry{Job: fmt.Sprintf("run%d", i)})
	}
	entries := l.Entries()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want capped at 3", len(entries))
	}
	if entries[0].Job != "run4" || entries[2].Job != "run2" {
		t.Errorf("entries = %v, want most recent first (run4..run2)", entries)
	}
}
