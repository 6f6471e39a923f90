package services

import (
	"context"
	"sync"
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
)

// testEnv wires real repositories over an in-memory SQLite database, so
// service tests exercise the same constraint behavior the Postgres schema
// enforces.
type testEnv struct {
	db           *gorm.DB
	pollRepo     repository.PollRepository
	voteRepo     repository.VoteRepository
	shareRepo    repository.ShareRepository
	winnerRepo   repository.WinnerRepository
	notifRepo    repository.NotificationRepository
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
}

func newTestEnv(t *testing.T) *testEnv {
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

	return &testEnv{
		db:           db,
		pollRepo:     repository.NewPollRepository(db),
		voteRepo:     repository.NewVoteRepository(db),
		shareRepo:    repository.NewShareRepository(db),
		winnerRepo:   repository.NewWinnerRepository(db),
		notifRepo:    repository.NewNotificationRepository(db),
		userRepo:     repository.NewUserRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
	}
}

func (e *testEnv) createUser(t *testing.T, username, role string) user.User {
	t.Helper()
	u := user.User{
		ID:           uuid.New(),
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := e.userRepo.Create(context.Background(), &u); err != nil {
		t.Fatalf("create user %s failed: %v", username, err)
	}
	return u
}

func (e *testEnv) createPoll(t *testing.T, mutate func(*poll.Poll)) poll.Poll {
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

// fakeMailer records deliveries and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	fail bool
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *fakeMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}
