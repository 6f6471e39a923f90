package repository

import (
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
)

// setupTestDB opens an isolated in-memory SQLite database with the full
// schema. TranslateError keeps duplicate-key detection working the same way
// it does against Postgres.
func setupTestDB(t *testing.T) *gorm.DB {
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
	// One connection, or each pool connection gets its own empty :memory: db.
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
	return db
}

func newTestPoll(status poll.Status) poll.Poll {
	now := time.Now()
	return poll.Poll{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Question:  "Coffee or tea?",
		OptionA:   "Coffee",
		OptionB:   "Tea",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestVote(pollID uuid.UUID, option vote.Option, voterKey string) vote.Vote {
	return vote.Vote{
		ID:        uuid.New(),
		PollID:    pollID,
		VoterKey:  voterKey,
		Option:    option,
		IPAddress: "198.51.100.7",
		CreatedAt: time.Now(),
	}
}
