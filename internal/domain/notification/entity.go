package notification

import (
	"time"

	"github.com/google/uuid"
)

// Status is the processing state of a queued notification.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Kind tags the lifecycle event a notification belongs to.
type Kind string

const (
	KindPollSubmitted   Kind = "poll_submitted"
	KindWeeklyCreated   Kind = "weekly_created"
	KindContestClosed   Kind = "contest_closed"
	KindWinnerAnnounced Kind = "winner_announced"
	KindManagerInvite   Kind = "manager_invite"
)

const (
	// MaxAttempts is the delivery attempt cap; a notification is marked
	// failed after the third unsuccessful attempt.
	MaxAttempts = 3
	// RetryDelay is added to scheduled_at after each failed attempt.
	RetryDelay = time.Hour
)

// PendingNotification represents the pending_notifications table.
type PendingNotification struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Kind        Kind          `gorm:"type:varchar(32);not null"`
	PollID      uuid.NullUUID `gorm:"type:uuid;index"`
	Recipient   string        `gorm:"type:varchar(255);not null"`
	Subject     string        `gorm:"type:varchar(255);not null"`
	Body        string        `gorm:"type:text"`
	Status      Status        `gorm:"type:varchar(20);not null;index;default:'pending'"`
	ScheduledAt time.Time     `gorm:"index"`
	Attempts    int           `gorm:"default:0"`
	LastError   string        `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PendingNotification) TableName() string {
	return "pending_notifications"
}
