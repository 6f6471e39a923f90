package poll

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a poll.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusEnded    Status = "ended"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// Kind filters polls by type in list queries.
type Kind string

const (
	KindRegular Kind = "regular"
	KindWeekly  Kind = "weekly"
	KindContest Kind = "contest"
)

// Poll represents the polls table. Every poll has exactly two options;
// votes reference them by the option_a/option_b tags.
type Poll struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Question      string    `gorm:"type:varchar(255);not null"`
	OptionA       string    `gorm:"type:varchar(50);not null"`
	OptionB       string    `gorm:"type:varchar(50);not null"`
	ImageURL      string    `gorm:"type:text"`
	IsWeekly      bool      `gorm:"index"`
	IsContest     bool      `gorm:"index"`
	ContestPrize  string    `gorm:"type:text"`
	ContestEndsAt sql.NullTime
	Status        Status    `gorm:"type:varchar(20);not null;index;default:'pending'"`
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

func (Poll) TableName() string {
	return "polls"
}

var validTransitions = map[Status][]Status{
	StatusPending:  {StatusActive, StatusDeleted},
	StatusActive:   {StatusEnded, StatusArchived, StatusDeleted},
	StatusEnded:    {StatusArchived, StatusDeleted},
	StatusArchived: {StatusActive, StatusDeleted},
}

// CanTransition reports whether a poll may move from one status to another.
// Deleted is terminal.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s is one of the known lifecycle states.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusActive, StatusEnded, StatusArchived, StatusDeleted:
		return true
	}
	return false
}
