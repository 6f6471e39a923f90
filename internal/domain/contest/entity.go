package contest

import (
	"time"

	"github.com/google/uuid"

	"pollwise/internal/domain/vote"
)

// WinnerStatus tracks whether the winner has been notified yet.
type WinnerStatus string

const (
	WinnerAnnounced WinnerStatus = "announced"
	WinnerNotified  WinnerStatus = "notified"
)

// Winner represents the contest_winners table. The unique index on poll_id
// makes "at most one winner per contest" a hard invariant: the loser of a
// concurrent double-announce gets a duplicate-key error.
type Winner struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	PollID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex"`
	VoterID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	Prize         string       `gorm:"type:text"`
	WinningOption vote.Option  `gorm:"type:varchar(16);not null"`
	WinningVotes  int64        `gorm:"not null"`
	Status        WinnerStatus `gorm:"type:varchar(20);not null;default:'announced'"`
	AnnouncedAt   time.Time
}

func (Winner) TableName() string {
	return "contest_winners"
}
