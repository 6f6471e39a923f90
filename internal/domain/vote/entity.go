package vote

import (
	"time"

	"github.com/google/uuid"
)

// Option tags one of a poll's two voteable options.
type Option string

const (
	OptionA Option = "option_a"
	OptionB Option = "option_b"
)

// IsValidOption reports whether o is a voteable option tag.
func IsValidOption(o Option) bool {
	return o == OptionA || o == OptionB
}

// Vote represents the votes table. The unique index on (poll_id, voter_key)
// is the one-vote-per-voter invariant; concurrent duplicate casts are
// resolved by the constraint, not by a pre-check.
type Vote struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	PollID    uuid.UUID     `gorm:"type:uuid;not null;index;uniqueIndex:idx_votes_poll_voter,priority:1"`
	VoterID   uuid.NullUUID `gorm:"type:uuid;index"`
	VoterKey  string        `gorm:"type:varchar(64);not null;uniqueIndex:idx_votes_poll_voter,priority:2"`
	Option    Option        `gorm:"type:varchar(16);not null;index"`
	IPAddress string        `gorm:"type:varchar(45)"`
	UserAgent string        `gorm:"type:text"`
	CreatedAt time.Time     `gorm:"index"`
}

func (Vote) TableName() string {
	return "votes"
}

// KeyForUser returns the voter key for an authenticated voter.
func KeyForUser(userID uuid.UUID) string {
	return userID.String()
}

// KeyForIP returns the voter key for an anonymous voter. Same-IP anonymous
// voters collapse to one key, which approximates the per-voter invariant.
func KeyForIP(ip string) string {
	return "ip:" + ip
}

// Results aggregates a poll's vote counts and percentages.
type Results struct {
	Total       int64   `json:"total"`
	CountA      int64   `json:"count_a"`
	CountB      int64   `json:"count_b"`
	PercentageA float64 `json:"percentage_a"`
	PercentageB float64 `json:"percentage_b"`
}

// WinningOption resolves the majority option. Strictly greater count wins;
// an exact tie resolves to option_b, matching the documented tie-break.
func (r Results) WinningOption() Option {
	if r.CountA > r.CountB {
		return OptionA
	}
	return OptionB
}

// WinningCount returns the vote count of the winning option.
func (r Results) WinningCount() int64 {
	if r.CountA > r.CountB {
		return r.CountA
	}
	return r.CountB
}
