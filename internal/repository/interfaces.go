package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pollwise/internal/domain/contest"
	"pollwise/internal/domain/notification"
	"pollwise/internal/domain/poll"
	"pollwise/internal/domain/settings"
	"pollwise/internal/domain/share"
	"pollwise/internal/domain/user"
	"pollwise/internal/domain/vote"
)

// PollFilter narrows list/count queries. Zero values mean "no filter".
type PollFilter struct {
	Status        poll.Status
	OwnerID       uuid.NullUUID
	Kind          poll.Kind
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Search        string
	// IncludeDeleted is only honored for admin queries; public listings
	// never see soft-deleted polls.
	IncludeDeleted bool
}

type PollRepository interface {
	Create(ctx context.Context, p *poll.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (poll.Poll, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (poll.Poll, error)
	GetLatestActive(ctx context.Context, kind poll.Kind) (poll.Poll, error)
	List(ctx context.Context, f PollFilter, page, limit int) ([]poll.Poll, int64, error)
	Update(ctx context.Context, p poll.Poll) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	SetStatus(ctx context.Context, id uuid.UUID, status poll.Status) error
	ClearWeeklyFlagOnAll(ctx context.Context) error
	SetWeekly(ctx context.Context, id uuid.UUID) error

	GetExpiredContests(ctx context.Context, now time.Time) ([]poll.Poll, error)
	GetStaleWeekly(ctx context.Context, olderThan time.Time) ([]poll.Poll, error)

	GetAll(ctx context.Context) ([]poll.Poll, error)
	HardDeleteOlderThan(ctx context.Context, statuses []poll.Status, before time.Time) ([]uuid.UUID, error)
	HardDeleteAll(ctx context.Context) error
}

type VoteRepository interface {
	Create(ctx context.Context, v *vote.Vote) error
	HasVoted(ctx context.Context, pollID uuid.UUID, voterKey string) (bool, error)
	CountByOption(ctx context.Context, pollID uuid.UUID) (countA, countB int64, err error)
	// GetVoterIDs returns the identified (non-anonymous) voters of one
	// option, in insertion order.
	GetVoterIDs(ctx context.Context, pollID uuid.UUID, option vote.Option) ([]uuid.UUID, error)
	GetByPollID(ctx context.Context, pollID uuid.UUID) ([]vote.Vote, error)
	GetAll(ctx context.Context) ([]vote.Vote, error)
	DeleteByPollIDs(ctx context.Context, pollIDs []uuid.UUID) error
	HardDeleteAll(ctx context.Context) error
}

type ShareRepository interface {
	Create(ctx context.Context, e *share.ShareEvent) error
	CountByPlatform(ctx context.Context, pollID uuid.UUID) (map[share.Platform]int64, error)
	DeleteByPollIDs(ctx context.Context, pollIDs []uuid.UUID) error
}

type WinnerRepository interface {
	Create(ctx context.Context, w *contest.Winner) error
	GetByPollID(ctx context.Context, pollID uuid.UUID) (contest.Winner, error)
	Exists(ctx context.Context, pollID uuid.UUID) (bool, error)
	MarkNotified(ctx context.Context, pollID uuid.UUID) error
	DeleteByPollIDs(ctx context.Context, pollIDs []uuid.UUID) error
}

type NotificationRepository interface {
	Enqueue(ctx context.Context, n *notification.PendingNotification) error
	GetDue(ctx context.Context, now time.Time, limit int) ([]notification.PendingNotification, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	Reschedule(ctx context.Context, id uuid.UUID, at time.Time, errMsg string) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error

	CreateInvitation(ctx context.Context, inv *user.RoleInvitation) error
	GetInvitation(ctx context.Context, token uuid.UUID) (user.RoleInvitation, error)
	MarkInvitationAccepted(ctx context.Context, token uuid.UUID) error
	DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error)

	DismissPopup(ctx context.Context, d *user.PopupDismissal) error
	HasDismissed(ctx context.Context, userID, pollID uuid.UUID) (bool, error)
	DeleteOrphanDismissals(ctx context.Context) (int64, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (settings.Settings, error)
	Save(ctx context.Context, s settings.Settings) error
}
