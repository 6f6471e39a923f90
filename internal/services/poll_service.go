package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pollwise/internal/domain/notification"
	"pollwise/internal/domain/poll"
	"pollwise/internal/domain/user"
	"pollwise/internal/repository"
	pollwise_errors "pollwise/pkg/errors"
)

type PollService struct {
	pollRepo      repository.PollRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

func NewPollService(pollRepo repository.PollRepository, userRepo repository.UserRepository, notifications *NotificationService) *PollService {
	return &PollService{pollRepo: pollRepo, userRepo: userRepo, notifications: notifications}
}

type CreatePollInput struct {
	OwnerID       uuid.UUID
	Question      string
	OptionA       string
	OptionB       string
	ImageURL      string
	IsWeekly      bool
	IsContest     bool
	ContestPrize  string
	ContestEndsAt *time.Time
	// Status defaults to pending; admin and scheduler callers create
	// polls directly in active.
	Status poll.Status
}

func (s *PollService) Create(ctx context.Context, in CreatePollInput) (poll.Poll, error) {
	in.Question = strings.TrimSpace(in.Question)
	in.OptionA = strings.TrimSpace(in.OptionA)
	in.OptionB = strings.TrimSpace(in.OptionB)

	if in.OwnerID == uuid.Nil || in.Question == "" || in.OptionA == "" || in.OptionB == "" {
		return poll.Poll{}, pollwise_errors.ErrInvalidInput
	}
	if len(in.Question) > 255 || len(in.OptionA) > 50 || len(in.OptionB) > 50 {
		return poll.Poll{}, pollwise_errors.ErrInvalidInput
	}
	if !in.IsContest && (in.ContestPrize != "" || in.ContestEndsAt != nil) {
		return poll.Poll{}, pollwise_errors.ErrInvalidInput
	}

	status := in.Status
	if status == "" {
		status = poll.StatusPending
	}
	if !poll.IsValidStatus(status) {
		return poll.Poll{}, pollwise_errors.ErrInvalidInput
	}

	p := poll.Poll{
		ID:           uuid.New(),
		OwnerID:      in.OwnerID,
		Question:     in.Question,
		OptionA:      in.OptionA,
		OptionB:      in.OptionB,
		ImageURL:     in.ImageURL,
		IsWeekly:     in.IsWeekly,
		IsContest:    in.IsContest,
		ContestPrize: in.ContestPrize,
		Status:       status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if in.ContestEndsAt != nil {
		p.ContestEndsAt = sql.NullTime{Time: *in.ContestEndsAt, Valid: true}
	}

	if err := s.pollRepo.Create(ctx, &p); err != nil {
		return poll.Poll{}, err
	}

	if status == poll.StatusPending && s.notifications != nil {
		_ = s.notifications.EnqueueAdmin(ctx, notification.KindPollSubmitted, p.ID,
			"New poll awaiting approval",
			fmt.Sprintf("A user submitted the poll %q. Review and approve it in the admin area.", p.Question))
	}

	return p, nil
}

// Get is the public read: only active polls are visible.
func (s *PollService) Get(ctx context.Context, id uuid.UUID) (poll.Poll, error) {
	return s.pollRepo.GetActiveByID(ctx, id)
}

// GetAny is the admin read: it ignores the status filter, so soft-deleted
// polls stay reachable for audit.
func (s *PollService) GetAny(ctx context.Context, id uuid.UUID) (poll.Poll, error) {
	return s.pollRepo.GetByID(ctx, id)
}

// GetLatest returns the newest active weekly poll if one exists, else the
// newest active poll of the requested kind, else the newest active poll
// overall. The weekly poll always takes priority over plain recency.
func (s *PollService) GetLatest(ctx context.Context, kind poll.Kind) (poll.Poll, error) {
	if p, err := s.pollRepo.GetLatestActive(ctx, poll.KindWeekly); err == nil {
		return p, nil
	} else if !errors.Is(err, pollwise_errors.ErrNotFound) {
		return poll.Poll{}, err
	}

	if kind != "" && kind != poll.KindWeekly {
		if p, err := s.pollRepo.GetLatestActive(ctx, kind); err == nil {
			return p, nil
		} else if !errors.Is(err, pollwise_errors.ErrNotFound) {
			return poll.Poll{}, err
		}
	}

	return s.pollRepo.GetLatestActive(ctx, "")
}

func (s *PollService) List(ctx context.Context, f repository.PollFilter, page, limit int) ([]poll.Poll, int64, error) {
	return s.pollRepo.List(ctx, f, page, limit)
}

type UpdatePollInput struct {
	Question      *string
	OptionA       *string
	OptionB       *string
	ImageURL      *string
	IsContest     *bool
	ContestPrize  *string
	ContestEndsAt *time.Time
}

// Update applies only the supplied fields; updated_at is always refreshed.
func (s *PollService) Update(ctx context.Context, id uuid.UUID, in UpdatePollInput) (poll.Poll, error) {
	fields := map[string]any{}
	if in.Question != nil {
		q := strings.TrimSpace(*in.Question)
		if q == "" || len(q) > 255 {
			return poll.Poll{}, pollwise_errors.ErrInvalidInput
		}
		fields["question"] = q
	}
	if in.OptionA != nil {
		o := strings.TrimSpace(*in.OptionA)
		if o == "" || len(o) > 50 {
			return poll.Poll{}, pollwise_errors.ErrInvalidInput
		}
		fields["option_a"] = o
	}
	if in.OptionB != nil {
		o := strings.TrimSpace(*in.OptionB)
		if o == "" || len(o) > 50 {
			return poll.Poll{}, pollwise_errors.ErrInvalidInput
		}
		fields["option_b"] = o
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}
	if in.IsContest != nil {
		fields["is_contest"] = *in.IsContest
	}
	if in.ContestPrize != nil {
		fields["contest_prize"] = *in.ContestPrize
	}
	if in.ContestEndsAt != nil {
		fields["contest_ends_at"] = sql.NullTime{Time: *in.ContestEndsAt, Valid: true}
	}
	if len(fields) == 0 {
		return poll.Poll{}, pollwise_errors.ErrInvalidInput
	}

	if err := s.pollRepo.UpdateFields(ctx, id, fields); err != nil {
		return poll.Poll{}, err
	}
	return s.pollRepo.GetByID(ctx, id)
}

// Delete soft-deletes: the row stays for audit and admin queries.
func (s *PollService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.pollRepo.SetStatus(ctx, id, poll.StatusDeleted)
}

func (s *PollService) SetStatus(ctx context.Context, id uuid.UUID, status poll.Status) error {
	if !poll.IsValidStatus(status) {
		return pollwise_errors.ErrInvalidInput
	}
	p, err := s.pollRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !poll.CanTransition(p.Status, status) {
		return pollwise_errors.ErrInvalidTransition
	}
	return s.pollRepo.SetStatus(ctx, id, status)
}

// Approve moves a user-submitted poll from pending to active.
func (s *PollService) Approve(ctx context.Context, id uuid.UUID) error {
	return s.SetStatus(ctx, id, poll.StatusActive)
}

// MakeWeekly clears the weekly flag everywhere first, so at most one poll
// carries it at any time.
func (s *PollService) MakeWeekly(ctx context.Context, id uuid.UUID) error {
	p, err := s.pollRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Status == poll.StatusDeleted {
		return pollwise_errors.ErrNotFound
	}
	if err := s.pollRepo.ClearWeeklyFlagOnAll(ctx); err != nil {
		return err
	}
	return s.pollRepo.SetWeekly(ctx, id)
}

// BulkAction applies one of delete/archive/activate/make_weekly to a set of
// polls; make_weekly only honors the first id since there can be one weekly
// poll. Returns how many polls the action was applied to.
func (s *PollService) BulkAction(ctx context.Context, action string, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, pollwise_errors.ErrInvalidInput
	}

	applied := 0
	switch action {
	case "delete":
		for _, id := range ids {
			if err := s.Delete(ctx, id); err == nil {
				applied++
			}
		}
	case "archive":
		for _, id := range ids {
			if err := s.SetStatus(ctx, id, poll.StatusArchived); err == nil {
				applied++
			}
		}
	case "activate":
		for _, id := range ids {
			if err := s.SetStatus(ctx, id, poll.StatusActive); err == nil {
				applied++
			}
		}
	case "make_weekly":
		if err := s.MakeWeekly(ctx, ids[0]); err != nil {
			return 0, err
		}
		applied = 1
	default:
		return 0, pollwise_errors.ErrInvalidInput
	}
	return applied, nil
}

// DismissPopup records that the user closed the popup for this poll.
func (s *PollService) DismissPopup(ctx context.Context, userID, pollID uuid.UUID) error {
	if _, err := s.pollRepo.GetByID(ctx, pollID); err != nil {
		return err
	}
	return s.userRepo.DismissPopup(ctx, &user.PopupDismissal{
		UserID:      userID,
		PollID:      pollID,
		DismissedAt: time.Now(),
	})
}

// GetPopupPoll returns the poll the popup should show for a user, or
// ErrNotFound when the latest poll was already dismissed.
func (s *PollService) GetPopupPoll(ctx context.Context, userID uuid.UUID) (poll.Poll, error) {
	p, err := s.GetLatest(ctx, "")
	if err != nil {
		return poll.Poll{}, err
	}
	if userID != uuid.Nil {
		dismissed, err := s.userRepo.HasDismissed(ctx, userID, p.ID)
		if err != nil {
			return poll.Poll{}, err
		}
		if dismissed {
			return poll.Poll{}, pollwise_errors.ErrNotFound
		}
	}
	return p, nil
}
