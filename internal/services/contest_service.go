package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"pollwise/internal/domain/contest"
	"pollwise/internal/domain/notification"
	"pollwise/internal/repository"
	pollwise_errors "pollwise/pkg/errors"
)

type ContestService struct {
	pollRepo      repository.PollRepository
	voteRepo      repository.VoteRepository
	winnerRepo    repository.WinnerRepository
	userRepo      repository.UserRepository
	notifications *NotificationService

	mu  sync.Mutex
	rng *rand.Rand
}

// NewContestService wires the winner-selection path. rng may be nil, in
// which case a time-seeded source is used; tests pass a fixed seed.
func NewContestService(pollRepo repository.PollRepository, voteRepo repository.VoteRepository, winnerRepo repository.WinnerRepository, userRepo repository.UserRepository, notifications *NotificationService, rng *rand.Rand) *ContestService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ContestService{
		pollRepo:      pollRepo,
		voteRepo:      voteRepo,
		winnerRepo:    winnerRepo,
		userRepo:      userRepo,
		notifications: notifications,
		rng:           rng,
	}
}

// Announce resolves a contest: it finds the winning option, draws one voter
// uniformly at random from that option's identified voters, and records the
// winner. The draw happens in application code over the fetched voter id
// set, not at the storage layer. The unique poll_id on the winner table
// turns a concurrent double-announce into ErrWinnerAnnounced.
func (s *ContestService) Announce(ctx context.Context, pollID uuid.UUID, prize string) (contest.Winner, error) {
	p, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return contest.Winner{}, err
	}
	if !p.IsContest {
		return contest.Winner{}, pollwise_errors.ErrNotAContest
	}

	countA, countB, err := s.voteRepo.CountByOption(ctx, pollID)
	if err != nil {
		return contest.Winner{}, err
	}
	results := computeResults(countA, countB)
	if results.Total == 0 {
		return contest.Winner{}, pollwise_errors.ErrNoVotes
	}

	winningOption := results.WinningOption()
	voterIDs, err := s.voteRepo.GetVoterIDs(ctx, pollID, winningOption)
	if err != nil {
		return contest.Winner{}, err
	}
	if len(voterIDs) == 0 {
		return contest.Winner{}, pollwise_errors.ErrNoVotes
	}

	s.mu.Lock()
	picked := voterIDs[s.rng.Intn(len(voterIDs))]
	s.mu.Unlock()

	if prize == "" {
		prize = p.ContestPrize
	}

	w := contest.Winner{
		ID:            uuid.New(),
		PollID:        pollID,
		VoterID:       picked,
		Prize:         prize,
		WinningOption: winningOption,
		WinningVotes:  results.WinningCount(),
		Status:        contest.WinnerAnnounced,
		AnnouncedAt:   time.Now(),
	}
	if err := s.winnerRepo.Create(ctx, &w); err != nil {
		return contest.Winner{}, err
	}

	s.enqueueWinnerNotification(ctx, p.Question, w)
	return w, nil
}

func (s *ContestService) GetWinner(ctx context.Context, pollID uuid.UUID) (contest.Winner, error) {
	return s.winnerRepo.GetByPollID(ctx, pollID)
}

func (s *ContestService) enqueueWinnerNotification(ctx context.Context, question string, w contest.Winner) {
	if s.notifications == nil {
		return
	}
	winner, err := s.userRepo.GetByID(ctx, w.VoterID)
	if err != nil {
		if !errors.Is(err, pollwise_errors.ErrNotFound) {
			return
		}
		// Voter account gone between vote and draw; the admin copy below
		// still goes out.
	} else {
		_ = s.notifications.Enqueue(ctx, notification.KindWinnerAnnounced,
			uuid.NullUUID{UUID: w.PollID, Valid: true}, winner.Email,
			"You won!",
			fmt.Sprintf("Congratulations! You were drawn as the winner of the contest %q. Prize: %s", question, w.Prize))
	}

	_ = s.notifications.EnqueueAdmin(ctx, notification.KindWinnerAnnounced, w.PollID,
		"Contest winner announced",
		fmt.Sprintf("A winner was drawn for the contest %q (winning option %s with %d votes).",
			question, w.WinningOption, w.WinningVotes))
}
