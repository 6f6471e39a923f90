package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"pollwise/internal/domain/poll"
	"pollwise/internal/domain/vote"
	"pollwise/internal/redis"
	"pollwise/internal/repository"
	pollwise_errors "pollwise/pkg/errors"
)

type VoteService struct {
	pollRepo     repository.PollRepository
	voteRepo     repository.VoteRepository
	settingsRepo repository.SettingsRepository
	// cache may be nil; results caching is a settings toggle on top.
	cache *redis.ResultsCache
}

func NewVoteService(pollRepo repository.PollRepository, voteRepo repository.VoteRepository, settingsRepo repository.SettingsRepository, cache *redis.ResultsCache) *VoteService {
	return &VoteService{pollRepo: pollRepo, voteRepo: voteRepo, settingsRepo: settingsRepo, cache: cache}
}

type CastInput struct {
	PollID    uuid.UUID
	VoterID   uuid.NullUUID
	Option    vote.Option
	IPAddress string
	UserAgent string
}

// Cast records one vote. Validation happens before any store mutation; the
// duplicate-vote conflict itself is settled by the unique index on
// (poll_id, voter_key), so two concurrent casts cannot both land.
func (s *VoteService) Cast(ctx context.Context, in CastInput) (vote.Vote, error) {
	if !vote.IsValidOption(in.Option) {
		return vote.Vote{}, pollwise_errors.ErrInvalidOption
	}

	p, err := s.pollRepo.GetActiveByID(ctx, in.PollID)
	if err != nil {
		return vote.Vote{}, err
	}

	// Contest polls need an identified voter: the winner draw and the
	// winner notification both require a user account.
	if p.IsContest && !in.VoterID.Valid {
		return vote.Vote{}, pollwise_errors.ErrLoginRequired
	}

	voterKey := vote.KeyForIP(in.IPAddress)
	if in.VoterID.Valid {
		voterKey = vote.KeyForUser(in.VoterID.UUID)
	}
	if voterKey == vote.KeyForIP("") {
		return vote.Vote{}, pollwise_errors.ErrInvalidInput
	}

	v := vote.Vote{
		ID:        uuid.New(),
		PollID:    p.ID,
		VoterID:   in.VoterID,
		VoterKey:  voterKey,
		Option:    in.Option,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		CreatedAt: time.Now(),
	}
	if err := s.voteRepo.Create(ctx, &v); err != nil {
		return vote.Vote{}, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateResults(ctx, p.ID)
	}
	return v, nil
}

// HasVoted reports whether the voter (by id, or IP when anonymous) already
// voted on the poll.
func (s *VoteService) HasVoted(ctx context.Context, pollID uuid.UUID, voterID uuid.NullUUID, ip string) (bool, error) {
	voterKey := vote.KeyForIP(ip)
	if voterID.Valid {
		voterKey = vote.KeyForUser(voterID.UUID)
	}
	return s.voteRepo.HasVoted(ctx, pollID, voterKey)
}

// Results aggregates counts and percentages for a poll. Percentages carry
// one decimal place and are both zero when there are no votes.
func (s *VoteService) Results(ctx context.Context, pollID uuid.UUID) (vote.Results, error) {
	p, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return vote.Results{}, err
	}
	if p.Status == poll.StatusDeleted {
		return vote.Results{}, pollwise_errors.ErrNotFound
	}

	cacheTTL := time.Duration(0)
	if s.cache != nil && s.settingsRepo != nil {
		if cfg, err := s.settingsRepo.Get(ctx); err == nil && cfg.CacheEnabled && cfg.CacheTTLSeconds > 0 {
			cacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
			if cached, err := s.cache.GetResults(ctx, pollID); err == nil && cached != nil {
				return *cached, nil
			}
		}
	}

	countA, countB, err := s.voteRepo.CountByOption(ctx, pollID)
	if err != nil {
		return vote.Results{}, err
	}

	r := computeResults(countA, countB)
	if cacheTTL > 0 {
		_ = s.cache.SetResults(ctx, pollID, r, cacheTTL)
	}
	return r, nil
}

func computeResults(countA, countB int64) vote.Results {
	r := vote.Results{
		Total:  countA + countB,
		CountA: countA,
		CountB: countB,
	}
	if r.Total > 0 {
		r.PercentageA = round1(float64(countA) / float64(r.Total) * 100)
		r.PercentageB = round1(float64(countB) / float64(r.Total) * 100)
	}
	return r
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
