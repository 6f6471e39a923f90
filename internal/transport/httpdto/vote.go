package httpdto

import (
	"time"

	"pollwise/internal/domain/vote"
)

type CastVoteRequest struct {
	Option string `json:"option"`
}

type VoteResponse struct {
	PollID    string    `json:"poll_id"`
	Option    string    `json:"option"`
	CreatedAt time.Time `json:"created_at"`
}

func FromVote(v vote.Vote) VoteResponse {
	return VoteResponse{
		PollID:    v.PollID.String(),
		Option:    string(v.Option),
		CreatedAt: v.CreatedAt,
	}
}

type HasVotedResponse struct {
	Voted bool `json:"voted"`
}

// ResultsResponse mirrors the aggregated results shape.
type ResultsResponse struct {
	PollID      string  `json:"poll_id"`
	Total       int64   `json:"total"`
	CountA      int64   `json:"count_a"`
	CountB      int64   `json:"count_b"`
	PercentageA float64 `json:"percentage_a"`
	PercentageB float64 `json:"percentage_b"`
}

func FromResults(pollID string, r vote.Results) ResultsResponse {
	return ResultsResponse{
		PollID:      pollID,
		Total:       r.Total,
		CountA:      r.CountA,
		CountB:      r.CountB,
		PercentageA: r.PercentageA,
		PercentageB: r.PercentageB,
	}
}
