package httpdto

import (
	"pollwise/internal/domain/share"
)

type RecordShareRequest struct {
	Platform string `json:"platform"`
}

type ShareCountsResponse struct {
	PollID string           `json:"poll_id"`
	Counts map[string]int64 `json:"counts"`
}

func FromShareCounts(pollID string, counts map[share.Platform]int64) ShareCountsResponse {
	out := make(map[string]int64, len(counts))
	for p, n := range counts {
		out[string(p)] = n
	}
	return ShareCountsResponse{PollID: pollID, Counts: out}
}
