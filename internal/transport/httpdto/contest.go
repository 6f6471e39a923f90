package httpdto

import (
	"time"

	"pollwise/internal/domain/contest"
)

type AnnounceWinnerRequest struct {
	Prize string `json:"prize"`
}

type WinnerResponse struct {
	PollID        string    `json:"poll_id"`
	VoterID       string    `json:"voter_id"`
	Prize         string    `json:"prize"`
	WinningOption string    `json:"winning_option"`
	WinningVotes  int64     `json:"winning_votes"`
	Status        string    `json:"status"`
	AnnouncedAt   time.Time `json:"announced_at"`
}

func FromWinner(w contest.Winner) WinnerResponse {
	return WinnerResponse{
		PollID:        w.PollID.String(),
		VoterID:       w.VoterID.String(),
		Prize:         w.Prize,
		WinningOption: string(w.WinningOption),
		WinningVotes:  w.WinningVotes,
		Status:        string(w.Status),
		AnnouncedAt:   w.AnnouncedAt,
	}
}
