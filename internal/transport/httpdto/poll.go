package httpdto

import (
	"time"

	"pollwise/internal/domain/poll"
)

type CreatePollRequest struct {
	Question      string     `json:"question"`
	OptionA       string     `json:"option_a"`
	OptionB       string     `json:"option_b"`
	ImageURL      string     `json:"image_url"`
	IsContest     bool       `json:"is_contest"`
	ContestPrize  string     `json:"contest_prize"`
	ContestEndsAt *time.Time `json:"contest_ends_at"`
}

type UpdatePollRequest struct {
	Question      *string    `json:"question"`
	OptionA       *string    `json:"option_a"`
	OptionB       *string    `json:"option_b"`
	ImageURL      *string    `json:"image_url"`
	IsContest     *bool      `json:"is_contest"`
	ContestPrize  *string    `json:"contest_prize"`
	ContestEndsAt *time.Time `json:"contest_ends_at"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type BulkActionRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

type BulkActionResponse struct {
	Applied int `json:"applied"`
}

type PollResponse struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	OptionA       string     `json:"option_a"`
	OptionB       string     `json:"option_b"`
	ImageURL      string     `json:"image_url,omitempty"`
	IsWeekly      bool       `json:"is_weekly"`
	IsContest     bool       `json:"is_contest"`
	ContestPrize  string     `json:"contest_prize,omitempty"`
	ContestEndsAt *time.Time `json:"contest_ends_at,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ListPollsResponse struct {
	Polls []PollResponse `json:"polls"`
	Total int64          `json:"total"`
}

func FromPoll(p poll.Poll) PollResponse {
	resp := PollResponse{
		ID:           p.ID.String(),
		Question:     p.Question,
		OptionA:      p.OptionA,
		OptionB:      p.OptionB,
		ImageURL:     p.ImageURL,
		IsWeekly:     p.IsWeekly,
		IsContest:    p.IsContest,
		ContestPrize: p.ContestPrize,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
	}
	if p.ContestEndsAt.Valid {
		t := p.ContestEndsAt.Time
		resp.ContestEndsAt = &t
	}
	return resp
}

func FromPollSlice(polls []poll.Poll) []PollResponse {
	out := make([]PollResponse, 0, len(polls))
	for _, p := range polls {
		out = append(out, FromPoll(p))
	}
	return out
}
