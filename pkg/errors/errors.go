package pollwise_errors

import "errors"

// Common errors
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyExists     = errors.New("already exists")
	ErrRateLimited       = errors.New("rate limited")
	ErrTooLarge          = errors.New("file too large")

	ErrAlreadyVoted      = errors.New("already voted")
	ErrInvalidOption     = errors.New("invalid option")
	ErrInvalidPlatform   = errors.New("invalid share platform")
	ErrLoginRequired     = errors.New("login required")
	ErrNotAContest       = errors.New("poll is not a contest")
	ErrNoVotes           = errors.New("poll has no votes")
	ErrWinnerAnnounced   = errors.New("winner already announced")
	ErrTokenExpired      = errors.New("invitation token expired")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
