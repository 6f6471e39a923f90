package handler

import (
	"errors"
	"net/http"

	"pollwise/internal/transport/httpdto"
	pollwise_errors "pollwise/pkg/errors"

	"github.com/gin-gonic/gin"
)

// respondError maps service sentinels onto HTTP statuses and stable error
// codes. Unknown errors become an opaque 500; raw storage errors never reach
// clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pollwise_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("not found", "NOT_FOUND"))
	case errors.Is(err, pollwise_errors.ErrAlreadyVoted):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse("already voted on this poll", "ALREADY_VOTED"))
	case errors.Is(err, pollwise_errors.ErrWinnerAnnounced):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse("winner already announced", "WINNER_ANNOUNCED"))
	case errors.Is(err, pollwise_errors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse("already exists", "ALREADY_EXISTS"))
	case errors.Is(err, pollwise_errors.ErrInvalidOption):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid option", "INVALID_OPTION"))
	case errors.Is(err, pollwise_errors.ErrInvalidPlatform):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid or disabled platform", "INVALID_PLATFORM"))
	case errors.Is(err, pollwise_errors.ErrNotAContest):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("poll is not a contest", "NOT_A_CONTEST"))
	case errors.Is(err, pollwise_errors.ErrNoVotes):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("contest has no votes", "NO_VOTES"))
	case errors.Is(err, pollwise_errors.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid status transition", "INVALID_TRANSITION"))
	case errors.Is(err, pollwise_errors.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("unsupported export format", "UNSUPPORTED_FORMAT"))
	case errors.Is(err, pollwise_errors.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse("file too large", "FILE_TOO_LARGE"))
	case errors.Is(err, pollwise_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
	case errors.Is(err, pollwise_errors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
	case errors.Is(err, pollwise_errors.ErrLoginRequired):
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("login required to vote on contests", "LOGIN_REQUIRED"))
	case errors.Is(err, pollwise_errors.ErrForbidden):
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
	case errors.Is(err, pollwise_errors.ErrTokenExpired):
		c.JSON(http.StatusGone, httpdto.NewErrorResponse("invitation expired", "TOKEN_EXPIRED"))
	case errors.Is(err, pollwise_errors.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("rate limit exceeded", "RATE_LIMITED"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR"))
	}
}
