package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pollwise/internal/domain/settings"
	"pollwise/internal/domain/share"
	"pollwise/internal/repository"
	pollwise_errors "pollwise/pkg/errors"
)

type ShareService struct {
	pollRepo     repository.PollRepository
	shareRepo    repository.ShareRepository
	settingsRepo repository.SettingsRepository
}

func NewShareService(pollRepo repository.PollRepository, shareRepo repository.ShareRepository, settingsRepo repository.SettingsRepository) *ShareService {
	return &ShareService{pollRepo: pollRepo, shareRepo: shareRepo, settingsRepo: settingsRepo}
}

type RecordShareInput struct {
	PollID    uuid.UUID
	VoterID   uuid.NullUUID
	Platform  share.Platform
	IPAddress string
}

// Record appends one share event. Unknown platforms and platforms toggled
// off in settings are both rejected before any write.
func (s *ShareService) Record(ctx context.Context, in RecordShareInput) (share.ShareEvent, error) {
	if !share.Known(in.Platform) {
		return share.ShareEvent{}, pollwise_errors.ErrInvalidPlatform
	}

	cfg, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return share.ShareEvent{}, err
	}
	if !platformEnabled(cfg, in.Platform) {
		return share.ShareEvent{}, pollwise_errors.ErrInvalidPlatform
	}

	if _, err := s.pollRepo.GetActiveByID(ctx, in.PollID); err != nil {
		return share.ShareEvent{}, err
	}

	e := share.ShareEvent{
		ID:        uuid.New(),
		PollID:    in.PollID,
		VoterID:   in.VoterID,
		Platform:  in.Platform,
		IPAddress: in.IPAddress,
		CreatedAt: time.Now(),
	}
	if err := s.shareRepo.Create(ctx, &e); err != nil {
		return share.ShareEvent{}, err
	}
	return e, nil
}

func (s *ShareService) CountByPlatform(ctx context.Context, pollID uuid.UUID) (map[share.Platform]int64, error) {
	if _, err := s.pollRepo.GetByID(ctx, pollID); err != nil {
		return nil, err
	}
	return s.shareRepo.CountByPlatform(ctx, pollID)
}

func platformEnabled(cfg settings.Settings, p share.Platform) bool {
	switch p {
	case share.PlatformFacebook:
		return cfg.ShareFacebook
	case share.PlatformTwitter:
		return cfg.ShareTwitter
	case share.PlatformWhatsapp:
		return cfg.ShareWhatsapp
	case share.PlatformLinkedin:
		return cfg.ShareLinkedin
	case share.PlatformTelegram:
		return cfg.ShareTelegram
	case share.PlatformEmail:
		return cfg.ShareEmail
	}
	return false
}
