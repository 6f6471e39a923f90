package httpdto

import (
	"time"

	"pollwise/internal/domain/settings"
	"pollwise/internal/domain/user"
)

type SettingsDTO struct {
	PopupAutoShow     bool   `json:"popup_auto_show"`
	PopupDelaySeconds int    `json:"popup_delay_seconds"`
	BrandPrimary      string `json:"brand_primary"`
	BrandSecondary    string `json:"brand_secondary"`

	ShareFacebook bool `json:"share_facebook"`
	ShareTwitter  bool `json:"share_twitter"`
	ShareWhatsapp bool `json:"share_whatsapp"`
	ShareLinkedin bool `json:"share_linkedin"`
	ShareTelegram bool `json:"share_telegram"`
	ShareEmail    bool `json:"share_email"`

	WeeklyAutoCreate   bool   `json:"weekly_auto_create"`
	WeeklyQuestionPool string `json:"weekly_question_pool"`
	WeeklyRotationDay  int    `json:"weekly_rotation_day"`

	ContestDefaultDays  int  `json:"contest_default_days"`
	ContestAutoAnnounce bool `json:"contest_auto_announce"`

	NotifyEnabled   bool   `json:"notify_enabled"`
	NotifyRecipient string `json:"notify_recipient"`

	RetentionDays int `json:"retention_days"`

	CacheEnabled    bool `json:"cache_enabled"`
	CacheTTLSeconds int  `json:"cache_ttl_seconds"`

	ExportFormats string `json:"export_formats"`
}

func FromSettings(s settings.Settings) SettingsDTO {
	return SettingsDTO{
		PopupAutoShow:       s.PopupAutoShow,
		PopupDelaySeconds:   s.PopupDelaySeconds,
		BrandPrimary:        s.BrandPrimary,
		BrandSecondary:      s.BrandSecondary,
		ShareFacebook:       s.ShareFacebook,
		ShareTwitter:        s.ShareTwitter,
		ShareWhatsapp:       s.ShareWhatsapp,
		ShareLinkedin:       s.ShareLinkedin,
		ShareTelegram:       s.ShareTelegram,
		ShareEmail:          s.ShareEmail,
		WeeklyAutoCreate:    s.WeeklyAutoCreate,
		WeeklyQuestionPool:  s.WeeklyQuestionPool,
		WeeklyRotationDay:   s.WeeklyRotationDay,
		ContestDefaultDays:  s.ContestDefaultDays,
		ContestAutoAnnounce: s.ContestAutoAnnounce,
		NotifyEnabled:       s.NotifyEnabled,
		NotifyRecipient:     s.NotifyRecipient,
		RetentionDays:       s.RetentionDays,
		CacheEnabled:        s.CacheEnabled,
		CacheTTLSeconds:     s.CacheTTLSeconds,
		ExportFormats:       s.ExportFormats,
	}
}

func (d SettingsDTO) ToSettings() settings.Settings {
	return settings.Settings{
		PopupAutoShow:       d.PopupAutoShow,
		PopupDelaySeconds:   d.PopupDelaySeconds,
		BrandPrimary:        d.BrandPrimary,
		BrandSecondary:      d.BrandSecondary,
		ShareFacebook:       d.ShareFacebook,
		ShareTwitter:        d.ShareTwitter,
		ShareWhatsapp:       d.ShareWhatsapp,
		ShareLinkedin:       d.ShareLinkedin,
		ShareTelegram:       d.ShareTelegram,
		ShareEmail:          d.ShareEmail,
		WeeklyAutoCreate:    d.WeeklyAutoCreate,
		WeeklyQuestionPool:  d.WeeklyQuestionPool,
		WeeklyRotationDay:   d.WeeklyRotationDay,
		ContestDefaultDays:  d.ContestDefaultDays,
		ContestAutoAnnounce: d.ContestAutoAnnounce,
		NotifyEnabled:       d.NotifyEnabled,
		NotifyRecipient:     d.NotifyRecipient,
		RetentionDays:       d.RetentionDays,
		CacheEnabled:        d.CacheEnabled,
		CacheTTLSeconds:     d.CacheTTLSeconds,
		ExportFormats:       d.ExportFormats,
	}
}

type InviteManagerRequest struct {
	Email string `json:"email"`
}

type InvitationResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func FromInvitation(inv user.RoleInvitation) InvitationResponse {
	return InvitationResponse{
		Token:     inv.Token.String(),
		Email:     inv.Email,
		Role:      inv.Role,
		ExpiresAt: inv.ExpiresAt,
	}
}

type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func FromUser(u user.User) UserResponse {
	return UserResponse{
		ID:       u.ID.String(),
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
	}
}
