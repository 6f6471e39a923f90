package share

import (
	"time"

	"github.com/google/uuid"
)

// Platform tags a social network a poll was shared to.
type Platform string

const (
	PlatformFacebook Platform = "facebook"
	PlatformTwitter  Platform = "twitter"
	PlatformWhatsapp Platform = "whatsapp"
	PlatformLinkedin Platform = "linkedin"
	PlatformTelegram Platform = "telegram"
	PlatformEmail    Platform = "email"
)

// Known reports whether p is a recognized platform tag. Whether the platform
// is currently enabled is a settings question, checked at the service layer.
func Known(p Platform) bool {
	switch p {
	case PlatformFacebook, PlatformTwitter, PlatformWhatsapp,
		PlatformLinkedin, PlatformTelegram, PlatformEmail:
		return true
	}
	return false
}

// ShareEvent represents the shares table. Append-only.
type ShareEvent struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	PollID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	VoterID   uuid.NullUUID `gorm:"type:uuid"`
	Platform  Platform      `gorm:"type:varchar(20);not null;index"`
	IPAddress string        `gorm:"type:varchar(45)"`
	CreatedAt time.Time     `gorm:"index"`
}

func (ShareEvent) TableName() string {
	return "shares"
}
