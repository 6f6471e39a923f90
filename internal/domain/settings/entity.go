package settings

import (
	"strings"
	"time"
)

// Settings is the single-row configuration blob for the polling feature set.
// ID is always 1.
type Settings struct {
	ID int `gorm:"primaryKey"`

	PopupAutoShow     bool   `gorm:"default:true"`
	PopupDelaySeconds int    `gorm:"default:3"`
	BrandPrimary      string `gorm:"type:varchar(7)"`
	BrandSecondary    string `gorm:"type:varchar(7)"`

	ShareFacebook bool `gorm:"default:true"`
	ShareTwitter  bool `gorm:"default:true"`
	ShareWhatsapp bool `gorm:"default:true"`
	ShareLinkedin bool `gorm:"default:true"`
	ShareTelegram bool
	ShareEmail    bool

	WeeklyAutoCreate bool
	// WeeklyQuestionPool holds one candidate per line, formatted as
	// "question|option_a|option_b".
	WeeklyQuestionPool string `gorm:"type:text"`
	WeeklyRotationDay  int    `gorm:"default:1"`

	ContestDefaultDays  int  `gorm:"default:7"`
	ContestAutoAnnounce bool `gorm:"default:true"`

	NotifyEnabled   bool   `gorm:"default:true"`
	NotifyRecipient string `gorm:"type:varchar(255)"`

	// RetentionDays of 0 disables retention cleanup entirely.
	RetentionDays int `gorm:"default:365"`

	CacheEnabled    bool
	CacheTTLSeconds int `gorm:"default:60"`

	// ExportFormats is the comma-separated allow-list, e.g. "json,csv,xml".
	ExportFormats string `gorm:"type:varchar(64);default:'json,csv,xml'"`

	UpdatedAt time.Time
}

func (Settings) TableName() string {
	return "plugin_settings"
}

// Default returns the settings used before an admin has saved anything.
func Default() Settings {
	return Settings{
		ID:                  1,
		PopupAutoShow:       true,
		PopupDelaySeconds:   3,
		BrandPrimary:        "#2271b1",
		BrandSecondary:      "#f0f0f1",
		ShareFacebook:       true,
		ShareTwitter:        true,
		ShareWhatsapp:       true,
		ShareLinkedin:       true,
		WeeklyRotationDay:   1,
		ContestDefaultDays:  7,
		ContestAutoAnnounce: true,
		NotifyEnabled:       true,
		RetentionDays:       365,
		CacheTTLSeconds:     60,
		ExportFormats:       "json,csv,xml",
	}
}

// FormatAllowed reports whether an export format is on the allow-list.
func (s Settings) FormatAllowed(format string) bool {
	for _, f := range strings.Split(s.ExportFormats, ",") {
		if strings.TrimSpace(f) == format {
			return true
		}
	}
	return false
}

// PoolEntry is one parsed weekly question pool line.
type PoolEntry struct {
	Question string
	OptionA  string
	OptionB  string
}

// ParsePool parses the weekly question pool, skipping malformed lines.
func (s Settings) ParsePool() []PoolEntry {
	var entries []PoolEntry
	for _, line := range strings.Split(s.WeeklyQuestionPool, "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), "|", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			continue
		}
		entries = append(entries, PoolEntry{Question: parts[0], OptionA: parts[1], OptionB: parts[2]})
	}
	return entries
}
