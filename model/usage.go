package model

import "time"

// Tier is a user's service level.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// UsageLimit tracks a user's monthly download quota state.
// downloads_this_month only moves through the download transaction.
type UsageLimit struct {
	ID                 int64     `json:"id"`
	UserID             string    `json:"userId"`
	Tier               Tier      `json:"tier"`
	MonthlyLimit       int       `json:"monthlyLimit"`
	DownloadsThisMonth int       `json:"downloadsThisMonth"`
	MonthlyResetDate   time.Time `json:"monthlyResetDate"`
	MaxConcurrent      int       `json:"maxConcurrent"`
	PremiumAccess      bool      `json:"premiumAccess"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Remaining returns the number of downloads left this month.
func (u *UsageLimit) Remaining() int {
	remaining := u.MonthlyLimit - u.DownloadsThisMonth
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DownloadRecord is an append-only log entry for a completed download.
// Creating one is the only way download counters move.
type DownloadRecord struct {
	ID           string    `json:"id"` // uuid
	UserID       string    `json:"userId"`
	SampleID     int64     `json:"sampleId"`
	DownloadedAt time.Time `json:"downloadedAt"`
	UserAgent    string    `json:"userAgent,omitempty"`
	IPAddress    string    `json:"ipAddress,omitempty"`
	Country      string    `json:"country,omitempty"`
	Source       string    `json:"source,omitempty"` // chatbot, search, recommendation, direct
	SessionID    string    `json:"sessionId,omitempty"`
}
