package quota

import (
	"context"
	"errors"
	"strings"
	"time"

	"beatsensei/config"
	"beatsensei/logger"
	"beatsensei/model"
	"beatsensei/repository"

	"github.com/google/uuid"
)

// ErrQuotaExceeded is returned when a user's monthly download limit is
// reached. It is user-actionable and not a backend failure.
var ErrQuotaExceeded = errors.New("monthly download quota exceeded")

// unlimitedMonthly stands in for "no monthly limit" on the enterprise tier.
const unlimitedMonthly = 1 << 30

// Limiter enforces per-user monthly download quotas. All quota state
// changes go through RecordDownload; nothing else mutates the counters.
type Limiter struct {
	usageRepo repository.UsageRepository
	cfg       *config.Config
}

// NewLimiter creates a new Limiter.
func NewLimiter(usageRepo repository.UsageRepository, cfg *config.Config) *Limiter {
	return &Limiter{usageRepo: usageRepo, cfg: cfg}
}

// DefaultsForTier builds a fresh quota record for a user on a given tier.
func (l *Limiter) DefaultsForTier(userID string, tier model.Tier, now time.Time) *model.UsageLimit {
	limit := &model.UsageLimit{
		UserID:           userID,
		Tier:             tier,
		MonthlyResetDate: NextMonthlyReset(now),
		MaxConcurrent:    2,
	}
	switch tier {
	case model.TierPro:
		limit.MonthlyLimit = l.cfg.ProMonthlyDownloads
		limit.MaxConcurrent = 5
		limit.PremiumAccess = true
	case model.TierEnterprise:
		limit.MonthlyLimit = unlimitedMonthly
		limit.MaxConcurrent = 10
		limit.PremiumAccess = true
	default:
		limit.Tier = model.TierFree
		limit.MonthlyLimit = l.cfg.FreeMonthlyDownloads
	}
	return limit
}

// NextMonthlyReset returns the first of the calendar month after now.
func NextMonthlyReset(now time.Time) time.Time {
	year, month, _ := now.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
}

// ApplyMonthlyReset zeroes the consumed count when the reset date has
// passed and advances the reset date to the first of the month after now.
// It happens at most once per check: however many months have elapsed,
// the date jumps straight to next month rather than looping forward.
func ApplyMonthlyReset(limit *model.UsageLimit, now time.Time) bool {
	if now.Before(limit.MonthlyResetDate) {
		return false
	}
	limit.DownloadsThisMonth = 0
	limit.MonthlyResetDate = NextMonthlyReset(now)
	return true
}

// Status returns the user's current quota state with any pending monthly
// reset applied to the returned view (the stored row is only written on
// the download path).
func (l *Limiter) Status(ctx context.Context, userID string) (*model.UsageLimit, error) {
	limit, err := l.usageRepo.GetUsageLimit(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if limit == nil {
		return l.DefaultsForTier(userID, model.TierFree, now), nil
	}
	ApplyMonthlyReset(limit, now)
	return limit, nil
}

// RecordDownload runs the full download sequence inside one transaction:
// lock (or lazily create) the quota row, apply the monthly reset, compare
// against the limit, then append the download record and bump both the
// consumed count and the sample's download counter. A failure anywhere
// rolls the whole sequence back, so counters and the log never diverge.
func (l *Limiter) RecordDownload(ctx context.Context, record *model.DownloadRecord) (*model.UsageLimit, error) {
	now := time.Now()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.DownloadedAt.IsZero() {
		record.DownloadedAt = now
	}

	tx, err := l.usageRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			l.usageRepo.RollbackTx(tx)
		}
	}()

	limit, err := l.usageRepo.GetUsageLimitForUpdate(ctx, tx, record.UserID)
	if err != nil {
		return nil, err
	}
	if limit == nil {
		limit = l.DefaultsForTier(record.UserID, model.TierFree, now)
		if _, err := l.usageRepo.CreateUsageLimitWithTx(ctx, tx, limit); err != nil {
			// A concurrent first download can win the insert race; fall
			// back to locking the row it created.
			if !strings.Contains(err.Error(), "Duplicate entry") {
				return nil, err
			}
			limit, err = l.usageRepo.GetUsageLimitForUpdate(ctx, tx, record.UserID)
			if err != nil {
				return nil, err
			}
		}
	}

	if reset := ApplyMonthlyReset(limit, now); reset {
		logger.Info("monthly quota reset applied",
			logger.String("userId", record.UserID),
			logger.String("nextReset", limit.MonthlyResetDate.Format(time.RFC3339)))
	}

	if limit.DownloadsThisMonth >= limit.MonthlyLimit {
		return limit, ErrQuotaExceeded
	}

	if err := l.usageRepo.InsertDownloadRecordWithTx(ctx, tx, record); err != nil {
		return nil, err
	}

	limit.DownloadsThisMonth++
	if err := l.usageRepo.UpdateQuotaStateWithTx(ctx, tx, record.UserID, limit.DownloadsThisMonth, limit.MonthlyResetDate); err != nil {
		return nil, err
	}

	if err := l.usageRepo.IncrementDownloadCountWithTx(ctx, tx, record.SampleID); err != nil {
		return nil, err
	}

	if err := l.usageRepo.CommitTx(tx); err != nil {
		return nil, err
	}
	committed = true

	return limit, nil
}
