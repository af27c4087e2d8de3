package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"beatsensei/db"
	"beatsensei/model"
)

// UsageRepository defines quota and download-log data operations. The
// WithTx variants exist so the quota limiter can run the whole
// check-and-consume sequence inside one transaction.
type UsageRepository interface {
	GetUsageLimit(ctx context.Context, userID string) (*model.UsageLimit, error)

	BeginTx(ctx context.Context) (*sql.Tx, error)
	RollbackTx(tx *sql.Tx)
	CommitTx(tx *sql.Tx) error

	GetUsageLimitForUpdate(ctx context.Context, tx *sql.Tx, userID string) (*model.UsageLimit, error)
	CreateUsageLimitWithTx(ctx context.Context, tx *sql.Tx, limit *model.UsageLimit) (int64, error)
	UpdateQuotaStateWithTx(ctx context.Context, tx *sql.Tx, userID string, downloadsThisMonth int, resetDate time.Time) error
	InsertDownloadRecordWithTx(ctx context.Context, tx *sql.Tx, record *model.DownloadRecord) error
	IncrementDownloadCountWithTx(ctx context.Context, tx *sql.Tx, sampleID int64) error
}

// mysqlUsageRepository implements UsageRepository for MySQL.
type mysqlUsageRepository struct {
	DB *sql.DB
}

// NewMySQLUsageRepository creates a new instance of mysqlUsageRepository.
func NewMySQLUsageRepository() UsageRepository {
	return &mysqlUsageRepository{DB: db.DB}
}

const usageLimitColumns = `id, user_id, tier, monthly_limit, downloads_this_month, monthly_reset_date, max_concurrent, premium_access, created_at, updated_at`

func scanUsageLimit(row rowScanner) (*model.UsageLimit, error) {
	var limit model.UsageLimit
	err := row.Scan(&limit.ID, &limit.UserID, &limit.Tier, &limit.MonthlyLimit,
		&limit.DownloadsThisMonth, &limit.MonthlyResetDate, &limit.MaxConcurrent,
		&limit.PremiumAccess, &limit.CreatedAt, &limit.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &limit, nil
}

// GetUsageLimit retrieves a user's quota state outside a transaction.
func (r *mysqlUsageRepository) GetUsageLimit(ctx context.Context, userID string) (*model.UsageLimit, error) {
	query := `SELECT ` + usageLimitColumns + ` FROM usage_limits WHERE user_id = ?`
	limit, err := scanUsageLimit(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No record yet
		}
		return nil, fmt.Errorf("failed to scan usage limit for user %s: %w", userID, err)
	}
	return limit, nil
}

// BeginTx starts a new transaction.
func (r *mysqlUsageRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.DB.BeginTx(ctx, nil)
}

// RollbackTx rolls back a transaction.
func (r *mysqlUsageRepository) RollbackTx(tx *sql.Tx) {
	if tx != nil {
		tx.Rollback()
	}
}

// CommitTx commits a transaction.
func (r *mysqlUsageRepository) CommitTx(tx *sql.Tx) error {
	return tx.Commit()
}

// GetUsageLimitForUpdate locks the user's quota row for the duration of
// the transaction, serializing concurrent check-and-consume sequences.
func (r *mysqlUsageRepository) GetUsageLimitForUpdate(ctx context.Context, tx *sql.Tx, userID string) (*model.UsageLimit, error) {
	query := `SELECT ` + usageLimitColumns + ` FROM usage_limits WHERE user_id = ? FOR UPDATE`
	limit, err := scanUsageLimit(tx.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No record yet
		}
		return nil, fmt.Errorf("failed to lock usage limit for user %s: %w", userID, err)
	}
	return limit, nil
}

// CreateUsageLimitWithTx lazily creates the quota row on first download.
func (r *mysqlUsageRepository) CreateUsageLimitWithTx(ctx context.Context, tx *sql.Tx, limit *model.UsageLimit) (int64, error) {
	query := `INSERT INTO usage_limits
		(user_id, tier, monthly_limit, downloads_this_month, monthly_reset_date, max_concurrent, premium_access, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	res, err := tx.ExecContext(ctx, query, limit.UserID, limit.Tier, limit.MonthlyLimit,
		limit.DownloadsThisMonth, limit.MonthlyResetDate, limit.MaxConcurrent, limit.PremiumAccess, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateUsageLimitWithTx: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateUsageLimitWithTx: %w", err)
	}
	return id, nil
}

// UpdateQuotaStateWithTx writes the consumed count and reset date.
func (r *mysqlUsageRepository) UpdateQuotaStateWithTx(ctx context.Context, tx *sql.Tx, userID string, downloadsThisMonth int, resetDate time.Time) error {
	query := `UPDATE usage_limits SET downloads_this_month = ?, monthly_reset_date = ?, updated_at = ? WHERE user_id = ?`
	_, err := tx.ExecContext(ctx, query, downloadsThisMonth, resetDate, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateQuotaStateWithTx for user %s: %w", userID, err)
	}
	return nil
}

// InsertDownloadRecordWithTx appends a download log entry.
func (r *mysqlUsageRepository) InsertDownloadRecordWithTx(ctx context.Context, tx *sql.Tx, record *model.DownloadRecord) error {
	query := `INSERT INTO download_records
		(id, user_id, sample_id, downloaded_at, user_agent, ip_address, country, source, session_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, query, record.ID, record.UserID, record.SampleID, record.DownloadedAt,
		nullableString(record.UserAgent), nullableString(record.IPAddress), nullableString(record.Country),
		nullableString(record.Source), nullableString(record.SessionID))
	if err != nil {
		return fmt.Errorf("failed to execute InsertDownloadRecordWithTx: %w", err)
	}
	return nil
}

// IncrementDownloadCountWithTx adds one download to the sample counter.
func (r *mysqlUsageRepository) IncrementDownloadCountWithTx(ctx context.Context, tx *sql.Tx, sampleID int64) error {
	res, err := tx.ExecContext(ctx, "UPDATE samples SET download_count = download_count + 1 WHERE id = ?", sampleID)
	if err != nil {
		return fmt.Errorf("failed to increment download count for sample %d: %w", sampleID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
