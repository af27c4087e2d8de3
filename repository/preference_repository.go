package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"beatsensei/db"
	"beatsensei/model"
)

// PreferenceRepository defines user-preference data operations.
type PreferenceRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.UserPreference, error)
	Upsert(ctx context.Context, pref *model.UserPreference) error
}

// mysqlPreferenceRepository implements PreferenceRepository for MySQL.
type mysqlPreferenceRepository struct {
	DB *sql.DB
}

// NewMySQLPreferenceRepository creates a new instance of mysqlPreferenceRepository.
func NewMySQLPreferenceRepository() PreferenceRepository {
	return &mysqlPreferenceRepository{DB: db.DB}
}

// GetByUserID retrieves a user's stored preferences.
func (r *mysqlPreferenceRepository) GetByUserID(ctx context.Context, userID string) (*model.UserPreference, error) {
	query := `SELECT id, user_id, favorite_genres, bpm_min, bpm_max, favorite_keys, created_at, updated_at
		FROM user_preferences WHERE user_id = ?`
	row := r.DB.QueryRowContext(ctx, query, userID)

	var (
		pref   model.UserPreference
		genres string
		keys   string
		bpmMin sql.NullInt64
		bpmMax sql.NullInt64
	)
	err := row.Scan(&pref.ID, &pref.UserID, &genres, &bpmMin, &bpmMax, &keys, &pref.CreatedAt, &pref.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No preferences stored
		}
		return nil, fmt.Errorf("failed to scan preferences for user %s: %w", userID, err)
	}

	pref.FavoriteGenres = model.SplitTags(genres)
	pref.FavoriteKeys = model.SplitTags(keys)
	if bpmMin.Valid {
		v := int(bpmMin.Int64)
		pref.BPMMin = &v
	}
	if bpmMax.Valid {
		v := int(bpmMax.Int64)
		pref.BPMMax = &v
	}
	return &pref, nil
}

// Upsert creates or replaces a user's preference record. The unique
// constraint on user_id keeps at most one record per user.
func (r *mysqlPreferenceRepository) Upsert(ctx context.Context, pref *model.UserPreference) error {
	query := `INSERT INTO user_preferences
		(user_id, favorite_genres, bpm_min, bpm_max, favorite_keys, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		favorite_genres = VALUES(favorite_genres), bpm_min = VALUES(bpm_min),
		bpm_max = VALUES(bpm_max), favorite_keys = VALUES(favorite_keys), updated_at = VALUES(updated_at)`

	now := time.Now()
	_, err := r.DB.ExecContext(ctx, query, pref.UserID, model.JoinTags(pref.FavoriteGenres),
		nullableInt(pref.BPMMin), nullableInt(pref.BPMMax), model.JoinTags(pref.FavoriteKeys), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences for user %s: %w", pref.UserID, err)
	}
	return nil
}
