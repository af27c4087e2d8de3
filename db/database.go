package db

import (
	"database/sql"
	"fmt"
	"log"

	"beatsensei/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"users", createUsersTable},
		{"samples", createSamplesTable},
		{"sample_metadata", createSampleMetadataTable},
		{"user_preferences", createUserPreferencesTable},
		{"usage_limits", createUsageLimitsTable},
		{"download_records", createDownloadRecordsTable},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("failed to initialize %s table: %w", step.name, err)
		}
	}

	log.Println("Database initialization completed.")
	return nil
}

func createUsersTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	_, err := DB.Exec(query)
	return err
}

func createSamplesTable() error {
	// Tags are stored comma-separated so FIND_IN_SET can test containment
	// and a FULLTEXT index can rank free-text matches.
	query := `
	CREATE TABLE IF NOT EXISTS samples (
		id INT AUTO_INCREMENT PRIMARY KEY,
		filename VARCHAR(255) NOT NULL,
		file_url VARCHAR(767) NOT NULL,
		title VARCHAR(255) NOT NULL,
		bpm INT,
		` + "`key`" + ` VARCHAR(8),
		genre VARCHAR(64),
		tags VARCHAR(512) NOT NULL DEFAULT '',
		duration FLOAT,
		file_size BIGINT,
		download_count BIGINT NOT NULL DEFAULT 0,
		play_count BIGINT NOT NULL DEFAULT 0,
		like_count BIGINT NOT NULL DEFAULT 0,
		featured TINYINT(1) NOT NULL DEFAULT 0,
		premium TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_samples_genre (genre),
		KEY idx_samples_bpm (bpm),
		KEY idx_samples_downloads (download_count),
		KEY idx_samples_created (created_at),
		FULLTEXT KEY ft_samples_title (title),
		FULLTEXT KEY ft_samples_genre (genre),
		FULLTEXT KEY ft_samples_tags (tags),
		CONSTRAINT chk_samples_bpm CHECK (bpm IS NULL OR bpm > 0),
		CONSTRAINT chk_samples_duration CHECK (duration IS NULL OR duration >= 0)
	);
	`
	_, err := DB.Exec(query)
	return err
}

func createSampleMetadataTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS sample_metadata (
		id INT AUTO_INCREMENT PRIMARY KEY,
		sample_id INT NOT NULL,
		instrument_type VARCHAR(64),
		mood_tags VARCHAR(512) NOT NULL DEFAULT '',
		energy_level INT,
		era_decade VARCHAR(16),
		audio_format VARCHAR(32),
		sample_rate INT,
		bit_depth INT,
		channels INT,
		CONSTRAINT uq_sample_metadata UNIQUE (sample_id),
		CONSTRAINT fk_sample_metadata FOREIGN KEY (sample_id) REFERENCES samples(id) ON DELETE CASCADE,
		CONSTRAINT chk_energy_level CHECK (energy_level IS NULL OR (energy_level BETWEEN 1 AND 10))
	);
	`
	_, err := DB.Exec(query)
	return err
}

func createUserPreferencesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS user_preferences (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		favorite_genres VARCHAR(512) NOT NULL DEFAULT '',
		bpm_min INT,
		bpm_max INT,
		favorite_keys VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT uq_user_preferences UNIQUE (user_id)
	);
	`
	_, err := DB.Exec(query)
	return err
}

func createUsageLimitsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS usage_limits (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		tier VARCHAR(16) NOT NULL DEFAULT 'free',
		monthly_limit INT NOT NULL,
		downloads_this_month INT NOT NULL DEFAULT 0,
		monthly_reset_date DATETIME NOT NULL,
		max_concurrent INT NOT NULL DEFAULT 2,
		premium_access TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT uq_usage_limits UNIQUE (user_id),
		CONSTRAINT chk_downloads_this_month CHECK (downloads_this_month >= 0)
	);
	`
	_, err := DB.Exec(query)
	return err
}

func createDownloadRecordsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS download_records (
		id CHAR(36) PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		sample_id INT NOT NULL,
		downloaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		user_agent VARCHAR(512),
		ip_address VARCHAR(64),
		country VARCHAR(64),
		source VARCHAR(32),
		session_id VARCHAR(64),
		KEY idx_download_records_sample (sample_id, downloaded_at),
		KEY idx_download_records_user (user_id),
		CONSTRAINT fk_download_records_sample FOREIGN KEY (sample_id) REFERENCES samples(id) ON DELETE CASCADE
	);
	`
	_, err := DB.Exec(query)
	return err
}
