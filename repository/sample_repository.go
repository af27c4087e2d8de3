package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"beatsensei/db"
	"beatsensei/model"
)

// SampleRepository defines the interface for sample data operations.
// Download/play/like counters are only exposed through increment
// operations or the download transaction, never through setters.
type SampleRepository interface {
	CreateSample(ctx context.Context, sample *model.Sample) (int64, error)
	UpsertMetadata(ctx context.Context, meta *model.SampleMetadata) error
	GetSampleByID(ctx context.Context, id int64) (*model.Sample, error)
	Search(ctx context.Context, req *model.SearchRequest) ([]*model.Sample, int64, error)
	AvailableFilters(ctx context.Context) (*model.AvailableFilters, error)
	TrendingCandidates(ctx context.Context, since *time.Time, genre string, bpmMin, bpmMax *int) ([]*model.TrendingSample, error)
	PreferenceCandidates(ctx context.Context, genres []string, bpmMin, bpmMax *int, keys []string) ([]*model.Sample, error)
	IncrementPlayCount(ctx context.Context, id int64) error
	IncrementLikeCount(ctx context.Context, id int64) error
}

// mysqlSampleRepository implements SampleRepository for MySQL.
type mysqlSampleRepository struct {
	DB *sql.DB
}

// NewMySQLSampleRepository creates a new instance of mysqlSampleRepository.
func NewMySQLSampleRepository() SampleRepository {
	return &mysqlSampleRepository{DB: db.DB}
}

const sampleColumns = "s.id, s.filename, s.file_url, s.title, s.bpm, s.`key`, s.genre, s.tags, " +
	"s.duration, s.file_size, s.download_count, s.play_count, s.like_count, s.featured, s.premium, " +
	"s.created_at, s.updated_at, " +
	"m.id, m.instrument_type, m.mood_tags, m.energy_level, m.era_decade, m.audio_format, " +
	"m.sample_rate, m.bit_depth, m.channels"

const sampleJoin = "FROM samples s LEFT JOIN sample_metadata m ON m.sample_id = s.id"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSample scans a joined samples/sample_metadata row.
func scanSample(row rowScanner, extra ...interface{}) (*model.Sample, error) {
	var (
		s        model.Sample
		bpm      sql.NullInt64
		key      sql.NullString
		genre    sql.NullString
		tags     string
		duration sql.NullFloat64
		fileSize sql.NullInt64

		metaID     sql.NullInt64
		instrument sql.NullString
		moodTags   sql.NullString
		energy     sql.NullInt64
		era        sql.NullString
		format     sql.NullString
		sampleRate sql.NullInt64
		bitDepth   sql.NullInt64
		channels   sql.NullInt64
	)

	dest := []interface{}{
		&s.ID, &s.Filename, &s.FileURL, &s.Title, &bpm, &key, &genre, &tags,
		&duration, &fileSize, &s.DownloadCount, &s.PlayCount, &s.LikeCount, &s.Featured, &s.Premium,
		&s.CreatedAt, &s.UpdatedAt,
		&metaID, &instrument, &moodTags, &energy, &era, &format,
		&sampleRate, &bitDepth, &channels,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if bpm.Valid {
		v := int(bpm.Int64)
		s.BPM = &v
	}
	s.Key = key.String
	s.Genre = genre.String
	s.Tags = model.SplitTags(tags)
	if duration.Valid {
		s.Duration = &duration.Float64
	}
	if fileSize.Valid {
		s.FileSize = &fileSize.Int64
	}

	if metaID.Valid {
		meta := &model.SampleMetadata{
			ID:             metaID.Int64,
			SampleID:       s.ID,
			InstrumentType: instrument.String,
			MoodTags:       model.SplitTags(moodTags.String),
			EraDecade:      era.String,
			AudioFormat:    format.String,
		}
		if energy.Valid {
			v := int(energy.Int64)
			meta.EnergyLevel = &v
		}
		if sampleRate.Valid {
			v := int(sampleRate.Int64)
			meta.SampleRate = &v
		}
		if bitDepth.Valid {
			v := int(bitDepth.Int64)
			meta.BitDepth = &v
		}
		if channels.Valid {
			v := int(channels.Int64)
			meta.Channels = &v
		}
		s.Metadata = meta
	}

	return &s, nil
}

// CreateSample adds a new sample to the database.
func (r *mysqlSampleRepository) CreateSample(ctx context.Context, sample *model.Sample) (int64, error) {
	query := "INSERT INTO samples (filename, file_url, title, bpm, `key`, genre, tags, duration, file_size, featured, premium, created_at, updated_at)" +
		" VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

	now := time.Now()
	res, err := r.DB.ExecContext(ctx, query,
		sample.Filename, sample.FileURL, sample.Title,
		nullableInt(sample.BPM), nullableString(sample.Key), nullableString(sample.Genre),
		model.JoinTags(sample.Tags), nullableFloat(sample.Duration), nullableInt64(sample.FileSize),
		sample.Featured, sample.Premium, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateSample: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateSample: %w", err)
	}
	return id, nil
}

// UpsertMetadata inserts or replaces the extended metadata for a sample.
// The unique constraint on sample_id keeps this 1:1.
func (r *mysqlSampleRepository) UpsertMetadata(ctx context.Context, meta *model.SampleMetadata) error {
	query := `INSERT INTO sample_metadata
		(sample_id, instrument_type, mood_tags, energy_level, era_decade, audio_format, sample_rate, bit_depth, channels)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		instrument_type = VALUES(instrument_type), mood_tags = VALUES(mood_tags),
		energy_level = VALUES(energy_level), era_decade = VALUES(era_decade),
		audio_format = VALUES(audio_format), sample_rate = VALUES(sample_rate),
		bit_depth = VALUES(bit_depth), channels = VALUES(channels)`

	_, err := r.DB.ExecContext(ctx, query,
		meta.SampleID, nullableString(meta.InstrumentType), model.JoinTags(meta.MoodTags),
		nullableInt(meta.EnergyLevel), nullableString(meta.EraDecade), nullableString(meta.AudioFormat),
		nullableInt(meta.SampleRate), nullableInt(meta.BitDepth), nullableInt(meta.Channels))
	if err != nil {
		return fmt.Errorf("failed to execute UpsertMetadata for sample %d: %w", meta.SampleID, err)
	}
	return nil
}

// GetSampleByID retrieves a sample by its ID.
func (r *mysqlSampleRepository) GetSampleByID(ctx context.Context, id int64) (*model.Sample, error) {
	query := "SELECT " + sampleColumns + " " + sampleJoin + " WHERE s.id = ?"
	row := r.DB.QueryRowContext(ctx, query, id)

	sample, err := scanSample(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Sample not found
		}
		return nil, fmt.Errorf("failed to scan sample by ID %d: %w", id, err)
	}
	return sample, nil
}

// searchConditions accumulates WHERE clauses and their arguments.
type searchConditions struct {
	clauses []string
	args    []interface{}
}

func (c *searchConditions) add(clause string, args ...interface{}) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

func (c *searchConditions) whereSQL() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func inPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func lowered(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

// buildSearchConditions translates a filter request into SQL predicates.
// Multi-valued dimensions OR within themselves and AND across dimensions;
// tag and mood filters require containment of every requested value.
func buildSearchConditions(req *model.SearchRequest, now time.Time) *searchConditions {
	c := &searchConditions{}

	if req.Query != "" {
		c.add("(MATCH(s.title) AGAINST (? IN NATURAL LANGUAGE MODE)"+
			" OR MATCH(s.genre) AGAINST (? IN NATURAL LANGUAGE MODE)"+
			" OR MATCH(s.tags) AGAINST (? IN NATURAL LANGUAGE MODE))",
			req.Query, req.Query, req.Query)
	}

	// Rows without a BPM are excluded whenever a BPM bound is present.
	if req.BPMMin != nil {
		c.add("s.bpm IS NOT NULL AND s.bpm >= ?", *req.BPMMin)
	}
	if req.BPMMax != nil {
		c.add("s.bpm IS NOT NULL AND s.bpm <= ?", *req.BPMMax)
	}

	if len(req.Keys) > 0 {
		c.add("s.`key` IN ("+inPlaceholders(len(req.Keys))+")", toInterfaces(req.Keys)...)
	}
	if len(req.Genres) > 0 {
		c.add("LOWER(s.genre) IN ("+inPlaceholders(len(req.Genres))+")", lowered(req.Genres)...)
	}
	if len(req.InstrumentTypes) > 0 {
		c.add("LOWER(m.instrument_type) IN ("+inPlaceholders(len(req.InstrumentTypes))+")", lowered(req.InstrumentTypes)...)
	}
	if len(req.EraDecades) > 0 {
		c.add("m.era_decade IN ("+inPlaceholders(len(req.EraDecades))+")", toInterfaces(req.EraDecades)...)
	}
	if len(req.AudioFormats) > 0 {
		c.add("LOWER(m.audio_format) IN ("+inPlaceholders(len(req.AudioFormats))+")", lowered(req.AudioFormats)...)
	}

	for _, tag := range req.Tags {
		c.add("FIND_IN_SET(?, s.tags) > 0", strings.ToLower(strings.TrimSpace(tag)))
	}
	for _, mood := range req.Moods {
		c.add("FIND_IN_SET(?, m.mood_tags) > 0", strings.ToLower(strings.TrimSpace(mood)))
	}

	if req.EnergyMin != nil {
		c.add("m.energy_level >= ?", *req.EnergyMin)
	}
	if req.EnergyMax != nil {
		c.add("m.energy_level <= ?", *req.EnergyMax)
	}

	if req.DurationMin != nil {
		c.add("s.duration >= ?", *req.DurationMin)
	}
	if req.DurationMax != nil {
		c.add("s.duration <= ?", *req.DurationMax)
	}

	if req.FileSizeMin != nil {
		c.add("s.file_size >= ?", *req.FileSizeMin)
	}
	if req.FileSizeMax != nil {
		c.add("s.file_size <= ?", *req.FileSizeMax)
	}

	if req.UploadedAfter != nil {
		c.add("s.created_at >= ?", *req.UploadedAfter)
	}
	if req.UploadedBefore != nil {
		c.add("s.created_at <= ?", *req.UploadedBefore)
	}

	if req.HasMetadata {
		c.add("m.id IS NOT NULL")
	}
	if req.PopularOnly {
		c.add("s.download_count >= ?", model.PopularDownloadThreshold)
	}
	if req.RecentlyAdded {
		c.add("s.created_at >= ?", now.AddDate(0, 0, -model.RecentUploadWindowDays))
	}

	return c
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// sortColumns whitelists sortable expressions.
var sortColumns = map[string]string{
	model.SortRelevance: "relevance",
	model.SortDownloads: "s.download_count",
	model.SortNewest:    "s.created_at",
	model.SortBPM:       "s.bpm",
	model.SortDuration:  "s.duration",
	model.SortFileSize:  "s.file_size",
}

// Search executes a filter request and returns the page plus the total
// match count. Validation (range sanity, defaults) happens in the search
// engine before this is called.
func (r *mysqlSampleRepository) Search(ctx context.Context, req *model.SearchRequest) ([]*model.Sample, int64, error) {
	now := time.Now()
	cond := buildSearchConditions(req, now)

	// Relevance is the weighted FULLTEXT blend when a query is present,
	// and a neutral 1.0 otherwise.
	relevanceExpr := "1.0 AS relevance"
	var selectArgs []interface{}
	if req.Query != "" {
		relevanceExpr = "(2.0 * MATCH(s.title) AGAINST (? IN NATURAL LANGUAGE MODE)" +
			" + 1.0 * MATCH(s.genre) AGAINST (? IN NATURAL LANGUAGE MODE)" +
			" + 0.5 * MATCH(s.tags) AGAINST (? IN NATURAL LANGUAGE MODE)) AS relevance"
		selectArgs = []interface{}{req.Query, req.Query, req.Query}
	}

	sortCol, ok := sortColumns[req.SortBy]
	if !ok {
		sortCol = "s.download_count"
	}
	dir := "DESC"
	if req.SortOrder == model.OrderAsc {
		dir = "ASC"
	}
	// Stable tie-break: downloads then upload time, both descending.
	orderBy := fmt.Sprintf(" ORDER BY %s %s, s.download_count DESC, s.created_at DESC, s.id DESC", sortCol, dir)

	var total int64
	countQuery := "SELECT COUNT(*) " + sampleJoin + cond.whereSQL()
	if err := r.DB.QueryRowContext(ctx, countQuery, cond.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	query := "SELECT " + sampleColumns + ", " + relevanceExpr + " " + sampleJoin +
		cond.whereSQL() + orderBy + " LIMIT ? OFFSET ?"

	args := append(append(selectArgs, cond.args...), req.Limit, req.Offset)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	samples := make([]*model.Sample, 0)
	for rows.Next() {
		var relevance float64
		sample, err := scanSample(rows, &relevance)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan sample in Search: %w", err)
		}
		samples = append(samples, sample)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error during rows iteration in Search: %w", err)
	}

	return samples, total, nil
}

// AvailableFilters collects the distinct values per filterable dimension.
// Each dimension is queried independently so a failure in one degrades to
// a partial result instead of failing the caller.
func (r *mysqlSampleRepository) AvailableFilters(ctx context.Context) (*model.AvailableFilters, error) {
	filters := &model.AvailableFilters{
		Genres:          []string{},
		Keys:            []string{},
		InstrumentTypes: []string{},
		EraDecades:      []string{},
		AudioFormats:    []string{},
	}

	var firstErr error
	collect := func(query string, dest *[]string) {
		rows, err := r.DB.QueryContext(ctx, query)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		defer rows.Close()
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			*dest = append(*dest, v)
		}
	}

	collect("SELECT DISTINCT genre FROM samples WHERE genre IS NOT NULL AND genre <> '' ORDER BY genre", &filters.Genres)
	collect("SELECT DISTINCT `key` FROM samples WHERE `key` IS NOT NULL AND `key` <> '' ORDER BY `key`", &filters.Keys)
	collect("SELECT DISTINCT instrument_type FROM sample_metadata WHERE instrument_type IS NOT NULL AND instrument_type <> '' ORDER BY instrument_type", &filters.InstrumentTypes)
	collect("SELECT DISTINCT era_decade FROM sample_metadata WHERE era_decade IS NOT NULL AND era_decade <> '' ORDER BY era_decade", &filters.EraDecades)
	collect("SELECT DISTINCT audio_format FROM sample_metadata WHERE audio_format IS NOT NULL AND audio_format <> '' ORDER BY audio_format", &filters.AudioFormats)

	var bpmMin, bpmMax sql.NullInt64
	if err := r.DB.QueryRowContext(ctx, "SELECT MIN(bpm), MAX(bpm) FROM samples WHERE bpm IS NOT NULL").Scan(&bpmMin, &bpmMax); err == nil {
		if bpmMin.Valid {
			v := int(bpmMin.Int64)
			filters.BPMMin = &v
		}
		if bpmMax.Valid {
			v := int(bpmMax.Int64)
			filters.BPMMax = &v
		}
	} else if firstErr == nil {
		firstErr = err
	}

	return filters, firstErr
}

// TrendingCandidates returns samples matching the optional constraints with
// their window-scoped download counts. A nil since means all-time, where the
// recent count is defined as the total download count.
func (r *mysqlSampleRepository) TrendingCandidates(ctx context.Context, since *time.Time, genre string, bpmMin, bpmMax *int) ([]*model.TrendingSample, error) {
	cond := &searchConditions{}
	if genre != "" {
		cond.add("LOWER(s.genre) = ?", strings.ToLower(genre))
	}
	if bpmMin != nil {
		cond.add("s.bpm IS NOT NULL AND s.bpm >= ?", *bpmMin)
	}
	if bpmMax != nil {
		cond.add("s.bpm IS NOT NULL AND s.bpm <= ?", *bpmMax)
	}

	var (
		query string
		args  []interface{}
	)
	if since != nil {
		query = "SELECT " + sampleColumns + ", COALESCE(r.recent, 0) " + sampleJoin +
			" LEFT JOIN (SELECT sample_id, COUNT(*) AS recent FROM download_records WHERE downloaded_at >= ? GROUP BY sample_id) r ON r.sample_id = s.id" +
			cond.whereSQL()
		args = append([]interface{}{*since}, cond.args...)
	} else {
		query = "SELECT " + sampleColumns + ", s.download_count " + sampleJoin + cond.whereSQL()
		args = cond.args
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trending candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]*model.TrendingSample, 0)
	for rows.Next() {
		var recent int64
		sample, err := scanSample(rows, &recent)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trending candidate: %w", err)
		}
		candidates = append(candidates, &model.TrendingSample{Sample: sample, RecentDownloads: recent})
	}
	return candidates, rows.Err()
}

// PreferenceCandidates returns samples matching at least one preference
// dimension (inclusive OR), or all samples when no dimension is set.
func (r *mysqlSampleRepository) PreferenceCandidates(ctx context.Context, genres []string, bpmMin, bpmMax *int, keys []string) ([]*model.Sample, error) {
	var (
		ors  []string
		args []interface{}
	)

	if len(genres) > 0 {
		ors = append(ors, "LOWER(s.genre) IN ("+inPlaceholders(len(genres))+")")
		args = append(args, lowered(genres)...)
	}
	if bpmMin != nil && bpmMax != nil {
		ors = append(ors, "(s.bpm IS NOT NULL AND s.bpm BETWEEN ? AND ?)")
		args = append(args, *bpmMin, *bpmMax)
	}
	if len(keys) > 0 {
		ors = append(ors, "s.`key` IN ("+inPlaceholders(len(keys))+")")
		args = append(args, toInterfaces(keys)...)
	}

	query := "SELECT " + sampleColumns + " " + sampleJoin
	if len(ors) > 0 {
		query += " WHERE (" + strings.Join(ors, " OR ") + ")"
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query preference candidates: %w", err)
	}
	defer rows.Close()

	samples := make([]*model.Sample, 0)
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preference candidate: %w", err)
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// IncrementPlayCount adds one play to a sample.
func (r *mysqlSampleRepository) IncrementPlayCount(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE samples SET play_count = play_count + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment play count for sample %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementLikeCount adds one like to a sample.
func (r *mysqlSampleRepository) IncrementLikeCount(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE samples SET like_count = like_count + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment like count for sample %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
