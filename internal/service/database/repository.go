package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/pkg/errors"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var videoColumns = []string{
	"search_unique_id", "keyword", "channel_url", "channel_name", "channel_subscribers",
	"video_id", "video_title", "video_thumbnail", "video_view_count", "video_like_count",
	"video_comment_count", "video_view_subscriber_ratio", "is_shorts", "transcript",
	"published_at", "comment_1", "comment_2", "comment_3",
}

var thumbnailColumns = []string{
	"search_unique_id", "keyword", "channel_url", "channel_name", "video_id",
	"video_title", "video_thumbnail", "is_shorts", "thumbnail_analysis",
}

const feedbackSchema = `
CREATE TABLE IF NOT EXISTS feedback_yt (
	id SERIAL PRIMARY KEY,
	search_unique_id TEXT NOT NULL,
	title TEXT NOT NULL,
	thumbnail TEXT NOT NULL,
	script TEXT NOT NULL,
	score INTEGER NOT NULL,
	feedback TEXT NOT NULL,
	platform VARCHAR(15),
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS feedback_ig (
	id SERIAL PRIMARY KEY,
	search_unique_id TEXT NOT NULL,
	pics TEXT NOT NULL,
	caption TEXT NOT NULL,
	hashtags TEXT NOT NULL,
	score INTEGER NOT NULL,
	feedback TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS feedback_th (
	id SERIAL PRIMARY KEY,
	search_unique_id TEXT NOT NULL,
	post TEXT NOT NULL,
	pics TEXT NOT NULL,
	tags TEXT NOT NULL,
	score INTEGER NOT NULL,
	feedback TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// VideoRepository stores pipeline runs, analyses and operator feedback.
// Table names are configurable, so every statement quotes them.
type VideoRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewVideoRepository(postgres *PostgresService, logger *zap.Logger) *VideoRepository {
	return &VideoRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// QuoteTable validates name and returns it as a quoted identifier.
func QuoteTable(name string) (string, error) {
	if !tableNamePattern.MatchString(name) {
		return "", errors.NewValidationError("invalid table name", "table", name)
	}
	return pq.QuoteIdentifier(name), nil
}

func placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(marks, ", ")
}

func insertStatement(quotedTable string, columns []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quotedTable, strings.Join(columns, ", "), placeholders(len(columns)))
}

func videoArgs(row domain.StoredVideo) []any {
	comments := []string{row.Comment1, row.Comment2, row.Comment3}
	for i, c := range comments {
		if c == "" {
			comments[i] = domain.EmptyCommentSlot
		}
	}

	var publishedAt any
	if !row.PublishedAt.IsZero() {
		publishedAt = row.PublishedAt
	}

	return []any{
		row.SearchID, row.Keyword, row.ChannelURL, row.Channel, row.Subscribers,
		row.VideoID, row.Title, row.Thumbnail, row.Views, row.Likes,
		row.Comments, row.Ratio, row.IsShorts, row.Transcript,
		publishedAt, comments[0], comments[1], comments[2],
	}
}

// SaveVideos inserts all rows of a run in one transaction.
func (r *VideoRepository) SaveVideos(ctx context.Context, table string, rows []domain.StoredVideo) error {
	quoted, err := QuoteTable(table)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("failed to begin transaction", table, "insert", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertStatement(quoted, videoColumns))
	if err != nil {
		return errors.NewStorageError("failed to prepare insert", table, "insert", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, videoArgs(row)...); err != nil {
			return errors.NewStorageError(
				fmt.Sprintf("failed to insert video %s", row.VideoID), table, "insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorageError("failed to commit videos", table, "insert", err)
	}

	r.logger.Debug("Videos saved",
		zap.String("table", table),
		zap.String("search_id", rows[0].SearchID),
		zap.Int("rows", len(rows)))
	return nil
}

const storedVideoSelect = `
	SELECT search_unique_id, keyword, channel_url, channel_name, channel_subscribers,
	       video_id, video_title, video_thumbnail, video_view_count, video_like_count,
	       video_comment_count, video_view_subscriber_ratio, is_shorts,
	       comment_1, comment_2, comment_3, transcript, published_at
	FROM %s`

func scanStoredVideo(rows *sql.Rows) (domain.StoredVideo, error) {
	var (
		v           domain.StoredVideo
		keyword     sql.NullString
		channelURL  sql.NullString
		channelName sql.NullString
		subscribers sql.NullInt64
		thumbnail   sql.NullString
		comment1    sql.NullString
		comment2    sql.NullString
		comment3    sql.NullString
		transcript  sql.NullString
		publishedAt sql.NullTime
	)

	err := rows.Scan(
		&v.SearchID, &keyword, &channelURL, &channelName, &subscribers,
		&v.VideoID, &v.Title, &thumbnail, &v.Views, &v.Likes,
		&v.Comments, &v.Ratio, &v.IsShorts,
		&comment1, &comment2, &comment3, &transcript, &publishedAt,
	)
	if err != nil {
		return v, err
	}

	v.Keyword = keyword.String
	v.ChannelURL = channelURL.String
	v.Channel = channelName.String
	v.Subscribers = subscribers.Int64
	v.Thumbnail = thumbnail.String
	v.Comment1 = comment1.String
	v.Comment2 = comment2.String
	v.Comment3 = comment3.String
	v.Transcript = transcript.String
	if publishedAt.Valid {
		v.PublishedAt = publishedAt.Time
	}
	return v, nil
}

func (r *VideoRepository) queryVideos(ctx context.Context, table, operation, query string, args ...any) ([]domain.StoredVideo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStorageError("failed to query videos", table, operation, err)
	}
	defer rows.Close()

	videos := make([]domain.StoredVideo, 0)
	for rows.Next() {
		v, err := scanStoredVideo(rows)
		if err != nil {
			return nil, errors.NewStorageError("failed to scan video row", table, operation, err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("failed to iterate video rows", table, operation, err)
	}
	return videos, nil
}

// LoadVideos returns every row saved for one run.
func (r *VideoRepository) LoadVideos(ctx context.Context, table, searchID string) ([]domain.StoredVideo, error) {
	quoted, err := QuoteTable(table)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(storedVideoSelect, quoted) + `
	WHERE search_unique_id = $1
	ORDER BY video_view_subscriber_ratio DESC`

	return r.queryVideos(ctx, table, "load", query, searchID)
}

// TopVideosBySearch returns the highest-ratio row of every run, newest run first.
func (r *VideoRepository) TopVideosBySearch(ctx context.Context, table string) ([]domain.StoredVideo, error) {
	quoted, err := QuoteTable(table)
	if err != nil {
		return nil, err
	}
	query := strings.Replace(fmt.Sprintf(storedVideoSelect, quoted),
		"SELECT", "SELECT DISTINCT ON (search_unique_id)", 1) + `
	ORDER BY search_unique_id DESC, video_view_subscriber_ratio DESC`

	return r.queryVideos(ctx, table, "top", query)
}

func (r *VideoRepository) SaveAnalysis(ctx context.Context, table, searchID string, isShorts bool, analysis string) error {
	quoted, err := QuoteTable(table)
	if err != nil {
		return err
	}

	query := insertStatement(quoted, []string{"search_unique_id", "is_shorts", "llm_analysis"})
	if _, err := r.db.ExecContext(ctx, query, searchID, isShorts, analysis); err != nil {
		return errors.NewStorageError("failed to save analysis", table, "insert", err)
	}

	r.logger.Info("Analysis saved",
		zap.String("table", table),
		zap.String("search_id", searchID),
		zap.Bool("is_shorts", isShorts))
	return nil
}

func (r *VideoRepository) SaveThumbnailAnalysis(ctx context.Context, table string, items []domain.ThumbnailAnalysis) error {
	quoted, err := QuoteTable(table)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("failed to begin transaction", table, "insert", err)
	}
	defer tx.Rollback()

	query := insertStatement(quoted, thumbnailColumns)
	for _, item := range items {
		_, err := tx.ExecContext(ctx, query,
			item.SearchID, item.Keyword, item.ChannelURL, item.Channel, item.VideoID,
			item.Title, item.Thumbnail, item.IsShorts, item.Analysis)
		if err != nil {
			return errors.NewStorageError(
				fmt.Sprintf("failed to insert thumbnail analysis %s", item.VideoID), table, "insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorageError("failed to commit thumbnail analysis", table, "insert", err)
	}
	return nil
}

func (r *VideoRepository) EnsureFeedbackTables(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, feedbackSchema); err != nil {
		return errors.NewStorageError("failed to create feedback tables", "feedback_*", "create", err)
	}
	return nil
}

// ValidateFeedback checks the score range (1-5) and platform.
func ValidateFeedback(fb domain.Feedback) error {
	if !fb.Platform.IsValid() {
		return errors.NewValidationError("unknown feedback platform", "platform", fb.Platform)
	}
	if fb.Score < 1 || fb.Score > 5 {
		return errors.NewValidationError("score must be between 1 and 5", "score", fb.Score)
	}
	if strings.TrimSpace(fb.SearchID) == "" {
		return errors.NewValidationError("search id is required", "search_unique_id", fb.SearchID)
	}
	return nil
}

// feedbackInsert maps the shared Feedback fields onto the platform's own columns.
func feedbackInsert(fb domain.Feedback) (table, query string, args []any) {
	switch fb.Platform {
	case domain.FeedbackInstagram:
		table = "feedback_ig"
		query = insertStatement(table, []string{"search_unique_id", "pics", "caption", "hashtags", "score", "feedback"})
		args = []any{fb.SearchID, fb.Thumbnail, fb.Title, fb.Script, fb.Score, fb.Comment}
	case domain.FeedbackThreads:
		table = "feedback_th"
		query = insertStatement(table, []string{"search_unique_id", "post", "pics", "tags", "score", "feedback"})
		args = []any{fb.SearchID, fb.Title, fb.Thumbnail, fb.Script, fb.Score, fb.Comment}
	default:
		table = "feedback_yt"
		query = insertStatement(table, []string{"search_unique_id", "title", "thumbnail", "script", "score", "feedback", "platform"})
		args = []any{fb.SearchID, fb.Title, fb.Thumbnail, fb.Script, fb.Score, fb.Comment, "youtube"}
	}
	return table, query, args
}

func (r *VideoRepository) SaveFeedback(ctx context.Context, fb domain.Feedback) error {
	if err := ValidateFeedback(fb); err != nil {
		return err
	}
	if err := r.EnsureFeedbackTables(ctx); err != nil {
		return err
	}

	table, query, args := feedbackInsert(fb)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.NewStorageError("failed to save feedback", table, "insert", err)
	}
	return nil
}
