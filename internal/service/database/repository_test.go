package database

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/pkg/errors"
)

func TestQuoteTable(t *testing.T) {
	quoted, err := QuoteTable("channel_videos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quoted != `"channel_videos"` {
		t.Fatalf("unexpected quoting: %s", quoted)
	}

	for _, bad := range []string{"", "1table", "videos; DROP TABLE x", `a"b`, "schema.table"} {
		_, err := QuoteTable(bad)
		var vErr *errors.ValidationError
		if !stderrors.As(err, &vErr) {
			t.Fatalf("expected ValidationError for %q, got %v", bad, err)
		}
	}
}

func TestInsertStatement(t *testing.T) {
	got := insertStatement(`"t"`, []string{"a", "b", "c"})
	want := `INSERT INTO "t" (a, b, c) VALUES ($1, $2, $3)`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestVideoArgsFillsEmptyComments(t *testing.T) {
	row := domain.StoredVideo{SearchID: "s", VideoID: "v", Comment1: "hi"}
	args := videoArgs(row)

	if len(args) != len(videoColumns) {
		t.Fatalf("expected %d args, got %d", len(videoColumns), len(args))
	}
	if args[15] != "hi" || args[16] != domain.EmptyCommentSlot || args[17] != domain.EmptyCommentSlot {
		t.Fatalf("unexpected comment args: %v %v %v", args[15], args[16], args[17])
	}
	if args[14] != nil {
		t.Fatalf("zero published_at should be stored as NULL, got %v", args[14])
	}

	row.PublishedAt = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	if _, ok := videoArgs(row)[14].(time.Time); !ok {
		t.Fatalf("expected published_at time argument")
	}
}

func TestValidateFeedback(t *testing.T) {
	ok := domain.Feedback{Platform: domain.FeedbackYouTube, SearchID: "s1", Score: 4}
	if err := ValidateFeedback(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []domain.Feedback{
		{Platform: "tiktok", SearchID: "s1", Score: 3},
		{Platform: domain.FeedbackInstagram, SearchID: "s1", Score: 0},
		{Platform: domain.FeedbackInstagram, SearchID: "s1", Score: 6},
		{Platform: domain.FeedbackYouTube, SearchID: " ", Score: 3},
		{Platform: domain.FeedbackThreads, SearchID: "s1", Score: 9},
	}
	for _, fb := range cases {
		if err := ValidateFeedback(fb); err == nil {
			t.Fatalf("expected validation error for %+v", fb)
		}
	}

	threads := domain.Feedback{Platform: domain.FeedbackThreads, SearchID: "s1", Score: 5}
	if err := ValidateFeedback(threads); err != nil {
		t.Fatalf("threads feedback should validate: %v", err)
	}
}

func TestFeedbackInsertPerPlatform(t *testing.T) {
	fb := domain.Feedback{
		SearchID:  "20250301120000-ab12cd",
		Title:     "T",
		Thumbnail: "P",
		Script:    "S",
		Score:     4,
		Comment:   "좋아요",
	}

	cases := []struct {
		platform domain.FeedbackPlatform
		table    string
		columns  string
		args     []any
	}{
		{domain.FeedbackYouTube, "feedback_yt", "(search_unique_id, title, thumbnail, script, score, feedback, platform)",
			[]any{fb.SearchID, "T", "P", "S", 4, "좋아요", "youtube"}},
		{domain.FeedbackInstagram, "feedback_ig", "(search_unique_id, pics, caption, hashtags, score, feedback)",
			[]any{fb.SearchID, "P", "T", "S", 4, "좋아요"}},
		{domain.FeedbackThreads, "feedback_th", "(search_unique_id, post, pics, tags, score, feedback)",
			[]any{fb.SearchID, "T", "P", "S", 4, "좋아요"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.platform), func(t *testing.T) {
			fb.Platform = tc.platform
			table, query, args := feedbackInsert(fb)
			if table != tc.table {
				t.Fatalf("expected table %s, got %s", tc.table, table)
			}
			if !strings.Contains(query, tc.table+" "+tc.columns) {
				t.Fatalf("unexpected statement: %s", query)
			}
			if len(args) != len(tc.args) {
				t.Fatalf("expected %d args, got %d", len(tc.args), len(args))
			}
			for i := range args {
				if args[i] != tc.args[i] {
					t.Fatalf("arg %d: expected %v, got %v", i, tc.args[i], args[i])
				}
			}
		})
	}
}

func TestFeedbackSchemaCreatesAllPlatforms(t *testing.T) {
	for _, table := range []string{"feedback_yt", "feedback_ig", "feedback_th"} {
		if !strings.Contains(feedbackSchema, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Fatalf("schema missing %s", table)
		}
	}
}

func TestDSNQuoting(t *testing.T) {
	cfg := PostgresConfig{Host: "localhost", Port: 5432, User: "app", Password: "p ss'w", Database: "yt"}
	dsn := cfg.DSN()

	if !strings.Contains(dsn, `password='p ss\'w'`) {
		t.Fatalf("password not quoted: %s", dsn)
	}
	if !strings.Contains(dsn, "host=localhost port=5432 user=app dbname=yt sslmode=disable") {
		t.Fatalf("unexpected dsn: %s", dsn)
	}

	cfg.Password = ""
	if strings.Contains(cfg.DSN(), "password=") {
		t.Fatalf("empty password should be omitted: %s", cfg.DSN())
	}
}
