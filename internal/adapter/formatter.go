package adapter

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/util"
)

// RunSummary is the footer printed after an ingest.
type RunSummary struct {
	SearchID       string
	Source         domain.ContentSource
	Keyword        string
	Videos         int
	Shorts         int
	Saved          bool
	QuotaUsed      int
	QuotaRemaining int
}

// AnalysisReport is one analysed format of a run.
type AnalysisReport struct {
	ContentLabel string
	Provider     string
	Model        string
	UsedFallback bool
	Text         string
}

// ReportFormatter renders pipeline results for the terminal.
type ReportFormatter struct {
	titleWidth int
}

// NewReportFormatter creates a formatter. A non-positive width uses the default.
func NewReportFormatter(titleWidth int) *ReportFormatter {
	if titleWidth <= 0 {
		titleWidth = constants.StringLimits.TitleDisplay
	}
	return &ReportFormatter{titleWidth: titleWidth}
}

// FormatVideos lays the rows of one run out as a table.
func (f *ReportFormatter) FormatVideos(rows []domain.StoredVideo) string {
	if len(rows) == 0 {
		return "📭 수집된 영상이 없습니다."
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VIDEO ID\tCHANNEL\tTITLE\tVIEWS\tLIKES\tCOMMENTS\tRATIO\tFORMAT")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.2f\t%s\n",
			r.VideoID, r.Channel, f.truncateTitle(r.Title),
			r.Views, r.Likes, r.Comments, r.Ratio, formatLabel(r.IsShorts))
	}
	_ = w.Flush()

	return strings.TrimRight(sb.String(), "\n")
}

// FormatTopVideos lays out the best video of every stored run.
func (f *ReportFormatter) FormatTopVideos(rows []domain.StoredVideo) string {
	if len(rows) == 0 {
		return "📭 저장된 검색 결과가 없습니다."
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEARCH ID\tKEYWORD\tCHANNEL\tTITLE\tVIEWS\tRATIO\tFORMAT")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2f\t%s\n",
			r.SearchID, r.Keyword, r.Channel, f.truncateTitle(r.Title),
			r.Views, r.Ratio, formatLabel(r.IsShorts))
	}
	_ = w.Flush()

	return strings.TrimRight(sb.String(), "\n")
}

// FormatRunSummary formats the footer of an ingest.
func (f *ReportFormatter) FormatRunSummary(s RunSummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔎 search id: %s\n", s.SearchID))
	if s.Keyword != "" {
		sb.WriteString(fmt.Sprintf("   %s: %s\n", s.Source, s.Keyword))
	}
	sb.WriteString(fmt.Sprintf("   영상 %d개 (쇼츠 %d / 롱폼 %d)\n", s.Videos, s.Shorts, s.Videos-s.Shorts))
	sb.WriteString(fmt.Sprintf("   API 할당량 %d 사용 / %d 남음", s.QuotaUsed, s.QuotaRemaining))
	if !s.Saved {
		sb.WriteString("\n   ⚠️ 저장하지 않음 (--no-save)")
	}
	return sb.String()
}

// FormatAnalysis renders an LLM analysis with its provenance.
func (f *ReportFormatter) FormatAnalysis(report AnalysisReport) (string, error) {
	return executeFormatterTemplate("analysis.tmpl", report)
}

// FormatThumbnails renders per-thumbnail reviews.
func (f *ReportFormatter) FormatThumbnails(items []domain.ThumbnailAnalysis) (string, error) {
	if len(items) == 0 {
		return "🖼️ 분석된 썸네일이 없습니다.", nil
	}
	return executeFormatterTemplate("thumbnails.tmpl", items)
}

// FormatBlogPost renders an extracted post. Summary may be empty.
func (f *ReportFormatter) FormatBlogPost(post domain.BlogPost, summary string) (string, error) {
	return executeFormatterTemplate("blog_post.tmpl", struct {
		Title   string
		URL     string
		Content string
		Summary string
	}{
		Title:   post.Title,
		URL:     post.URL,
		Content: util.TruncateString(post.Content, constants.StringLimits.ReferenceLength),
		Summary: summary,
	})
}

// FormatFeedbackSaved confirms a stored rating.
func (f *ReportFormatter) FormatFeedbackSaved(fb domain.Feedback) string {
	return fmt.Sprintf("✅ 피드백이 저장되었습니다. (%s, %d점)", fb.Platform, fb.Score)
}

// FormatError formats error message
func (f *ReportFormatter) FormatError(message string) string {
	return fmt.Sprintf("❌ %s", message)
}

func (f *ReportFormatter) truncateTitle(title string) string {
	return util.TruncateString(title, f.titleWidth)
}

func formatLabel(isShorts bool) string {
	if isShorts {
		return "shorts"
	}
	return "long"
}
