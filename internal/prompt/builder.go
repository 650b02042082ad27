package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type TemplateName string

const (
	TemplateVideoAnalysis    TemplateName = "video_analysis.tmpl"
	TemplateContentKeyword   TemplateName = "content_keyword.tmpl"
	TemplateContentChannel   TemplateName = "content_channel.tmpl"
	TemplateContentPDF       TemplateName = "content_pdf.tmpl"
	TemplateContentInstagram TemplateName = "content_instagram.tmpl"
	TemplateContentThreads   TemplateName = "content_threads.tmpl"
	TemplateThumbnail        TemplateName = "thumbnail_analysis.tmpl"
)

var promptFuncs = template.FuncMap{
	"trim": strings.TrimSpace,
}

// PromptBuilder renders the embedded LLM prompt templates.
// The whole set is parsed once on first use and shared afterwards.
type PromptBuilder struct {
	once sync.Once
	set  *template.Template
	err  error
}

var (
	defaultBuilderOnce sync.Once
	defaultBuilder     *PromptBuilder
)

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

func DefaultPromptBuilder() *PromptBuilder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewPromptBuilder()
	})
	return defaultBuilder
}

// Render executes the named template. Missing fields are an error rather than "<no value>".
func (pb *PromptBuilder) Render(name TemplateName, data any) (string, error) {
	set, err := pb.templates()
	if err != nil {
		return "", err
	}

	tmpl := set.Lookup(string(name))
	if tmpl == nil {
		return "", fmt.Errorf("unknown prompt template %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (pb *PromptBuilder) templates() (*template.Template, error) {
	pb.once.Do(func() {
		pb.set, pb.err = template.New("prompts").
			Option("missingkey=error").
			Funcs(promptFuncs).
			ParseFS(templateFS, "templates/*.tmpl")
		if pb.err != nil {
			pb.err = fmt.Errorf("parse prompt templates: %w", pb.err)
		}
	})
	return pb.set, pb.err
}
