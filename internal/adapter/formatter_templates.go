package adapter

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var reportTemplateFS embed.FS

var (
	reportTemplates     *template.Template
	reportTemplatesOnce sync.Once
	reportTemplatesErr  error
)

var reportFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	// 여러 줄 본문을 들여쓰기해서 블록으로 출력
	"indent": func(prefix, s string) string {
		lines := strings.Split(strings.TrimSpace(s), "\n")
		for i, line := range lines {
			lines[i] = prefix + line
		}
		return strings.Join(lines, "\n")
	},
}

func executeFormatterTemplate(name string, data any) (string, error) {
	reportTemplatesOnce.Do(func() {
		reportTemplates, reportTemplatesErr = template.New("report").
			Funcs(reportFuncs).
			ParseFS(reportTemplateFS, "templates/*.tmpl")
	})
	if reportTemplatesErr != nil {
		return "", fmt.Errorf("parse report templates: %w", reportTemplatesErr)
	}

	var builder strings.Builder
	if err := reportTemplates.ExecuteTemplate(&builder, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}

	return strings.TrimRight(builder.String(), "\n"), nil
}
