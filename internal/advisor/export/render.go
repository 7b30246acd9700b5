// internal/advisor/export/render.go
package export

import (
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

const DefaultTitle = "未命名方案"

type ExportInput struct {
	Title                string   `json:"title"`
	EstimatedMonthlyCost float64  `json:"estimated_monthly_cost"`
	Risks                []string `json:"risks"`
}

// RenderMarkdown lays a solution out as a short Markdown document.
func RenderMarkdown(in ExportInput) string {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultTitle
	}

	lines := []string{
		"# " + title,
		"",
		"## 月度成本估算",
		strconv.FormatFloat(in.EstimatedMonthlyCost, 'f', -1, 64) + " CNY / 月",
		"",
		"## 风险提示",
	}
	for _, risk := range in.Risks {
		lines = append(lines, "- "+risk)
	}
	return strings.Join(lines, "\n")
}

var sanitizer = bluemonday.UGCPolicy()

// RenderHTML converts Markdown to sanitised HTML.
func RenderHTML(md string) string {
	// Parsers keep state between calls.
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return string(sanitizer.SanitizeBytes(markdown.Render(doc, renderer)))
}
