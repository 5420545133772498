package render

import (
	"bytes"
	"html/template"

	"github.com/nadi-health/core/internal/modules/content/article"
)

const bodyTemplate = `{{define "body"}}<div class="article-body">
{{- range .}}
{{if eq .Type "lead"}}<p class="article-lead">{{.Text}}</p>
{{- else if eq .Type "text"}}<p class="article-text">{{.Text}}</p>
{{- else if eq .Type "heading"}}<h2 class="article-heading">{{.Text}}</h2>
{{- else if eq .Type "quote"}}<figure class="article-quote"><blockquote>{{.Text}}</blockquote>{{if .Attribution}}<figcaption>— {{.Attribution}}</figcaption>{{end}}</figure>
{{- else if eq .Type "pullquote"}}<div class="article-pullquote"><span class="article-pullquote-mark">&ldquo;</span><p>{{.Text}}</p></div>
{{- else if eq .Type "two-column"}}<div class="article-two-col"><div class="article-col">{{.Left}}</div><div class="article-col">{{.Right}}</div></div>
{{- else if eq .Type "asymmetric"}}<div class="article-asymmetric {{if .OffsetRight}}article-asymmetric--offset-right{{else}}article-asymmetric--offset-left{{end}}"><div class="article-asym-left">{{.Left}}</div><div class="article-asym-right">{{.Right}}</div></div>
{{- else if eq .Type "highlight"}}<div class="article-highlight">{{.Text}}</div>
{{- else if eq .Type "callout"}}<div class="article-callout"><span class="article-callout-label">{{.Label}}</span><p>{{.Text}}</p></div>
{{- else if eq .Type "list"}}<ul class="article-list">{{range .Items}}<li>{{.}}</li>{{end}}</ul>
{{- else if eq .Type "stat"}}<div class="article-stat"><span class="article-stat-value">{{.Value}}</span><span class="article-stat-label">{{.Label}}</span></div>
{{- else if eq .Type "divider"}}<hr class="article-divider" />
{{- end}}
{{- end}}
</div>{{end}}`

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
{{- if .SEO.Description}}
  <meta name="description" content="{{.SEO.Description}}" />
{{- end}}
{{- if .SEO.Keywords}}
  <meta name="keywords" content="{{join .SEO.Keywords}}" />
{{- end}}
  <style>
    body { margin: 0; font: 17px/1.7 Georgia, "Times New Roman", serif; color: #1a1a1a; background: #fff; }
    header { padding: 48px 24px; color: #fff; }
    .cover--crimson { background: #8b1e2d; }
    .cover--charcoal { background: #2f2f33; }
    .cover--dark { background: #111; }
    main { max-width: 860px; margin: 0 auto; padding: 24px; }
    .article-two-col, .article-asymmetric { display: flex; gap: 32px; }
    .article-col { flex: 1; }
    .article-asymmetric--offset-right .article-asym-left { flex: 2; }
    .article-asymmetric--offset-left .article-asym-right { flex: 2; }
    .article-pullquote, .article-highlight, .article-callout { margin: 32px 0; padding: 16px 24px; border-left: 4px solid #8b1e2d; }
    .article-stat-value { display: block; font-size: 48px; font-weight: 700; }
  </style>
</head>
<body>
  <header class="cover--{{.CoverColor}}">
    <p class="article-category">{{.Category}}</p>
    <h1>{{.Title}}</h1>
{{- if .Subtitle}}
    <p class="article-subtitle">{{.Subtitle}}</p>
{{- end}}
    <p class="article-meta">{{.Author}} · {{.Date}} · {{.ReadTime}}</p>
  </header>
  <main>
{{- if .CoverImage}}
    <img class="article-cover" src="{{.CoverImage}}" alt="{{.Title}}" />
{{- end}}
    {{template "body" .Nodes}}
  </main>
</body>
</html>
`

var templates = template.Must(template.New("page").
	Funcs(template.FuncMap{"join": joinKeywords}).
	Parse(pageTemplate + bodyTemplate))

type pageData struct {
	article.Article
	Nodes []Node
}

// HTML renders a full standalone page for a. Output depends only on a.
func HTML(a *article.Article) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "page", pageData{Article: *a, Nodes: Nodes(a.Blocks)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BodyHTML renders only the block body of a.
func BodyHTML(blocks []Node) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "body", blocks); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func joinKeywords(items []string) string {
	var buf bytes.Buffer
	for i, item := range items {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(item)
	}
	return buf.String()
}
