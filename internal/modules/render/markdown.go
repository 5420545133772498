package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/modules/content/block"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithXHTML(),
	),
)

// Markdown projects a as a Markdown document, one section per node.
func Markdown(a *article.Article) string {
	var b strings.Builder
	b.WriteString("# " + oneLine(a.Title) + "\n\n")
	if a.Subtitle != "" {
		b.WriteString("_" + oneLine(a.Subtitle) + "_\n\n")
	}
	b.WriteString(oneLine(a.Category) + " · " + a.Date + " · " + oneLine(a.ReadTime) + " · " + oneLine(a.Author) + "\n")

	for _, n := range Nodes(a.Blocks) {
		b.WriteString("\n")
		b.WriteString(markdownNode(n))
		b.WriteString("\n")
	}
	return b.String()
}

func markdownNode(n Node) string {
	switch n.Type {
	case block.TypeLead:
		return "**" + oneLine(n.Text) + "**"
	case block.TypeHeading:
		return "## " + oneLine(n.Text)
	case block.TypeQuote:
		s := quoteLines(n.Text)
		if n.Attribution != "" {
			s += "\n>\n> — " + oneLine(n.Attribution)
		}
		return s
	case block.TypePullquote:
		return quoteLines("**" + oneLine(n.Text) + "**")
	case block.TypeTwoColumn, block.TypeAsymmetric:
		return n.Left + "\n\n" + n.Right
	case block.TypeHighlight:
		return "_**" + oneLine(n.Text) + "**_"
	case block.TypeCallout:
		return quoteLines("**" + oneLine(n.Label) + "**: " + oneLine(n.Text))
	case block.TypeList:
		lines := make([]string, 0, len(n.Items))
		for _, item := range n.Items {
			lines = append(lines, "- "+oneLine(item))
		}
		return strings.Join(lines, "\n")
	case block.TypeStat:
		return "**" + oneLine(n.Value) + "** " + oneLine(n.Label)
	case block.TypeText:
		return n.Text
	case block.TypeDivider:
		return "---"
	default:
		return ""
	}
}

func quoteLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// MarkdownHTML renders the Markdown projection of a through goldmark and
// wraps it in a minimal page.
func MarkdownHTML(a *article.Article) (string, error) {
	var body bytes.Buffer
	if err := markdownEngine.Convert([]byte(Markdown(a)), &body); err != nil {
		return "", err
	}

	title := template.HTMLEscapeString(strings.TrimSpace(a.Title))
	return `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>` + title + `</title>
  <style>
    body { margin: 0; padding: 24px; font: 16px/1.7 -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; color: #222; background: #fff; }
    main { max-width: 860px; margin: 0 auto; }
    blockquote { margin: 24px 0; padding-left: 16px; border-left: 4px solid #ddd; color: #555; }
  </style>
</head>
<body>
  <main>
` + body.String() + `  </main>
</body>
</html>`, nil
}
