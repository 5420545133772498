package render

import (
	"strings"
	"testing"

	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/modules/content/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func allBlocks() block.Sequence {
	return block.Sequence{
		block.Lead("Opening"),
		block.Paragraph("Body"),
		block.Heading("Section"),
		block.Quote("To be", strPtr("Hamlet")),
		block.Pullquote("Big idea"),
		block.TwoColumn("L", "R"),
		block.Asymmetric("Wide", "Narrow", boolPtr(true)),
		block.Highlight("Insight"),
		block.Callout("KEY FINDING", "Finding"),
		block.List("one", "two"),
		block.Stat("63%", "out of pocket"),
		block.Divider(),
	}
}

func sampleArticle() *article.Article {
	return &article.Article{
		Slug: "sample", Title: "Sample <Title>", Subtitle: "Sub", Category: "POLICY BRIEF",
		Date: "2025-01-02", ReadTime: "5 min read", Author: "NADI", CoverColor: article.CoverCrimson,
		SEO:    article.SEO{Description: "desc", Keywords: []string{"a", "b"}},
		Blocks: allBlocks(),
	}
}

func TestNodesPreserveOrderAndCount(t *testing.T) {
	t.Parallel()

	blocks := allBlocks()
	nodes := Nodes(blocks)
	require.Len(t, nodes, len(blocks))
	for i := range blocks {
		assert.Equal(t, blocks[i].Type, nodes[i].Type, "node %d", i)
	}

	assert.Equal(t, "Hamlet", nodes[3].Attribution)
	assert.True(t, nodes[6].OffsetRight)
	assert.Equal(t, []string{"one", "two"}, nodes[9].Items)
	assert.Equal(t, Node{Type: block.TypeStat, Value: "63%", Label: "out of pocket"}, nodes[10])
	assert.Equal(t, Node{Type: block.TypeDivider}, nodes[11])
}

func TestNodesSkipUnknownType(t *testing.T) {
	t.Parallel()

	nodes := Nodes([]block.Block{{Type: "carousel"}, block.Divider()})
	require.Len(t, nodes, 1)
	assert.Equal(t, block.TypeDivider, nodes[0].Type)
}

func TestNodesEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Nodes(nil))
}

func TestHTML(t *testing.T) {
	t.Parallel()

	out, err := HTML(sampleArticle())
	require.NoError(t, err)

	for _, want := range []string{
		`<p class="article-lead">Opening</p>`,
		`<p class="article-text">Body</p>`,
		`<h2 class="article-heading">Section</h2>`,
		`<figure class="article-quote"><blockquote>To be</blockquote><figcaption>— Hamlet</figcaption></figure>`,
		`class="article-pullquote"`,
		`<div class="article-two-col"><div class="article-col">L</div><div class="article-col">R</div></div>`,
		`article-asymmetric--offset-right`,
		`<div class="article-highlight">Insight</div>`,
		`<span class="article-callout-label">KEY FINDING</span>`,
		`<ul class="article-list"><li>one</li><li>two</li></ul>`,
		`<span class="article-stat-value">63%</span>`,
		`<hr class="article-divider" />`,
		`<header class="cover--crimson">`,
		`<meta name="keywords" content="a, b" />`,
		`Sample &lt;Title&gt;`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "<Title>")

	again, err := HTML(sampleArticle())
	require.NoError(t, err)
	assert.Equal(t, out, again)

	lead := strings.Index(out, "article-lead")
	divider := strings.Index(out, "article-divider\"")
	assert.Less(t, lead, divider)
}

func TestHTMLQuoteWithoutAttributionAndOffsetLeft(t *testing.T) {
	t.Parallel()

	body, err := BodyHTML(Nodes([]block.Block{
		block.Quote("Alone", strPtr("")),
		block.Asymmetric("a", "b", nil),
	}))
	require.NoError(t, err)
	assert.NotContains(t, body, "figcaption")
	assert.Contains(t, body, "article-asymmetric--offset-left")
}

func TestHTMLEmptyBody(t *testing.T) {
	t.Parallel()

	a := sampleArticle()
	a.Blocks = block.Sequence{}
	out, err := HTML(a)
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="article-body">`)
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	md := Markdown(sampleArticle())
	for _, want := range []string{
		"# Sample <Title>\n",
		"_Sub_",
		"**Opening**",
		"## Section",
		"> To be\n>\n> — Hamlet",
		"> **KEY FINDING**: Finding",
		"- one\n- two",
		"**63%** out of pocket",
		"---",
	} {
		assert.Contains(t, md, want)
	}
}

func TestMarkdownHTML(t *testing.T) {
	t.Parallel()

	out, err := MarkdownHTML(sampleArticle())
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Section</h2>")
	assert.Contains(t, out, "<hr />")
	assert.Contains(t, out, "<li>one</li>")
	assert.Contains(t, out, "<blockquote>")
	assert.Contains(t, out, "<title>Sample &lt;Title&gt;</title>")
}
