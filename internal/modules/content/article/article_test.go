package article

import (
	"testing"
	"time"

	"github.com/nadi-health/core/internal/modules/content/block"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Health Financing: Asia!":      "health-financing-asia",
		"  --Universal   Coverage--  ": "universal-coverage",
		"2025 Budget / Review":         "2025-budget-review",
		"health-financing-asia":        "health-financing-asia",
		"Café Économie":                "caf-conomie",
		"!!!":                          "",
	}
	for in, want := range cases {
		got := Slugify(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, Slugify(got), "slugify must be idempotent for %q", in)
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("health-financing-asia"))
	assert.True(t, ValidSlug("a1"))
	assert.False(t, ValidSlug("Health"))
	assert.False(t, ValidSlug("a--b"))
	assert.False(t, ValidSlug("-a"))
	assert.False(t, ValidSlug("../etc"))
	assert.False(t, ValidSlug(""))
}

func TestApplyDefaults(t *testing.T) {
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

	a := Article{Title: "T", Slug: "t"}
	ApplyDefaults(&a, "", now)
	assert.Equal(t, DefaultCategory, a.Category)
	assert.Equal(t, "2025-03-04", a.Date)
	assert.Equal(t, DefaultReadTime, a.ReadTime)
	assert.Equal(t, DefaultAuthor, a.Author)
	assert.Equal(t, CoverCharcoal, a.CoverColor)
	assert.Equal(t, []string{}, a.SEO.Keywords)
	assert.Equal(t, block.Sequence{}, a.Blocks)
	assert.Empty(t, a.CoverImage)

	b := Article{Title: "T", Slug: "t", Author: "", Category: "BRIEF", CoverColor: CoverDark}
	ApplyDefaults(&b, "Dr. Rao", now)
	assert.Equal(t, "Dr. Rao", b.Author)
	assert.Equal(t, "BRIEF", b.Category)
	assert.Equal(t, CoverDark, b.CoverColor)
}

func TestValidate(t *testing.T) {
	valid := func() Article {
		a := Article{Title: "T", Slug: "t"}
		ApplyDefaults(&a, "", time.Now())
		return a
	}

	a := valid()
	require.NoError(t, Validate(&a))

	cases := map[string]func(*Article){
		"missing title": func(a *Article) { a.Title = " " },
		"bad slug":      func(a *Article) { a.Slug = "Not A Slug" },
		"bad color":     func(a *Article) { a.CoverColor = "teal" },
		"bad date":      func(a *Article) { a.Date = "04/03/2025" },
		"bad cover":     func(a *Article) { a.CoverImage = "not a url" },
	}
	for name, mutate := range cases {
		a := valid()
		mutate(&a)
		assert.ErrorIs(t, Validate(&a), apperr.ErrValidation, name)
	}

	a = valid()
	a.Blocks = block.Sequence{block.Lead("x"), {Type: "carousel"}}
	assert.ErrorIs(t, Validate(&a), apperr.ErrSchemaViolation)
}

func TestSortByDate(t *testing.T) {
	items := []Article{
		{Slug: "a", Date: "2025-01-01"},
		{Slug: "b", Date: "2025-06-01"},
		{Slug: "c", Date: "2024-12-01"},
		{Slug: "d", Date: "2025-01-01"},
	}
	SortByDate(items)
	var got []string
	for _, a := range items {
		got = append(got, a.Slug)
	}
	assert.Equal(t, []string{"b", "a", "d", "c"}, got)
}
