// Package article holds the article aggregate: metadata, SEO fields and the
// ordered block body, plus the defaulting and validation rules around it.
package article

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/nadi-health/core/internal/modules/content/block"
	"github.com/nadi-health/core/internal/pkg/apperr"
)

const (
	DefaultCategory = "ARTICLE"
	DefaultReadTime = "5 min read"
	DefaultAuthor   = "NADI"
	DateLayout      = "2006-01-02"
)

type CoverColor string

const (
	CoverCrimson  CoverColor = "crimson"
	CoverCharcoal CoverColor = "charcoal"
	CoverDark     CoverColor = "dark"
)

func (c CoverColor) Valid() bool {
	switch c {
	case CoverCrimson, CoverCharcoal, CoverDark:
		return true
	}
	return false
}

type SEO struct {
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Article is the persisted document shared by every storage backend.
type Article struct {
	Slug       string         `json:"slug"`
	Title      string         `json:"title"`
	Subtitle   string         `json:"subtitle"`
	Category   string         `json:"category"`
	Date       string         `json:"date"`
	ReadTime   string         `json:"readTime"`
	Author     string         `json:"author"`
	CoverColor CoverColor     `json:"coverColor"`
	CoverImage string         `json:"coverImage,omitempty"`
	SEO        SEO            `json:"seo"`
	Blocks     block.Sequence `json:"blocks"`
}

// Summary is the listing projection of an article, without its body.
type Summary struct {
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Subtitle   string     `json:"subtitle"`
	Category   string     `json:"category"`
	Date       string     `json:"date"`
	ReadTime   string     `json:"readTime"`
	Author     string     `json:"author"`
	CoverColor CoverColor `json:"coverColor"`
	CoverImage string     `json:"coverImage,omitempty"`
}

func (a *Article) Summary() Summary {
	return Summary{
		Slug: a.Slug, Title: a.Title, Subtitle: a.Subtitle, Category: a.Category,
		Date: a.Date, ReadTime: a.ReadTime, Author: a.Author,
		CoverColor: a.CoverColor, CoverImage: a.CoverImage,
	}
}

// Clone returns a deep copy of a.
func (a Article) Clone() Article {
	a.SEO.Keywords = append([]string{}, a.SEO.Keywords...)
	a.Blocks = a.Blocks.Clone()
	return a
}

var (
	nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)
	slugForm   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify lower-cases s, collapses every run of characters outside [a-z0-9]
// into one hyphen and trims hyphens at both ends.
func Slugify(s string) string {
	return strings.Trim(nonSlugRun.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// ValidSlug reports whether s is already in slug form. Slugs double as file
// and object names, so nothing else is accepted.
func ValidSlug(s string) bool {
	return slugForm.MatchString(s)
}

// ApplyDefaults fills every optional field that is still empty.
func ApplyDefaults(a *Article, actorName string, now time.Time) {
	if strings.TrimSpace(a.Category) == "" {
		a.Category = DefaultCategory
	}
	if a.Date == "" {
		a.Date = now.Format(DateLayout)
	}
	if strings.TrimSpace(a.ReadTime) == "" {
		a.ReadTime = DefaultReadTime
	}
	if strings.TrimSpace(a.Author) == "" {
		a.Author = strings.TrimSpace(actorName)
		if a.Author == "" {
			a.Author = DefaultAuthor
		}
	}
	if a.CoverColor == "" {
		a.CoverColor = CoverCharcoal
	}
	normalizeCollections(a)
}

// normalizeCollections makes nil collections empty so that every backend
// persists [] rather than null.
func normalizeCollections(a *Article) {
	if a.SEO.Keywords == nil {
		a.SEO.Keywords = []string{}
	}
	if a.Blocks == nil {
		a.Blocks = block.Sequence{}
	}
}

// Validate checks a fully populated article.
func Validate(a *Article) error {
	if strings.TrimSpace(a.Title) == "" {
		return apperr.Validation("title", "is required")
	}
	if a.Slug == "" {
		return apperr.Validation("slug", "is required")
	}
	if !ValidSlug(a.Slug) {
		return apperr.Validation("slug", "must contain only lower-case letters, digits and single hyphens")
	}
	if !a.CoverColor.Valid() {
		return apperr.Validation("coverColor", "must be one of crimson, charcoal, dark")
	}
	if _, err := time.Parse(DateLayout, a.Date); err != nil {
		return apperr.Validation("date", "must be formatted YYYY-MM-DD")
	}
	if a.CoverImage != "" {
		if u, err := url.Parse(a.CoverImage); err != nil || (u.Scheme == "" && !strings.HasPrefix(a.CoverImage, "/")) {
			return apperr.Validation("coverImage", "must be an absolute URL or path")
		}
	}
	return a.Blocks.Validate()
}

// SortByDate orders articles newest first. Articles sharing a date keep
// their relative order.
func SortByDate(items []Article) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date > items[j].Date
	})
}
