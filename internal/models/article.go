package models

// ArticleModel is one article row. Blocks hold the strict JSON encoding of
// the article body; the slug is the natural key used for upserts.
type ArticleModel struct {
	Base
	Slug           string      `gorm:"size:191;uniqueIndex;not null"`
	Title          string      `gorm:"not null"`
	Subtitle       string      `gorm:"type:text"`
	Category       string      `gorm:"size:64;index"`
	Date           string      `gorm:"size:10;index"`
	ReadTime       string      `gorm:"size:64"`
	Author         string      `gorm:"size:191"`
	CoverColor     string      `gorm:"size:16"`
	CoverImage     string      `gorm:"type:text"`
	SEODescription string      `gorm:"column:seo_description;type:text"`
	SEOKeywords    StringArray `gorm:"column:seo_keywords;type:longtext"`
	Blocks         string      `gorm:"type:longtext"`
}

func (ArticleModel) TableName() string { return "articles" }
