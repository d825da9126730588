package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BlogStatusDraft     = "DRAFT"
	BlogStatusPublished = "PUBLISHED"
)

type BlogPost struct {
	gorm.Model
	AuthorID      uint       `json:"authorID" gorm:"not null;index"`
	Author        User       `json:"author" gorm:"foreignKey:AuthorID"`
	Title         string     `json:"title" gorm:"not null"`
	Slug          string     `json:"slug" gorm:"uniqueIndex;not null"`
	Body          string     `json:"body" gorm:"type:text"`
	CoverImageURL string     `json:"coverImageURL"`
	Status        string     `json:"status" gorm:"type:varchar(10);default:DRAFT;index"` // DRAFT, PUBLISHED
	PublishedAt   *time.Time `json:"publishedAt"`
	Views         int64      `json:"views" gorm:"default:0"`
}
