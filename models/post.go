package models

import (
	"time"

	"gorm.io/datatypes"
)

// BlogPost is the relational source of truth for a post. The same id keys
// the search index document and the cache entry.
type BlogPost struct {
	ID        uint                        `gorm:"primaryKey" json:"id"`
	Title     string                      `gorm:"size:255;not null;index" json:"title"`
	Content   string                      `gorm:"type:text;not null" json:"content"`
	Author    string                      `gorm:"size:100;not null;index" json:"author"`
	CreatedAt time.Time                   `gorm:"not null" json:"created_at"`
	Tags      datatypes.JSONSlice[string] `json:"tags"`
}

// TableName keeps the table name used by the existing schema.
func (BlogPost) TableName() string { return "blog_posts" }
