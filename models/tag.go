package models

import "time"

// Tag is the normalized side of post tagging, independent of the
// denormalized tags column on blog_posts.
type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"size:255" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (Tag) TableName() string { return "tags" }

// PostTag joins posts and tags. Rows cascade away when either side is deleted.
type PostTag struct {
	PostID uint `gorm:"primaryKey" json:"post_id"`
	TagID  uint `gorm:"primaryKey" json:"tag_id"`

	Post BlogPost `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Tag  Tag      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (PostTag) TableName() string { return "post_tags" }

// TagWithCount is a flattened tag row joined with its post count.
type TagWithCount struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	PostCount   int64     `json:"post_count"`
}
