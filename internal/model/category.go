package model

import "time"

const (
	// DefaultCategoryColor is applied when a category is created without a color.
	DefaultCategoryColor = "#007AFF"
	// DefaultCategoryIcon is applied when a category is created without an icon.
	DefaultCategoryIcon = "calendar"
)

// Category groups events by theme.
type Category struct {
	ID          string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" bson:"name" gorm:"uniqueIndex;size:50;not null"`
	Description string    `json:"description" bson:"description" gorm:"size:200"`
	Color       string    `json:"color" bson:"color" gorm:"size:7;not null"`
	Icon        string    `json:"icon" bson:"icon" gorm:"size:50;not null"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CategoryPatch carries the fields of a partial category update. Nil means unchanged.
type CategoryPatch struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
}

// Apply merges the non-nil fields of p into c.
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
}
