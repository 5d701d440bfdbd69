package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"column:name;not null" json:"name"`
	Slug        string     `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	ParentID    *uuid.UUID `gorm:"type:uuid;column:parent_id;index" json:"parent_id"`
	Parent      *Category  `gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
	Description string     `gorm:"column:description;not null;default:''" json:"description"`
	SortOrder   int        `gorm:"column:sort_order;not null;default:0;index" json:"sort_order"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CategoryOption is the lightweight shape used by selects and filters.
type CategoryOption struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
}
