package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
	ProductStatusArchived  ProductStatus = "archived"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusPublished, ProductStatusArchived:
		return true
	default:
		return false
	}
}

// Specification is one ordered key/value row of a product's technical data.
type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Product struct {
	ID             uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID     *uuid.UUID                         `gorm:"type:uuid;column:category_id;index" json:"category_id"`
	Category       *Category                          `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Name           string                             `gorm:"column:name;not null;index" json:"name"`
	SKU            string                             `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Description    string                             `gorm:"column:description;not null;default:''" json:"description"`
	Dimensions     string                             `gorm:"column:dimensions;not null;default:''" json:"dimensions"`
	Specifications datatypes.JSONSlice[Specification] `gorm:"column:specifications" json:"specifications"`
	Status         ProductStatus                      `gorm:"column:status;not null;default:draft;index" json:"status"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime;index" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProductStatusDraft
	}
	return nil
}

// ProductListRow is one row of the paginated product table.
type ProductListRow struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	SKU          string        `json:"sku"`
	Status       ProductStatus `json:"status"`
	CategoryID   *uuid.UUID    `json:"category_id"`
	CategoryName *string       `json:"category_name"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type Folder struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
