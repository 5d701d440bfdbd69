package assets

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/domain/catalog"
)

type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
)

// ManagedPrefix marks storage paths owned by this service. Anything else
// points into the legacy bucket and is never physically deleted.
const ManagedPrefix = "products/"

type State string

const (
	StateActive  State = "active"
	StateTrashed State = "trashed"
)

type Asset struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID   *uuid.UUID       `gorm:"type:uuid;column:product_id;index" json:"product_id"`
	Product     *catalog.Product `gorm:"foreignKey:ProductID;references:ID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	FileName    string           `gorm:"column:file_name;not null;index" json:"file_name"`
	FileType    FileType         `gorm:"column:file_type;not null" json:"file_type"`
	FileURL     string           `gorm:"column:file_url;not null" json:"file_url"`
	StoragePath string           `gorm:"column:storage_path;not null;index" json:"storage_path"`
	IsPrimary   bool             `gorm:"column:is_primary;not null;default:false" json:"is_primary"`
	Width       *int             `gorm:"column:width" json:"width,omitempty"`
	Height      *int             `gorm:"column:height" json:"height,omitempty"`
	Notes       string           `gorm:"column:notes;not null;default:''" json:"notes"`

	UploadedAt time.Time      `gorm:"column:created_at;not null;autoCreateTime;index" json:"uploaded_at"`
	UpdatedAt  time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Asset) TableName() string { return "assets" }

func (a *Asset) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *Asset) State() State {
	if a.DeletedAt.Valid {
		return StateTrashed
	}
	return StateActive
}

func (a *Asset) IsManaged() bool { return IsManagedPath(a.StoragePath) }

func IsManagedPath(p string) bool {
	return strings.HasPrefix(strings.TrimLeft(p, "/"), ManagedPrefix)
}

// FileTypeForName classifies by extension: PDFs are documents, everything
// else is treated as an image.
func FileTypeForName(name string) FileType {
	if strings.EqualFold(path.Ext(name), ".pdf") {
		return FileTypeDocument
	}
	return FileTypeImage
}

type AssetNoteHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID   uuid.UUID `gorm:"type:uuid;column:asset_id;not null;index" json:"asset_id"`
	Asset     *Asset    `gorm:"foreignKey:AssetID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Note      string    `gorm:"column:note;not null" json:"note"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (AssetNoteHistory) TableName() string { return "asset_note_history" }

func (h *AssetNoteHistory) BeforeCreate(*gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

type AssetDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID     uuid.UUID `gorm:"type:uuid;column:asset_id;not null;index" json:"asset_id"`
	Asset       *Asset    `gorm:"foreignKey:AssetID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	FileName    string    `gorm:"column:file_name;not null" json:"file_name"`
	FileURL     string    `gorm:"column:file_url;not null" json:"file_url"`
	FileSize    int64     `gorm:"column:file_size;not null;default:0" json:"file_size"`
	StoragePath string    `gorm:"column:storage_path;not null;default:''" json:"storage_path"`
	UploadedAt  time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"uploaded_at"`
}

func (AssetDocument) TableName() string { return "asset_documents" }

func (d *AssetDocument) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
