package gallery

import (
	"path"
	"strings"
	"time"
)

// Note annotates a legacy bucket image, keyed by its bare file name.
type Note struct {
	ImageKey  string    `gorm:"column:image_key;primaryKey" json:"image_key"`
	Content   string    `gorm:"column:content;not null;default:''" json:"content"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Note) TableName() string { return "notes" }

type Image struct {
	Key     string `json:"key"`
	URL     string `json:"url"`
	HasNote bool   `json:"has_note"`
	Note    string `json:"note,omitempty"`
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".gif":  {},
}

func IsImageKey(key string) bool {
	_, ok := imageExtensions[strings.ToLower(path.Ext(key))]
	return ok
}
