package assets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StorageOrphan records an object whose row is gone but whose physical
// removal failed. The sweep retries these until they resolve. RequestID and
// Route name the API call that last left the object behind, when known.
type StorageOrphan struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Bucket      string     `gorm:"column:bucket;not null;uniqueIndex:idx_storage_orphan_object" json:"bucket"`
	StoragePath string     `gorm:"column:storage_path;not null;uniqueIndex:idx_storage_orphan_object" json:"storage_path"`
	Reason      string     `gorm:"column:reason;not null;default:''" json:"reason"`
	Attempts    int        `gorm:"column:attempts;not null;default:0" json:"attempts"`
	RequestID   string     `gorm:"column:request_id;not null;default:''" json:"request_id,omitempty"`
	Route       string     `gorm:"column:route;not null;default:''" json:"route,omitempty"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at;index" json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (StorageOrphan) TableName() string { return "storage_orphans" }

func (o *StorageOrphan) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
