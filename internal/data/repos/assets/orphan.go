package assets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/ctxutil"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type StorageOrphanRepo interface {
	// Record inserts or, for a known object, bumps attempts and reopens it.
	// The request that caused the failure is taken from dbc.Ctx.
	Record(dbc dbctx.Context, bucket, storagePath, reason string) error
	ListUnresolved(dbc dbctx.Context, limit int) ([]*types.StorageOrphan, error)
	MarkResolved(dbc dbctx.Context, ids []uuid.UUID) error
	IncrementAttempts(dbc dbctx.Context, id uuid.UUID, reason string) error
	CountUnresolved(dbc dbctx.Context) (int64, error)
}

type storageOrphanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStorageOrphanRepo(db *gorm.DB, baseLog *logger.Logger) StorageOrphanRepo {
	return &storageOrphanRepo{db: db, log: baseLog.With("repo", "StorageOrphanRepo")}
}

func (r *storageOrphanRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *storageOrphanRepo) Record(dbc dbctx.Context, bucket, storagePath, reason string) error {
	row := &types.StorageOrphan{
		Bucket:      bucket,
		StoragePath: storagePath,
		Reason:      reason,
		Attempts:    1,
	}
	if td := ctxutil.GetTraceData(dbc.Ctx); td != nil {
		row.RequestID = td.RequestID
		row.Route = td.Route
	}
	return r.tx(dbc).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "bucket"}, {Name: "storage_path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"reason":      reason,
			"request_id":  row.RequestID,
			"route":       row.Route,
			"attempts":    gorm.Expr("storage_orphans.attempts + 1"),
			"resolved_at": nil,
			"updated_at":  time.Now().UTC(),
		}),
	}).Create(row).Error
}

func (r *storageOrphanRepo) ListUnresolved(dbc dbctx.Context, limit int) ([]*types.StorageOrphan, error) {
	var out []*types.StorageOrphan
	q := r.tx(dbc).Where("resolved_at IS NULL").Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *storageOrphanRepo) MarkResolved(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return r.tx(dbc).
		Model(&types.StorageOrphan{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"resolved_at": now}).Error
}

func (r *storageOrphanRepo) IncrementAttempts(dbc dbctx.Context, id uuid.UUID, reason string) error {
	if id == uuid.Nil {
		return nil
	}
	return r.tx(dbc).
		Model(&types.StorageOrphan{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts": gorm.Expr("attempts + 1"),
			"reason":   reason,
		}).Error
}

func (r *storageOrphanRepo) CountUnresolved(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := r.tx(dbc).Model(&types.StorageOrphan{}).Where("resolved_at IS NULL").Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
