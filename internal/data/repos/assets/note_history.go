package assets

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type NoteHistoryRepo interface {
	Append(dbc dbctx.Context, row *types.AssetNoteHistory) (*types.AssetNoteHistory, error)
	// ListByAsset returns newest first.
	ListByAsset(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetNoteHistory, error)
}

type noteHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteHistoryRepo(db *gorm.DB, baseLog *logger.Logger) NoteHistoryRepo {
	return &noteHistoryRepo{db: db, log: baseLog.With("repo", "NoteHistoryRepo")}
}

func (r *noteHistoryRepo) Append(dbc dbctx.Context, row *types.AssetNoteHistory) (*types.AssetNoteHistory, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Omit("Asset").Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *noteHistoryRepo) ListByAsset(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetNoteHistory, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.AssetNoteHistory
	if assetID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("asset_id = ?", assetID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
