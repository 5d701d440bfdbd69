package gallery

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/catalog-backend/internal/data/repos/sqlutil"
	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type NoteRepo interface {
	Upsert(dbc dbctx.Context, imageKey, content string) (*types.Note, error)
	Get(dbc dbctx.Context, imageKey string) (*types.Note, error)
	GetByKeys(dbc dbctx.Context, keys []string) (map[string]*types.Note, error)
	// KeysMatching returns image keys whose note content contains q.
	KeysMatching(dbc dbctx.Context, q string) ([]string, error)
}

type noteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return &noteRepo{db: db, log: baseLog.With("repo", "NoteRepo")}
}

func (r *noteRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *noteRepo) Upsert(dbc dbctx.Context, imageKey, content string) (*types.Note, error) {
	now := time.Now().UTC()
	row := &types.Note{ImageKey: imageKey, Content: content, CreatedAt: now, UpdatedAt: now}
	if err := r.tx(dbc).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "image_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, imageKey)
}

func (r *noteRepo) Get(dbc dbctx.Context, imageKey string) (*types.Note, error) {
	var row types.Note
	if err := r.tx(dbc).Where("image_key = ?", imageKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *noteRepo) GetByKeys(dbc dbctx.Context, keys []string) (map[string]*types.Note, error) {
	out := map[string]*types.Note{}
	if len(keys) == 0 {
		return out, nil
	}
	var rows []*types.Note
	if err := r.tx(dbc).Where("image_key IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, n := range rows {
		out[n.ImageKey] = n
	}
	return out, nil
}

func (r *noteRepo) KeysMatching(dbc dbctx.Context, q string) ([]string, error) {
	var out []string
	if q == "" {
		return out, nil
	}
	if err := r.tx(dbc).
		Model(&types.Note{}).
		Where(sqlutil.ILike("content"), sqlutil.ContainsPattern(q)).
		Pluck("image_key", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
