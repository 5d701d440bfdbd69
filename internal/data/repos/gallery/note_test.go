package gallery

import (
	"context"
	"testing"

	"github.com/yungbote/catalog-backend/internal/data/repos/testutil"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
)

func TestNoteRepoUpsertAndSearch(t *testing.T) {
	db := testutil.DB(t)
	repo := NewNoteRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	if _, err := repo.Upsert(dbc, "IMG_001.jpg", "first"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := repo.Upsert(dbc, "IMG_001.jpg", "Ceiling Rose sample")
	if err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if got.Content != "Ceiling Rose sample" {
		t.Fatalf("content: want=%q got=%q", "Ceiling Rose sample", got.Content)
	}
	if _, err := repo.Upsert(dbc, "IMG_002.jpg", "unrelated"); err != nil {
		t.Fatalf("Upsert second: %v", err)
	}

	keys, err := repo.KeysMatching(dbc, "ceiling")
	if err != nil {
		t.Fatalf("KeysMatching: %v", err)
	}
	if len(keys) != 1 || keys[0] != "IMG_001.jpg" {
		t.Fatalf("KeysMatching: want=[IMG_001.jpg] got=%v", keys)
	}

	byKey, _ := repo.GetByKeys(dbc, []string{"IMG_001.jpg", "missing.jpg"})
	if len(byKey) != 1 {
		t.Fatalf("GetByKeys: want=1 got=%d", len(byKey))
	}
	missing, err := repo.Get(dbc, "missing.jpg")
	if err != nil || missing != nil {
		t.Fatalf("Get missing: want=nil,nil got=%v,%v", missing, err)
	}
}
