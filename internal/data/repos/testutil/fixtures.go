package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/catalog-backend/internal/domain"
)

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, name, slug string, parentID *uuid.UUID) *types.Category {
	tb.Helper()
	c := &types.Category{
		ID:       uuid.New(),
		Name:     name,
		Slug:     slug,
		ParentID: parentID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, sku string, categoryID *uuid.UUID) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:         uuid.New(),
		Name:       "Product " + sku,
		SKU:        sku,
		CategoryID: categoryID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, productID *uuid.UUID, storagePath string) *types.Asset {
	tb.Helper()
	a := &types.Asset{
		ID:          uuid.New(),
		ProductID:   productID,
		FileName:    storagePath,
		FileType:    types.FileTypeForName(storagePath),
		FileURL:     "https://cdn.test/" + storagePath,
		StoragePath: storagePath,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed asset: %v", err)
	}
	return a
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
