// Package seed loads demo categories and products from YAML.
package seed

import (
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/services"
)

//go:embed seed.yaml
var defaultFixture []byte

type Category struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Parent      string `yaml:"parent"`
	Description string `yaml:"description"`
	SortOrder   int    `yaml:"sort_order"`
}

type Spec struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type Product struct {
	Name           string `yaml:"name"`
	SKU            string `yaml:"sku"`
	Category       string `yaml:"category"`
	Status         string `yaml:"status"`
	Description    string `yaml:"description"`
	Dimensions     string `yaml:"dimensions"`
	Specifications []Spec `yaml:"specifications"`
}

type Fixture struct {
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
}

type Result struct {
	CategoriesCreated int
	CategoriesSkipped int
	ProductsCreated   int
	ProductsSkipped   int
}

// Default returns the embedded fixture.
func Default() (*Fixture, error) { return Parse(defaultFixture) }

func Parse(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}
	return &f, nil
}

// Apply inserts categories in file order, then products. Existing slugs and
// SKUs are skipped, so running it twice is a no-op.
func Apply(dbc dbctx.Context, log *logger.Logger, f *Fixture, categories services.CategoryService, products services.ProductService) (*Result, error) {
	res := &Result{}
	ids := map[string]uuid.UUID{}

	for _, c := range f.Categories {
		slug := services.Slugify(c.Slug)
		if slug == "" {
			slug = services.Slugify(c.Name)
		}
		existing, err := categories.GetCategoryBySlug(dbc, slug)
		switch {
		case err == nil:
			ids[slug] = existing.ID
			res.CategoriesSkipped++
			continue
		case apierr.CodeOf(err) != "category_not_found":
			return res, fmt.Errorf("lookup category %q: %w", slug, err)
		}

		in := services.CategoryInput{
			Name:        c.Name,
			Slug:        slug,
			Description: c.Description,
			SortOrder:   c.SortOrder,
		}
		if p := services.Slugify(c.Parent); p != "" {
			parentID, ok := ids[p]
			if !ok {
				return res, fmt.Errorf("category %q: parent %q must appear earlier in the file", slug, p)
			}
			in.ParentID = &parentID
		}
		created, err := categories.CreateCategory(dbc, in)
		if err != nil {
			return res, fmt.Errorf("create category %q: %w", slug, err)
		}
		ids[slug] = created.ID
		res.CategoriesCreated++
	}

	for _, p := range f.Products {
		catID, ok := ids[services.Slugify(p.Category)]
		if !ok {
			return res, fmt.Errorf("product %q: unknown category %q", p.SKU, p.Category)
		}
		in := services.ProductInput{
			Name:        p.Name,
			SKU:         p.SKU,
			CategoryID:  &catID,
			Description: p.Description,
			Dimensions:  p.Dimensions,
			Status:      types.ProductStatus(p.Status),
		}
		for _, s := range p.Specifications {
			in.Specifications = append(in.Specifications, services.SpecificationInput{Key: s.Key, Value: s.Value})
		}
		if _, err := products.CreateProduct(dbc, in); err != nil {
			if apierr.CodeOf(err) == "sku_exists" {
				res.ProductsSkipped++
				continue
			}
			return res, fmt.Errorf("create product %q: %w", p.SKU, err)
		}
		res.ProductsCreated++
	}

	log.Info(
		"Seed applied",
		"categories_created", res.CategoriesCreated,
		"categories_skipped", res.CategoriesSkipped,
		"products_created", res.ProductsCreated,
		"products_skipped", res.ProductsSkipped,
	)
	return res, nil
}
