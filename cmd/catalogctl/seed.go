package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/yungbote/catalog-backend/internal/app"
	"github.com/yungbote/catalog-backend/internal/seed"
)

const fileFlag = "file"

var seedFlags = map[string]cobraflags.Flag{
	fileFlag: &cobraflags.StringFlag{
		Name:  fileFlag,
		Value: "",
		Usage: "YAML fixture to load instead of the embedded one",
	},
}

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo categories and products (existing slugs and SKUs are skipped)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixture, err := loadFixture(seedFlags[fileFlag].GetString())
			if err != nil {
				return err
			}
			return withApp(true, func(a *app.App) error {
				res, err := seed.Apply(dbcFrom(cmd.Context()), a.Log, fixture, a.Services.Category, a.Services.Product)
				if err != nil {
					return err
				}
				fmt.Printf("categories: %d created, %d skipped\n", res.CategoriesCreated, res.CategoriesSkipped)
				fmt.Printf("products:   %d created, %d skipped\n", res.ProductsCreated, res.ProductsSkipped)
				return nil
			})
		},
	}
	cobraflags.RegisterMap(cmd, seedFlags)
	return cmd
}

func loadFixture(path string) (*seed.Fixture, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return seed.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return seed.Parse(raw)
}
