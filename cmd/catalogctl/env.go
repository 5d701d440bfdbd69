package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/catalog-backend/internal/app"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
)

// withApp opens the database and clients without the HTTP layer.
func withApp(migrate bool, fn func(a *app.App) error) error {
	a, err := app.NewWithOptions(app.Options{Migrate: migrate})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func dbcFrom(ctx context.Context) dbctx.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return dbctx.Context{Ctx: ctx}
}

func parseIntFlag(name, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("--%s: %q is not a number", name, raw)
	}
	return n, nil
}
