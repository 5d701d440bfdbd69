package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yungbote/catalog-backend/internal/app"
	"github.com/yungbote/catalog-backend/internal/data/db"
)

func newSchemaCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema-check [table...]",
		Short: "Print columns and row counts of the given tables (all tables by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(false, func(a *app.App) error {
				reports, err := db.InspectTables(a.DB.WithContext(cmd.Context()), args...)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				for _, rep := range reports {
					if !rep.Exists {
						fmt.Fprintf(w, "%s\t(missing)\n", rep.Table)
						continue
					}
					fmt.Fprintf(w, "%s\t%d rows\n", rep.Table, rep.Rows)
					for _, c := range rep.Columns {
						null := "not null"
						if c.Nullable {
							null = "null"
						}
						fmt.Fprintf(w, "  %s\t%s\t%s\n", c.Name, c.Type, null)
					}
				}
				return w.Flush()
			})
		},
	}
}

func newSchemaFixCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema-fix",
		Short: "Apply additive schema changes (notes column, history and orphan tables)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(false, func(a *app.App) error {
				actions, err := db.FixSchema(a.DB.WithContext(cmd.Context()))
				for _, act := range actions {
					fmt.Printf("%s: %s\n", act.Table, act.Change)
				}
				if err != nil {
					return err
				}
				if len(actions) == 0 {
					fmt.Println("schema up to date")
				}
				return nil
			})
		},
	}
}
