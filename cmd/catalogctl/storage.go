package main

import (
	"errors"
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/yungbote/catalog-backend/internal/app"
	"github.com/yungbote/catalog-backend/internal/platform/gcp"
	"github.com/yungbote/catalog-backend/internal/services"
)

const (
	projectFlag     = "project"
	dirFlag         = "dir"
	concurrencyFlag = "concurrency"
	limitFlag       = "limit"
)

var errNoStorage = errors.New("object storage is not configured or unreachable")

var setupStorageFlags = map[string]cobraflags.Flag{
	projectFlag: &cobraflags.StringFlag{
		Name:  projectFlag,
		Value: "",
		Usage: "GCP project used when the bucket has to be created",
	},
}

var uploadLegacyFlags = map[string]cobraflags.Flag{
	dirFlag: &cobraflags.StringFlag{
		Name:  dirFlag,
		Value: "",
		Usage: "Local directory whose image files are uploaded to the legacy bucket root",
	},
	concurrencyFlag: &cobraflags.StringFlag{
		Name:  concurrencyFlag,
		Value: "10",
		Usage: "Parallel uploads",
	},
}

var sweepFlags = map[string]cobraflags.Flag{
	limitFlag: &cobraflags.StringFlag{
		Name:  limitFlag,
		Value: "100",
		Usage: "Maximum orphans retried in one run",
	},
}

func newSetupStorageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup-storage",
		Short: "Create the managed products bucket if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			project := setupStorageFlags[projectFlag].GetString()
			return withApp(false, func(a *app.App) error {
				if a.Clients.Bucket == nil {
					return errNoStorage
				}
				created, err := a.Clients.Bucket.EnsureBucket(cmd.Context(), gcp.BucketCategoryProducts, project)
				if err != nil {
					return err
				}
				name := a.Clients.Bucket.BucketName(gcp.BucketCategoryProducts)
				if created {
					fmt.Printf("bucket %s created\n", name)
				} else {
					fmt.Printf("bucket %s already exists\n", name)
				}
				return nil
			})
		},
	}
	cobraflags.RegisterMap(cmd, setupStorageFlags)
	return cmd
}

func newSyncLegacyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-legacy",
		Short: "Import every unlinked legacy bucket file as an unassigned asset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(true, func(a *app.App) error {
				if a.Clients.Bucket == nil {
					return errNoStorage
				}
				res, err := a.Services.Legacy.SyncLegacyFiles(dbcFrom(cmd.Context()))
				if err != nil {
					return err
				}
				fmt.Printf("scanned %d, imported %d\n", res.Scanned, res.Imported)
				return nil
			})
		},
	}
}

func newUploadLegacyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload-legacy",
		Short: "Upload local images to the legacy bucket root (existing objects are replaced)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := uploadLegacyFlags[dirFlag].GetString()
			if dir == "" {
				return fmt.Errorf("--%s is required", dirFlag)
			}
			concurrency, err := parseIntFlag(concurrencyFlag, uploadLegacyFlags[concurrencyFlag].GetString())
			if err != nil {
				return err
			}
			return withApp(false, func(a *app.App) error {
				res, err := services.UploadLegacyDirectory(cmd.Context(), a.Log, a.Clients.Bucket, a.Services.Listing, dir, concurrency)
				if err != nil {
					return err
				}
				fmt.Printf("uploaded %d, failed %d, skipped %d\n", res.Uploaded, res.Failed, res.Skipped)
				if res.Failed > 0 {
					return fmt.Errorf("%d uploads failed", res.Failed)
				}
				return nil
			})
		},
	}
	cobraflags.RegisterMap(cmd, uploadLegacyFlags)
	return cmd
}

func newSweepOrphansCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep-orphans",
		Short: "Retry storage deletes recorded in the orphan log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, err := parseIntFlag(limitFlag, sweepFlags[limitFlag].GetString())
			if err != nil {
				return err
			}
			return withApp(true, func(a *app.App) error {
				if a.Clients.Bucket == nil {
					return errNoStorage
				}
				res, err := a.Services.OrphanSweep.SweepOrphans(dbcFrom(cmd.Context()), limit)
				if err != nil {
					return err
				}
				fmt.Printf("checked %d, resolved %d, failed %d\n", res.Checked, res.Resolved, res.Failed)
				return nil
			})
		},
	}
	cobraflags.RegisterMap(cmd, sweepFlags)
	return cmd
}
