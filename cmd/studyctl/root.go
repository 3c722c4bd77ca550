package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"simvex/internal/assistant"
	"simvex/internal/catalog"
	"simvex/internal/common/config"
	"simvex/internal/common/storage"
	"simvex/internal/study/repository"
	"simvex/internal/viewer"
)

type options struct {
	dbDriver string
	dbDSN    string
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &options{}

	root := &cobra.Command{
		Use:   "studyctl",
		Short: "Inspect the assembly catalog and stored study state",
		Long: `studyctl works directly against the catalog compiled into the binary
and the study service database.

Available subcommands:
  catalog - List and show assemblies
  explode - Print part positions at an explosion factor
  state   - Show or reset one owner's stored state`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.dbDriver, "db-driver", cfg.DBDriver, "database driver (sqlite or postgres)")
	root.PersistentFlags().StringVar(&opts.dbDSN, "db-dsn", cfg.DBDSN, "database path or DSN")

	root.AddCommand(newCatalogCmd(), newExplodeCmd(), newStateCmd(opts))
	return root
}

// openController opens the database and returns its key/value store and a
// controller that has no assistant behind it.
func openController(ctx context.Context, opts *options) (*viewer.Controller, *repository.KV, func(), error) {
	db, err := storage.Open(opts.dbDriver, opts.dbDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	ai, err := assistant.New(ctx, assistant.Config{Provider: "openai"}, nil)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	kv := repository.NewKV(db)
	ctrl := viewer.NewController(catalog.Default(), kv, ai, viewer.ControllerOptions{})
	return ctrl, kv, func() {
		ctrl.Close()
		db.Close()
	}, nil
}
