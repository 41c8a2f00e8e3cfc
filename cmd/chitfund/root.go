package main

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chitfund-service/internal/api/responses"
	"chitfund-service/internal/config"
	"chitfund-service/internal/core/cloudsync"
	"chitfund-service/internal/core/paystatus"
	"chitfund-service/internal/core/workbook"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  = zap.NewNop()

	rootCmd = &cobra.Command{
		Use:          "chitfund",
		Short:        "Chit fund ledger service",
		Long:         `chitfund serves the chit fund dashboard and runs ledger operations against the workbook from the command line.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(cfgFile); err != nil {
				return err
			}
			if logger, err = responses.InitLogger(cfg.Logging.Development, cfg.Logging.Level); err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./chitfund.yaml)")
}

func newSource() *workbook.Source {
	return workbook.NewSource(cfg.Ledger.Path)
}

func openStore(ctx context.Context) (paystatus.Store, error) {
	return paystatus.Open(ctx, paystatus.Config{
		Backend:  cfg.Status.Backend,
		Path:     cfg.Status.Path,
		Postgres: cfg.Status.Postgres,
	})
}

func needsFirestore() bool {
	return cfg.Sync.Enabled || cfg.Auth.Source == "firestore"
}

func newFirestore(ctx context.Context) (*firestore.Client, error) {
	project := cfg.Firestore.Project
	if project == "" {
		project = firestore.DetectProjectID
	}
	var (
		client *firestore.Client
		err    error
	)
	if cfg.Firestore.Database != "" {
		client, err = firestore.NewClientWithDatabase(ctx, project, cfg.Firestore.Database)
	} else {
		client, err = firestore.NewClient(ctx, project)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to firestore: %w", err)
	}
	logger.Info("connected to firestore", zap.String("project", project))
	return client, nil
}

// newSyncer returns the Firestore syncer when sync is enabled, Noop otherwise.
func newSyncer(client *firestore.Client, source *workbook.Source) cloudsync.Syncer {
	if !cfg.Sync.Enabled || client == nil {
		return cloudsync.Noop{}
	}
	return cloudsync.NewFirestoreSyncer(client, cfg.Sync.Collection, cfg.Sync.Document, source)
}
