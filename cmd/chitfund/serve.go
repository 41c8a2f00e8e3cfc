package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chitfund-service/internal/api"
	"chitfund-service/internal/core/auction"
	"chitfund-service/internal/core/auth"
	"chitfund-service/internal/core/cloudsync"
	"chitfund-service/internal/core/ledger"
	"chitfund-service/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	var fsClient *firestore.Client
	if needsFirestore() {
		var err error
		if fsClient, err = newFirestore(ctx); err != nil {
			return err
		}
		defer fsClient.Close()
	}

	source := newSource()
	syncer := newSyncer(fsClient, source)
	cloudsync.Bootstrap(ctx, syncer, source, cfg.Ledger.Seed, logger)

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := userSource(fsClient)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(users, []byte(cfg.Auth.JWTSecret), cfg.Auth.SessionTTL)
	if err != nil {
		return fmt.Errorf("auth: %w (set auth.jwt_secret or JWT_SECRET)", err)
	}

	m := metrics.New()
	router, err := api.NewRouter(api.Deps{
		Auth:         authService,
		Ledger:       ledger.NewService(source, store, m, logger),
		Auction:      auction.NewService(source, syncer, m, logger),
		Source:       source,
		Status:       store,
		Uploader:     syncer,
		Metrics:      m,
		Logger:       logger,
		SessionTTL:   cfg.Auth.SessionTTL,
		CookieSecure: cfg.Auth.CookieSecure,
		TemplateDir:  cfg.Server.Templates,
	})
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	if port := os.Getenv("PORT"); port != "" && serveAddr == "" {
		addr = ":" + port
	}
	srv := &http.Server{Addr: addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("chitfund service listening", zap.String("addr", addr), zap.String("ledger", source.Path()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func userSource(client *firestore.Client) (auth.UserSource, error) {
	if cfg.Auth.Source == "firestore" {
		return auth.NewFirestoreUsers(client), nil
	}
	var accounts []auth.StaticAccount
	for _, u := range cfg.Accounts() {
		accounts = append(accounts, auth.StaticAccount{
			Username:     u.Username,
			Password:     u.Password,
			PasswordHash: u.PasswordHash,
			Roles:        u.Roles,
		})
	}
	if len(accounts) == 0 {
		logger.Warn("no operator accounts configured, nobody can sign in")
	}
	return auth.NewStaticUsers(accounts)
}
