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

	"eventdesk/internal/api"
	"eventdesk/internal/db"
	"eventdesk/internal/server"
	"eventdesk/internal/storage"
	"eventdesk/internal/store"
	"eventdesk/internal/wizard"
	"eventdesk/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

// draftStore is a wizard draft store that can also drop stale drafts.
type draftStore interface {
	wizard.DraftStore
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.GetLevel())

	config, err := loadConfig()
	if err != nil {
		return err
	}

	client := api.New(config.APIBaseURL, time.Duration(config.APITimeoutSec)*time.Second, logger)
	defer client.CloseIdleConnections()

	cookies, err := storage.NewCookieJar(config, logger)
	if err != nil {
		return err
	}

	drafts, closeDrafts, err := openDrafts(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeDrafts()

	var assets *storage.AssetStore
	if config.S3BucketName != "" {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		assets = storage.NewAssetStore(s3.NewFromConfig(awsConfig), config.S3BucketName)
	} else {
		logger.Info("S3_BUCKET_NAME not set, branding uploads disabled")
	}

	tokenCheck, err := server.ParseTokenCheck(config.AuthTokenCheck)
	if err != nil {
		return err
	}

	var jwkCache *jwk.Cache
	if tokenCheck == server.TokenCheckJWKS {
		jwkCache, err = jwk.NewCache(ctx, httprc.NewClient())
		if err != nil {
			return fmt.Errorf("failed to initialize jwk cache: %w", err)
		}

		if err := jwkCache.Register(ctx, config.JWKSURL); err != nil {
			return fmt.Errorf("failed to register jwks url with cache: %w", err)
		}
	}

	srv, err := server.New(config, logger, client, cookies, drafts, assets, jwkCache)
	if err != nil {
		return err
	}

	go purgeDrafts(ctx, drafts, time.Duration(config.DraftMaxAgeHrs)*time.Hour, logger)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

// openDrafts keeps drafts in Postgres when DATABASE_URL is set and in memory
// otherwise.
func openDrafts(ctx context.Context, config *types.Config, logger *logrus.Logger) (draftStore, func(), error) {
	if config.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, wizard drafts are kept in memory")
		return storage.NewMemoryDrafts(), func() {}, nil
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return nil, nil, err
	}

	if err := store.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return store.NewDraftRepository(pool), pool.Close, nil
}

func purgeDrafts(ctx context.Context, drafts draftStore, maxAge time.Duration, logger *logrus.Logger) {
	if maxAge <= 0 {
		return
	}

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		purged, err := drafts.PurgeBefore(ctx, time.Now().Add(-maxAge))
		if err != nil {
			logger.WithError(err).Warn("failed to purge stale drafts")
		} else if purged > 0 {
			logger.WithField("purged", purged).Info("purged stale drafts")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
