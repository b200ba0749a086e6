package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	httpcontext "github.com/dtroode/bookworm-server/internal/api/http/context"
	"github.com/dtroode/bookworm-server/internal/api/http/handler"
	"github.com/dtroode/bookworm-server/internal/api/http/router"
	httpserver "github.com/dtroode/bookworm-server/internal/api/http/server"
	"github.com/dtroode/bookworm-server/internal/config"
	"github.com/dtroode/bookworm-server/internal/logger"
	"github.com/dtroode/bookworm-server/internal/metrics"
	"github.com/dtroode/bookworm-server/internal/model"
	"github.com/dtroode/bookworm-server/internal/password"
	"github.com/dtroode/bookworm-server/internal/repository/memory"
	"github.com/dtroode/bookworm-server/internal/repository/mongo"
	"github.com/dtroode/bookworm-server/internal/repository/postgres"
	"github.com/dtroode/bookworm-server/internal/server"
	"github.com/dtroode/bookworm-server/internal/service"
	storage "github.com/dtroode/bookworm-server/internal/storage/minio"
	"github.com/dtroode/bookworm-server/internal/token"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

type stores struct {
	users model.UserStore
	books model.BookStore
	ping  handler.Pinger
	close func()
}

func openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return stores{}, err
		}
		return stores{
			users: postgres.NewUserRepository(db),
			books: postgres.NewBookRepository(db),
			ping:  db,
			close: func() { _ = db.Close() },
		}, nil
	case config.DriverMongo:
		db, err := mongo.NewConnection(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return stores{}, err
		}
		return stores{
			users: mongo.NewUserRepository(db),
			books: mongo.NewBookRepository(db),
			ping:  db,
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = db.Close(ctx)
			},
		}, nil
	default:
		db := memory.New()
		return stores{users: db.Users(), books: db.Books(), ping: db, close: func() {}}, nil
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize storage", "driver", cfg.Database.Driver, "error", err)
		return err
	}
	defer st.close()

	images, err := storage.NewClient(ctx, storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		log.Error("failed to initialize image storage", "error", err)
		return err
	}

	tokenManager, err := token.NewJWT(cfg.JWT.Secret)
	if err != nil {
		log.Fatal("failed to create token manager", "error", err)
	}

	m := metrics.New()
	hasher := password.NewBcrypt(cfg.Password.Cost)
	credentials := service.NewCredentialStore(st.users, hasher, log,
		service.WithIdentityCache(cfg.Identity.Size, cfg.Identity.TTL),
		service.WithMetrics(m),
	)
	tokenService := service.NewTokenService(tokenManager, log)
	authService := service.NewAuth(credentials, hasher, tokenService, cfg.Avatar.BaseURL, m, log)
	bookService := service.NewBook(st.books, images, log)

	engine := router.New(authService, bookService, tokenService, credentials, httpcontext.NewManager(), m, log).
		WithHealthCheck(st.ping).
		Register()
	httpServer := httpserver.NewHTTPServer(engine, fmt.Sprintf(":%s", cfg.HTTP.Port))
	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	serveErr := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		log.Info("Starting server on", "address", s.Address(), "driver", cfg.Database.Driver)
		if err := s.Start(sl); err != nil {
			serveErr <- err
		}
	}(httpServer)

	log.Info("Build info",
		"version", buildVersion,
		"date", buildDate,
		"commit", buildCommit)

	select {
	case <-ctx.Done():
		log.Info("received interruption signal, shutting down")
	case err := <-serveErr:
		log.Error("failed to start server", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		log.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	log.Info("shutdown complete")
	return nil
}
