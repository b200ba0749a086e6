// Package router wires handlers and middleware into a gin engine.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/dtroode/bookworm-server/internal/api/http/handler"
	"github.com/dtroode/bookworm-server/internal/api/http/middleware"
	"github.com/dtroode/bookworm-server/internal/logger"
	"github.com/dtroode/bookworm-server/internal/metrics"
	"github.com/dtroode/bookworm-server/internal/model"
)

// Router holds everything the HTTP API depends on.
type Router struct {
	authService    handler.AuthService
	bookService    handler.BookService
	tokens         middleware.TokenVerifier
	identities     middleware.IdentityResolver
	contextManager model.ContextManager
	metrics        *metrics.Metrics
	logger         *logger.Logger
	store          handler.Pinger
}

func New(
	authService handler.AuthService,
	bookService handler.BookService,
	tokens middleware.TokenVerifier,
	identities middleware.IdentityResolver,
	contextManager model.ContextManager,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		bookService:    bookService,
		tokens:         tokens,
		identities:     identities,
		contextManager: contextManager,
		metrics:        metrics,
		logger:         logger,
	}
}

// WithHealthCheck makes GET / ping store before reporting the API as running.
func (r *Router) WithHealthCheck(store handler.Pinger) *Router {
	r.store = store
	return r
}

// Register builds the engine with all routes mounted.
func (r *Router) Register() *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.Recovery(r.logger),
		middleware.NewLogging(r.logger).Handle(),
		middleware.Metrics(r.metrics),
	)

	engine.GET("/", handler.NewHealth(r.store, r.logger).Root)
	engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	guard := middleware.NewAuthenticate(r.tokens, r.identities, r.contextManager, r.metrics, r.logger).Handle()

	authHandler := handler.NewAuth(r.authService, r.contextManager, r.logger)
	auth := engine.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", guard, authHandler.Me)
		auth.PUT("/password", guard, authHandler.ChangePassword)
	}

	bookHandler := handler.NewBook(r.bookService, r.contextManager, r.logger)
	books := engine.Group("/api/books")
	books.Use(guard)
	{
		books.POST("", bookHandler.Create)
		books.GET("", bookHandler.List)
		books.GET("/user/:id", bookHandler.ListByUser)
		books.DELETE("/:id", bookHandler.Delete)
	}

	return engine
}
