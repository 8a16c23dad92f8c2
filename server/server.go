// Package server exposes aggregated articles over a JSON API and as RSS feeds
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/newsagg/pkg/config"
	"github.com/umputun/newsagg/pkg/content"
	"github.com/umputun/newsagg/pkg/domain"
	"github.com/umputun/newsagg/pkg/feed"
	"github.com/umputun/newsagg/pkg/scheduler"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/aggregator.go -pkg mocks -skip-ensure -fmt goimports . Aggregator
//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor
//go:generate moq -out mocks/scheduler.go -pkg mocks -skip-ensure -fmt goimports . Scheduler

// Server represents HTTP server instance
type Server struct {
	config     ConfigProvider
	aggregator Aggregator
	registry   Registry
	extractor  Extractor
	scheduler  Scheduler
	generator  *feed.Generator
	version    string
	debug      bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Aggregator answers article queries
type Aggregator interface {
	AllArticles(ctx context.Context, forceRefresh bool) ([]domain.Article, error)
	ArticlesBySource(ctx context.Context, id string, forceRefresh bool) ([]domain.Article, error)
	ArticlesByCategory(ctx context.Context, category string, forceRefresh bool) ([]domain.Article, error)
	ArticleBySlug(ctx context.Context, category, slug string, forceRefresh bool) (domain.Article, error)
}

// Registry lists and registers feed sources
type Registry interface {
	List() []domain.Source
	ByCategory(category string) []domain.Source
	Categories() []string
	Add(src domain.Source) bool
}

// Extractor retrieves readable content of an article page
type Extractor interface {
	Extract(ctx context.Context, url string) (*content.ExtractResult, error)
}

// Scheduler interface for on-demand refresh and refresh status
type Scheduler interface {
	RefreshNow(ctx context.Context) error
	Status() scheduler.Status
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetBaseURL() string
	GetExtractionConfig() config.ExtractionConfig
}

// Params holds server dependencies, Extractor is optional
type Params struct {
	Config     ConfigProvider
	Aggregator Aggregator
	Registry   Registry
	Extractor  Extractor
	Scheduler  Scheduler
	Version    string
	Debug      bool
}

// New initializes a new server instance
func New(p Params) *Server {
	s := &Server{
		config:     p.Config,
		aggregator: p.Aggregator,
		registry:   p.Registry,
		extractor:  p.Extractor,
		scheduler:  p.Scheduler,
		generator:  feed.NewGenerator(p.Config.GetBaseURL()),
		version:    p.Version,
		debug:      p.Debug,
		router:     routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	httpServer := s.httpServer
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("newsagg", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("POST /refresh", s.refreshHandler)

		r.HandleFunc("GET /sources", s.listSourcesHandler)
		r.HandleFunc("POST /sources", s.addSourceHandler)
		r.HandleFunc("GET /sources/{id}/articles", s.sourceArticlesHandler)

		r.HandleFunc("GET /categories", s.listCategoriesHandler)
		r.HandleFunc("GET /categories/{category}/articles", s.categoryArticlesHandler)
		r.HandleFunc("GET /categories/{category}/articles/{slug}", s.articleHandler)
		r.HandleFunc("GET /categories/{category}/articles/{slug}/content", s.articleContentHandler)

		r.HandleFunc("GET /articles", s.allArticlesHandler)
	})

	// RSS routes
	s.router.HandleFunc("GET /rss", s.rssHandler)
	s.router.HandleFunc("GET /rss/{category}", s.rssHandler)
}
