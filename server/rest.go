package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/umputun/newsagg/pkg/aggregator"
	"github.com/umputun/newsagg/pkg/domain"
)

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":     "ok",
		"version":    s.version,
		"time":       time.Now().UTC(),
		"sources":    len(s.registry.List()),
		"extraction": s.extractor != nil,
	}
	if s.scheduler != nil {
		status["refresh"] = s.scheduler.Status()
	}
	renderJSON(w, r, http.StatusOK, status)
}

// refreshHandler forces a refresh of all sources
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		renderError(w, r, errors.New("refresh is not available"), http.StatusNotImplemented)
		return
	}
	if err := s.scheduler.RefreshNow(r.Context()); err != nil {
		s.renderLoadError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, s.scheduler.Status())
}

// listSourcesHandler returns all sources, or sources of a category with ?category=
func (s *Server) listSourcesHandler(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		renderJSON(w, r, http.StatusOK, s.registry.ByCategory(category))
		return
	}
	renderJSON(w, r, http.StatusOK, s.registry.List())
}

// addSourceHandler registers a new source, existing ids are left unchanged
func (s *Server) addSourceHandler(w http.ResponseWriter, r *http.Request) {
	var src domain.Source
	if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	src.ID = strings.TrimSpace(src.ID)
	src.URL = strings.TrimSpace(src.URL)
	if src.ID == "" || src.URL == "" {
		renderError(w, r, errors.New("id and url are required"), http.StatusBadRequest)
		return
	}
	if u, err := url.Parse(src.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		renderError(w, r, fmt.Errorf("invalid feed url %q", src.URL), http.StatusBadRequest)
		return
	}
	if src.Name == "" {
		src.Name = src.ID
	}
	if src.Category == "" {
		src.Category = src.ID
	}

	if !s.registry.Add(src) {
		renderJSON(w, r, http.StatusOK, src)
		return
	}
	log.Printf("[INFO] source %s added, %s", src.ID, src.URL)
	renderJSON(w, r, http.StatusCreated, src)
}

// listCategoriesHandler returns distinct categories of registered sources
func (s *Server) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, r, http.StatusOK, s.registry.Categories())
}

// allArticlesHandler returns articles of all sources, newest first
func (s *Server) allArticlesHandler(w http.ResponseWriter, r *http.Request) {
	s.renderArticles(w, r, func(ctx context.Context, force bool) ([]domain.Article, error) {
		return s.aggregator.AllArticles(ctx, force)
	})
}

// sourceArticlesHandler returns articles of a single source in feed order
func (s *Server) sourceArticlesHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.renderArticles(w, r, func(ctx context.Context, force bool) ([]domain.Article, error) {
		return s.aggregator.ArticlesBySource(ctx, id, force)
	})
}

// categoryArticlesHandler returns articles of a category, newest first
func (s *Server) categoryArticlesHandler(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	s.renderArticles(w, r, func(ctx context.Context, force bool) ([]domain.Article, error) {
		return s.aggregator.ArticlesByCategory(ctx, category, force)
	})
}

// articleHandler returns a single article found by category and slug
func (s *Server) articleHandler(w http.ResponseWriter, r *http.Request) {
	force, err := refreshParam(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	article, err := s.aggregator.ArticleBySlug(r.Context(), r.PathValue("category"), r.PathValue("slug"), force)
	if err != nil {
		s.renderLoadError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, article)
}

// articleContentHandler extracts full text of the article page
func (s *Server) articleContentHandler(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		renderError(w, r, errors.New("content extraction is disabled"), http.StatusNotImplemented)
		return
	}
	article, err := s.aggregator.ArticleBySlug(r.Context(), r.PathValue("category"), r.PathValue("slug"), false)
	if err != nil {
		s.renderLoadError(w, r, err)
		return
	}
	if article.Link == "" {
		renderError(w, r, fmt.Errorf("article %q has no link", article.Slug), http.StatusNotFound)
		return
	}

	ctx := r.Context()
	if timeout := s.config.GetExtractionConfig().Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res, err := s.extractor.Extract(ctx, article.Link)
	if err != nil {
		log.Printf("[WARN] failed to extract content of %s: %v", article.Link, err)
		renderError(w, r, err, http.StatusBadGateway)
		return
	}
	renderJSON(w, r, http.StatusOK, res)
}

// renderArticles runs the query with ?refresh= and sends the result
func (s *Server) renderArticles(w http.ResponseWriter, r *http.Request,
	query func(ctx context.Context, force bool) ([]domain.Article, error)) {
	force, err := refreshParam(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	articles, err := query(r.Context(), force)
	if err != nil {
		s.renderLoadError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, articles)
}

// renderLoadError maps aggregator errors to http status codes
func (s *Server) renderLoadError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *aggregator.SourceNotFoundError
	switch {
	case errors.As(err, &notFound), errors.Is(err, aggregator.ErrArticleNotFound):
		renderError(w, r, err, http.StatusNotFound)
	default:
		log.Printf("[WARN] failed to load articles: %v", err)
		renderError(w, r, err, http.StatusBadGateway)
	}
}

// refreshParam parses optional ?refresh= query parameter
func refreshParam(r *http.Request) (bool, error) {
	val := r.URL.Query().Get("refresh")
	if val == "" {
		return false, nil
	}
	res, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid refresh value %q", val)
	}
	return res, nil
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
