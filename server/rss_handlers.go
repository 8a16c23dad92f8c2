package server

import (
	"log"
	"net/http"

	"github.com/umputun/newsagg/pkg/domain"
)

// rssHandler serves merged articles as RSS, for all sources on /rss or a single category on /rss/{category}
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := r.PathValue("category")

	var articles []domain.Article
	var err error
	if category == "" {
		articles, err = s.aggregator.AllArticles(ctx, false)
	} else {
		articles, err = s.aggregator.ArticlesByCategory(ctx, category, false)
	}
	if err != nil {
		log.Printf("[ERROR] failed to get articles for RSS: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusBadGateway)
		return
	}

	rss, err := s.generator.GenerateRSS(articles, category)
	if err != nil {
		log.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}
