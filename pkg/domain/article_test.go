package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArticle_EffectiveDate(t *testing.T) {
	tests := []struct {
		name    string
		article Article
		want    time.Time
	}{
		{
			name:    "rss pub date",
			article: Article{PubDate: "Tue, 03 Jan 2006 15:04:05 +0000"},
			want:    time.Date(2006, 1, 3, 15, 4, 5, 0, time.UTC),
		},
		{
			name:    "pub date wins over updated",
			article: Article{PubDate: "Tue, 03 Jan 2006 15:04:05 +0000", Updated: "2010-01-01T00:00:00Z"},
			want:    time.Date(2006, 1, 3, 15, 4, 5, 0, time.UTC),
		},
		{
			name:    "atom updated fallback",
			article: Article{Updated: "2024-05-01T10:00:00Z"},
			want:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:    "no dates",
			article: Article{Title: "undated"},
			want:    time.Time{},
		},
		{
			name:    "garbage date",
			article: Article{PubDate: "sometime last week"},
			want:    time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.article.EffectiveDate()
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}
