package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyBrief/internal/domain"
)

type namedScanner string

func (n namedScanner) Name() string { return string(n) }

func (n namedScanner) Scan(context.Context, Request) ([]domain.Article, error) {
	return []domain.Article{{Title: string(n)}}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(namedScanner("rss"))
	reg.Register(namedScanner("google-news"))

	s, err := reg.Resolve("google-news")
	require.NoError(t, err)
	assert.Equal(t, "google-news", s.Name())

	_, err = reg.Resolve("arxiv")
	assert.ErrorContains(t, err, "arxiv is not registered")

	var empty Registry
	empty.Register(namedScanner("rss"))
	_, err = empty.Resolve("rss")
	assert.NoError(t, err)
}
