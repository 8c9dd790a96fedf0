package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-planner-api/internal/models"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
	"github.com/noah-isme/iep-planner-api/pkg/search"
)

type searcherStub struct {
	mu      sync.Mutex
	results []search.Result
	err     error
	queries []search.Query
}

func (s *searcherStub) Search(ctx context.Context, q search.Query) ([]search.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	return s.results, s.err
}

func (s *searcherStub) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

type cacheRepoStub struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	c.ttls[key] = ttl
	return nil
}

func newTestResourceService(searcher search.Searcher, repo CacheRepository) *ResourceService {
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Hour, nil, repo != nil)
	return NewResourceService(searcher, cache, metrics, 5, 30*time.Minute, nil)
}

func TestSearchResourcesMapsResults(t *testing.T) {
	searcher := &searcherStub{results: []search.Result{
		{Title: "Fidget Tools Video Guide", URL: "https://www.youtube.com/watch?v=1", Content: strings.Repeat("a", 250)},
		{Title: "", URL: "https://www.edutopia.org/article/focus", Content: "Short focus tips."},
		{Title: "Printable Visual Schedule", URL: "https://www.scholastic.com/schedule", Content: "Cards."},
		{Title: "Math Game", URL: "", Content: ""},
	}}
	svc := newTestResourceService(searcher, nil)

	list := svc.SearchResources(context.Background(), "ADHD")

	assert.Equal(t, ResourceSourceSearch, list.Source)
	assert.Equal(t, "educational resources for students with ADHD", list.Query)
	require.Len(t, list.Resources, 4)

	video := list.Resources[0]
	assert.Equal(t, models.ResourceTypeVideo, video.Type)
	assert.Equal(t, "youtube.com", video.Source)
	assert.Equal(t, strings.Repeat("a", 200)+"...", video.Description)
	assert.Equal(t, "intermediate", video.Difficulty)
	assert.Equal(t, "all", video.AgeGroup)

	assert.Equal(t, "Educational Resource", list.Resources[1].Title)
	assert.Equal(t, "edutopia.org", list.Resources[1].Source)
	assert.Equal(t, models.ResourceTypeArticle, list.Resources[1].Type)
	assert.Equal(t, models.ResourceTypeWorksheet, list.Resources[2].Type)
	assert.Equal(t, "https://www.understood.org", list.Resources[3].URL)
	assert.Equal(t, models.ResourceTypeInteractive, list.Resources[3].Type)

	require.Len(t, searcher.queries, 1)
	assert.Contains(t, searcher.queries[0].IncludeDomains, "chadd.org")
	assert.Equal(t, 5, searcher.queries[0].MaxResults)
}

func TestSearchResourcesTimeoutServesFallback(t *testing.T) {
	searcher := &searcherStub{err: appErrors.Clone(appErrors.ErrTimeout, "search timed out")}
	repo := newCacheRepoStub()
	svc := newTestResourceService(searcher, repo)

	list := svc.SearchResources(context.Background(), "ADHD")

	assert.Equal(t, ResourceSourceFallback, list.Source)
	require.Len(t, list.Resources, 3)
	for _, r := range list.Resources {
		assert.Contains(t, r.Title, "ADHD")
	}
	assert.Empty(t, repo.entries, "fallback lists must not be cached")
}

func TestSearchResourcesEmptyResultIsFallback(t *testing.T) {
	svc := newTestResourceService(&searcherStub{}, nil)

	list := svc.SearchResources(context.Background(), "dyslexia")

	assert.Equal(t, ResourceSourceFallback, list.Source)
	require.Len(t, list.Resources, 3)
	assert.Equal(t, "Understanding dyslexia in the Classroom", list.Resources[0].Title)
}

func TestSearchResourcesWithoutSearcher(t *testing.T) {
	svc := newTestResourceService(nil, nil)

	list := svc.SearchResources(context.Background(), "")
	assert.Equal(t, ResourceSourceFallback, list.Source)
	assert.Contains(t, list.Resources[0].Title, "learning needs")
}

func TestSearchResultsAreCachedPerNormalizedQuery(t *testing.T) {
	searcher := &searcherStub{results: []search.Result{{Title: "Focus Strategies", URL: "https://chadd.org/focus", Content: "x"}}}
	repo := newCacheRepoStub()
	svc := newTestResourceService(searcher, repo)

	first := svc.SearchResources(context.Background(), "ADHD")
	second := svc.SearchResources(context.Background(), "  adhd ")

	assert.Equal(t, ResourceSourceSearch, first.Source)
	assert.Equal(t, ResourceSourceCache, second.Source)
	assert.Equal(t, first.Resources, second.Resources)
	assert.Equal(t, 1, searcher.calls())
	assert.Equal(t, 30*time.Minute, repo.ttls[SearchKey(searchKindResources, "ADHD")])
}

func TestSearchStrategiesFallback(t *testing.T) {
	svc := newTestResourceService(&searcherStub{err: appErrors.ErrUpstream}, nil)

	list := svc.SearchStrategies(context.Background(), "working memory")

	assert.Equal(t, "evidence-based teaching strategies for students with working memory", list.Query)
	require.Len(t, list.Resources, 3)
	assert.Equal(t, "Evidence-Based Strategies for working memory", list.Resources[0].Title)
	assert.Equal(t, "interventioncentral.org", list.Resources[0].Source)
}

func TestSearchKeyNormalizes(t *testing.T) {
	assert.Equal(t, "search:resources:autism spectrum", SearchKey("resources", "  Autism   SPECTRUM "))
}
