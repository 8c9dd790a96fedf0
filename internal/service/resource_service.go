package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/pkg/search"
)

const (
	searchKindResources  = "resources"
	searchKindStrategies = "strategies"

	defaultResourceTitle = "Educational Resource"
	defaultResourceURL   = "https://www.understood.org"
	descriptionLimit     = 200
	defaultNeeds         = "learning needs"
)

// Source values reported with a resource list.
const (
	ResourceSourceSearch   = "search"
	ResourceSourceCache    = "cache"
	ResourceSourceFallback = "fallback"
)

var (
	resourceDomains = []string{
		"understood.org", "edutopia.org", "teachthought.com", "scholastic.com",
		"readingrockets.org", "ldaamerica.org", "chadd.org", "autismspeaks.org",
	}
	strategyDomains = []string{
		"edutopia.org", "teachthought.com", "scholastic.com", "readingrockets.org",
		"understood.org", "teachervision.com", "interventioncentral.org",
	}
)

// ResourceList is the result of a resource or strategy lookup.
type ResourceList struct {
	Query     string            `json:"query"`
	Source    string            `json:"source"`
	Resources []models.Resource `json:"resources"`
}

// ResourceService finds teaching resources and strategies through web search and degrades to
// fixed lists when the search API is unavailable or returns nothing.
type ResourceService struct {
	searcher   search.Searcher
	cache      *CacheService
	metrics    *MetricsService
	maxResults int
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewResourceService constructs a ResourceService. A nil searcher always serves fallback lists.
func NewResourceService(searcher search.Searcher, cache *CacheService, metrics *MetricsService, maxResults int, cacheTTL time.Duration, logger *zap.Logger) *ResourceService {
	if maxResults <= 0 {
		maxResults = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService{
		searcher:   searcher,
		cache:      cache,
		metrics:    metrics,
		maxResults: maxResults,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// SearchResources returns resources for the given needs. It never fails.
func (s *ResourceService) SearchResources(ctx context.Context, needs string) ResourceList {
	needs = strings.TrimSpace(needs)
	return s.lookup(ctx, searchKindResources, needs, search.Query{
		Text:           "educational resources for students with " + needs,
		IncludeDomains: resourceDomains,
		MaxResults:     s.maxResults,
	}, fallbackResourcesFor)
}

// SearchStrategies returns teaching strategies for the given challenge. It never fails.
func (s *ResourceService) SearchStrategies(ctx context.Context, challenge string) ResourceList {
	challenge = strings.TrimSpace(challenge)
	return s.lookup(ctx, searchKindStrategies, challenge, search.Query{
		Text:           "evidence-based teaching strategies for students with " + challenge,
		IncludeDomains: strategyDomains,
		MaxResults:     s.maxResults,
	}, fallbackStrategiesFor)
}

func (s *ResourceService) lookup(ctx context.Context, kind, subject string, q search.Query, fallback func(string) []models.Resource) ResourceList {
	list := ResourceList{Query: q.Text}
	key := SearchKey(kind, subject)

	var cached []models.Resource
	if s.cache.Get(ctx, key, &cached) && len(cached) > 0 {
		s.metrics.RecordSearch(kind, outcomeCached)
		list.Source, list.Resources = ResourceSourceCache, cached
		return list
	}

	if s.searcher == nil {
		s.metrics.RecordSearch(kind, outcomeSkipped)
		list.Source, list.Resources = ResourceSourceFallback, fallback(subject)
		return list
	}

	results, err := s.searcher.Search(ctx, q)
	if err != nil || len(results) == 0 {
		s.metrics.RecordSearch(kind, outcomeFallback)
		s.logger.Warn("search unavailable, serving fallback list",
			zap.String("kind", kind),
			zap.String("query", q.Text),
			zap.Int("results", len(results)),
			zap.Error(err),
		)
		list.Source, list.Resources = ResourceSourceFallback, fallback(subject)
		return list
	}

	resources := make([]models.Resource, 0, len(results))
	for _, r := range results {
		resources = append(resources, toResource(r))
	}
	s.cache.Set(ctx, key, resources, s.cacheTTL)
	s.metrics.RecordSearch(kind, outcomeOK)
	list.Source, list.Resources = ResourceSourceSearch, resources
	return list
}

func toResource(r search.Result) models.Resource {
	res := models.Resource{
		Title:       strings.TrimSpace(r.Title),
		URL:         strings.TrimSpace(r.URL),
		Description: describe(r.Content),
		Type:        classifyResource(r.URL, r.Title),
		Difficulty:  "intermediate",
		AgeGroup:    "all",
	}
	if res.Title == "" {
		res.Title = defaultResourceTitle
	}
	if res.URL == "" {
		res.URL = defaultResourceURL
	}
	res.Source = hostOf(res.URL)
	return res
}

func describe(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= descriptionLimit {
		return content
	}
	return string(runes[:descriptionLimit]) + "..."
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func classifyResource(rawURL, title string) models.ResourceType {
	u, t := strings.ToLower(rawURL), strings.ToLower(title)
	switch {
	case strings.Contains(u, "youtube") || strings.Contains(u, "vimeo") || strings.Contains(t, "video"):
		return models.ResourceTypeVideo
	case strings.Contains(t, "worksheet") || strings.Contains(t, "printable") || strings.HasSuffix(u, ".pdf"):
		return models.ResourceTypeWorksheet
	case strings.Contains(t, "game") || strings.Contains(t, "interactive") || strings.Contains(t, "activity"):
		return models.ResourceTypeInteractive
	default:
		return models.ResourceTypeArticle
	}
}

func fallbackResourcesFor(needs string) []models.Resource {
	if needs == "" {
		needs = defaultNeeds
	}
	return []models.Resource{
		{
			Title:       "Understanding " + needs + " in the Classroom",
			Description: "Practical guidance for recognizing and supporting students with " + needs + " during everyday instruction.",
			URL:         "https://www.understood.org/en/articles/classroom-accommodations",
			Source:      "understood.org",
			Type:        models.ResourceTypeArticle,
			Difficulty:  "beginner",
			AgeGroup:    "all",
		},
		{
			Title:       "Visual Supports for Students with " + needs,
			Description: "Examples of visual schedules, checklists, and cue cards that reduce cognitive load.",
			URL:         "https://www.edutopia.org/topic/special-education",
			Source:      "edutopia.org",
			Type:        models.ResourceTypeArticle,
			Difficulty:  "intermediate",
			AgeGroup:    "all",
		},
		{
			Title:       "Assistive Technology Tools for " + needs,
			Description: "An overview of text-to-speech, speech-to-text, and organization tools for the classroom.",
			URL:         "https://www.readingrockets.org/topics/assistive-technology",
			Source:      "readingrockets.org",
			Type:        models.ResourceTypeInteractive,
			Difficulty:  "intermediate",
			AgeGroup:    "all",
		},
	}
}

func fallbackStrategiesFor(challenge string) []models.Resource {
	if challenge == "" {
		challenge = defaultNeeds
	}
	return []models.Resource{
		{
			Title:       "Evidence-Based Strategies for " + challenge,
			Description: "Research-backed academic and behavioral interventions organized by skill area.",
			URL:         "https://www.interventioncentral.org/academic-interventions",
			Source:      "interventioncentral.org",
			Type:        models.ResourceTypeArticle,
			Difficulty:  "intermediate",
			AgeGroup:    "all",
		},
		{
			Title:       "Differentiated Instruction for " + challenge,
			Description: "Ways to adjust content, process, and product so every learner can access the lesson.",
			URL:         "https://www.teachthought.com/pedagogy/differentiation/",
			Source:      "teachthought.com",
			Type:        models.ResourceTypeArticle,
			Difficulty:  "intermediate",
			AgeGroup:    "all",
		},
		{
			Title:       "Behavior Management Strategies for " + challenge,
			Description: "Classroom routines and positive reinforcement techniques that support self-regulation.",
			URL:         "https://www.scholastic.com/teachers/articles/teaching-content/behavior-management-strategies/",
			Source:      "scholastic.com",
			Type:        models.ResourceTypeArticle,
			Difficulty:  "beginner",
			AgeGroup:    "all",
		},
	}
}
