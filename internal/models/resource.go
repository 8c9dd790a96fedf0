package models

// ResourceType classifies a resource link.
type ResourceType string

const (
	ResourceTypeArticle     ResourceType = "article"
	ResourceTypeVideo       ResourceType = "video"
	ResourceTypeInteractive ResourceType = "interactive"
	ResourceTypeWorksheet   ResourceType = "worksheet"
)

// Resource is an external teaching resource or strategy link.
type Resource struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	Source      string       `json:"source"`
	Type        ResourceType `json:"type"`
	Difficulty  string       `json:"difficulty"`
	AgeGroup    string       `json:"ageGroup"`
}
