package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/pkg/config"
)

// document is the wire shape of the hosted document API. Content holds the profile as JSON text.
type document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DocumentProfileRepository stores profiles as documents in a hosted collection.
type DocumentProfileRepository struct {
	baseURL    string
	apiKey     string
	collection string
	http       *http.Client
}

// NewDocumentProfileRepository builds the client. A nil httpClient gets one bounded by cfg.Timeout.
func NewDocumentProfileRepository(cfg config.DocumentStoreConfig, httpClient *http.Client) *DocumentProfileRepository {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &DocumentProfileRepository{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.CollectionID,
		http:       httpClient,
	}
}

// Backend names the store.
func (r *DocumentProfileRepository) Backend() string { return "document" }

// Get fetches one document and decodes its content.
func (r *DocumentProfileRepository) Get(ctx context.Context, id string) (*models.StudentProfile, error) {
	var doc document
	status, err := r.do(ctx, http.MethodGet, "/documents/"+url.PathEscape(id), nil, &doc)
	if status == http.StatusNotFound {
		return nil, profileNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("document get: %w", err)
	}
	p, err := decodeProfile([]byte(doc.Content))
	if err != nil {
		return nil, fmt.Errorf("document get: %w", err)
	}
	p.ID = id
	return p, nil
}

// Put upserts the document under the profile id.
func (r *DocumentProfileRepository) Put(ctx context.Context, profile *models.StudentProfile) error {
	if profile == nil || profile.ID == "" {
		return fmt.Errorf("document store: profile id is required")
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("document put: encode profile: %w", err)
	}
	body := document{
		ID:      profile.ID,
		Content: string(raw),
		Metadata: map[string]any{
			"collectionId": r.collection,
			"studentName":  profile.Name,
			"studentAge":   int(profile.Age),
			"studentGrade": profile.Grade,
			"diagnosis":    profile.Diagnosis,
			"lastUpdated":  profile.UpdatedAt.UTC().Format(time.RFC3339),
		},
	}
	if _, err := r.do(ctx, http.MethodPut, "/documents/"+url.PathEscape(profile.ID), body, nil); err != nil {
		return fmt.Errorf("document put: %w", err)
	}
	return nil
}

// Delete removes the document; a missing document is not an error.
func (r *DocumentProfileRepository) Delete(ctx context.Context, id string) error {
	status, err := r.do(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, nil)
	if status == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("document delete: %w", err)
	}
	return nil
}

// List returns every profile in the collection.
func (r *DocumentProfileRepository) List(ctx context.Context) ([]models.StudentProfile, error) {
	var resp struct {
		Documents []document `json:"documents"`
	}
	if _, err := r.do(ctx, http.MethodGet, "/collections/"+url.PathEscape(r.collection)+"/documents", nil, &resp); err != nil {
		return nil, fmt.Errorf("document list: %w", err)
	}
	return decodeDocuments(resp.Documents), nil
}

// Search asks the collection for documents whose student name matches.
func (r *DocumentProfileRepository) Search(ctx context.Context, name string) ([]models.StudentProfile, error) {
	body := map[string]any{
		"query":  name,
		"filter": map[string]any{"studentName": name},
		"limit":  10,
	}
	var resp struct {
		Results []document `json:"results"`
	}
	if _, err := r.do(ctx, http.MethodPost, "/collections/"+url.PathEscape(r.collection)+"/search", body, &resp); err != nil {
		return nil, fmt.Errorf("document search: %w", err)
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	out := make([]models.StudentProfile, 0, len(resp.Results))
	for _, p := range decodeDocuments(resp.Results) {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

func decodeDocuments(docs []document) []models.StudentProfile {
	out := make([]models.StudentProfile, 0, len(docs))
	for _, doc := range docs {
		p, err := decodeProfile([]byte(doc.Content))
		if err != nil {
			// foreign documents in a shared collection are skipped
			continue
		}
		if doc.ID != "" {
			p.ID = doc.ID
		}
		out = append(out, *p)
	}
	sortProfiles(out)
	return out
}

func (r *DocumentProfileRepository) do(ctx context.Context, method, path string, body, dest any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	if dest == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
