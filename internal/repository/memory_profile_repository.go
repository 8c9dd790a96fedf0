package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/iep-planner-api/internal/models"
)

// MemoryProfileRepository keeps profiles in process memory. Concurrent writes to the same
// id resolve as last write wins.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string][]byte
}

// NewMemoryProfileRepository constructs an empty store.
func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[string][]byte)}
}

// Backend names the store.
func (r *MemoryProfileRepository) Backend() string { return "memory" }

// Get returns a copy of the stored profile.
func (r *MemoryProfileRepository) Get(ctx context.Context, id string) (*models.StudentProfile, error) {
	r.mu.RLock()
	raw, ok := r.profiles[id]
	r.mu.RUnlock()
	if !ok {
		return nil, profileNotFound()
	}
	return decodeProfile(raw)
}

// Put stores a snapshot so later mutation by the caller does not leak into the store.
func (r *MemoryProfileRepository) Put(ctx context.Context, profile *models.StudentProfile) error {
	if profile == nil || profile.ID == "" {
		return fmt.Errorf("memory store: profile id is required")
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("memory store: encode profile: %w", err)
	}
	r.mu.Lock()
	r.profiles[profile.ID] = raw
	r.mu.Unlock()
	return nil
}

// Delete removes the profile if present.
func (r *MemoryProfileRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.profiles, id)
	r.mu.Unlock()
	return nil
}

// List returns all profiles, most recently updated first.
func (r *MemoryProfileRepository) List(ctx context.Context) ([]models.StudentProfile, error) {
	return r.filter("")
}

// Search matches a case-insensitive substring of the name.
func (r *MemoryProfileRepository) Search(ctx context.Context, name string) ([]models.StudentProfile, error) {
	return r.filter(strings.ToLower(strings.TrimSpace(name)))
}

func (r *MemoryProfileRepository) filter(needle string) ([]models.StudentProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.StudentProfile, 0, len(r.profiles))
	for _, raw := range r.profiles {
		p, err := decodeProfile(raw)
		if err != nil {
			return nil, err
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		out = append(out, *p)
	}
	sortProfiles(out)
	return out, nil
}

func decodeProfile(raw []byte) (*models.StudentProfile, error) {
	var p models.StudentProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

func sortProfiles(profiles []models.StudentProfile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		if !profiles[i].UpdatedAt.Equal(profiles[j].UpdatedAt) {
			return profiles[i].UpdatedAt.After(profiles[j].UpdatedAt)
		}
		return profiles[i].ID < profiles[j].ID
	})
}
