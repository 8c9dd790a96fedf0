package repository

import (
	"context"

	"github.com/noah-isme/iep-planner-api/internal/models"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

// ProfileStore persists the StudentProfile aggregate. Put is an upsert keyed by ID and
// Delete succeeds for unknown ids.
type ProfileStore interface {
	Get(ctx context.Context, id string) (*models.StudentProfile, error)
	Put(ctx context.Context, profile *models.StudentProfile) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.StudentProfile, error)
	Search(ctx context.Context, name string) ([]models.StudentProfile, error)
	Backend() string
}

func profileNotFound() error {
	return appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
}
