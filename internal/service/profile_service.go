package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/internal/repository"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

var (
	progressDayKey   = regexp.MustCompile(`^day[1-7]$`)
	progressBlockKey = regexp.MustCompile(`^block\d+$`)
)

type profileRequirements struct {
	Name string `validate:"required"`
}

// ProfileService manages student profiles and their independently edited sections.
type ProfileService struct {
	store     repository.ProfileStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewProfileService builds a ProfileService.
func NewProfileService(store repository.ProfileStore, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{store: store, validator: validate, logger: logger, now: time.Now}
}

// List returns profile summaries, filtered by a case-insensitive name substring when search is set.
func (s *ProfileService) List(ctx context.Context, search string) ([]models.ProfileSummary, error) {
	var (
		profiles []models.StudentProfile
		err      error
	)
	if search = strings.TrimSpace(search); search != "" {
		profiles, err = s.store.Search(ctx, search)
	} else {
		profiles, err = s.store.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}
	summaries := make([]models.ProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		summaries = append(summaries, p.Summary())
	}
	return summaries, nil
}

// Get returns a profile by id.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.StudentProfile, error) {
	return loadProfile(ctx, s.store, id)
}

// Create stores a new profile, assigning an id when none is given.
func (s *ProfileService) Create(ctx context.Context, profile models.StudentProfile) (*models.StudentProfile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if err := s.validator.Struct(profileRequirements{Name: profile.Name}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name is required")
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := s.now().UTC()
	profile.CreatedAt, profile.UpdatedAt = now, now
	if err := s.store.Put(ctx, &profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save profile")
	}
	return &profile, nil
}

// Update replaces the profile fields for id. Sections missing from the payload keep their stored
// values, and an unknown id creates the profile.
func (s *ProfileService) Update(ctx context.Context, id string, profile models.StudentProfile) (*models.StudentProfile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	prev, err := s.store.Get(ctx, id)
	switch {
	case appErrors.IsNotFound(err):
		prev = nil
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	profile.ID = id
	profile.Name = strings.TrimSpace(profile.Name)
	now := s.now().UTC()
	profile.MergeSections(prev)
	if prev != nil {
		if profile.Name == "" {
			profile.Name = prev.Name
		}
		profile.CreatedAt = prev.CreatedAt
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	if err := s.store.Put(ctx, &profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save profile")
	}
	return &profile, nil
}

// Delete removes a profile. Unknown ids are not an error.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil && !appErrors.IsNotFound(err) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete profile")
	}
	return nil
}

// UpdateProgress replaces the progress tracker section.
func (s *ProfileService) UpdateProgress(ctx context.Context, id string, data models.ProgressData) (*models.StudentProfile, error) {
	if err := s.validateProgress(&data); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(p *models.StudentProfile, now time.Time) {
		data.UpdatedAt = &now
		p.ProgressData = &data
	})
}

// UpdateCalendar replaces the calendar section, assigning ids to new activities.
func (s *ProfileService) UpdateCalendar(ctx context.Context, id string, data models.CalendarData) (*models.StudentProfile, error) {
	if err := s.validator.Struct(data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar payload")
	}
	for i := range data.Activities {
		if data.Activities[i].ID == "" {
			data.Activities[i].ID = uuid.NewString()
		}
	}
	return s.mutate(ctx, id, func(p *models.StudentProfile, now time.Time) {
		data.UpdatedAt = &now
		p.CalendarData = &data
	})
}

// UpdateResources replaces the resource library section.
func (s *ProfileService) UpdateResources(ctx context.Context, id string, data models.ResourceData) (*models.StudentProfile, error) {
	return s.mutate(ctx, id, func(p *models.StudentProfile, now time.Time) {
		data.UpdatedAt = &now
		p.ResourceData = &data
	})
}

// UpdateLearningStyle replaces the learning style assessment results.
func (s *ProfileService) UpdateLearningStyle(ctx context.Context, id string, data models.LearningStyleResults) (*models.StudentProfile, error) {
	if err := s.validator.Struct(data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "primaryLearningStyle is required")
	}
	return s.mutate(ctx, id, func(p *models.StudentProfile, now time.Time) {
		if data.CompletedAt == nil {
			data.CompletedAt = &now
		}
		p.LearningStyleResults = &data
	})
}

// UpdateCultural replaces the cultural context section.
func (s *ProfileService) UpdateCultural(ctx context.Context, id string, data models.CulturalData) (*models.StudentProfile, error) {
	if err := s.validator.Struct(data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cultural payload")
	}
	return s.mutate(ctx, id, func(p *models.StudentProfile, now time.Time) {
		data.UpdatedAt = &now
		p.CulturalData = &data
	})
}

func (s *ProfileService) validateProgress(data *models.ProgressData) error {
	if err := s.validator.Struct(data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}
	for day, blocks := range data.WeeklyProgress {
		if !progressDayKey.MatchString(day) {
			return appErrors.Clone(appErrors.ErrValidation, "weeklyProgress keys must be day1 to day7, got "+day)
		}
		for block, entry := range blocks {
			if !progressBlockKey.MatchString(block) {
				return appErrors.Clone(appErrors.ErrValidation, "block keys must look like block1, got "+block)
			}
			if entry.Rating < 0 || entry.Rating > 5 {
				return appErrors.Clone(appErrors.ErrValidation, "ratings must be between 0 and 5")
			}
		}
	}
	return nil
}

func (s *ProfileService) mutate(ctx context.Context, id string, apply func(*models.StudentProfile, time.Time)) (*models.StudentProfile, error) {
	return mutateProfile(ctx, s.store, id, s.now, apply)
}

// loadProfile maps store failures onto the HTTP error taxonomy.
func loadProfile(ctx context.Context, store repository.ProfileStore, id string) (*models.StudentProfile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
	}
	profile, err := store.Get(ctx, id)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// mutateProfile loads a profile, applies one section change, stamps updatedAt and saves it.
func mutateProfile(ctx context.Context, store repository.ProfileStore, id string, clock func() time.Time, apply func(*models.StudentProfile, time.Time)) (*models.StudentProfile, error) {
	profile, err := loadProfile(ctx, store, id)
	if err != nil {
		return nil, err
	}
	now := clock().UTC()
	apply(profile, now)
	profile.UpdatedAt = now
	if err := store.Put(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save profile")
	}
	return profile, nil
}
