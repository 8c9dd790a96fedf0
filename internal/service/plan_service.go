package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/internal/planner"
	"github.com/noah-isme/iep-planner-api/internal/repository"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
	"github.com/noah-isme/iep-planner-api/pkg/llm"
)

type resourceFinder interface {
	SearchResources(ctx context.Context, needs string) ResourceList
}

type planRequirements struct {
	Name string `validate:"required"`
	Age  int    `validate:"gt=0"`
}

// PlanOptions tunes how plans are drafted.
type PlanOptions struct {
	// MockMode skips the completion and search calls and serves the template plan.
	MockMode bool
}

// PlanService drafts learning plans from a completion model and always returns a complete plan.
type PlanService struct {
	store     repository.ProfileStore
	completer llm.Completer
	parser    *planner.Parser
	fallback  *planner.FallbackGenerator
	resources resourceFinder
	metrics   *MetricsService
	opts      PlanOptions
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPlanService wires a PlanService. A nil completer behaves like mock mode.
func NewPlanService(
	store repository.ProfileStore,
	completer llm.Completer,
	parser *planner.Parser,
	fallback *planner.FallbackGenerator,
	resources resourceFinder,
	metrics *MetricsService,
	opts PlanOptions,
	validate *validator.Validate,
	logger *zap.Logger,
) *PlanService {
	if parser == nil {
		parser = planner.NewParser()
	}
	if fallback == nil {
		fallback = planner.NewFallbackGenerator()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{
		store:     store,
		completer: completer,
		parser:    parser,
		fallback:  fallback,
		resources: resources,
		metrics:   metrics,
		opts:      opts,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate drafts a plan for the profile and saves the profile with the plan attached.
func (s *PlanService) Generate(ctx context.Context, profile models.StudentProfile) (*models.LearningPlan, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if err := s.validator.Struct(planRequirements{Name: profile.Name, Age: int(profile.Age)}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name and age are required")
	}

	if profile.ID == "" {
		profile.ID = uuid.NewString()
	} else if prev, err := s.store.Get(ctx, profile.ID); err == nil {
		profile.MergeSections(prev)
		profile.CreatedAt = prev.CreatedAt
	}

	plan := s.draft(ctx, profile, planner.BuildPlanPrompt(profile))
	s.save(ctx, &profile, plan)
	return plan, nil
}

// Adapt drafts a follow-up plan from recorded progress. A nil or empty progress payload uses the
// progress stored on the profile.
func (s *PlanService) Adapt(ctx context.Context, studentID string, progress *models.ProgressData) (*models.LearningPlan, error) {
	profile, err := loadProfile(ctx, s.store, studentID)
	if err != nil {
		return nil, err
	}
	if progress.IsEmpty() {
		progress = profile.ProgressData
	} else {
		if err := s.validator.Struct(progress); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
		}
		now := s.now().UTC()
		progress.UpdatedAt = &now
		profile.ProgressData = progress
	}

	plan := s.draft(ctx, *profile, planner.BuildAdaptedPlanPrompt(*profile, progress))
	s.save(ctx, profile, plan)
	return plan, nil
}

// LatestPlan returns the last plan drafted for a student.
func (s *PlanService) LatestPlan(ctx context.Context, studentID string) (*models.LearningPlan, error) {
	profile, err := loadProfile(ctx, s.store, studentID)
	if err != nil {
		return nil, err
	}
	if profile.LatestPlan == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no plan has been generated for this student")
	}
	return profile.LatestPlan, nil
}

// draft runs the completion and the resource search concurrently. Any completion or parse
// failure yields the template plan for the profile.
func (s *PlanService) draft(ctx context.Context, profile models.StudentProfile, prompt string) *models.LearningPlan {
	if s.opts.MockMode || s.completer == nil {
		plan := s.fallback.Generate(profile)
		plan.Source = models.PlanSourceMock
		s.metrics.RecordPlan(string(plan.Source))
		return plan
	}

	var (
		raw       string
		llmErr    error
		resources ResourceList
		g         errgroup.Group
	)
	g.Go(func() error {
		start := time.Now()
		raw, llmErr = s.completer.Complete(ctx, llm.CompletionRequest{System: planner.SystemPrompt, Prompt: prompt})
		s.metrics.ObserveCompletion(s.completer.Provider(), time.Since(start), llmErr)
		return nil
	})
	if s.resources != nil {
		g.Go(func() error {
			needs := profile.DiagnosisLabel()
			if needs == "" {
				needs = defaultNeeds
			}
			resources = s.resources.SearchResources(ctx, needs)
			return nil
		})
	}
	_ = g.Wait()

	if llmErr != nil {
		s.logger.Warn("completion failed, using template plan",
			zap.String("provider", s.completer.Provider()),
			zap.String("student_id", profile.ID),
			zap.Error(llmErr),
		)
		return s.fallbackPlan(profile)
	}

	plan, err := s.parser.Parse(raw, profile)
	if err != nil || len(plan.DailyPlans) == 0 {
		s.metrics.RecordParseFailure(s.completer.Provider())
		s.logger.Warn("completion could not be parsed, using template plan",
			zap.String("student_id", profile.ID),
			zap.Int("raw_length", len(raw)),
			zap.Error(err),
		)
		return s.fallbackPlan(profile)
	}

	if s.fallback.Complete(plan, profile) {
		s.logger.Info("parsed plan completed from template",
			zap.String("student_id", profile.ID),
			zap.Int("days", len(plan.DailyPlans)),
		)
	}
	if len(resources.Resources) > 0 {
		plan.Resources = resources.Resources
	} else {
		plan.Resources = planner.FallbackResources()
	}
	s.metrics.RecordPlan(string(plan.Source))
	return plan
}

func (s *PlanService) fallbackPlan(profile models.StudentProfile) *models.LearningPlan {
	plan := s.fallback.Generate(profile)
	s.metrics.RecordPlan(string(plan.Source))
	return plan
}

// save attaches the plan to the profile. Store failures are logged and do not fail the request.
func (s *PlanService) save(ctx context.Context, profile *models.StudentProfile, plan *models.LearningPlan) {
	plan.StudentID = profile.ID
	now := s.now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	profile.LatestPlan = plan
	if err := s.store.Put(ctx, profile); err != nil {
		s.logger.Warn("failed to save generated plan",
			zap.String("student_id", profile.ID),
			zap.Error(err),
		)
	}
}
