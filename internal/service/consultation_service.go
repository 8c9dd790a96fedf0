package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/internal/repository"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

// ConsultationRequest is the payload for requesting an expert consultation.
type ConsultationRequest struct {
	Type              models.ConsultationType    `json:"type" validate:"required,oneof=plan-review specific-question strategy-development progress-review"`
	Urgency           models.ConsultationUrgency `json:"urgency" validate:"omitempty,oneof=normal urgent immediate"`
	SpecificQuestions string                     `json:"specificQuestions"`
	ExpertID          string                     `json:"expertId"`
	ExpertName        string                     `json:"expertName"`
	ExpertPhoto       string                     `json:"expertPhoto"`
	Attachments       []string                   `json:"attachments"`
}

// ConsultationUpdate carries the mutable fields of a consultation. Nil fields are left unchanged.
type ConsultationUpdate struct {
	Status      *models.ConsultationStatus  `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Urgency     *models.ConsultationUrgency `json:"urgency" validate:"omitempty,oneof=normal urgent immediate"`
	Summary     *string                     `json:"summary"`
	Feedback    *string                     `json:"feedback"`
	ExpertID    *string                     `json:"expertId"`
	ExpertName  *string                     `json:"expertName"`
	ExpertPhoto *string                     `json:"expertPhoto"`
	Attachments []string                    `json:"attachments"`
}

// ConsultationService manages the consultation section of a profile.
type ConsultationService struct {
	store     repository.ProfileStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewConsultationService builds a ConsultationService.
func NewConsultationService(store repository.ProfileStore, validate *validator.Validate, logger *zap.Logger) *ConsultationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsultationService{store: store, validator: validate, logger: logger, now: time.Now}
}

// List returns the consultations of a student, oldest first.
func (s *ConsultationService) List(ctx context.Context, studentID string) ([]models.Consultation, error) {
	profile, err := loadProfile(ctx, s.store, studentID)
	if err != nil {
		return nil, err
	}
	if profile.ConsultationData == nil {
		return []models.Consultation{}, nil
	}
	return profile.ConsultationData.Consultations, nil
}

// Create records a pending consultation request.
func (s *ConsultationService) Create(ctx context.Context, studentID string, req ConsultationRequest) (*models.Consultation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid consultation payload")
	}
	var created models.Consultation
	_, err := mutateProfile(ctx, s.store, studentID, s.now, func(p *models.StudentProfile, now time.Time) {
		urgency := req.Urgency
		if urgency == "" {
			urgency = models.UrgencyNormal
		}
		created = models.Consultation{
			ID:                uuid.NewString(),
			StudentID:         p.ID,
			ExpertID:          req.ExpertID,
			ExpertName:        req.ExpertName,
			ExpertPhoto:       req.ExpertPhoto,
			Type:              req.Type,
			Status:            models.ConsultationPending,
			Urgency:           urgency,
			SpecificQuestions: req.SpecificQuestions,
			Attachments:       req.Attachments,
			RequestDate:       now,
		}
		if p.ConsultationData == nil {
			p.ConsultationData = &models.ConsultationData{}
		}
		p.ConsultationData.Consultations = append(p.ConsultationData.Consultations, created)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("consultation requested",
		zap.String("student_id", studentID),
		zap.String("consultation_id", created.ID),
		zap.String("type", string(created.Type)),
	)
	return &created, nil
}

// Update changes the status or content of a consultation. Moving to completed stamps completedDate.
func (s *ConsultationService) Update(ctx context.Context, studentID, consultationID string, req ConsultationUpdate) (*models.Consultation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid consultation payload")
	}

	profile, err := loadProfile(ctx, s.store, studentID)
	if err != nil {
		return nil, err
	}
	idx := -1
	if profile.ConsultationData != nil {
		for i, c := range profile.ConsultationData.Consultations {
			if c.ID == consultationID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "consultation not found")
	}

	now := s.now().UTC()
	c := &profile.ConsultationData.Consultations[idx]
	applyConsultationUpdate(c, req, now)
	profile.UpdatedAt = now
	if err := s.store.Put(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save consultation")
	}
	updated := *c
	return &updated, nil
}

func applyConsultationUpdate(c *models.Consultation, req ConsultationUpdate, now time.Time) {
	if req.Status != nil && *req.Status != c.Status {
		c.Status = *req.Status
		if c.Status == models.ConsultationCompleted {
			c.CompletedDate = &now
		} else {
			c.CompletedDate = nil
		}
	}
	if req.Urgency != nil {
		c.Urgency = *req.Urgency
	}
	if req.Summary != nil {
		c.Summary = *req.Summary
	}
	if req.Feedback != nil {
		c.Feedback = *req.Feedback
	}
	if req.ExpertID != nil {
		c.ExpertID = *req.ExpertID
	}
	if req.ExpertName != nil {
		c.ExpertName = *req.ExpertName
	}
	if req.ExpertPhoto != nil {
		c.ExpertPhoto = *req.ExpertPhoto
	}
	if req.Attachments != nil {
		c.Attachments = req.Attachments
	}
}
