package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/internal/repository"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

func newTestConsultationService(t *testing.T) (*ConsultationService, *repository.MemoryProfileRepository) {
	t.Helper()
	store := repository.NewMemoryProfileRepository()
	student := alexStudent()
	require.NoError(t, store.Put(context.Background(), &student))
	svc := NewConsultationService(store, nil, nil)
	svc.now = serviceClock
	return svc, store
}

func TestConsultationCreateDefaults(t *testing.T) {
	svc, store := newTestConsultationService(t)

	created, err := svc.Create(context.Background(), "stu-1", ConsultationRequest{
		Type:              models.ConsultationPlanReview,
		SpecificQuestions: "Is the reading block too long?",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "stu-1", created.StudentID)
	assert.Equal(t, models.ConsultationPending, created.Status)
	assert.Equal(t, models.UrgencyNormal, created.Urgency)
	assert.Equal(t, serviceClock(), created.RequestDate)
	assert.Nil(t, created.CompletedDate)

	profile, err := store.Get(context.Background(), "stu-1")
	require.NoError(t, err)
	require.NotNil(t, profile.ConsultationData)
	require.Len(t, profile.ConsultationData.Consultations, 1)
	assert.Equal(t, created.ID, profile.ConsultationData.Consultations[0].ID)
}

func TestConsultationCreateValidation(t *testing.T) {
	svc, _ := newTestConsultationService(t)

	_, err := svc.Create(context.Background(), "stu-1", ConsultationRequest{Type: "coffee-chat"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), "stu-1", ConsultationRequest{Type: models.ConsultationProgressReview, Urgency: "whenever"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), "ghost", ConsultationRequest{Type: models.ConsultationProgressReview})
	assert.True(t, appErrors.IsNotFound(err))
}

func TestConsultationUpdateLifecycle(t *testing.T) {
	svc, _ := newTestConsultationService(t)
	created, err := svc.Create(context.Background(), "stu-1", ConsultationRequest{Type: models.ConsultationStrategyDevelopment, Urgency: models.UrgencyUrgent})
	require.NoError(t, err)

	inProgress := models.ConsultationInProgress
	expert := "Dr. Rivera"
	updated, err := svc.Update(context.Background(), "stu-1", created.ID, ConsultationUpdate{Status: &inProgress, ExpertName: &expert})
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationInProgress, updated.Status)
	assert.Equal(t, "Dr. Rivera", updated.ExpertName)
	assert.Equal(t, models.UrgencyUrgent, updated.Urgency)
	assert.Nil(t, updated.CompletedDate)

	later := serviceClock().Add(2 * time.Hour)
	svc.now = func() time.Time { return later }
	completed := models.ConsultationCompleted
	feedback := "Shorten blocks to 15 minutes."
	updated, err = svc.Update(context.Background(), "stu-1", created.ID, ConsultationUpdate{Status: &completed, Feedback: &feedback})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedDate)
	assert.Equal(t, later, *updated.CompletedDate)
	assert.Equal(t, feedback, updated.Feedback)

	list, err := svc.List(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ConsultationCompleted, list[0].Status)
}

func TestConsultationUpdateMissing(t *testing.T) {
	svc, _ := newTestConsultationService(t)

	_, err := svc.Update(context.Background(), "stu-1", "nope", ConsultationUpdate{})
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))

	bad := models.ConsultationStatus("archived")
	_, err = svc.Update(context.Background(), "stu-1", "nope", ConsultationUpdate{Status: &bad})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestConsultationListEmpty(t *testing.T) {
	svc, _ := newTestConsultationService(t)

	list, err := svc.List(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}
