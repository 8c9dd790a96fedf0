package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/internal/planner"
	"github.com/noah-isme/iep-planner-api/pkg/export"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

type latestPlanStub struct {
	plan *models.LearningPlan
	err  error
}

func (s latestPlanStub) LatestPlan(ctx context.Context, studentID string) (*models.LearningPlan, error) {
	return s.plan, s.err
}

type brokenPDF struct{}

func (brokenPDF) Render(doc export.Document) ([]byte, error) {
	return nil, errors.New("font missing")
}

func samplePlan() *models.LearningPlan {
	return planner.NewFallbackGeneratorWithClock(serviceClock).Generate(models.StudentProfile{
		ID:        "stu-1",
		Name:      "Alex Kim",
		Age:       9,
		Grade:     "4",
		Diagnosis: "ADHD",
		Interests: "trains, drawing",
	})
}

func TestExportPlanCSV(t *testing.T) {
	plan := samplePlan()
	svc := NewExportService(latestPlanStub{plan: plan}, nil, nil, nil)

	file, err := svc.ExportPlan(context.Background(), "stu-1", "CSV")
	require.NoError(t, err)
	assert.Equal(t, "learning-plan-alex-kim.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	content := string(file.Content)
	assert.True(t, strings.HasPrefix(content, "Learning plan for Alex Kim\n"))
	assert.Contains(t, content, "Day,Time,Subject,Activity,Approach,Materials")
	assert.Contains(t, content, plan.DailyPlans[0].Title)

	blocks := 0
	for _, day := range plan.DailyPlans {
		blocks += len(day.TimeBlocks)
	}
	assert.Len(t, PlanDataset(plan).Rows, blocks)
}

func TestExportPlanPDF(t *testing.T) {
	svc := NewExportService(latestPlanStub{plan: samplePlan()}, nil, nil, nil)

	file, err := svc.ExportPlan(context.Background(), "stu-1", "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "learning-plan-alex-kim.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Content, []byte("%PDF")))
}

func TestExportPlanDocumentLayout(t *testing.T) {
	plan := samplePlan()
	doc := PlanDocument(plan)

	assert.Equal(t, "7-Day Learning Plan: Alex Kim", doc.Title)
	assert.Equal(t, "Age 9 | Grade 4 | ADHD | Created 2024-09-02", doc.Subtitle)
	require.Len(t, doc.Groups, planner.PlanDays)
	assert.Equal(t, planColumns[1:], doc.Groups[0].Table.Headers)
	assert.Equal(t, "Resources", doc.Sections[len(doc.Sections)-1].Heading)
}

func TestExportPlanErrors(t *testing.T) {
	svc := NewExportService(latestPlanStub{plan: samplePlan()}, nil, nil, nil)
	_, err := svc.ExportPlan(context.Background(), "stu-1", "docx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	missing := NewExportService(latestPlanStub{err: appErrors.Clone(appErrors.ErrNotFound, "no plan")}, nil, nil, nil)
	_, err = missing.ExportPlan(context.Background(), "stu-1", "pdf")
	assert.True(t, appErrors.IsNotFound(err))

	broken := NewExportService(latestPlanStub{plan: samplePlan()}, nil, brokenPDF{}, nil)
	_, err = broken.ExportPlan(context.Background(), "stu-1", "pdf")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
