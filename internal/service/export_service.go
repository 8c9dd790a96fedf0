package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/pkg/export"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

// Supported export formats.
const (
	ExportFormatPDF = "pdf"
	ExportFormatCSV = "csv"
)

var planColumns = []string{"Day", "Time", "Subject", "Activity", "Approach", "Materials"}

type latestPlanReader interface {
	LatestPlan(ctx context.Context, studentID string) (*models.LearningPlan, error)
}

type csvRenderer interface {
	Render(data export.Dataset, preamble ...string) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ExportFile is a rendered plan ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders a student's latest plan for printing or spreadsheets.
type ExportService struct {
	plans  latestPlanReader
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(plans latestPlanReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{plans: plans, csv: csv, pdf: pdf, logger: logger}
}

// ExportPlan renders the latest plan of a student in the requested format.
func (s *ExportService) ExportPlan(ctx context.Context, studentID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatPDF
	}
	if format != ExportFormatPDF && format != ExportFormatCSV {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv")
	}

	plan, err := s.plans.LatestPlan(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var (
		content     []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		content, err = s.csv.Render(PlanDataset(plan), planPreamble(plan)...)
		contentType = "text/csv"
	default:
		content, err = s.pdf.Render(PlanDocument(plan))
		contentType = "application/pdf"
	}
	if err != nil {
		s.logger.Error("failed to render plan export",
			zap.String("student_id", studentID),
			zap.String("format", format),
			zap.Error(err),
		)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    exportFilename(plan, format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

// PlanDataset flattens every time block of a plan into one row.
func PlanDataset(plan *models.LearningPlan) export.Dataset {
	data := export.Dataset{Headers: planColumns}
	for _, day := range plan.DailyPlans {
		for _, block := range day.TimeBlocks {
			data.Rows = append(data.Rows, blockRow(day.Title, block))
		}
	}
	return data
}

// PlanDocument lays out a plan as printable sections followed by one table per day.
func PlanDocument(plan *models.LearningPlan) export.Document {
	doc := export.Document{
		Title:    fmt.Sprintf("7-Day Learning Plan: %s", displayStudent(plan)),
		Subtitle: planSubtitle(plan),
		Sections: []export.Section{
			{Heading: "Student Profile", Body: plan.StudentProfile},
			{Heading: "Learning Approach", Body: plan.LearningApproach},
			{Heading: "Accommodations", Items: plan.Accommodations},
			{Heading: "Progress Monitoring", Body: plan.ProgressMonitoring},
		},
	}
	if len(plan.Resources) > 0 {
		items := make([]string, 0, len(plan.Resources))
		for _, r := range plan.Resources {
			items = append(items, fmt.Sprintf("%s (%s)", r.Title, r.URL))
		}
		doc.Sections = append(doc.Sections, export.Section{Heading: "Resources", Items: items})
	}
	for _, day := range plan.DailyPlans {
		group := export.TableGroup{
			Heading: day.Title,
			Notes:   day.Notes,
			Table:   export.Dataset{Headers: planColumns[1:]},
			Widths:  []float64{1.2, 1.5, 3, 2, 1.8},
		}
		for _, block := range day.TimeBlocks {
			group.Table.Rows = append(group.Table.Rows, blockRow(day.Title, block))
		}
		doc.Groups = append(doc.Groups, group)
	}
	return doc
}

func blockRow(day string, block models.TimeBlock) map[string]string {
	return map[string]string{
		"Day":       day,
		"Time":      block.Time,
		"Subject":   block.Subject,
		"Activity":  block.Activity,
		"Approach":  block.Approach,
		"Materials": block.Materials,
	}
}

func planPreamble(plan *models.LearningPlan) []string {
	return []string{
		"Learning plan for " + displayStudent(plan),
		planSubtitle(plan),
	}
}

func planSubtitle(plan *models.LearningPlan) string {
	parts := make([]string, 0, 4)
	if age := plan.StudentAge.String(); age != "" {
		parts = append(parts, "Age "+age)
	}
	if plan.StudentGrade != "" {
		parts = append(parts, "Grade "+plan.StudentGrade)
	}
	if plan.Diagnosis != "" {
		parts = append(parts, plan.Diagnosis)
	}
	if !plan.CreatedAt.IsZero() {
		parts = append(parts, "Created "+plan.CreatedAt.Format("2006-01-02"))
	}
	return strings.Join(parts, " | ")
}

func displayStudent(plan *models.LearningPlan) string {
	if strings.TrimSpace(plan.StudentName) == "" {
		return "Student"
	}
	return strings.TrimSpace(plan.StudentName)
}

func exportFilename(plan *models.LearningPlan, format string) string {
	name := strings.ToLower(strings.Join(strings.Fields(displayStudent(plan)), "-"))
	name = strings.Map(func(r rune) rune {
		if r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, name)
	if name == "" {
		name = "student"
	}
	return fmt.Sprintf("learning-plan-%s.%s", name, format)
}
