package models

import "time"

// PlanSource describes where the content of a plan came from.
type PlanSource string

const (
	PlanSourceLLM      PlanSource = "llm"
	PlanSourceFallback PlanSource = "fallback"
	PlanSourceMock     PlanSource = "mock"
)

// LearningPlan is a 7-day plan with a denormalized snapshot of the student.
type LearningPlan struct {
	StudentID          string     `json:"studentId,omitempty"`
	StudentName        string     `json:"studentName"`
	StudentAge         Age        `json:"studentAge"`
	StudentGrade       string     `json:"studentGrade"`
	Diagnosis          string     `json:"diagnosis"`
	StudentProfile     string     `json:"studentProfile"`
	LearningApproach   string     `json:"learningApproach"`
	DailyPlans         []Day      `json:"dailyPlans"`
	Accommodations     []string   `json:"accommodations"`
	ProgressMonitoring string     `json:"progressMonitoring"`
	Resources          []Resource `json:"resources"`
	Source             PlanSource `json:"source,omitempty"`
	RawContent         string     `json:"rawContent,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// Day is one day of a plan.
type Day struct {
	Title      string      `json:"title"`
	TimeBlocks []TimeBlock `json:"timeBlocks"`
	Notes      string      `json:"notes"`
}

// TimeBlock is a single scheduled activity. Time is a free-text label.
type TimeBlock struct {
	Time      string `json:"time"`
	Subject   string `json:"subject"`
	Activity  string `json:"activity"`
	Approach  string `json:"approach"`
	Materials string `json:"materials,omitempty"`
}
