package models

import "time"

// ConsultationType enumerates expert consultation categories.
type ConsultationType string

const (
	ConsultationPlanReview          ConsultationType = "plan-review"
	ConsultationSpecificQuestion    ConsultationType = "specific-question"
	ConsultationStrategyDevelopment ConsultationType = "strategy-development"
	ConsultationProgressReview      ConsultationType = "progress-review"
)

// ConsultationStatus tracks the consultation lifecycle.
type ConsultationStatus string

const (
	ConsultationPending    ConsultationStatus = "pending"
	ConsultationInProgress ConsultationStatus = "in-progress"
	ConsultationCompleted  ConsultationStatus = "completed"
)

// ConsultationUrgency expresses how quickly a response is needed.
type ConsultationUrgency string

const (
	UrgencyNormal    ConsultationUrgency = "normal"
	UrgencyUrgent    ConsultationUrgency = "urgent"
	UrgencyImmediate ConsultationUrgency = "immediate"
)

// Consultation is a request for expert review attached to a student.
type Consultation struct {
	ID                string              `json:"id"`
	StudentID         string              `json:"studentId"`
	ExpertID          string              `json:"expertId,omitempty"`
	ExpertName        string              `json:"expertName,omitempty"`
	ExpertPhoto       string              `json:"expertPhoto,omitempty"`
	Type              ConsultationType    `json:"type"`
	Status            ConsultationStatus  `json:"status"`
	Urgency           ConsultationUrgency `json:"urgency"`
	SpecificQuestions string              `json:"specificQuestions,omitempty"`
	Summary           string              `json:"summary,omitempty"`
	Feedback          string              `json:"feedback,omitempty"`
	Attachments       []string            `json:"attachments,omitempty"`
	RequestDate       time.Time           `json:"requestDate"`
	CompletedDate     *time.Time          `json:"completedDate,omitempty"`
}

// ConsultationData is the consultation section of a profile.
type ConsultationData struct {
	Consultations []Consultation `json:"consultations"`
}
