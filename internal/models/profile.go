package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Age accepts both JSON numbers and numeric strings, as form clients send either.
type Age int

// UnmarshalJSON implements json.Unmarshaler.
func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*a = 0
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("age %q is not a number", raw)
		}
		*a = Age(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("age: %w", err)
	}
	*a = Age(int(n))
	return nil
}

// String renders the age or an empty string when unknown.
func (a Age) String() string {
	if a <= 0 {
		return ""
	}
	return strconv.Itoa(int(a))
}

// StudentProfile is the persisted aggregate for one student. Nested sections are
// owned by individual features and replaced independently.
type StudentProfile struct {
	ID                    string `json:"id,omitempty"`
	Name                  string `json:"name"`
	Age                   Age    `json:"age"`
	Grade                 string `json:"grade,omitempty"`
	Diagnosis             string `json:"diagnosis,omitempty"`
	DiagnosisOther        string `json:"diagnosisOther,omitempty"`
	Strengths             string `json:"strengths,omitempty"`
	Struggles             string `json:"struggles,omitempty"`
	LearningStyle         string `json:"learningStyle,omitempty"`
	AttentionSpan         string `json:"attentionSpan,omitempty"`
	Triggers              string `json:"triggers,omitempty"`
	Interests             string `json:"interests,omitempty"`
	CurrentAccommodations string `json:"currentAccommodations,omitempty"`

	LearningStyleResults *LearningStyleResults `json:"learningStyleResults,omitempty"`
	CulturalData         *CulturalData         `json:"culturalData,omitempty"`
	ProgressData         *ProgressData         `json:"progressData,omitempty"`
	CalendarData         *CalendarData         `json:"calendarData,omitempty"`
	ResourceData         *ResourceData         `json:"resourceData,omitempty"`
	ConsultationData     *ConsultationData     `json:"consultationData,omitempty"`
	LatestPlan           *LearningPlan         `json:"latestPlan,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DiagnosisLabel returns the diagnosis, appending the free-text "other" value when given.
func (p StudentProfile) DiagnosisLabel() string {
	switch {
	case p.Diagnosis == "" && p.DiagnosisOther == "":
		return ""
	case p.DiagnosisOther == "":
		return p.Diagnosis
	case p.Diagnosis == "" || strings.EqualFold(p.Diagnosis, "other"):
		return p.DiagnosisOther
	default:
		return p.Diagnosis + " (" + p.DiagnosisOther + ")"
	}
}

// InterestList splits the comma separated interests, dropping a leading "and".
func (p StudentProfile) InterestList() []string {
	parts := strings.Split(p.Interests, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		item = strings.TrimSpace(strings.TrimPrefix(item, "and "))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// MergeSections copies nested sections from prev that are absent on p.
func (p *StudentProfile) MergeSections(prev *StudentProfile) {
	if prev == nil {
		return
	}
	if p.LearningStyleResults == nil {
		p.LearningStyleResults = prev.LearningStyleResults
	}
	if p.CulturalData == nil {
		p.CulturalData = prev.CulturalData
	}
	if p.ProgressData == nil {
		p.ProgressData = prev.ProgressData
	}
	if p.CalendarData == nil {
		p.CalendarData = prev.CalendarData
	}
	if p.ResourceData == nil {
		p.ResourceData = prev.ResourceData
	}
	if p.ConsultationData == nil {
		p.ConsultationData = prev.ConsultationData
	}
	if p.LatestPlan == nil {
		p.LatestPlan = prev.LatestPlan
	}
}

// Summary projects the searchable metadata of a profile.
func (p StudentProfile) Summary() ProfileSummary {
	return ProfileSummary{
		ID:        p.ID,
		Name:      p.Name,
		Age:       p.Age,
		Grade:     p.Grade,
		Diagnosis: p.Diagnosis,
		HasPlan:   p.LatestPlan != nil,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ProfileSummary is the list view of a profile.
type ProfileSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       Age       `json:"age"`
	Grade     string    `json:"grade,omitempty"`
	Diagnosis string    `json:"diagnosis,omitempty"`
	HasPlan   bool      `json:"hasPlan"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LearningStyleResults stores the outcome of the learning style questionnaire.
type LearningStyleResults struct {
	PrimaryLearningStyle   string         `json:"primaryLearningStyle" validate:"required"`
	SecondaryLearningStyle string         `json:"secondaryLearningStyle,omitempty"`
	Scores                 map[string]int `json:"scores,omitempty"`
	Recommendations        []string       `json:"recommendations,omitempty"`
	CompletedAt            *time.Time     `json:"completedAt,omitempty"`
}

// CulturalData captures background used to make plans culturally responsive.
type CulturalData struct {
	CulturalBackground string               `json:"culturalBackground,omitempty"`
	Language           string               `json:"language,omitempty"`
	Traditions         string               `json:"traditions,omitempty"`
	Values             string               `json:"values,omitempty"`
	CommunityContext   string               `json:"communityContext,omitempty"`
	CulturalStrengths  string               `json:"culturalStrengths,omitempty"`
	Adaptations        []CulturalAdaptation `json:"adaptations,omitempty" validate:"dive"`
	UpdatedAt          *time.Time           `json:"updatedAt,omitempty"`
}

// IsEmpty reports whether no cultural information was provided.
func (c *CulturalData) IsEmpty() bool {
	return c == nil || (c.CulturalBackground == "" && c.Language == "" && c.Traditions == "" &&
		c.Values == "" && c.CommunityContext == "" && c.CulturalStrengths == "" && len(c.Adaptations) == 0)
}

// CulturalAdaptation is a single culturally responsive adjustment.
type CulturalAdaptation struct {
	Area        string `json:"area" validate:"required"`
	Description string `json:"description" validate:"required"`
	Strategy    string `json:"strategy,omitempty"`
}

// ResourceData holds the resource library tab of a profile.
type ResourceData struct {
	Resources      []Resource `json:"resources,omitempty"`
	Strategies     []Resource `json:"strategies,omitempty"`
	SavedResources []Resource `json:"savedResources,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// CalendarData is the user-edited schedule derived from a plan.
type CalendarData struct {
	WeekStart  string             `json:"weekStart,omitempty"`
	Activities []CalendarActivity `json:"activities" validate:"dive"`
	UpdatedAt  *time.Time         `json:"updatedAt,omitempty"`
}

// CalendarActivity is one scheduled block, keyed by day and block index.
type CalendarActivity struct {
	ID         string `json:"id"`
	DayIndex   int    `json:"dayIndex" validate:"min=0,max=6"`
	BlockIndex int    `json:"blockIndex" validate:"min=0"`
	Date       string `json:"date,omitempty"`
	StartTime  string `json:"startTime,omitempty"`
	EndTime    string `json:"endTime,omitempty"`
	Subject    string `json:"subject" validate:"required"`
	Activity   string `json:"activity,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Completed  bool   `json:"completed"`
}
