package planner

import (
	"fmt"
	"strings"

	"github.com/noah-isme/iep-planner-api/internal/models"
)

const notSpecified = "Not specified"

// SystemPrompt frames the model as a special education planner.
const SystemPrompt = `You are an educational specialist who creates highly personalized 7-day learning plans for neurodiverse students.
Your plans are evidence-based, practical, and tailored to each student's unique strengths, challenges, interests, and learning style.
You specialize in creating plans for students with ADHD, autism, dyslexia, and other neurodiverse conditions.

IMPORTANT GUIDELINES:
1. Make each plan HIGHLY PERSONALIZED to the specific student, not generic recommendations.
2. Incorporate the student's specific interests, strengths, and learning style throughout the plan.
3. Address the student's specific challenges with targeted, evidence-based strategies.
4. Consider cultural background and preferences when provided.
5. Create activities that are engaging and appropriate for the student's age and grade level.
6. Structure time blocks based on the student's attention span.
7. Include specific materials, resources, and teaching methods for each activity.
8. Provide clear, practical accommodations that address the student's specific needs.

Your responses should be structured, detailed, and focused on practical implementation.
Each plan should feel custom-designed for the specific student, not a generic template.`

var learningStyleLabels = map[string]string{
	"visual":          "Visual (learns best through seeing)",
	"auditory":        "Auditory (learns best through hearing)",
	"kinesthetic":     "Kinesthetic (learns best through hands-on activities)",
	"reading/writing": "Reading/Writing (learns best through text)",
	"multimodal":      "Multimodal (combination of styles)",
}

var attentionSpanLabels = map[string]string{
	"very-short": "Very short (5-10 minutes)",
	"short":      "Short (10-20 minutes)",
	"moderate":   "Moderate (20-30 minutes)",
	"long":       "Long (30+ minutes)",
	"variable":   "Highly variable (depends on interest)",
}

// LearningStyleLabel maps a learning style code to its display label.
func LearningStyleLabel(code string) string {
	return label(learningStyleLabels, code)
}

// AttentionSpanLabel maps an attention span code to its display label.
func AttentionSpanLabel(code string) string {
	return label(attentionSpanLabels, code)
}

func label(labels map[string]string, code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return notSpecified
	}
	if l, ok := labels[strings.ToLower(code)]; ok {
		return l
	}
	return code
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return notSpecified
	}
	return strings.TrimSpace(v)
}

const sectionInstructions = `2. Learning Approach: %s

3. Daily Plans (for 7 days): Label each day "Day 1" through "Day 7". For each day, create a structured schedule with:
   - Time blocks based on the student's attention span, each starting with a time range such as "9:00-9:20"
   - Subject focus for each block on the first line of the block
   - Specific activities that leverage strengths and address challenges
   - Teaching methods on a line starting with "Approach:"
   - Required materials on a line starting with "Materials:"
   - Day-level notes on a line starting with "Notes:"

4. Accommodations: %s Write them as a bulleted list.

5. Progress Monitoring: %s

Format your response with clear headings for each section. Be specific and practical in your recommendations. Focus on evidence-based strategies for students with %s.
`

// BuildPlanPrompt renders the generation prompt for a student. Missing fields render as "Not specified".
func BuildPlanPrompt(p models.StudentProfile) string {
	var b strings.Builder
	b.WriteString("Create a comprehensive 7-day personalized learning plan for the following neurodiverse student:\n\n")
	writeStudentInformation(&b, p)
	writeLearningProfile(&b, p)
	writeAssessment(&b, p.LearningStyleResults)
	writeCulturalContext(&b, p.CulturalData)

	b.WriteString("Please create a detailed 7-day learning plan with the following sections:\n\n")
	b.WriteString("1. Student Profile: A brief summary of the student's learning profile, including strengths, challenges, and learning style.\n\n")
	fmt.Fprintf(&b, sectionInstructions,
		"Overall recommended teaching approach for this student, considering their diagnosis, learning style, and attention span.",
		"Specific classroom and testing accommodations that will help the student access the curriculum.",
		"How to track and measure the student's progress toward their learning goals.",
		orNotSpecified(p.DiagnosisLabel()),
	)
	b.WriteString("\nFor the daily plans, ensure activities are engaging and appropriate for the student's age, grade level, and attention span.\n")
	return b.String()
}

// BuildAdaptedPlanPrompt renders the adaptation prompt from prior progress and the previous plan.
func BuildAdaptedPlanPrompt(p models.StudentProfile, progress *models.ProgressData) string {
	var b strings.Builder
	b.WriteString("Create an adapted 7-day learning plan for the following neurodiverse student based on their progress:\n\n")
	writeStudentInformation(&b, p)
	writeLearningProfile(&b, p)
	writeCulturalContext(&b, p.CulturalData)

	b.WriteString("PROGRESS INFORMATION:\n")
	b.WriteString(FormatProgress(progress))
	b.WriteString("\n")

	var worked, challenges, next string
	if progress != nil {
		worked, challenges, next = progress.WhatWorked, progress.Challenges, progress.NextSteps
	}
	fmt.Fprintf(&b, "WHAT WORKED WELL:\n%s\n\n", orNotSpecified(worked))
	fmt.Fprintf(&b, "WHAT DIDN'T WORK:\n%s\n\n", orNotSpecified(challenges))
	fmt.Fprintf(&b, "PLANNED NEXT STEPS:\n%s\n\n", orNotSpecified(next))

	previous := "No previous plan available"
	if p.LatestPlan != nil && strings.TrimSpace(p.LatestPlan.StudentProfile) != "" {
		previous = strings.TrimSpace(p.LatestPlan.StudentProfile)
	}
	fmt.Fprintf(&b, "PREVIOUS PLAN SUMMARY:\n%s\n\n", previous)

	b.WriteString("Please create an updated 7-day learning plan that builds on what worked well and addresses the challenges. Include the following sections:\n\n")
	b.WriteString("1. Student Profile: An updated summary of the student's learning profile based on progress.\n\n")
	fmt.Fprintf(&b, sectionInstructions,
		"Refined teaching approach based on what worked well.",
		"Updated accommodations based on progress.",
		"How to track and measure the student's progress.",
		orNotSpecified(p.DiagnosisLabel()),
	)
	return b.String()
}

// FormatProgress renders weekly progress in stable day and block order.
func FormatProgress(progress *models.ProgressData) string {
	if progress == nil || len(progress.WeeklyProgress) == 0 {
		if progress != nil && progress.OverallRating > 0 {
			return fmt.Sprintf("Overall rating: %d/5\n", progress.OverallRating)
		}
		return notSpecified + "\n"
	}
	var b strings.Builder
	week := progress.WeeklyProgress
	for _, day := range week.DayKeys() {
		fmt.Fprintf(&b, "%s:\n", humanizeKey(day))
		for _, block := range week.BlockKeys(day) {
			entry := week[day][block]
			status := "not completed"
			if entry.Completed {
				status = "completed"
			}
			line := fmt.Sprintf("  - %s: %s", humanizeKey(block), status)
			if entry.Rating > 0 {
				line += fmt.Sprintf(", rating %d/5", entry.Rating)
			}
			if notes := strings.TrimSpace(entry.Notes); notes != "" {
				line += ", notes: " + notes
			}
			b.WriteString(line + "\n")
		}
	}
	done, total := week.Completion()
	fmt.Fprintf(&b, "Completed %d of %d blocks.\n", done, total)
	if progress.OverallRating > 0 {
		fmt.Fprintf(&b, "Overall rating: %d/5\n", progress.OverallRating)
	}
	return b.String()
}

func writeStudentInformation(b *strings.Builder, p models.StudentProfile) {
	b.WriteString("STUDENT INFORMATION:\n")
	fmt.Fprintf(b, "Name: %s\n", orNotSpecified(p.Name))
	fmt.Fprintf(b, "Age: %s\n", orNotSpecified(p.Age.String()))
	fmt.Fprintf(b, "Grade: %s\n", orNotSpecified(p.Grade))
	fmt.Fprintf(b, "Diagnosis/Condition: %s\n\n", orNotSpecified(p.DiagnosisLabel()))
}

func writeLearningProfile(b *strings.Builder, p models.StudentProfile) {
	b.WriteString("LEARNING PROFILE:\n")
	fmt.Fprintf(b, "Strengths: %s\n", orNotSpecified(p.Strengths))
	fmt.Fprintf(b, "Struggles: %s\n", orNotSpecified(p.Struggles))
	fmt.Fprintf(b, "Learning Style: %s\n", LearningStyleLabel(p.LearningStyle))
	fmt.Fprintf(b, "Attention Span: %s\n", AttentionSpanLabel(p.AttentionSpan))
	fmt.Fprintf(b, "Known Triggers: %s\n", orNotSpecified(p.Triggers))
	fmt.Fprintf(b, "Interests & Motivators: %s\n", orNotSpecified(p.Interests))
	fmt.Fprintf(b, "Current Accommodations: %s\n\n", orNotSpecified(p.CurrentAccommodations))
}

func writeAssessment(b *strings.Builder, r *models.LearningStyleResults) {
	if r == nil || r.PrimaryLearningStyle == "" {
		return
	}
	b.WriteString("LEARNING STYLE ASSESSMENT:\n")
	fmt.Fprintf(b, "Primary: %s\n", LearningStyleLabel(r.PrimaryLearningStyle))
	if r.SecondaryLearningStyle != "" {
		fmt.Fprintf(b, "Secondary: %s\n", LearningStyleLabel(r.SecondaryLearningStyle))
	}
	if len(r.Recommendations) > 0 {
		fmt.Fprintf(b, "Assessment recommendations: %s\n", strings.Join(r.Recommendations, "; "))
	}
	b.WriteString("\n")
}

func writeCulturalContext(b *strings.Builder, c *models.CulturalData) {
	if c.IsEmpty() {
		return
	}
	b.WriteString("CULTURAL CONTEXT:\n")
	fields := []struct{ name, value string }{
		{"Cultural Background", c.CulturalBackground},
		{"Home Language", c.Language},
		{"Traditions", c.Traditions},
		{"Family Values", c.Values},
		{"Community", c.CommunityContext},
		{"Cultural Strengths", c.CulturalStrengths},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) != "" {
			fmt.Fprintf(b, "%s: %s\n", f.name, strings.TrimSpace(f.value))
		}
	}
	for _, a := range c.Adaptations {
		line := fmt.Sprintf("Adaptation (%s): %s", a.Area, a.Description)
		if a.Strategy != "" {
			line += " Strategy: " + a.Strategy
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}

func humanizeKey(key string) string {
	for _, prefix := range []string{"day", "block"} {
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return strings.ToUpper(prefix[:1]) + prefix[1:] + " " + key[len(prefix):]
		}
	}
	return key
}
