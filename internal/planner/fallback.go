package planner

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/iep-planner-api/internal/models"
)

var (
	dayNames        = []string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	rotatedSubjects = []string{"Math", "Reading", "Science", "Social Studies", "Writing", "Art", "Technology"}
	defaultInterest = []string{"dinosaurs", "space", "technology"}
)

var dayTitleNumber = regexp.MustCompile(`(?i)^\s*day\s+(\d+)\b`)

var fallbackAccommodations = []string{
	"Provide visual schedule and checklists for daily activities and transitions",
	"Allow use of fidget tools during seated work to support focus",
	"Break assignments into smaller chunks with clear visual markers for each section",
	"Provide extra time for reading tasks and comprehension activities",
	"Offer alternatives to handwriting (typing, voice recording, scribe)",
	"Seat near teacher for frequent check-ins and redirection",
	"Use visual timer for all activities to support time management",
	"Provide quiet headphones during independent work to reduce auditory distractions",
	"Use color-coding system for organizing materials and information",
	"Incorporate movement breaks between learning activities",
	"Provide step-by-step visual instructions for multi-step tasks",
	"Allow preferential seating away from distractions (windows, doors, high traffic areas)",
}

var fallbackResources = []models.Resource{
	{
		Title:       "Visual Schedules and Task Organization for Students with ADHD",
		Description: "A comprehensive guide to creating effective visual schedules and organizational systems for students with attention challenges.",
		URL:         "https://www.understood.org/articles/en/classroom-accommodations-for-adhd",
		Source:      "understood.org",
		Type:        models.ResourceTypeArticle,
		Difficulty:  "intermediate",
		AgeGroup:    "all",
	},
	{
		Title:       "Math Visualization Strategies for Neurodiverse Learners",
		Description: "Video tutorial showing effective ways to teach math concepts using visual supports and manipulatives.",
		URL:         "https://www.teachingchannel.com/",
		Source:      "teachingchannel.com",
		Type:        models.ResourceTypeVideo,
		Difficulty:  "beginner",
		AgeGroup:    "elementary",
	},
	{
		Title:       "Interactive Reading Comprehension Games",
		Description: "Collection of digital games that support reading comprehension through visual cues and interactive elements.",
		URL:         "https://www.education.com/games/reading/",
		Source:      "education.com",
		Type:        models.ResourceTypeInteractive,
		Difficulty:  "intermediate",
		AgeGroup:    "elementary",
	},
	{
		Title:       "Sensory Break Activities for the Classroom",
		Description: "Printable cards with structured movement activities designed for classroom brain breaks.",
		URL:         "https://www.readingrockets.org/topics/adhd",
		Source:      "readingrockets.org",
		Type:        models.ResourceTypeWorksheet,
		Difficulty:  "beginner",
		AgeGroup:    "all",
	},
	{
		Title:       "Executive Function Skills: Building Attention and Focus",
		Description: "Research-based strategies for developing executive function skills in students with attention challenges.",
		URL:         "https://chadd.org/for-educators/classroom-management/",
		Source:      "chadd.org",
		Type:        models.ResourceTypeArticle,
		Difficulty:  "advanced",
		AgeGroup:    "all",
	},
}

var chunkLengths = map[string]string{
	"very-short": "5-10 minute",
	"short":      "10-20 minute",
	"moderate":   "20-30 minute",
	"long":       "30-40 minute",
	"variable":   "10-20 minute (longer when interest is high)",
}

// FallbackGenerator builds a complete plan from templates without any external call.
// Output depends only on the profile, so the same profile always yields the same plan.
type FallbackGenerator struct {
	now func() time.Time
}

// NewFallbackGenerator constructs a generator using the wall clock for CreatedAt.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{now: time.Now}
}

// NewFallbackGeneratorWithClock constructs a generator with a fixed time source.
func NewFallbackGeneratorWithClock(now func() time.Time) *FallbackGenerator {
	if now == nil {
		now = time.Now
	}
	return &FallbackGenerator{now: now}
}

// Generate returns a seven day plan for the profile.
func (g *FallbackGenerator) Generate(profile models.StudentProfile) *models.LearningPlan {
	plan := snapshot(profile, g.now().UTC())
	plan.Source = models.PlanSourceFallback
	plan.StudentProfile = studentSummary(profile)
	plan.LearningApproach = learningApproach(profile)
	plan.DailyPlans = g.Days(profile)
	plan.Accommodations = Accommodations(profile)
	plan.ProgressMonitoring = progressMonitoring(profile)
	plan.Resources = FallbackResources()
	return plan
}

// Days returns the seven template days for the profile.
func (g *FallbackGenerator) Days(profile models.StudentProfile) []models.Day {
	interests := profile.InterestList()
	if len(interests) == 0 {
		interests = defaultInterest
	}
	days := []models.Day{firstDay(interests), secondDay(interests)}
	for n := 3; n <= PlanDays; n++ {
		days = append(days, genericDay(n, profile, interests))
	}
	return days
}

// Complete fills gaps in a parsed plan from the template plan: missing days by day number,
// an empty accommodations list, and empty narrative sections. It reports whether anything was filled.
func (g *FallbackGenerator) Complete(plan *models.LearningPlan, profile models.StudentProfile) bool {
	if plan == nil {
		return false
	}
	days, filled := g.fillDays(plan.DailyPlans, profile)
	plan.DailyPlans = days
	if len(plan.Accommodations) == 0 {
		plan.Accommodations = Accommodations(profile)
		filled = true
	}
	if strings.TrimSpace(plan.StudentProfile) == "" {
		plan.StudentProfile = studentSummary(profile)
		filled = true
	}
	if strings.TrimSpace(plan.LearningApproach) == "" {
		plan.LearningApproach = learningApproach(profile)
		filled = true
	}
	return filled
}

// fillDays places each parsed day in the slot named by its title. Duplicate and
// out-of-range days are dropped, unnumbered days take the earliest free slot and
// the remaining slots come from the template.
func (g *FallbackGenerator) fillDays(parsed []models.Day, profile models.StudentProfile) ([]models.Day, bool) {
	var slots [PlanDays]*models.Day
	var unnumbered []*models.Day
	changed := len(parsed) != PlanDays
	for i := range parsed {
		n := DayNumber(parsed[i].Title)
		switch {
		case n == 0:
			unnumbered = append(unnumbered, &parsed[i])
		case n > PlanDays || slots[n-1] != nil:
			changed = true
		default:
			slots[n-1] = &parsed[i]
			if n-1 != i {
				changed = true
			}
		}
	}
	for i := range slots {
		if len(unnumbered) == 0 {
			break
		}
		if slots[i] == nil {
			slots[i], unnumbered = unnumbered[0], unnumbered[1:]
		}
	}
	if !changed {
		return parsed, false
	}

	var template []models.Day
	days := make([]models.Day, PlanDays)
	for i, slot := range slots {
		if slot != nil {
			days[i] = *slot
			continue
		}
		if template == nil {
			template = g.Days(profile)
		}
		days[i] = template[i]
	}
	return days, true
}

// DayNumber reads n from a "Day n" title, or 0 when the title carries no number.
func DayNumber(title string) int {
	m := dayTitleNumber.FindStringSubmatch(title)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// Accommodations returns the template accommodations, led by any already in place.
func Accommodations(profile models.StudentProfile) []string {
	out := make([]string, 0, len(fallbackAccommodations)+1)
	if current := strings.TrimSpace(profile.CurrentAccommodations); current != "" {
		out = append(out, "Continue current accommodations: "+current)
	}
	return append(out, fallbackAccommodations...)
}

// FallbackResources returns the built-in resource list.
func FallbackResources() []models.Resource {
	out := make([]models.Resource, len(fallbackResources))
	copy(out, fallbackResources)
	return out
}

func displayName(p models.StudentProfile) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return "The student"
}

func studentSummary(p models.StudentProfile) string {
	name := displayName(p)
	var b strings.Builder
	b.WriteString(name)
	if age := p.Age.String(); age != "" {
		fmt.Fprintf(&b, " is a %s-year-old student", age)
	} else {
		b.WriteString(" is a student")
	}
	if p.Grade != "" {
		fmt.Fprintf(&b, " in grade %s", p.Grade)
	}
	if d := p.DiagnosisLabel(); d != "" {
		fmt.Fprintf(&b, " with %s", d)
	}
	b.WriteString(". ")
	fmt.Fprintf(&b, "%s demonstrates strengths in %s, while facing challenges with %s. ",
		name,
		orDefault(p.Strengths, "verbal communication and creative problem-solving"),
		orDefault(p.Struggles, "maintaining focus and reading comprehension"))
	style := "visual"
	if p.LearningStyle != "" {
		style = strings.ToLower(strings.SplitN(LearningStyleLabel(p.LearningStyle), " (", 2)[0])
	}
	fmt.Fprintf(&b, "%s has a %s learning style and typically maintains focus for %s periods. ",
		name, style, chunkLength(p.AttentionSpan))
	fmt.Fprintf(&b, "%s is particularly interested in %s, which can be leveraged to increase engagement.",
		name, orDefault(p.Interests, "science topics and technology"))
	return b.String()
}

func learningApproach(p models.StudentProfile) string {
	name := displayName(p)
	strategies := []string{
		"Use visual supports extensively, including graphic organizers, color-coding, and visual schedules",
		fmt.Sprintf("Break learning into %s chunks to match attention span, with brief movement breaks between activities", chunkLength(p.AttentionSpan)),
		fmt.Sprintf("Incorporate high-interest topics like %s into lessons across subjects", orDefault(p.Interests, "science and technology")),
		"Provide immediate feedback and positive reinforcement, using a points system for motivation",
		"Use multisensory teaching methods that combine visual, auditory, and kinesthetic elements",
		"Minimize writing demands by offering alternatives like voice recording, typing, or verbal responses",
		"Create a predictable routine with clear transitions and expectations",
	}
	var b strings.Builder
	fmt.Fprintf(&b, "For %s, a structured yet flexible approach is recommended, with the following key strategies:\n", name)
	for i, s := range strategies {
		fmt.Fprintf(&b, "\n%d. %s", i+1, s)
	}
	return b.String()
}

func progressMonitoring(p models.StudentProfile) string {
	name := displayName(p)
	return fmt.Sprintf(`Progress for %[1]s should be monitored using the following approaches:

1. Daily check-in/check-out system with visual tracking of goals
2. Weekly progress chart for specific target behaviors (task completion, focus time, etc.)
3. Point system tied to specific learning objectives with visual tracking
4. Bi-weekly assessment of reading fluency and comprehension using leveled passages
5. Math skill checks using visual problem-solving templates
6. Self-monitoring tools where %[1]s rates own focus and effort after activities
7. Regular communication between home and school using a visual communication log
8. Monthly review of accommodations to determine effectiveness and make adjustments as needed`, name)
}

func firstDay(interests []string) models.Day {
	theme := interests[0]
	return models.Day{
		Title: "Day 1 - Monday",
		TimeBlocks: []models.TimeBlock{
			{Time: "9:00-9:20", Subject: "Morning Meeting", Activity: "Visual schedule review and daily goals", Approach: "Use visual schedule cards and interactive goal-setting", Materials: "Visual schedule, goal chart, stickers"},
			{Time: "9:25-9:45", Subject: "Math", Activity: fmt.Sprintf("Number patterns with %s theme", theme), Approach: "Visual aids and manipulatives with high-interest theme", Materials: "Pattern blocks, themed worksheets, tablet for interactive math game"},
			{Time: "9:50-10:10", Subject: "Movement Break", Activity: "Structured movement game with math concepts", Approach: "Kinesthetic learning with clear rules and boundaries", Materials: "Open space, number cards, music"},
			{Time: "10:15-10:35", Subject: "Reading", Activity: fmt.Sprintf("Guided reading with book about %s", theme), Approach: "Pre-teaching vocabulary with visual supports, chunked reading passages", Materials: "Highlighted text, vocabulary cards, fidget tools"},
			{Time: "10:40-11:00", Subject: "Science", Activity: "Interactive video and discussion", Approach: "Visual learning with structured discussion prompts", Materials: "Short video segments, discussion cards, response board"},
		},
		Notes: "Ensure fidget tools are available throughout the day. Use visual timer for all activities. Provide specific praise for on-task behavior.",
	}
}

func secondDay(interests []string) models.Day {
	theme := interests[1%len(interests)]
	return models.Day{
		Title: "Day 2 - Tuesday",
		TimeBlocks: []models.TimeBlock{
			{Time: "9:00-9:20", Subject: "Morning Meeting", Activity: "Review schedule and set daily goals", Approach: "Interactive check-in with visual supports", Materials: "Visual schedule, goal chart, feelings cards"},
			{Time: "9:25-9:45", Subject: "Writing", Activity: fmt.Sprintf("Create a comic strip about %s", theme), Approach: "Visual storytelling with minimal writing", Materials: "Comic templates, colored pencils, word bank"},
			{Time: "9:50-10:10", Subject: "Movement Break", Activity: "Simon Says with academic concepts", Approach: "Structured movement with clear directions", Materials: "Open space, visual cue cards"},
			{Time: "10:15-10:35", Subject: "Social Studies", Activity: "Interactive map exploration", Approach: "Hands-on learning with visual supports", Materials: "Interactive maps, colored markers, tablet for virtual exploration"},
			{Time: "10:40-11:00", Subject: "Math", Activity: "Problem-solving with visual models", Approach: "Step-by-step visual problem solving", Materials: "Math manipulatives, visual problem-solving template"},
		},
		Notes: "Check in frequently during writing activity. Provide extra visual supports for transitions between activities.",
	}
}

func genericDay(n int, p models.StudentProfile, interests []string) models.Day {
	interest := interests[pick(p, n, len(interests))]
	offset := (n - 3) * 3
	subject := func(i int) string { return rotatedSubjects[(offset+i)%len(rotatedSubjects)] }

	return models.Day{
		Title: fmt.Sprintf("Day %d - %s", n, dayNames[weekdayIndex(n)]),
		TimeBlocks: []models.TimeBlock{
			{Time: "9:00-9:20", Subject: "Morning Meeting", Activity: "Visual schedule review and goal setting", Approach: "Interactive check-in with visual supports", Materials: "Visual schedule, goal chart, timer"},
			{Time: "9:25-9:45", Subject: subject(0), Activity: fmt.Sprintf("%s activity with %s theme", subject(0), interest), Approach: "Visual learning with high-interest content", Materials: fmt.Sprintf("%s materials, visual aids, fidget tools", subject(0))},
			{Time: "9:50-10:10", Subject: "Movement Break", Activity: "Structured movement activity", Approach: "Kinesthetic learning with clear boundaries", Materials: "Open space, movement cards, music"},
			{Time: "10:15-10:35", Subject: subject(1), Activity: fmt.Sprintf("Interactive %s lesson", subject(1)), Approach: "Multisensory approach with visual supports", Materials: fmt.Sprintf("%s materials, tablet for interactive elements", subject(1))},
			{Time: "10:40-11:00", Subject: subject(2), Activity: fmt.Sprintf("%s exploration with visual aids", subject(2)), Approach: "Hands-on learning with frequent check-ins", Materials: fmt.Sprintf("%s materials, visual supports, timer", subject(2))},
		},
		Notes: fmt.Sprintf("Focus on providing immediate feedback and positive reinforcement throughout the day. Incorporate %s into activities when possible to increase engagement.", interest),
	}
}

func weekdayIndex(n int) int {
	if i := n % 7; i != 0 {
		return i
	}
	return 7
}

// pick chooses an index from the student's identity and the day so reruns agree.
func pick(p models.StudentProfile, day, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%s|%s|%d", strings.ToLower(p.Name), strings.ToLower(p.Interests), strings.ToLower(p.Diagnosis), day)
	return int(h.Sum32() % uint32(n))
}

func chunkLength(code string) string {
	if l, ok := chunkLengths[strings.ToLower(strings.TrimSpace(code))]; ok {
		return l
	}
	return "15-20 minute"
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}
