package planner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/iep-planner-api/internal/models"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

// PlanDays is the number of days a plan covers.
const PlanDays = 7

const (
	defaultApproach  = "Not specified"
	fullDayLabel     = "Full Day"
	generalSubject   = "General"
	fullDayExcerpt   = 500
	maxSubjectLength = 60
)

var (
	progressHeading = regexp.MustCompile(`Progress Monitoring`)
	// a blank line before the heading separates the plan-level list from per-day notes
	accommodationsHeading = regexp.MustCompile(`\n[ \t]*\n[ \t]*(?:\d+\.[ \t]*)?Accommodations\b`)
	dailyPlansHeading     = regexp.MustCompile(`Daily Plans[^\n]*`)
	looseDayHeading       = regexp.MustCompile(`(?i)\bday[ \t]*(\d+)\b[ \t]*[:.)\-–—]*`)
	weekdayLine           = regexp.MustCompile(`^[\s\-–—:,(]*((?:Mon|Tues|Wednes|Thurs|Fri|Satur|Sun)day)\b[^\n]{0,30}$`)

	blockIntroducer = regexp.MustCompile(
		`\b\d{1,2}:\d{2}(?:\s*(?i:[ap]\.?m)\b\.?)?\s*(?:-|–|—|to)\s*\d{1,2}:\d{2}(?:\s*(?i:[ap]\.?m)\b\.?)?` +
			`|\b(?:Morning|Afternoon|Evening)\s+Block\b` +
			`|\bBlock\s+\d+\b`,
	)
	blockGlue     = regexp.MustCompile(`^[ \t()\[\]:,|\-–—]*$`)
	lineBullet    = regexp.MustCompile(`(?m)^[ \t]*[-•*][ \t]+`)
	activityLabel = regexp.MustCompile(`(?m)^\s*Activit(?:y|ies)\s*:\s*`)
	subjectLabel  = regexp.MustCompile(`^(?i:subject|focus)\s*:\s*`)
)

// dayHeadings[i] matches "Day i" and nextDayHeadings[i] the heading that ends it.
var dayHeadings, nextDayHeadings = func() ([]*regexp.Regexp, []*regexp.Regexp) {
	starts := make([]*regexp.Regexp, PlanDays+1)
	nexts := make([]*regexp.Regexp, PlanDays+1)
	for i := 1; i <= PlanDays; i++ {
		starts[i] = regexp.MustCompile(`Day ` + strconv.Itoa(i) + `[:\s]+`)
		nexts[i] = regexp.MustCompile(`\s*Day ` + strconv.Itoa(i+1) + `\b`)
	}
	return starts, nexts
}()

var anyDayLine = regexp.MustCompile(`\n[ \t]*Day \d+\b`)

var reservedLabels = map[string]bool{
	"approach": true, "method": true, "strategy": true, "materials": true,
	"activity": true, "activities": true, "notes": true,
}

// Parser turns free-form completion text into a LearningPlan.
type Parser struct {
	now func() time.Time
}

// NewParser constructs a parser using the wall clock.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// NewParserWithClock constructs a parser with a fixed time source.
func NewParserWithClock(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// Parse extracts a plan from raw model output. It never panics: an unexpected failure
// yields a placeholder plan together with an ErrParse error so callers can substitute a
// fallback plan. Plans may contain fewer than seven days.
func (p *Parser) Parse(raw string, profile models.StudentProfile) (plan *models.LearningPlan, err error) {
	createdAt := p.now().UTC()
	defer func() {
		if r := recover(); r != nil {
			plan = placeholderPlan(raw, profile, createdAt)
			err = appErrors.Wrap(fmt.Errorf("%v", r), appErrors.ErrParse.Code, appErrors.ErrParse.Status, appErrors.ErrParse.Message)
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return placeholderPlan(raw, profile, createdAt), appErrors.Clone(appErrors.ErrParse, "completion was empty")
	}

	text := normalize(raw)
	plan = snapshot(profile, createdAt)
	plan.Source = models.PlanSourceLLM
	plan.StudentProfile = ExtractSection(text, "Student Profile")
	plan.LearningApproach = ExtractSection(text, "Learning Approach")
	plan.DailyPlans = ExtractDays(text)
	plan.Accommodations = ExtractListItems(text, "Accommodations")
	plan.ProgressMonitoring = ExtractSection(text, "Progress Monitoring")
	return plan, nil
}

// ExtractDays finds "Day 1" through "Day 7". When none match it splits the "Daily Plans"
// section on looser day markers instead.
func ExtractDays(text string) (days []models.Day) {
	defer func() {
		if recover() != nil {
			days = []models.Day{}
		}
	}()

	days = make([]models.Day, 0, PlanDays)
	for i := 1; i <= PlanDays; i++ {
		content, ok := dayContent(text, i)
		if !ok {
			continue
		}
		days = append(days, buildDay(i, content))
	}
	if len(days) > 0 {
		return days
	}
	return splitDailyPlans(text)
}

func dayContent(text string, day int) (string, bool) {
	start := dayHeadings[day].FindStringIndex(text)
	if start == nil {
		return "", false
	}
	rest := text[start[1]:]
	end := len(rest)
	for _, re := range []*regexp.Regexp{nextDayHeadings[day], anyDayLine, progressHeading, accommodationsHeading} {
		if loc := re.FindStringIndex(rest); loc != nil && loc[0] < end {
			end = loc[0]
		}
	}
	return strings.TrimSpace(rest[:end]), true
}

func splitDailyPlans(text string) []models.Day {
	days := []models.Day{}
	loc := dailyPlansHeading.FindStringIndex(text)
	if loc == nil {
		return days
	}
	region := text[loc[1]:]
	for _, re := range []*regexp.Regexp{progressHeading, accommodationsHeading} {
		if end := re.FindStringIndex(region); end != nil {
			region = region[:end[0]]
		}
	}

	markers := looseDayHeading.FindAllStringSubmatchIndex(region, -1)
	for i, m := range markers {
		if len(days) == PlanDays {
			break
		}
		end := len(region)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		n, err := strconv.Atoi(region[m[2]:m[3]])
		if err != nil || n <= 0 {
			n = len(days) + 1
		}
		days = append(days, buildDay(n, strings.TrimSpace(region[m[1]:end])))
	}
	return days
}

func buildDay(number int, content string) models.Day {
	title := fmt.Sprintf("Day %d", number)
	first, rest, _ := strings.Cut(content, "\n")
	if !blockIntroducer.MatchString(first) {
		if m := weekdayLine.FindStringSubmatch(strings.TrimSpace(first)); m != nil {
			title += " - " + m[1]
			content = strings.TrimSpace(rest)
		}
	}

	notes, start, end := extractSectionSpan(content, "Notes")
	if notes != "" {
		content = strings.TrimSpace(removeSpan(content, start, end))
	} else {
		notes = ExtractSection(content, "Accommodations")
	}

	return models.Day{
		Title:      title,
		TimeBlocks: ExtractTimeBlocks(content),
		Notes:      notes,
	}
}

// ExtractTimeBlocks splits a day into blocks introduced by a time range or a "Block" label.
// A day without any introducer becomes a single "Full Day" block.
func ExtractTimeBlocks(content string) (blocks []models.TimeBlock) {
	defer func() {
		if recover() != nil {
			blocks = []models.TimeBlock{fullDayBlock(content)}
		}
	}()

	intros := mergeIntroducers(content, blockIntroducer.FindAllStringIndex(content, -1))
	if len(intros) == 0 {
		return []models.TimeBlock{fullDayBlock(content)}
	}

	blocks = make([]models.TimeBlock, 0, len(intros))
	for i, intro := range intros {
		end := len(content)
		if i+1 < len(intros) {
			end = intros[i+1][0]
		}
		label := strings.Join(strings.Fields(content[intro[0]:intro[1]]), " ")
		if strings.Count(label, "(") > strings.Count(label, ")") {
			label += ")"
		}
		blocks = append(blocks, parseBlock(label, content[intro[1]:end]))
	}
	return blocks
}

// mergeIntroducers joins introducers separated only by punctuation, as in "Block 1 (9:00-9:20)".
func mergeIntroducers(content string, intros [][]int) [][]int {
	if len(intros) < 2 {
		return intros
	}
	merged := [][]int{{intros[0][0], intros[0][1]}}
	for _, next := range intros[1:] {
		last := merged[len(merged)-1]
		if blockGlue.MatchString(content[last[1]:next[0]]) {
			last[1] = next[1]
			continue
		}
		merged = append(merged, []int{next[0], next[1]})
	}
	return merged
}

func parseBlock(label, body string) models.TimeBlock {
	body = strings.TrimLeft(body, " \t\n:)]|-–—")
	body = lineBullet.ReplaceAllString(body, "")

	first, rest, _ := strings.Cut(body, "\n")
	subject, lead := splitSubject(strings.TrimSpace(first))
	if subject == "" {
		subject = generalSubject
		rest = body
	} else if lead != "" {
		rest = lead + "\n" + rest
	}

	approach := ""
	for _, heading := range []string{"Approach", "Method", "Strategy"} {
		value, start, end := extractSectionSpan(rest, heading)
		if value != "" {
			approach = value
			rest = removeSpan(rest, start, end)
			break
		}
	}
	if approach == "" {
		approach = defaultApproach
	}

	materials, start, end := extractSectionSpan(rest, "Materials")
	if materials != "" {
		rest = removeSpan(rest, start, end)
	}

	return models.TimeBlock{
		Time:      label,
		Subject:   subject,
		Activity:  cleanActivity(rest),
		Approach:  approach,
		Materials: materials,
	}
}

// splitSubject reads "Math: counting games" as subject "Math" with the remainder leading the activity.
func splitSubject(line string) (string, string) {
	line = strings.Trim(line, " \t()[]*:-–—")
	line = subjectLabel.ReplaceAllString(line, "")
	if line == "" {
		return "", ""
	}
	head, tail, found := strings.Cut(line, ":")
	if !found {
		return truncateSubject(line), ""
	}
	head = strings.Trim(head, " \t()[]")
	if reservedLabels[strings.ToLower(head)] {
		return "", ""
	}
	if head == "" || len([]rune(head)) > maxSubjectLength {
		return truncateSubject(line), ""
	}
	return head, strings.TrimSpace(tail)
}

func truncateSubject(line string) string {
	return excerpt(line, maxSubjectLength)
}

func cleanActivity(text string) string {
	text = activityLabel.ReplaceAllString(text, "")
	parts := make([]string, 0, 4)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.TrimLeft(strings.Join(parts, " "), ": ")
}

func fullDayBlock(content string) models.TimeBlock {
	return models.TimeBlock{
		Time:     fullDayLabel,
		Subject:  generalSubject,
		Activity: excerpt(content, fullDayExcerpt),
		Approach: defaultApproach,
	}
}

func snapshot(profile models.StudentProfile, createdAt time.Time) *models.LearningPlan {
	return &models.LearningPlan{
		StudentID:      profile.ID,
		StudentName:    profile.Name,
		StudentAge:     profile.Age,
		StudentGrade:   profile.Grade,
		Diagnosis:      profile.DiagnosisLabel(),
		DailyPlans:     []models.Day{},
		Accommodations: []string{},
		Resources:      []models.Resource{},
		CreatedAt:      createdAt,
	}
}

func placeholderPlan(raw string, profile models.StudentProfile, createdAt time.Time) *models.LearningPlan {
	plan := snapshot(profile, createdAt)
	plan.Source = models.PlanSourceLLM
	plan.StudentProfile = "Could not parse student profile"
	plan.LearningApproach = "Could not parse learning approach"
	plan.Accommodations = []string{"Could not parse accommodations"}
	plan.ProgressMonitoring = "Could not parse progress monitoring"
	plan.RawContent = raw
	return plan
}
