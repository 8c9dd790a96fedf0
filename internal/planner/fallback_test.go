package planner

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-planner-api/internal/models"
)

func TestFallbackGenerateIsComplete(t *testing.T) {
	plan := NewFallbackGeneratorWithClock(fixedClock).Generate(alexProfile())

	assert.Equal(t, models.PlanSourceFallback, plan.Source)
	assert.Equal(t, "stu-1", plan.StudentID)
	require.Len(t, plan.DailyPlans, PlanDays)
	for i, day := range plan.DailyPlans {
		assert.NotEmpty(t, day.TimeBlocks, day.Title)
		assert.NotEmpty(t, day.Notes, day.Title)
		assert.Contains(t, day.Title, fmt.Sprintf("Day %d - ", i+1))
	}
	assert.Equal(t, "Day 7 - Sunday", plan.DailyPlans[6].Title)
	assert.NotEmpty(t, plan.Accommodations)
	assert.Len(t, plan.Resources, 5)
	assert.Contains(t, plan.StudentProfile, "Alex is a 9-year-old student in grade 4 with ADHD.")
	assert.Contains(t, plan.LearningApproach, "10-20 minute chunks")
}

func TestFallbackIsDeterministic(t *testing.T) {
	profile := alexProfile()
	profile.Interests = "trains, volcanoes, music, chess"

	a := NewFallbackGeneratorWithClock(fixedClock).Generate(profile)
	b := NewFallbackGeneratorWithClock(func() time.Time { return fixedClock().Add(time.Hour) }).Generate(profile)

	if diff := cmp.Diff(a, b, cmpopts.IgnoreFields(models.LearningPlan{}, "CreatedAt")); diff != "" {
		t.Fatalf("fallback plans differ (-a +b):\n%s", diff)
	}
}

func TestFallbackRotatesSubjects(t *testing.T) {
	days := NewFallbackGenerator().Days(models.StudentProfile{Name: "Sam"})
	assert.Equal(t, "Math", days[2].TimeBlocks[1].Subject)
	assert.Equal(t, "Social Studies", days[3].TimeBlocks[1].Subject)
	assert.Contains(t, days[0].TimeBlocks[1].Activity, "dinosaurs")
	assert.Contains(t, days[1].TimeBlocks[1].Activity, "space")
}

func TestFallbackHandlesEmptyProfile(t *testing.T) {
	require.NotPanics(t, func() {
		plan := NewFallbackGenerator().Generate(models.StudentProfile{})
		assert.Len(t, plan.DailyPlans, PlanDays)
		assert.Contains(t, plan.StudentProfile, "The student is a student.")
	})
}

func TestAccommodationsKeepsCurrentOnes(t *testing.T) {
	items := Accommodations(models.StudentProfile{CurrentAccommodations: "extended time"})
	assert.Equal(t, "Continue current accommodations: extended time", items[0])
	assert.Len(t, items, len(fallbackAccommodations)+1)
}

func TestCompleteFillsMissingParts(t *testing.T) {
	profile := alexProfile()
	gen := NewFallbackGeneratorWithClock(fixedClock)
	parsed := &models.LearningPlan{
		StudentProfile:   "from model",
		LearningApproach: "from model",
		DailyPlans:       []models.Day{{Title: "Day 1", TimeBlocks: []models.TimeBlock{{Time: "Full Day"}}}},
	}

	assert.True(t, gen.Complete(parsed, profile))
	require.Len(t, parsed.DailyPlans, PlanDays)
	assert.Equal(t, "Day 1", parsed.DailyPlans[0].Title)
	assert.Equal(t, gen.Days(profile)[1], parsed.DailyPlans[1])
	assert.Equal(t, "from model", parsed.StudentProfile)
	assert.NotEmpty(t, parsed.Accommodations)

	assert.False(t, gen.Complete(parsed, profile))
	assert.False(t, gen.Complete(nil, profile))
}

func TestCompleteKeysDaysByNumber(t *testing.T) {
	profile := alexProfile()
	gen := NewFallbackGeneratorWithClock(fixedClock)
	raw := "Daily Plans:\nDay 2: Tuesday\n9:00-9:20 Math: Counting\nDay 3: Wednesday\n9:00-9:20 Reading: Stories\n"
	parsed, err := NewParserWithClock(fixedClock).Parse(raw, profile)
	require.NoError(t, err)
	require.Len(t, parsed.DailyPlans, 2)

	assert.True(t, gen.Complete(parsed, profile))
	require.Len(t, parsed.DailyPlans, PlanDays)
	template := gen.Days(profile)
	assert.Equal(t, template[0], parsed.DailyPlans[0])
	assert.Equal(t, "Day 2 - Tuesday", parsed.DailyPlans[1].Title)
	assert.Equal(t, "Math", parsed.DailyPlans[1].TimeBlocks[0].Subject)
	assert.Equal(t, "Day 3 - Wednesday", parsed.DailyPlans[2].Title)
	for i, day := range parsed.DailyPlans {
		assert.Equal(t, i+1, DayNumber(day.Title), day.Title)
	}
}

func TestCompleteDropsDuplicateDays(t *testing.T) {
	profile := alexProfile()
	gen := NewFallbackGeneratorWithClock(fixedClock)
	parsed := &models.LearningPlan{
		StudentProfile:   "from model",
		LearningApproach: "from model",
		Accommodations:   []string{"from model"},
		DailyPlans: []models.Day{
			{Title: "Day 3", Notes: "first"},
			{Title: "Day 3", Notes: "second"},
			{Title: "Day 9"},
			{Title: "Review"},
		},
	}

	assert.True(t, gen.Complete(parsed, profile))
	require.Len(t, parsed.DailyPlans, PlanDays)
	assert.Equal(t, "Review", parsed.DailyPlans[0].Title)
	assert.Equal(t, gen.Days(profile)[1], parsed.DailyPlans[1])
	assert.Equal(t, "first", parsed.DailyPlans[2].Notes)
	assert.Equal(t, gen.Days(profile)[6], parsed.DailyPlans[6])
}

func TestDayNumber(t *testing.T) {
	assert.Equal(t, 4, DayNumber("Day 4 - Thursday"))
	assert.Equal(t, 12, DayNumber("day 12"))
	assert.Equal(t, 0, DayNumber("Monday"))
	assert.Equal(t, 0, DayNumber("Day 0"))
}

func TestFallbackResourcesReturnsCopy(t *testing.T) {
	a := FallbackResources()
	a[0].Title = "changed"
	assert.NotEqual(t, "changed", FallbackResources()[0].Title)
}
