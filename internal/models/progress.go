package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// BlockProgress records how one time block went.
type BlockProgress struct {
	Completed bool   `json:"completed"`
	Rating    int    `json:"rating"`
	Notes     string `json:"notes,omitempty"`
}

// WeeklyProgress maps "day1".."day7" to "block1".."blockN" entries.
type WeeklyProgress map[string]map[string]BlockProgress

// ProgressData is the progress tracker section of a profile and the input of plan adaptation.
type ProgressData struct {
	WeeklyProgress WeeklyProgress `json:"weeklyProgress,omitempty"`
	WhatWorked     string         `json:"whatWorked,omitempty"`
	Challenges     string         `json:"challenges,omitempty"`
	NextSteps      string         `json:"nextSteps,omitempty"`
	OverallRating  int            `json:"overallRating,omitempty" validate:"min=0,max=5"`
	UpdatedAt      *time.Time     `json:"updatedAt,omitempty"`
}

// IsEmpty reports whether the progress payload carries no information.
func (p *ProgressData) IsEmpty() bool {
	return p == nil || (len(p.WeeklyProgress) == 0 && p.WhatWorked == "" && p.Challenges == "" &&
		p.NextSteps == "" && p.OverallRating == 0)
}

// DayKeys returns the day keys in numeric order.
func (w WeeklyProgress) DayKeys() []string {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	SortNumbered(keys)
	return keys
}

// BlockKeys returns the block keys of a day in numeric order.
func (w WeeklyProgress) BlockKeys(day string) []string {
	blocks := w[day]
	keys := make([]string, 0, len(blocks))
	for k := range blocks {
		keys = append(keys, k)
	}
	SortNumbered(keys)
	return keys
}

// Completion returns completed and total block counts across the week.
func (w WeeklyProgress) Completion() (completed, total int) {
	for _, blocks := range w {
		for _, b := range blocks {
			total++
			if b.Completed {
				completed++
			}
		}
	}
	return completed, total
}

// SortNumbered orders keys such as "day2" < "day10" by their trailing number.
func SortNumbered(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		pi, ni := splitNumbered(keys[i])
		pj, nj := splitNumbered(keys[j])
		if pi != pj {
			return pi < pj
		}
		return ni < nj
	})
}

func splitNumbered(key string) (string, int) {
	idx := strings.LastIndexFunc(key, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return key, 0
	}
	return key[:idx+1], n
}
