package planner

import (
	"regexp"
	"strings"
	"sync"
)

// A section ends at a blank line followed by a capitalised line, at a known plan heading,
// or at a short "Label:" line.
var sectionBoundary = regexp.MustCompile(
	`\n[ \t]*\n\s*[A-Z]` +
		`|\n[ \t]*(?:\d+\.[ \t]*)?(?:Student Profile|Learning Approach|Daily Plans|Accommodations|Progress Monitoring)\b` +
		`|\n[ \t]*[A-Z][A-Za-z]*(?:[ /&][A-Za-z]+){0,3}[ \t]*:`,
)

var (
	bulletLine    = regexp.MustCompile(`^\s*(?:[-•*]|\d+[.)])\s*(.*)$`)
	headingMarker = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*`)
	emphasis      = strings.NewReplacer("**", "", "__", "", "\r\n", "\n", "\r", "\n")
)

var headingPatterns sync.Map

func headingPattern(name string) *regexp.Regexp {
	if re, ok := headingPatterns.Load(name); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(regexp.QuoteMeta(name) + `[:\s]+`)
	headingPatterns.Store(name, re)
	return re
}

// normalize strips markdown emphasis and heading markers so headings match plainly.
func normalize(text string) string {
	text = emphasis.Replace(text)
	return headingMarker.ReplaceAllString(text, "")
}

// ExtractSection returns the text following the first occurrence of heading up to the next
// section boundary. It returns "" when the heading is absent.
func ExtractSection(text, heading string) (section string) {
	defer func() {
		if recover() != nil {
			section = ""
		}
	}()
	section, _, _ = extractSectionSpan(text, heading)
	return section
}

// extractSectionSpan also reports the byte span of the heading and its body within text.
func extractSectionSpan(text, heading string) (string, int, int) {
	if text == "" || heading == "" {
		return "", -1, -1
	}
	loc := headingPattern(heading).FindStringIndex(text)
	if loc == nil {
		return "", -1, -1
	}
	rest := text[loc[1]:]
	end := len(rest)
	if b := sectionBoundary.FindStringIndex(rest); b != nil {
		end = b[0]
	}
	return strings.TrimSpace(rest[:end]), loc[0], loc[1] + end
}

// ExtractListItems returns the bulleted or numbered items of a section. Without bullets each
// non-empty line is an item, and a non-empty section never yields an empty list.
func ExtractListItems(text, heading string) (items []string) {
	defer func() {
		if recover() != nil {
			items = []string{}
		}
	}()
	return ListItems(ExtractSection(text, heading))
}

// ListItems splits already extracted section text into list entries.
func ListItems(section string) []string {
	section = strings.TrimSpace(section)
	if section == "" {
		return []string{}
	}
	lines := strings.Split(section, "\n")

	var items []string
	for _, line := range lines {
		m := bulletLine.FindStringSubmatch(line)
		if m == nil {
			if len(items) > 0 && strings.TrimSpace(line) != "" {
				// continuation of the previous bullet
				items[len(items)-1] += " " + strings.TrimSpace(line)
			}
			continue
		}
		if item := strings.TrimSpace(m[1]); item != "" {
			items = append(items, item)
		}
	}
	if len(items) > 0 {
		return items
	}

	for _, line := range lines {
		if item := strings.TrimSpace(line); item != "" {
			items = append(items, item)
		}
	}
	if len(items) > 0 {
		return items
	}
	return []string{section}
}

// excerpt trims text to at most limit runes, marking the cut with an ellipsis.
func excerpt(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

// removeSpan cuts text[start:end], widening start to the line start when only a short
// label prefix such as "Teaching " precedes it.
func removeSpan(text string, start, end int) string {
	if start < 0 || end < start || end > len(text) {
		return text
	}
	lineStart := strings.LastIndex(text[:start], "\n") + 1
	prefix := text[lineStart:start]
	if len(prefix) <= 24 && !strings.ContainsAny(prefix, ":.") {
		start = lineStart
	}
	return text[:start] + text[end:]
}
