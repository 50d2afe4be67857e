package feedback

import (
	"regexp"
	"strings"
)

// Matches "Feedback:", "**Correction:**", "- Practice prompt**:" and similar
var labelLine = regexp.MustCompile(`(?i)^\s*(?:[-*#>]+\s*)?(?:\*\*|__)?\s*(feedback|correction|practice\s+prompt)\s*(?:\*\*|__)?\s*:\s*(?:\*\*|__)?\s*(.*)$`)

// Parse splits a reply into its labelled sections. It never fails: text
// outside any label is dropped from the fields but kept in Raw.
func Parse(raw string) Result {
	result := Result{Raw: raw}

	var current *string
	var section []string
	flush := func() {
		if current != nil {
			*current = cleanSection(section)
		}
		section = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		m := labelLine.FindStringSubmatch(line)
		if m == nil {
			if current != nil {
				section = append(section, line)
			}
			continue
		}

		flush()
		switch label := strings.ToLower(strings.Join(strings.Fields(m[1]), " ")); label {
		case "feedback":
			current = &result.Feedback
		case "correction":
			current = &result.Correction
		case "practice prompt":
			current = &result.PracticePrompt
		}
		section = append(section, m[2])
	}
	flush()

	return result
}

func cleanSection(lines []string) string {
	text := strings.TrimSpace(strings.Join(lines, "\n"))
	text = strings.TrimSuffix(text, "**")
	text = strings.TrimSuffix(text, "__")
	return strings.TrimSpace(text)
}
