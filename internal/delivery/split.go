package delivery

import "strings"

// SplitMessage splits text into ordered parts no longer than maxLen,
// breaking at line boundaries only. A single line longer than maxLen is
// the one case where a line must be hard-wrapped to honor the cap.
func SplitMessage(text string, maxLen int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) <= maxLen {
		return []string{trimmed}
	}

	var parts []string
	current := ""

	flush := func() {
		if s := strings.TrimSpace(current); s != "" {
			parts = append(parts, s)
		}
		current = ""
	}

	for _, line := range strings.Split(text, "\n") {
		for len(line) > maxLen {
			flush()
			parts = append(parts, line[:maxLen])
			line = line[maxLen:]
		}
		if len(current)+len(line)+1 > maxLen {
			flush()
		}
		current += line + "\n"
	}
	flush()

	return parts
}
