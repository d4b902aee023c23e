package synthesis

import (
	"strings"

	"github.com/intelcore/intelcore/internal/memory"
)

// ExtractBriefing pulls the briefing text out of a raw synthesis
// response. Preference order: text between the briefing markers, then
// everything before the first memory update block, then the whole
// response trimmed.
func ExtractBriefing(response string) string {
	start := strings.Index(response, BriefingStart)
	if start >= 0 {
		rest := response[start+len(BriefingStart):]
		if end := strings.Index(rest, BriefingEnd); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}

	if cut := strings.Index(response, memory.MarkerStart); cut >= 0 {
		return strings.TrimSpace(response[:cut])
	}

	return strings.TrimSpace(response)
}
