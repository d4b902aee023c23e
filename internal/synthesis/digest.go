package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/intelcore/intelcore/pkg/types"
)

// digestContentCap is the hard cap on content per event line.
const digestContentCap = 500

// sourceLabels maps source tags to digest section headings.
var sourceLabels = map[string]string{
	"whatsapp": "WHATSAPP",
	"gmail":    "EMAIL",
	"slack":    "SLACK",
	"github":   "GITHUB",
	"granola":  "MEETING NOTES",
	"notion":   "NOTION",
}

// FormatDigest renders an event window as a readable digest: events
// grouped by source, then by channel within source. Channels are
// ordered by event count descending; within a channel, events keep
// their timestamp order.
func FormatDigest(events []types.Event) string {
	bySource := map[string]map[string][]types.Event{}
	for _, event := range events {
		channel := event.ChannelName
		if channel == "" {
			channel = "Direct"
		}
		if bySource[event.Source] == nil {
			bySource[event.Source] = map[string][]types.Event{}
		}
		bySource[event.Source][channel] = append(bySource[event.Source][channel], event)
	}

	sources := make([]string, 0, len(bySource))
	for source := range bySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	var lines []string
	for _, source := range sources {
		label, ok := sourceLabels[source]
		if !ok {
			label = strings.ToUpper(source)
		}
		lines = append(lines, "", strings.Repeat("=", 40), label, strings.Repeat("=", 40))

		channels := bySource[source]
		names := make([]string, 0, len(channels))
		for name := range channels {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			ci, cj := len(channels[names[i]]), len(channels[names[j]])
			if ci != cj {
				return ci > cj
			}
			return names[i] < names[j]
		})

		for _, name := range names {
			channelEvents := channels[name]
			lines = append(lines, "", fmt.Sprintf("--- %s (%d items) ---", name, len(channelEvents)))
			for _, event := range channelEvents {
				lines = append(lines, formatEvent(event)...)
			}
		}
	}

	return strings.Join(lines, "\n")
}

func formatEvent(event types.Event) []string {
	ts := ""
	if !event.Timestamp.IsZero() {
		ts = event.Timestamp.Format("01-02 15:04")
	}
	sender := event.SenderName
	if sender == "" {
		sender = "Unknown"
	}

	if event.Title != "" {
		out := []string{fmt.Sprintf("[%s] %s: %s", ts, sender, event.Title)}
		if event.Content != "" {
			out = append(out, "  "+truncate(event.Content, digestContentCap))
		}
		return out
	}

	return []string{fmt.Sprintf("[%s] %s: %s", ts, sender, truncate(event.Content, digestContentCap))}
}

// truncate caps s at max characters, appending an explicit marker when
// content was cut.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
