package memory

import (
	"log/slog"
	"path"
	"strings"

	coreerrors "github.com/intelcore/intelcore/internal/errors"
)

// Directive grammar markers produced by the reasoning boundary.
const (
	MarkerStart = "MEMORY_UPDATE_START"
	MarkerEnd   = "MEMORY_UPDATE_END"
)

// Action is the mutation kind of a directive.
type Action string

const (
	ActionReplace Action = "replace"
	ActionAppend  Action = "append"
)

// Directive is one parsed patch instruction: create or mutate one
// section of one knowledge file. Directives are ephemeral; they are
// applied once and discarded.
type Directive struct {
	File    string
	Section string
	Action  Action
	Content string
}

// ParseDirectives extracts well-formed directive blocks from free text.
// Parsing is best-effort: a block missing its terminator or any required
// field is skipped without aborting the rest of the text.
func ParseDirectives(text string) []Directive {
	lines := strings.Split(text, "\n")
	var directives []Directive

	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) != MarkerStart {
			i++
			continue
		}
		d, next, ok := parseBlock(lines, i+1)
		if ok {
			directives = append(directives, d)
		}
		i = next
	}

	return directives
}

// parseBlock parses one directive block starting after its start marker.
// It returns the index to resume scanning at; on failure that index
// points at the offending line so a nested start marker is re-examined.
func parseBlock(lines []string, start int) (Directive, int, bool) {
	var d Directive
	i := start

	file, i, ok := parseField(lines, i, "FILE:")
	if !ok {
		return d, i, false
	}
	section, i, ok := parseField(lines, i, "SECTION:")
	if !ok {
		return d, i, false
	}
	action, i, ok := parseField(lines, i, "ACTION:")
	if !ok {
		return d, i, false
	}

	switch Action(strings.ToLower(action)) {
	case ActionReplace:
		d.Action = ActionReplace
	case ActionAppend:
		d.Action = ActionAppend
	default:
		return d, i, false
	}

	if i >= len(lines) || strings.TrimSpace(lines[i]) != "CONTENT:" {
		return d, i, false
	}
	i++

	var content []string
	for ; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == MarkerEnd {
			d.File = file
			d.Section = section
			d.Content = strings.TrimSpace(strings.Join(content, "\n"))
			return d, i + 1, true
		}
		if trimmed == MarkerStart {
			// Unterminated block swallowed a new one; rescan from here.
			return d, i, false
		}
		content = append(content, lines[i])
	}

	// Missing terminator.
	return d, i, false
}

// parseField consumes one "KEY: value" line and returns the value.
func parseField(lines []string, i int, key string) (string, int, bool) {
	if i >= len(lines) {
		return "", i, false
	}
	line := strings.TrimSpace(lines[i])
	if !strings.HasPrefix(line, key) {
		return "", i, false
	}
	value := strings.TrimSpace(strings.TrimPrefix(line, key))
	if value == "" {
		return "", i, false
	}
	return value, i + 1, true
}

// PatchEngine applies parsed directives to a Bank.
type PatchEngine struct {
	bank   *Bank
	logger *slog.Logger
}

// NewPatchEngine creates a PatchEngine over the given bank.
func NewPatchEngine(bank *Bank) *PatchEngine {
	return &PatchEngine{
		bank:   bank,
		logger: slog.With("component", "memory.patch"),
	}
}

// Apply parses directive blocks out of the response text and applies
// them strictly in order of appearance, each against the file's latest
// state. Every successful application is exactly one write. Returns the
// count of directives applied.
func (p *PatchEngine) Apply(text string) int {
	directives := ParseDirectives(text)

	applied := 0
	for _, d := range directives {
		if err := p.applyOne(d); err != nil {
			p.logger.Warn("failed to apply directive",
				"file", d.File, "section", d.Section, "error", err)
			continue
		}
		applied++
	}

	if applied > 0 {
		p.logger.Info("applied memory updates", "count", applied)
	}
	return applied
}

func (p *PatchEngine) applyOne(d Directive) error {
	if !validTarget(d.File) {
		return coreerrors.New(coreerrors.ErrCategoryMemory,
			coreerrors.CodeMalformedDirective, "file path outside knowledge namespaces: "+d.File)
	}

	existing, ok, err := p.bank.LoadFile(d.File)
	if err != nil {
		return err
	}

	var updated string
	if !ok {
		updated = newFileContent(d)
	} else {
		updated = patchSection(existing, d)
	}

	return p.bank.SaveFile(d.File, updated)
}

// validTarget reports whether a directive's file path stays inside the
// bank's category namespaces: a clean relative path whose first segment
// is one of the fixed categories. Directive text is external input;
// anything else is rejected at apply time.
func validTarget(file string) bool {
	if file == "" || path.IsAbs(file) || strings.Contains(file, "\\") {
		return false
	}
	if path.Clean(file) != file {
		return false
	}

	category, rest, found := strings.Cut(file, "/")
	if !found || rest == "" {
		return false
	}
	for _, c := range Categories {
		if category == c {
			return true
		}
	}
	return false
}

// newFileContent synthesizes a minimal file for a directive targeting a
// path that does not exist yet: a title derived from the base name and
// one section.
func newFileContent(d Directive) string {
	return "# " + titleFromPath(d.File) + "\n\n## " + d.Section + "\n" + d.Content + "\n"
}

// titleFromPath derives a display title from a file's base name:
// "people/shaun-richards.md" becomes "Shaun Richards".
func titleFromPath(filePath string) string {
	base := strings.TrimSuffix(path.Base(filePath), ".md")
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)

	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// patchSection applies a directive to an existing file. It runs a line
// state machine over the file (outside / inside-target / inside-other)
// so the target header is never duplicated and content never leaks into
// the following section.
func patchSection(text string, d Directive) string {
	header := "## " + d.Section
	lines := strings.Split(text, "\n")

	if !hasHeader(lines, header) {
		return strings.TrimRight(text, " \n") + "\n\n" + header + "\n" + d.Content + "\n"
	}

	var out []string
	inTarget := false
	done := false

	for _, line := range lines {
		if strings.TrimSpace(line) == header && !done {
			inTarget = true
			out = append(out, line)
			if d.Action == ActionReplace {
				out = append(out, d.Content)
			}
			continue
		}

		if inTarget && strings.HasPrefix(line, "## ") {
			// Next section begins; finish the target first.
			if d.Action == ActionAppend {
				out = append(out, d.Content)
			}
			inTarget = false
			done = true
			out = append(out, line)
			continue
		}

		if inTarget {
			if d.Action == ActionReplace {
				// Old body is dropped.
				continue
			}
			out = append(out, line)
			continue
		}

		out = append(out, line)
	}

	// Target was the last section.
	if inTarget && d.Action == ActionAppend {
		out = append(out, d.Content)
	}

	return strings.Join(out, "\n")
}

func hasHeader(lines []string, header string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) == header {
			return true
		}
	}
	return false
}
