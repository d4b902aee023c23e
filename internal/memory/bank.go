// Package memory provides the file-backed knowledge store and the
// section-level patch engine that mutates it.
//
// Knowledge files are plain text: an optional leading "# Title" line
// followed by sections delimited by "## Section" header lines. Within
// one file each section label is unique. Files whose name starts with
// an underscore are templates and excluded from context loading.
package memory

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	coreerrors "github.com/intelcore/intelcore/internal/errors"
)

// Categories are the fixed namespaces of the memory bank.
var Categories = []string{"people", "projects", "organizations", "system"}

// contextCategories are the categories loaded into synthesis context,
// in a fixed order.
var contextCategories = []string{"organizations", "people", "projects"}

const (
	// excludedPrefix marks template files skipped by context loading.
	excludedPrefix = "_"

	// separator joins files in combined context output.
	separator = "\n\n---\n\n"

	// emptyPlaceholder is returned by LoadAll when no files exist.
	emptyPlaceholder = "(No memory files yet)"
)

// Bank is the file-backed knowledge store. It assumes a single writer;
// concurrent external writers to the knowledge files are unsupported.
type Bank struct {
	root     string
	orgFiles map[string]string // domain -> organizations/ file name
	logger   *slog.Logger
}

// NewBank creates a Bank rooted at dir. orgFiles maps a domain label to
// the organizations/ file backing it; it may be nil.
func NewBank(dir string, orgFiles map[string]string) *Bank {
	if orgFiles == nil {
		orgFiles = map[string]string{}
	}
	return &Bank{
		root:     dir,
		orgFiles: orgFiles,
		logger:   slog.With("component", "memory"),
	}
}

// EnsureStructure creates the category directories.
func (b *Bank) EnsureStructure() error {
	for _, category := range Categories {
		if err := os.MkdirAll(filepath.Join(b.root, category), 0755); err != nil {
			return coreerrors.NewMemoryError(coreerrors.CodeWriteFailed,
				fmt.Sprintf("create %s directory", category), err)
		}
	}
	return nil
}

// LoadFile reads a file by its path relative to the bank root. The
// second return is false when the file does not exist.
func (b *Bank) LoadFile(relPath string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(b.root, relPath))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, coreerrors.NewMemoryError(coreerrors.CodeReadFailed, relPath, err)
	}
	return string(data), true, nil
}

// SaveFile writes a file by relative path, creating parent directories
// as needed. The whole file is overwritten in one write.
func (b *Bank) SaveFile(relPath, content string) error {
	path := filepath.Join(b.root, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return coreerrors.NewMemoryError(coreerrors.CodeWriteFailed, relPath, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return coreerrors.NewMemoryError(coreerrors.CodeWriteFailed, relPath, err)
	}
	b.logger.Info("updated memory file", "path", relPath)
	return nil
}

// LoadDomain returns the combined knowledge context for one domain: the
// organization file mapped to the domain (if any) followed by all people
// and project files, joined by a visible separator.
func (b *Bank) LoadDomain(domain string) (string, error) {
	var parts []string

	if orgFile, ok := b.orgFiles[domain]; ok {
		content, exists, err := b.LoadFile(filepath.Join("organizations", orgFile))
		if err != nil {
			return "", err
		}
		if exists {
			parts = append(parts, content)
		}
	}

	for _, category := range []string{"people", "projects"} {
		files, err := b.categoryFiles(category)
		if err != nil {
			return "", err
		}
		for _, name := range files {
			content, _, err := b.LoadFile(filepath.Join(category, name))
			if err != nil {
				return "", err
			}
			parts = append(parts, content)
		}
	}

	return strings.Join(parts, separator), nil
}

// LoadAll returns the full knowledge context: every non-empty,
// non-excluded file across organizations, people and projects, each
// prefixed with its category and name. Returns a placeholder when
// nothing exists yet.
func (b *Bank) LoadAll() (string, error) {
	var parts []string

	for _, category := range contextCategories {
		files, err := b.categoryFiles(category)
		if err != nil {
			return "", err
		}
		for _, name := range files {
			content, _, err := b.LoadFile(filepath.Join(category, name))
			if err != nil {
				return "", err
			}
			if strings.TrimSpace(content) == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("[%s/%s]\n%s", category, name, content))
		}
	}

	if len(parts) == 0 {
		return emptyPlaceholder, nil
	}
	return strings.Join(parts, separator), nil
}

// ListFiles returns the sorted relative paths of all knowledge files,
// excluded-prefix files omitted.
func (b *Bank) ListFiles() ([]string, error) {
	var files []string

	err := filepath.Walk(b.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".md") {
			return nil
		}
		if strings.HasPrefix(info.Name(), excludedPrefix) {
			return nil
		}
		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, coreerrors.NewMemoryError(coreerrors.CodeReadFailed, "list files", err)
	}

	sort.Strings(files)
	return files, nil
}

// categoryFiles returns the sorted, non-excluded .md file names in one
// category directory.
func (b *Bank) categoryFiles(category string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(b.root, category))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, coreerrors.NewMemoryError(coreerrors.CodeReadFailed, category, err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		if strings.HasPrefix(name, excludedPrefix) {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}
