package memory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBank(t *testing.T) *Bank {
	t.Helper()
	bank := NewBank(t.TempDir(), map[string]string{
		"bi_branch":  "bi-branch.md",
		"platform45": "platform45.md",
	})
	require.NoError(t, bank.EnsureStructure())
	return bank
}

func TestBank_SaveAndLoadFile(t *testing.T) {
	bank := newTestBank(t)

	require.NoError(t, bank.SaveFile("people/patrick.md", "# Patrick\n\n## Role\nCTO\n"))

	content, ok, err := bank.LoadFile("people/patrick.md")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "# Patrick\n\n## Role\nCTO\n", content)
}

func TestBank_LoadFileAbsent(t *testing.T) {
	bank := newTestBank(t)

	_, ok, err := bank.LoadFile("people/nobody.md")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBank_SaveFileCreatesParents(t *testing.T) {
	bank := newTestBank(t)

	require.NoError(t, bank.SaveFile("projects/archive/old.md", "# Old\n"))

	content, ok, err := bank.LoadFile("projects/archive/old.md")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "# Old\n", content)
}

func TestBank_LoadAll(t *testing.T) {
	bank := newTestBank(t)

	require.NoError(t, bank.SaveFile("people/patrick.md", "# Patrick\nNotes"))
	require.NoError(t, bank.SaveFile("organizations/bi-branch.md", "# BI Branch\nNotes"))
	require.NoError(t, bank.SaveFile("projects/_template.md", "# Template"))
	require.NoError(t, bank.SaveFile("projects/empty.md", "   \n"))

	all, err := bank.LoadAll()
	require.NoError(t, err)

	// Organization files come before people files, each prefixed with
	// category and name; templates and empty files are skipped.
	assert.Contains(t, all, "[organizations/bi-branch.md]")
	assert.Contains(t, all, "[people/patrick.md]")
	assert.NotContains(t, all, "_template")
	assert.NotContains(t, all, "empty.md")
	assert.Less(t,
		strings.Index(all, "[organizations/bi-branch.md]"),
		strings.Index(all, "[people/patrick.md]"))
	assert.Contains(t, all, "\n\n---\n\n")
}

func TestBank_LoadAllEmpty(t *testing.T) {
	bank := newTestBank(t)

	all, err := bank.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, "(No memory files yet)", all)
}

func TestBank_LoadDomain(t *testing.T) {
	bank := newTestBank(t)

	require.NoError(t, bank.SaveFile("organizations/bi-branch.md", "# BI Branch"))
	require.NoError(t, bank.SaveFile("organizations/platform45.md", "# Platform45"))
	require.NoError(t, bank.SaveFile("people/patrick.md", "# Patrick"))
	require.NoError(t, bank.SaveFile("projects/ecv.md", "# eCV"))

	ctx, err := bank.LoadDomain("bi_branch")
	require.NoError(t, err)

	// The mapped organization file is included; other organizations are not.
	assert.Contains(t, ctx, "# BI Branch")
	assert.NotContains(t, ctx, "# Platform45")
	assert.Contains(t, ctx, "# Patrick")
	assert.Contains(t, ctx, "# eCV")
}

func TestBank_LoadDomainUnmapped(t *testing.T) {
	bank := newTestBank(t)

	require.NoError(t, bank.SaveFile("people/mum.md", "# Mum"))

	ctx, err := bank.LoadDomain("personal")
	require.NoError(t, err)
	assert.Contains(t, ctx, "# Mum")
}

func TestBank_ListFiles(t *testing.T) {
	bank := newTestBank(t)

	require.NoError(t, bank.SaveFile("people/patrick.md", "x"))
	require.NoError(t, bank.SaveFile("people/_template.md", "x"))
	require.NoError(t, bank.SaveFile("projects/ecv.md", "x"))

	files, err := bank.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"people/patrick.md", "projects/ecv.md"}, files)
}
