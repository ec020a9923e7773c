package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenantix/llmdiver/pkg/types"
)

const pythonDump = "## File: app/auth.py\n" +
	"```python\n" +
	"import os\n" +
	"\n" +
	"@role(\"admin\")\n" +
	"def login(user):\n" +
	"    check(user)\n" +
	"    return token(user)\n" +
	"\n" +
	"class Session:\n" +
	"    def __init__(self):\n" +
	"        self.id = new_id()\n" +
	"```\n"

func TestExtractPython(t *testing.T) {
	records := New(Config{}).Extract(pythonDump)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "app/auth.py", rec.FilePath)
	assert.Equal(t, "python", rec.Language)
	assert.Equal(t, 10, rec.LineCount)
	require.Len(t, rec.Fragments, 3)

	login := rec.Fragments[0]
	assert.Equal(t, types.FragmentFunction, login.FragmentType)
	assert.Equal(t, 4, login.StartLine)
	assert.Equal(t, 7, login.EndLine)
	assert.Equal(t, "def login(user):\n    check(user)\n    return token(user)", login.Excerpt)
	assert.NotEmpty(t, login.ID)

	session := rec.Fragments[1]
	assert.Equal(t, types.FragmentClass, session.FragmentType)
	assert.Equal(t, "class Session:", session.Excerpt)
	assert.Equal(t, 8, session.StartLine)

	init := rec.Fragments[2]
	assert.Equal(t, types.FragmentFunction, init.FragmentType)
	assert.Equal(t, 9, init.StartLine)
	assert.Equal(t, 10, init.EndLine)
}

func TestExtractMultipleSections(t *testing.T) {
	dump := pythonDump +
		"## File: lib/util.go\n" +
		"```go\n" +
		"func Sum(a, b int) int {\n" +
		"\treturn a + b\n" +
		"}\n" +
		"```\n"

	records := New(Config{}).Extract(dump)
	require.Len(t, records, 2)
	assert.Equal(t, "app/auth.py", records[0].FilePath)
	assert.Equal(t, "lib/util.go", records[1].FilePath)
	assert.Equal(t, "go", records[1].Language)
	require.Len(t, records[1].Fragments, 1)
	assert.Equal(t, types.FragmentFunction, records[1].Fragments[0].FragmentType)
}

func TestExtractLanguageFromExtension(t *testing.T) {
	dump := "## File: scripts/build.sh\n" +
		"```\n" +
		"deploy() {\n" +
		"  make build\n" +
		"}\n" +
		"```\n"

	records := New(Config{}).Extract(dump)
	require.Len(t, records, 1)
	assert.Equal(t, "shell", records[0].Language)
	require.Len(t, records[0].Fragments, 1)
}

func TestExtractUnknownLanguage(t *testing.T) {
	dump := "## File: notes/design.txt\n" +
		"```\n" +
		"some prose\n" +
		"more prose\n" +
		"```\n"

	records := New(Config{}).Extract(dump)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Fragments)
	assert.Equal(t, 2, records[0].LineCount)
}

func TestExtractUnterminatedFence(t *testing.T) {
	dump := "## File: a.py\n" +
		"```python\n" +
		"def f():\n" +
		"    pass\n"

	records := New(Config{}).Extract(dump)
	require.Len(t, records, 1)
	require.Len(t, records[0].Fragments, 1)
	assert.Equal(t, 2, records[0].Fragments[0].EndLine)
}

func TestExtractMalformedSectionSkipped(t *testing.T) {
	dump := "## File: broken.py\n" +
		"no fence here\n" +
		pythonDump

	records := New(Config{}).Extract(dump)
	require.Len(t, records, 1)
	assert.Equal(t, "app/auth.py", records[0].FilePath)
}

func TestExtractComplexitySignals(t *testing.T) {
	var body strings.Builder
	body.WriteString("def huge():\n")
	for i := 0; i < 60; i++ {
		body.WriteString("    step()\n")
	}
	body.WriteString("# TODO tighten this\n")
	body.WriteString("# FIXME and this\n")

	dump := "## File: big.py\n```python\n" + body.String() + "```\n"

	records := New(Config{LongFragmentThreshold: 50}).Extract(dump)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].ComplexitySignals.TODOCount)
	assert.Equal(t, 1, records[0].ComplexitySignals.LongFragmentCount)
}

func TestExtractExcerptBound(t *testing.T) {
	dump := "## File: a.py\n```python\n" +
		"def f():\n    a()\n    b()\n    c()\n    d()\n" +
		"```\n"

	records := New(Config{ExcerptLines: 2}).Extract(dump)
	require.Len(t, records, 1)
	require.Len(t, records[0].Fragments, 1)
	assert.Equal(t, "def f():\n    a()", records[0].Fragments[0].Excerpt)
	// The location still covers the whole block, not just the preview
	assert.Equal(t, 5, records[0].Fragments[0].EndLine)
}

func TestExtractEmptyDocument(t *testing.T) {
	assert.Empty(t, New(Config{}).Extract(""))
	assert.Empty(t, New(Config{}).Extract("no markers at all\n"))
}

func TestExtractStableIDs(t *testing.T) {
	a := New(Config{}).Extract(pythonDump)
	b := New(Config{}).Extract(pythonDump)
	require.Len(t, a, 1)
	require.Len(t, b, 1)

	for i := range a[0].Fragments {
		assert.Equal(t, a[0].Fragments[i].ID, b[0].Fragments[i].ID)
	}
}
