package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `---
subject: Verify your email
---
Hello **alice**,

Your code is ` + "`123456`" + `.
`

func TestParseWithFrontmatter(t *testing.T) {
	html, meta, err := NewParser().ParseWithFrontmatter([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "Verify your email", meta["subject"])
	assert.Contains(t, string(html), "<strong>alice</strong>")
	assert.Contains(t, string(html), "<code>123456</code>")
	assert.NotContains(t, string(html), "subject:")
}

func TestParseWithoutFrontmatter(t *testing.T) {
	html, meta, err := NewParser().ParseWithFrontmatter([]byte("plain *text*"))
	require.NoError(t, err)

	assert.Empty(t, meta)
	assert.Contains(t, string(html), "<em>text</em>")
}

func TestParseEscapesRawHTML(t *testing.T) {
	html, _, err := NewParser().ParseWithFrontmatter([]byte("hi <script>alert(1)</script>"))
	require.NoError(t, err)

	assert.NotContains(t, string(html), "<script>")
}

func TestBody(t *testing.T) {
	assert.Equal(t, "Hello **alice**,\n\nYour code is `123456`.\n", string(Body([]byte(sample))))
	assert.Equal(t, "no frontmatter", string(Body([]byte("no frontmatter"))))
	assert.Equal(t, "---\nunterminated", string(Body([]byte("---\nunterminated"))))
}
