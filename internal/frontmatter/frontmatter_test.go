package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := "# Title\n\nHello\n"

	doc, err := Split(input)
	require.NoError(t, err)
	require.False(t, doc.Had)
	require.Empty(t, doc.Raw)
	require.Equal(t, input, doc.Body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	doc, err := Split("---\nkey: value\n---\n# Title\n")
	require.NoError(t, err)
	require.True(t, doc.Had)
	require.Equal(t, "key: value\n", doc.Raw)
	require.Equal(t, "# Title\n", doc.Body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, err := Split("---\nkey: value\n# Title\n")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF(t *testing.T) {
	doc, err := Split("---\r\nkey: value\r\n---\r\n# Title\r\n")
	require.NoError(t, err)
	require.True(t, doc.Had)
	require.Equal(t, "\r\n", doc.Newline)
	require.Equal(t, "key: value\r\n", doc.Raw)
	require.Equal(t, "# Title\r\n", doc.Body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	doc, err := Split("---\n---\n# Title\n")
	require.NoError(t, err)
	require.True(t, doc.Had)
	require.Empty(t, doc.Raw)

	fields, err := doc.Fields()
	require.NoError(t, err)
	require.Empty(t, fields)
}

func TestString_RoundTrip(t *testing.T) {
	cases := []string{
		"# Title\n\nHello\n",
		"---\nkey: value\n---\n# Title\n",
		"---\n---\n# Title\n",
		"---\r\nkey: value\r\n---\r\n# Title\r\n",
	}
	for _, input := range cases {
		doc, err := Split(input)
		require.NoError(t, err)
		require.Equal(t, input, doc.String())
	}
}

func TestFields_InvalidYAML(t *testing.T) {
	doc := Document{Raw: ": not yaml\n", Had: true, Newline: "\n"}
	_, err := doc.Fields()
	require.Error(t, err)
}
