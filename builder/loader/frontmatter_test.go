package loader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitFrontMatter_NoFrontMatter(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := SplitFrontMatter(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplitFrontMatter_YAML(t *testing.T) {
	fm, body, had, err := SplitFrontMatter([]byte("---\ntitle: x\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplitFrontMatter_CRLF(t *testing.T) {
	fm, body, had, err := SplitFrontMatter([]byte("---\r\ntitle: x\r\n---\r\nbody\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x\r\n"), fm)
	require.Equal(t, []byte("body\r\n"), body)
}

func TestSplitFrontMatter_EmptyBlock(t *testing.T) {
	fm, body, had, err := SplitFrontMatter([]byte("---\n---\nbody\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("body\n"), body)
}

func TestSplitFrontMatter_NoBody(t *testing.T) {
	fm, body, had, err := SplitFrontMatter([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x"), fm)
	require.Empty(t, body)

	fm, body, had, err = SplitFrontMatter([]byte("---\r\ntitle: x\r\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x"), fm)
	require.Empty(t, body)

	fm, _, had, err = SplitFrontMatter([]byte("---\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
}

func TestSplitFrontMatter_Errors(t *testing.T) {
	_, _, _, err := SplitFrontMatter([]byte("---\ntitle: x\n# Title\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)

	_, _, _, err = SplitFrontMatter([]byte("+++\ntitle = 'x'\n+++\n"))
	require.ErrorIs(t, err, ErrTOMLFrontMatter)
}
