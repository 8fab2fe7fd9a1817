package errs

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BuildError
		expected string
	}{
		{
			name:     "without path",
			err:      New(CategoryConfig, SeverityFatal, "", "base_url is required"),
			expected: "config (fatal): base_url is required",
		},
		{
			name:     "with path",
			err:      MissingField("posts/a.md", "date"),
			expected: `missing_field (fatal): posts/a.md: missing "date" required to sort its section`,
		},
		{
			name:     "with cause",
			err:      Wrap(fmt.Errorf("yaml: line 2"), CategoryConfig, SeverityFatal, "posts/a.md", "invalid front matter"),
			expected: "config (fatal): posts/a.md: invalid front matter: yaml: line 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestConflictNamesBothPaths(t *testing.T) {
	err := Conflict("/a/", "posts/a.md", "a/_index.md")

	require.Equal(t, CategoryConflict, err.Category)
	require.True(t, err.Fatal())
	require.Equal(t, "posts/a.md", err.Path)
	require.Contains(t, err.Error(), "a/_index.md")
	require.Equal(t, "/a/", err.Context["url"])
}

func TestBrokenReferenceSeverity(t *testing.T) {
	require.Equal(t, SeverityWarning, BrokenReference("a.md", "b.md", false).Severity)
	require.Equal(t, SeverityFatal, BrokenReference("a.md", "b.md", true).Severity)
	require.Equal(t, SeverityError, MalformedMarkup("a.md", "unterminated code fence", false).Severity)
}

func TestCategoryHelpers(t *testing.T) {
	wrapped := fmt.Errorf("graph: %w", MissingField("a.md", "weight"))

	require.True(t, IsCategory(wrapped, CategoryMissingField))
	require.False(t, IsCategory(wrapped, CategoryConflict))
	require.Equal(t, CategoryMissingField, GetCategory(wrapped))
	require.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	require.True(t, IsFatal(errors.New("plain")))
	require.False(t, IsFatal(nil))
}

func TestReport(t *testing.T) {
	r := NewReport()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Add(BrokenReference(fmt.Sprintf("p%02d.md", i), "missing.md", false))
		}()
	}
	wg.Wait()

	require.Equal(t, 10, r.Len())
	require.False(t, r.HasFatal())
	require.NoError(t, r.Err())
	require.Equal(t, "p00.md", r.Errors()[0].Path)
	require.Len(t, r.Warnings(), 10)

	r.Add(MalformedMarkup("z.md", "unterminated HTML comment", true))
	r.Add(errors.New("disk on fire"))

	require.True(t, r.HasFatal())
	require.Len(t, r.Fatal(), 2)
	require.ErrorContains(t, r.Err(), "unterminated HTML comment")
	require.ErrorContains(t, r.Err(), "disk on fire")
}

func TestAllFlattensJoinedErrors(t *testing.T) {
	joined := errors.Join(
		Conflict("/a/", "a.md", "b.md"),
		errors.Join(MissingField("c.md", "date"), errors.New("plain")),
	)

	all := All(joined)
	require.Len(t, all, 3)
	require.Equal(t, CategoryConflict, all[0].Category)
	require.Equal(t, CategoryMissingField, all[1].Category)
	require.Equal(t, CategoryInternal, all[2].Category)
	require.True(t, IsCategory(joined, CategoryMissingField))

	r := NewReport()
	r.Add(joined)
	require.Equal(t, 3, r.Len())
	require.Nil(t, All(nil))
}
