package ops

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hvariant/shreddit2/internal/errors"
	"github.com/hvariant/shreddit2/internal/reddit"
)

func readArchive(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestArchive_AllCategories(t *testing.T) {
	long := strings.Repeat("x", 60)
	acct := &fakeAccount{
		comments: []reddit.Comment{
			newComment("c1", "hello world", 1000),
			newComment("c2", long, 1001),
		},
		submissions: []reddit.Submission{newSubmission("s1", "My post", long, 2000)},
		upvoted:     []reddit.Submission{newSubmission("u1", "Upvoted", long, 3000)},
		saved: []reddit.Item{
			newComment("sc", long, 4000),
			newSubmission("ss", "Saved link", "", 4001),
		},
	}
	layout, err := Setup(t.TempDir(), "someone")
	require.NoError(t, err)

	out, err := Archive(context.Background(), discardLogger(), acct, ArchiveInput{Username: "someone", Layout: layout})
	require.NoError(t, err)

	require.Len(t, out.Files, 4)
	require.Equal(t, []Category{CategoryComments, CategorySubmissions, CategoryUpvoted, CategorySaved},
		[]Category{out.Files[0].Category, out.Files[1].Category, out.Files[2].Category, out.Files[3].Category})
	require.Equal(t, 2, out.Files[0].Count)
	require.Equal(t, []string{"someone", "someone", "someone", "someone"}, acct.users)

	comments := readArchive(t, layout.Path(CategoryComments))
	require.Len(t, comments, 2)
	require.Equal(t, map[string]any{
		"body":        "hello world",
		"permalink":   "/r/x/comments/p/_/c1",
		"created_utc": "1970-01-01T00:16:40+00:00",
	}, comments[0])
	require.Equal(t, long, comments[1]["body"], "full comments are not summarised")

	subs := readArchive(t, layout.Path(CategorySubmissions))
	require.Len(t, subs, 1)
	require.Equal(t, long, subs[0]["selftext"])
	require.Equal(t, "https://example.com/s1", subs[0]["permalink"])

	upvoted := readArchive(t, layout.Path(CategoryUpvoted))
	require.Len(t, upvoted, 1)
	require.Equal(t, strings.Repeat("x", 50)+"...", upvoted[0]["selftext_summary"])
	require.NotContains(t, upvoted[0], "selftext")

	saved := readArchive(t, layout.Path(CategorySaved))
	require.Len(t, saved, 2)
	require.Equal(t, strings.Repeat("x", 50)+"...", saved[0]["body"])
	require.NotContains(t, saved[0], "title")
	require.Equal(t, "Saved link", saved[1]["title"])
	require.Equal(t, "", saved[1]["selftext_summary"])
}

func TestArchive_ExactCommentBytes(t *testing.T) {
	acct := &fakeAccount{
		comments: []reddit.Comment{{ID: "1", Body: "hello world", Permalink: "/r/x/1", CreatedUTC: 1000}},
	}
	layout, err := Setup(t.TempDir(), "someone")
	require.NoError(t, err)

	_, err = Archive(context.Background(), discardLogger(), acct, ArchiveInput{Username: "someone", Layout: layout})
	require.NoError(t, err)

	data, err := os.ReadFile(layout.Path(CategoryComments))
	require.NoError(t, err)
	require.Equal(t, `[{"body":"hello world","permalink":"/r/x/1","created_utc":"1970-01-01T00:16:40+00:00"}]`, string(data))
}

func TestArchive_EmptyStreams(t *testing.T) {
	layout, err := Setup(t.TempDir(), "someone")
	require.NoError(t, err)

	out, err := Archive(context.Background(), discardLogger(), &fakeAccount{}, ArchiveInput{Username: "someone", Layout: layout})
	require.NoError(t, err)

	for _, f := range out.Files {
		require.Equal(t, 0, f.Count)
		data, err := os.ReadFile(f.Path)
		require.NoError(t, err)
		require.Equal(t, "[]", string(data))
	}
}

func TestArchive_Overwrites(t *testing.T) {
	layout, err := Setup(t.TempDir(), "someone")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(layout.Path(CategoryComments), []byte(`["old"]`), 0600))

	acct := &fakeAccount{comments: []reddit.Comment{newComment("c1", "new", 1000)}}
	_, err = Archive(context.Background(), discardLogger(), acct, ArchiveInput{Username: "someone", Layout: layout})
	require.NoError(t, err)

	got := readArchive(t, layout.Path(CategoryComments))
	require.Len(t, got, 1)
	require.Equal(t, "new", got[0]["body"])
}

func TestArchive_StreamErrorAborts(t *testing.T) {
	boom := stderrors.New("boom")
	acct := &fakeAccount{
		comments:    []reddit.Comment{newComment("c1", "kept", 1000)},
		submissions: []reddit.Submission{newSubmission("s1", "lost", "", 2000)},
		streamErr:   map[string]error{"submissions": boom},
	}
	layout, err := Setup(t.TempDir(), "someone")
	require.NoError(t, err)

	out, err := Archive(context.Background(), discardLogger(), acct, ArchiveInput{Username: "someone", Layout: layout})
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "archive submissions")

	// Earlier categories stay on disk; later ones are never written.
	require.Len(t, out.Files, 1)
	require.FileExists(t, layout.Path(CategoryComments))
	require.NoFileExists(t, layout.Path(CategorySubmissions))
	require.NoFileExists(t, layout.Path(CategoryUpvoted))
	require.NoFileExists(t, layout.Path(CategorySaved))
}

func TestArchive_Cancelled(t *testing.T) {
	acct := &fakeAccount{comments: []reddit.Comment{newComment("c1", "a", 1000)}}
	layout, err := Setup(t.TempDir(), "someone")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Archive(ctx, discardLogger(), acct, ArchiveInput{Username: "someone", Layout: layout})
	require.True(t, errors.Is(err, errors.ErrCancelled), "err = %v", err)
	require.NoFileExists(t, layout.Path(CategoryComments))
}

func TestArchive_RequiresLayout(t *testing.T) {
	_, err := Archive(context.Background(), discardLogger(), &fakeAccount{}, ArchiveInput{Username: "someone"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)
}

func TestArchive_LayoutUnderUsername(t *testing.T) {
	base := t.TempDir()
	layout, err := Setup(base, "someone")
	require.NoError(t, err)

	_, err = Archive(context.Background(), discardLogger(), &fakeAccount{}, ArchiveInput{Username: "someone", Layout: layout})
	require.NoError(t, err)

	for _, c := range []string{"submissions", "comments", "upvoted", "saved"} {
		require.FileExists(t, filepath.Join(base, "someone", c, "posts"))
	}
}
